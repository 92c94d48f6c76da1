package hasher

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/moyu-x/rmdup/internal"
	"github.com/moyu-x/rmdup/pkg/logger"
)

var (
	// ErrSkipped 所有跳过类错误都可以用 errors.Is 匹配到它
	ErrSkipped = errors.New("file skipped")
	// ErrSymlink 未开启链接跟随时遇到符号链接
	ErrSymlink = errors.New("symbolic link not followed")
)

// Fingerprint 文件完整内容的 128 位摘要
// 摘要相同即视为内容相同，不处理碰撞
type Fingerprint [md5.Size]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// ProgressObserver 接收指纹计算进度
// BeginFile 在读取第一个块之前调用，Consumed 在每个块读取后调用
type ProgressObserver interface {
	BeginFile(path string)
	Consumed(n int)
}

// SkipError 文件被跳过的原因，不是致命错误
type SkipError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip %s (%s): %v", e.Path, e.Reason, e.Err)
}

func (e *SkipError) Unwrap() []error {
	return []error{ErrSkipped, e.Err}
}

type Hasher struct {
	Fs             afero.Fs
	FollowSymlinks bool
}

func New(fs afero.Fs, followSymlinks bool) *Hasher {
	return &Hasher{
		Fs:             fs,
		FollowSymlinks: followSymlinks,
	}
}

// Calculate 按 4096 字节分块流式计算文件指纹
// observer 可以为 nil
func (h *Hasher) Calculate(path string, observer ProgressObserver) (Fingerprint, error) {
	var fp Fingerprint

	if err := h.checkSymlink(path); err != nil {
		return fp, err
	}

	file, err := h.Fs.Open(path)
	if err != nil {
		logger.Get().Debug().Err(err).Str("path", path).Msg("无法打开文件")
		return fp, &SkipError{Path: path, Reason: "open", Err: err}
	}
	defer file.Close()

	if observer != nil {
		observer.BeginFile(path)
	}

	hash := md5.New()
	buf := make([]byte, internal.ChunkSize)
	for {
		n, err := io.ReadFull(file, buf)
		if n > 0 {
			hash.Write(buf[:n])
			if observer != nil {
				observer.Consumed(n)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			logger.Get().Debug().Err(err).Str("path", path).Msg("读取文件失败")
			return fp, &SkipError{Path: path, Reason: "read", Err: err}
		}
	}

	copy(fp[:], hash.Sum(nil))
	logger.Get().Trace().Str("path", path).Str("fingerprint", fp.String()).Msg("文件指纹计算完成")
	return fp, nil
}

// QuickHash 计算文件第一个块的 xxHash，用于在完整计算前拆分同大小的文件
func (h *Hasher) QuickHash(path string) (uint64, error) {
	if err := h.checkSymlink(path); err != nil {
		return 0, err
	}

	file, err := h.Fs.Open(path)
	if err != nil {
		return 0, &SkipError{Path: path, Reason: "open", Err: err}
	}
	defer file.Close()

	digest := xxhash.New()
	if _, err := io.CopyN(digest, file, internal.ChunkSize); err != nil && err != io.EOF {
		return 0, &SkipError{Path: path, Reason: "read", Err: err}
	}
	return digest.Sum64(), nil
}

func (h *Hasher) checkSymlink(path string) error {
	if h.FollowSymlinks {
		return nil
	}

	lstater, ok := h.Fs.(afero.Lstater)
	if !ok {
		return nil
	}

	info, _, err := lstater.LstatIfPossible(path)
	if err != nil {
		return &SkipError{Path: path, Reason: "stat", Err: err}
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return &SkipError{Path: path, Reason: "symlink", Err: ErrSymlink}
	}
	return nil
}
