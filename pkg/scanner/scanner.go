package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/rmdup/pkg/logger"
)

// FileRecord 遍历得到的候选文件，创建后不再修改
type FileRecord struct {
	Path      string
	Size      uint64
	IsSymlink bool
	ModTime   time.Time
}

// Name 返回文件名部分
func (r FileRecord) Name() string {
	return filepath.Base(r.Path)
}

// Failure 单个路径的访问错误，不中断遍历
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result 遍历结果
type Result struct {
	Files        []FileRecord
	TotalBytes   uint64
	Skipped      int    // 小于阈值而跳过的文件数
	SkippedBytes uint64 // 小于阈值而跳过的字节数
	Symlinks     int    // 未跟随而排除的符号链接数
	Aliases      int    // 跟随后与其他候选指向同一文件而去掉的符号链接数
	Failures     []Failure
}

type FileWalker struct {
	Fs             afero.Fs
	FollowSymlinks bool
	MinSize        uint64
}

func NewFileWalker(fs afero.Fs) *FileWalker {
	return &FileWalker{
		Fs: fs,
	}
}

// Enumerate 递归遍历 root，按符号链接与最小大小过滤候选文件
// 顺序为 afero.Walk 的字典序；单个文件的错误记录在 Failures 中，root 不可访问时返回错误
func (w *FileWalker) Enumerate(ctx context.Context, root string) (*Result, error) {
	logger.Get().Debug().Str("root", root).Bool("follow_symlinks", w.FollowSymlinks).
		Uint64("min_size", w.MinSize).Msg("开始遍历目录")

	result := &Result{}
	// 与 result.Files 一一对应，符号链接记录的是目标的信息
	var infos []os.FileInfo

	err := afero.Walk(w.Fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == root && info == nil {
				return err
			}
			logger.Get().Debug().Err(err).Str("path", path).Msg("访问路径出错")
			result.Failures = append(result.Failures, Failure{Path: path, Err: err})
			return nil
		}

		if info.IsDir() {
			return nil
		}

		isLink := info.Mode()&os.ModeSymlink != 0
		if isLink {
			if !w.FollowSymlinks {
				logger.Get().Trace().Str("path", path).Msg("跳过符号链接")
				result.Symlinks++
				return nil
			}

			target, err := w.Fs.Stat(path)
			if err != nil {
				logger.Get().Debug().Err(err).Str("path", path).Msg("符号链接无法解析")
				result.Failures = append(result.Failures, Failure{Path: path, Err: err})
				return nil
			}
			if target.IsDir() {
				// 不进入链接目录，避免环路
				logger.Get().Debug().Str("path", path).Msg("跳过指向目录的符号链接")
				return nil
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			logger.Get().Trace().Str("path", path).Str("mode", info.Mode().String()).Msg("跳过非普通文件")
			return nil
		}

		size := uint64(info.Size())
		if size < w.MinSize {
			result.Skipped++
			result.SkippedBytes += size
			return nil
		}

		result.Files = append(result.Files, FileRecord{
			Path:      path,
			Size:      size,
			IsSymlink: isLink,
			ModTime:   info.ModTime(),
		})
		infos = append(infos, info)
		result.TotalBytes += size
		return nil
	})

	if w.FollowSymlinks {
		dropAliases(result, infos)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return result, err
		}
		return nil, fmt.Errorf("遍历目录失败 %s: %w", root, err)
	}

	logger.Get().Debug().
		Int("files", len(result.Files)).
		Uint64("bytes", result.TotalBytes).
		Int("skipped", result.Skipped).
		Int("symlinks", result.Symlinks).
		Int("aliases", result.Aliases).
		Int("failures", len(result.Failures)).
		Msg("目录遍历完成")

	return result, nil
}

// dropAliases 去掉指向同一文件的符号链接，每个文件只保留一条路径，优先保留真实路径
func dropAliases(result *Result, infos []os.FileInfo) {
	bySize := make(map[uint64][]int)
	keep := make([]bool, len(result.Files))
	for i, f := range result.Files {
		if !f.IsSymlink {
			keep[i] = true
			bySize[f.Size] = append(bySize[f.Size], i)
		}
	}

	for i, f := range result.Files {
		if !f.IsSymlink {
			continue
		}
		alias := -1
		for _, j := range bySize[f.Size] {
			if os.SameFile(infos[i], infos[j]) {
				alias = j
				break
			}
		}
		if alias >= 0 {
			logger.Get().Debug().Str("path", f.Path).Str("target", result.Files[alias].Path).Msg("符号链接指向已有文件，跳过")
			result.Aliases++
			result.TotalBytes -= f.Size
			continue
		}
		keep[i] = true
		bySize[f.Size] = append(bySize[f.Size], i)
	}

	if result.Aliases == 0 {
		return
	}
	files := result.Files[:0]
	for i, f := range result.Files {
		if keep[i] {
			files = append(files, f)
		}
	}
	result.Files = files
}
