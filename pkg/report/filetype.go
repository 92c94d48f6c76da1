package report

import (
	"io"

	"github.com/h2non/filetype"
	"github.com/spf13/afero"
)

// headerSize filetype 判断类型所需的最大头部长度
const headerSize = 261

const UnknownKind = "unknown"

// KindOf 读取文件头部判断 MIME 类型，无法识别时返回 UnknownKind
func KindOf(fs afero.Fs, path string) string {
	f, err := fs.Open(path)
	if err != nil {
		return UnknownKind
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return UnknownKind
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return UnknownKind
	}
	return kind.MIME.Value
}
