package deduplicator

import (
	"bytes"
	"io"

	"github.com/spf13/afero"

	"github.com/moyu-x/rmdup/internal"
)

// Verify 逐字节比较两个文件的内容
func Verify(fs afero.Fs, a, b string) (bool, error) {
	fa, err := fs.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()

	fb, err := fs.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, internal.ChunkSize)
	bufB := make([]byte, internal.ChunkSize)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)

		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}

		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !doneA {
			return false, errA
		}
		if errB != nil && !doneB {
			return false, errB
		}
		if doneA || doneB {
			return doneA && doneB, nil
		}
	}
}
