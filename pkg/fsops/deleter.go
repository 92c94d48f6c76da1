package fsops

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"

	"github.com/moyu-x/rmdup/pkg/logger"
)

// Status 单个文件的删除结果
type Status int

const (
	Deleted Status = iota
	NotFound
	Failed
	SkippedSymlink
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not-found"
	case Failed:
		return "failed"
	case SkippedSymlink:
		return "skipped-symlink"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Path   string
	Status Status
	Size   uint64
	Err    error
}

// Result 删除统计；NotFound 与 Failed 不计入 Deleted
type Result struct {
	Deleted    int
	BytesFreed uint64
	Outcomes   []Outcome
}

// Count 返回指定状态的文件数
func (r *Result) Count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Deleter 删除已确认的文件，单个文件失败不影响其余文件
type Deleter struct {
	Fs             afero.Fs
	FollowSymlinks bool
	// DryRun 只记录将要删除的文件，不做实际删除
	DryRun bool
	// OnOutcome 每处理完一个文件调用一次，可为 nil
	OnOutcome func(Outcome)
}

func NewDeleter(fs afero.Fs, followSymlinks bool) *Deleter {
	return &Deleter{
		Fs:             fs,
		FollowSymlinks: followSymlinks,
	}
}

// DeleteAll 依次删除 paths
// ctx 取消后剩余文件标记为 Cancelled 且不会被删除，已删除的文件不回滚
func (d *Deleter) DeleteAll(ctx context.Context, paths []string) *Result {
	result := &Result{}

	for i, path := range paths {
		if ctx.Err() != nil {
			for _, rest := range paths[i:] {
				d.record(result, Outcome{Path: rest, Status: Cancelled, Err: ctx.Err()})
			}
			break
		}
		d.record(result, d.remove(path))
	}

	logger.Get().Debug().
		Int("deleted", result.Deleted).
		Uint64("bytes_freed", result.BytesFreed).
		Int("not_found", result.Count(NotFound)).
		Int("failed", result.Count(Failed)).
		Msg("删除完成")

	return result
}

func (d *Deleter) remove(path string) Outcome {
	info, err := d.lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Outcome{Path: path, Status: NotFound, Err: err}
		}
		return Outcome{Path: path, Status: Failed, Err: err}
	}

	if info.Mode()&os.ModeSymlink != 0 && !d.FollowSymlinks {
		return Outcome{Path: path, Status: SkippedSymlink}
	}

	// 删除前记录大小
	size := uint64(info.Size())

	if d.DryRun {
		return Outcome{Path: path, Status: Deleted, Size: size}
	}

	if err := d.Fs.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Outcome{Path: path, Status: NotFound, Err: err}
		}
		return Outcome{Path: path, Status: Failed, Err: err}
	}

	return Outcome{Path: path, Status: Deleted, Size: size}
}

func (d *Deleter) lstat(path string) (os.FileInfo, error) {
	if lstater, ok := d.Fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return d.Fs.Stat(path)
}

func (d *Deleter) record(result *Result, o Outcome) {
	switch o.Status {
	case Deleted:
		result.Deleted++
		result.BytesFreed += o.Size
		logger.Get().Debug().Str("path", o.Path).Uint64("size", o.Size).Bool("dry_run", d.DryRun).Msg("已删除")
	case NotFound:
		logger.Get().Warn().Str("path", o.Path).Msg("文件不存在")
	case Failed:
		logger.Get().Error().Err(o.Err).Str("path", o.Path).Msg("删除文件失败")
	case SkippedSymlink:
		logger.Get().Debug().Str("path", o.Path).Msg("跳过符号链接")
	}

	result.Outcomes = append(result.Outcomes, o)
	if d.OnOutcome != nil {
		d.OnOutcome(o)
	}
}
