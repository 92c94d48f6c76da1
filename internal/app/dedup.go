package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/rmdup/internal"
	"github.com/moyu-x/rmdup/pkg/deduplicator"
	"github.com/moyu-x/rmdup/pkg/fsops"
	"github.com/moyu-x/rmdup/pkg/hasher"
	"github.com/moyu-x/rmdup/pkg/logger"
	"github.com/moyu-x/rmdup/pkg/progress"
	"github.com/moyu-x/rmdup/pkg/report"
	"github.com/moyu-x/rmdup/tui"
)

// ReviewFunc 交互模式下逐组生成删除决策
type ReviewFunc func(ctx context.Context, groups []*deduplicator.DuplicateGroup, in io.Reader, out io.Writer) ([]deduplicator.Decision, error)

type DedupOptions struct {
	Root           string
	FollowSymlinks bool
	MinSize        uint64
	Workers        int
	Prefilter      bool
	Verify         bool
	Interactive    bool
	DryRun         bool
	Verbose        bool

	Fs  afero.Fs
	In  io.Reader
	Out io.Writer
	// Review 为 nil 时使用 tui.Run
	Review ReviewFunc
}

func (o *DedupOptions) Mode() internal.OperationMode {
	switch {
	case o.DryRun:
		return internal.ModeDryRun
	case o.Interactive:
		return internal.ModeInteractive
	default:
		return internal.ModeAuto
	}
}

// RunDedup 扫描 Root、确定待删除文件、经用户确认后删除
// 中断时返回 ctx.Err()，交互界面被取消时返回 tui.ErrCancelled，两种情况都不会删除未确认的文件
func RunDedup(ctx context.Context, opts *DedupOptions) (*internal.ProcessStats, error) {
	stats := &internal.ProcessStats{StartTime: time.Now()}

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	review := opts.Review
	if review == nil {
		review = tui.Run
	}
	printer := report.NewPrinter(opts.Out, opts.Fs)

	logger.Get().Info().
		Str("root", opts.Root).
		Str("mode", string(opts.Mode())).
		Bool("follow_symlinks", opts.FollowSymlinks).
		Uint64("min_size", opts.MinSize).
		Int("workers", opts.Workers).
		Msg("开始扫描")

	dedup := deduplicator.NewDeduplicator(opts.Fs, deduplicator.Options{
		Root:           opts.Root,
		FollowSymlinks: opts.FollowSymlinks,
		MinSize:        opts.MinSize,
		Workers:        opts.Workers,
		Prefilter:      opts.Prefilter,
		Verify:         opts.Verify,
	})

	var renderer *progress.Renderer
	if opts.Verbose {
		dedup.SetObserverFactory(func(files int, totalBytes uint64) hasher.ProgressObserver {
			tracker := progress.NewTracker(totalBytes)
			renderer = progress.NewRenderer(opts.Out, tracker)
			renderer.Start()
			return tracker
		})
	}

	scan, err := dedup.Scan(ctx)
	if renderer != nil {
		renderer.Stop()
	}
	if err != nil {
		return stats, err
	}

	collectScanStats(stats, scan)
	printer.ScanSummary(scan)
	if opts.Verbose {
		printer.Skipped(scan)
	}

	if len(scan.Groups) == 0 {
		return finish(stats, printer, opts), nil
	}

	var decisions []deduplicator.Decision
	if opts.Interactive {
		decisions, err = review(ctx, scan.Groups, opts.In, opts.Out)
		if err != nil {
			return stats, err
		}
		if opts.Verify {
			for i := range decisions {
				decisions[i] = dedup.VerifyDecision(decisions[i])
			}
		}
	} else {
		decisions = dedup.Plan(scan.Groups)
	}

	paths := deletionPaths(decisions)
	stats.Proposed = len(paths)

	fmt.Fprintln(opts.Out)
	if printer.Plan(decisions) == 0 {
		fmt.Fprintln(opts.Out, "没有需要删除的文件")
		return finish(stats, printer, opts), nil
	}

	if !opts.Interactive && !opts.DryRun {
		ok, err := Confirm(ctx, opts.In, opts.Out, "确认删除以上文件？(y/n) ")
		if err != nil {
			return stats, err
		}
		if !ok {
			fmt.Fprintln(opts.Out, "未删除任何文件")
			logger.Get().Info().Msg("用户取消删除")
			return finish(stats, printer, opts), nil
		}
	}

	deleter := fsops.NewDeleter(opts.Fs, opts.FollowSymlinks)
	deleter.DryRun = opts.DryRun
	deleter.OnOutcome = func(o fsops.Outcome) {
		printer.Outcome(o, opts.DryRun)
	}

	result := deleter.DeleteAll(ctx, paths)
	stats.Deleted = result.Deleted
	stats.FreedSpace = result.BytesFreed
	stats.NotFound = result.Count(fsops.NotFound)
	stats.Failed = result.Count(fsops.Failed)

	if err := ctx.Err(); err != nil {
		stats.EndTime = time.Now()
		return stats, err
	}

	return finish(stats, printer, opts), nil
}

func collectScanStats(stats *internal.ProcessStats, scan *deduplicator.Report) {
	e := scan.Enumeration
	stats.TotalFiles = len(e.Files)
	stats.TotalBytes = e.TotalBytes
	stats.SkippedSmall = e.Skipped
	stats.SkippedBytes = e.SkippedBytes
	stats.SkippedLinks = e.Symlinks
	stats.Unreadable = len(e.Failures) + len(scan.Skipped)
	stats.Groups = len(scan.Groups)
}

func deletionPaths(decisions []deduplicator.Decision) []string {
	var paths []string
	for _, d := range decisions {
		for _, del := range d.Deletions {
			paths = append(paths, del.File.Path)
		}
	}
	return paths
}

func finish(stats *internal.ProcessStats, printer *report.Printer, opts *DedupOptions) *internal.ProcessStats {
	stats.EndTime = time.Now()
	if stats.Groups > 0 {
		printer.Summary(stats, opts.DryRun)
	}

	logger.Get().Info().
		Int("groups", stats.Groups).
		Int("deleted", stats.Deleted).
		Uint64("freed", stats.FreedSpace).
		Int("not_found", stats.NotFound).
		Int("failed", stats.Failed).
		Dur("elapsed", stats.EndTime.Sub(stats.StartTime)).
		Msg("处理完成")
	return stats
}
