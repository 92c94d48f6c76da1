package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/moyu-x/rmdup/internal"
	"github.com/moyu-x/rmdup/pkg/deduplicator"
	"github.com/moyu-x/rmdup/pkg/fsops"
	"github.com/moyu-x/rmdup/pkg/sizeunit"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	gray   = color.New(color.FgHiBlack)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

// Printer 把扫描结果、删除计划与最终统计输出到终端
type Printer struct {
	w  io.Writer
	fs afero.Fs
}

func NewPrinter(w io.Writer, fs afero.Fs) *Printer {
	return &Printer{w: w, fs: fs}
}

func (p *Printer) ScanSummary(r *deduplicator.Report) {
	e := r.Enumeration
	fmt.Fprintf(p.w, "扫描文件: %d 个 (%s)\n", len(e.Files)+e.Skipped, sizeunit.Format(e.TotalBytes+e.SkippedBytes))
	if e.Skipped > 0 {
		gray.Fprintf(p.w, "  低于最小大小: %d 个 (%s)\n", e.Skipped, sizeunit.Format(e.SkippedBytes))
	}
	if e.Symlinks > 0 {
		gray.Fprintf(p.w, "  符号链接: %d 个\n", e.Symlinks)
	}
	if e.Aliases > 0 {
		gray.Fprintf(p.w, "  指向已扫描文件的符号链接: %d 个\n", e.Aliases)
	}
	if n := len(e.Failures) + len(r.Skipped); n > 0 {
		yellow.Fprintf(p.w, "  无法读取: %d 个\n", n)
	}
	fmt.Fprintf(p.w, "计算指纹: %d 个 (%s)，用时 %s\n",
		r.Hashed, sizeunit.Format(r.HashedBytes), r.Duration.Round(time.Millisecond))

	if len(r.Groups) == 0 {
		green.Fprintln(p.w, "未发现重复文件")
		return
	}
	bold.Fprintf(p.w, "发现 %d 组重复文件，可释放 %s\n", len(r.Groups), sizeunit.Format(r.Wasted()))
}

// Skipped 列出无法读取的文件
func (p *Printer) Skipped(r *deduplicator.Report) {
	for _, f := range r.Enumeration.Failures {
		yellow.Fprintf(p.w, "跳过: %s (%v)\n", f.Path, f.Err)
	}
	for _, s := range r.Skipped {
		yellow.Fprintf(p.w, "跳过: %s (%s)\n", s.Path, s.Reason)
	}
}

// Plan 列出每组保留与待删除的文件，返回待删除文件数
func (p *Printer) Plan(decisions []deduplicator.Decision) int {
	total := 0
	var bytes uint64
	for i, d := range decisions {
		if len(d.Deletions) == 0 {
			continue
		}
		header := fmt.Sprintf("组 %d · %s · %s × %d",
			i+1, KindOf(p.fs, d.Kept[0].Path), sizeunit.Format(d.Group.Size()), len(d.Group.Members))
		fmt.Fprintln(p.w, headerStyle.Render(header))

		for _, k := range d.Kept {
			green.Fprintf(p.w, "  保留 %s\n", k.Path)
		}
		for _, del := range d.Deletions {
			red.Fprintf(p.w, "  删除 %s", del.File.Path)
			gray.Fprintf(p.w, " (重复于 %s, %s)\n", del.DuplicateOf.Path, sizeunit.Format(del.File.Size))
			total++
			bytes += del.File.Size
		}
	}

	if total > 0 {
		bold.Fprintf(p.w, "\n共 %d 个文件待删除，可释放 %s\n", total, sizeunit.Format(bytes))
	}
	return total
}

// Outcome 输出单个文件的删除结果
func (p *Printer) Outcome(o fsops.Outcome, dryRun bool) {
	switch o.Status {
	case fsops.Deleted:
		if dryRun {
			gray.Fprintf(p.w, "将删除: %s\n", o.Path)
		} else {
			green.Fprintf(p.w, "已删除: %s\n", o.Path)
		}
	case fsops.NotFound:
		yellow.Fprintf(p.w, "文件不存在: %s\n", o.Path)
	case fsops.Failed:
		red.Fprintf(p.w, "删除失败: %s (%v)\n", o.Path, o.Err)
	case fsops.SkippedSymlink:
		gray.Fprintf(p.w, "跳过符号链接: %s\n", o.Path)
	}
}

func (p *Printer) Summary(stats *internal.ProcessStats, dryRun bool) {
	fmt.Fprintln(p.w)
	if dryRun {
		yellow.Fprintln(p.w, "演练模式，未删除任何文件")
	}
	bold.Fprintln(p.w, "========== 处理完成 ==========")
	fmt.Fprintf(p.w, "重复文件组: %d\n", stats.Groups)
	fmt.Fprintf(p.w, "已删除: %d 个\n", stats.Deleted)
	fmt.Fprintf(p.w, "释放空间: %s\n", sizeunit.Format(stats.FreedSpace))
	if stats.NotFound > 0 {
		yellow.Fprintf(p.w, "文件不存在: %d 个\n", stats.NotFound)
	}
	if stats.Failed > 0 {
		red.Fprintf(p.w, "删除失败: %d 个\n", stats.Failed)
	}
	fmt.Fprintf(p.w, "总耗时: %v\n", stats.EndTime.Sub(stats.StartTime).Round(time.Millisecond))
}
