package progress

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/moyu-x/rmdup/pkg/sizeunit"
)

const (
	defaultInterval = 200 * time.Millisecond
	barWidth        = 30
	maxNameWidth    = 40
)

// Renderer 定时把 Tracker 的进度画到终端
type Renderer struct {
	out      io.Writer
	tracker  *Tracker
	bar      progress.Model
	interval time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewRenderer(out io.Writer, tracker *Tracker) *Renderer {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = barWidth

	return &Renderer{
		out:      out,
		tracker:  tracker,
		bar:      bar,
		interval: defaultInterval,
	}
}

// Line 渲染单行进度文本
func (r *Renderer) Line() string {
	s := r.tracker.Snapshot()
	name := filepath.Base(s.Current)
	if s.Current == "" {
		name = ""
	}
	if r := []rune(name); len(r) > maxNameWidth {
		name = string(r[:maxNameWidth-3]) + "..."
	}
	return fmt.Sprintf("%s %5.1f%% %s / %s %d 个文件 %s",
		r.bar.ViewAs(s.Percent()),
		s.Percent()*100,
		sizeunit.Format(s.Processed),
		sizeunit.Format(s.Total),
		s.Files,
		name,
	)
}

func (r *Renderer) Start() {
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				fmt.Fprintf(r.out, "\r\033[K%s", r.Line())
			}
		}
	}()
}

// Stop 停止刷新并输出最终状态
func (r *Renderer) Stop() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	r.wg.Wait()
	r.stop = nil
	fmt.Fprintf(r.out, "\r\033[K%s\n", r.Line())
}
