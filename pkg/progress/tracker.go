package progress

import (
	"sync"
	"sync/atomic"
)

// Tracker 汇总多个工作线程的指纹计算进度
// 实现 hasher.ProgressObserver，可并发调用
type Tracker struct {
	total     uint64
	processed atomic.Uint64
	files     atomic.Int64

	mu      sync.RWMutex
	current string
}

// Snapshot 某一时刻的进度
type Snapshot struct {
	Processed uint64
	Total     uint64
	Files     int
	Current   string
}

func NewTracker(totalBytes uint64) *Tracker {
	return &Tracker{
		total: totalBytes,
	}
}

// BeginFile 记录当前正在处理的文件
func (t *Tracker) BeginFile(path string) {
	t.files.Add(1)

	t.mu.Lock()
	t.current = path
	t.mu.Unlock()
}

// Consumed 累加已读取的字节数
func (t *Tracker) Consumed(n int) {
	if n > 0 {
		t.processed.Add(uint64(n))
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	current := t.current
	t.mu.RUnlock()

	return Snapshot{
		Processed: t.processed.Load(),
		Total:     t.total,
		Files:     int(t.files.Load()),
		Current:   current,
	}
}

// Percent 返回 0 到 1 之间的完成比例
func (s Snapshot) Percent() float64 {
	if s.Total == 0 {
		return 1
	}
	p := float64(s.Processed) / float64(s.Total)
	if p > 1 {
		return 1
	}
	return p
}
