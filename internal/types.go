package internal

import "time"

// 运行模式
type OperationMode string

const (
	ModeAuto        OperationMode = "auto"
	ModeInteractive OperationMode = "interactive"
	ModeDryRun      OperationMode = "dry-run"
)

// 处理统计
type ProcessStats struct {
	TotalFiles   int
	TotalBytes   uint64
	SkippedSmall int
	SkippedBytes uint64
	SkippedLinks int
	Unreadable   int
	Groups       int
	Proposed     int
	Deleted      int
	NotFound     int
	Failed       int
	FreedSpace   uint64
	StartTime    time.Time
	EndTime      time.Time
}
