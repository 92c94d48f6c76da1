package deduplicator

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/rmdup/pkg/hasher"
	"github.com/moyu-x/rmdup/pkg/logger"
	"github.com/moyu-x/rmdup/pkg/scanner"
)

type Options struct {
	Root           string
	FollowSymlinks bool
	MinSize        uint64
	Workers        int
	// Prefilter 跳过大小唯一的文件，并用首块 xxHash 拆分同大小的文件
	Prefilter bool
	// Verify 删除前逐字节确认与保留文件一致
	Verify bool
}

// Report 一次扫描的结果
type Report struct {
	Enumeration *scanner.Result
	Groups      []*DuplicateGroup
	Skipped     []*hasher.SkipError
	Hashed      int
	HashedBytes uint64
	Duration    time.Duration
}

// Wasted 所有重复组中可以释放的字节数
func (r *Report) Wasted() uint64 {
	var total uint64
	for _, g := range r.Groups {
		total += g.Wasted()
	}
	return total
}

// ObserverFactory 在开始计算指纹前调用，返回的 observer 会被并发调用
type ObserverFactory func(files int, totalBytes uint64) hasher.ProgressObserver

type Deduplicator struct {
	fs          afero.Fs
	opts        Options
	pool        *hasher.HashPool
	newObserver ObserverFactory
}

func NewDeduplicator(fs afero.Fs, opts Options) *Deduplicator {
	logger.Get().Debug().
		Str("root", opts.Root).
		Bool("follow_symlinks", opts.FollowSymlinks).
		Uint64("min_size", opts.MinSize).
		Int("workers", opts.Workers).
		Bool("prefilter", opts.Prefilter).
		Bool("verify", opts.Verify).
		Msg("创建去重处理器")

	return &Deduplicator{
		fs:   fs,
		opts: opts,
		pool: hasher.NewHashPool(hasher.New(fs, opts.FollowSymlinks), opts.Workers),
	}
}

// SetObserverFactory 设置进度回调，nil 表示不报告进度
func (d *Deduplicator) SetObserverFactory(f ObserverFactory) {
	d.newObserver = f
}

// Scan 遍历、计算指纹并分组
// 单个文件的错误只记录在 Report 中；ctx 取消时返回已得到的部分结果和 ctx.Err()
func (d *Deduplicator) Scan(ctx context.Context) (*Report, error) {
	start := time.Now()

	walker := scanner.NewFileWalker(d.fs)
	walker.FollowSymlinks = d.opts.FollowSymlinks
	walker.MinSize = d.opts.MinSize

	enum, err := walker.Enumerate(ctx, d.opts.Root)
	if err != nil {
		return nil, err
	}

	report := &Report{Enumeration: enum}
	logger.Get().Info().Msgf("找到 %d 个候选文件，共 %d 字节", len(enum.Files), enum.TotalBytes)

	candidates := enum.Files
	if d.opts.Prefilter {
		candidates, err = d.prefilter(ctx, candidates, report)
		if err != nil {
			return report, err
		}
	}

	for _, f := range candidates {
		report.HashedBytes += f.Size
	}
	report.Hashed = len(candidates)

	var observer hasher.ProgressObserver
	if d.newObserver != nil {
		observer = d.newObserver(len(candidates), report.HashedBytes)
	}

	results, err := d.pool.Fingerprints(ctx, candidates, observer)
	for _, r := range results {
		var skip *hasher.SkipError
		if errors.As(r.Err, &skip) {
			logger.Get().Warn().Err(skip.Err).Str("path", skip.Path).Msg("跳过无法读取的文件")
			report.Skipped = append(report.Skipped, skip)
		}
	}
	if err != nil {
		return report, err
	}

	report.Groups = Group(results)
	report.Duration = time.Since(start)

	logger.Get().Info().
		Int("groups", len(report.Groups)).
		Int("hashed", report.Hashed).
		Int("skipped", len(report.Skipped)).
		Dur("duration", report.Duration).
		Msg("扫描完成")

	return report, nil
}

// prefilter 只保留可能重复的文件，大小或首块哈希唯一的文件不可能有副本
func (d *Deduplicator) prefilter(ctx context.Context, files []scanner.FileRecord, report *Report) ([]scanner.FileRecord, error) {
	sizeCount := make(map[uint64]int)
	for _, f := range files {
		sizeCount[f.Size]++
	}

	var sameSize []scanner.FileRecord
	for _, f := range files {
		if sizeCount[f.Size] > 1 {
			sameSize = append(sameSize, f)
		}
	}

	quick, err := d.pool.QuickHashes(ctx, sameSize)
	if err != nil {
		return nil, err
	}

	type key struct {
		size  uint64
		quick uint64
	}
	keyCount := make(map[key]int)
	for _, q := range quick {
		if q.Err == nil {
			keyCount[key{q.File.Size, q.Quick}]++
		}
	}

	var out []scanner.FileRecord
	for _, q := range quick {
		if q.Err != nil {
			var skip *hasher.SkipError
			if errors.As(q.Err, &skip) {
				logger.Get().Warn().Err(skip.Err).Str("path", skip.Path).Msg("跳过无法读取的文件")
				report.Skipped = append(report.Skipped, skip)
			}
			continue
		}
		if keyCount[key{q.File.Size, q.Quick}] > 1 {
			out = append(out, q.File)
		}
	}

	logger.Get().Debug().
		Int("candidates", len(files)).
		Int("same_size", len(sameSize)).
		Int("remaining", len(out)).
		Msg("预筛选完成")

	return out, nil
}

// Plan 对每个组应用自动保留规则
func (d *Deduplicator) Plan(groups []*DuplicateGroup) []Decision {
	decisions := make([]Decision, 0, len(groups))
	for _, g := range groups {
		decision := Decide(g)
		if d.opts.Verify {
			decision = d.VerifyDecision(decision)
		}
		logDecision(decision)
		decisions = append(decisions, decision)
	}
	return decisions
}

// VerifyDecision 去掉内容与保留文件不一致（或无法比较）的删除项
func (d *Deduplicator) VerifyDecision(decision Decision) Decision {
	var deletions []Deletion
	for _, del := range decision.Deletions {
		same, err := Verify(d.fs, del.File.Path, del.DuplicateOf.Path)
		if err != nil {
			logger.Get().Warn().Err(err).Str("path", del.File.Path).Msg("逐字节校验失败，保留文件")
			decision.Kept = append(decision.Kept, del.File)
			continue
		}
		if !same {
			logger.Get().Warn().
				Str("path", del.File.Path).
				Str("duplicate_of", del.DuplicateOf.Path).
				Msg("内容不一致（指纹碰撞），保留文件")
			decision.Kept = append(decision.Kept, del.File)
			continue
		}
		deletions = append(deletions, del)
	}
	decision.Deletions = deletions
	return decision
}

func logDecision(decision Decision) {
	if e := logger.Get().Debug(); e.Enabled() {
		var members, deletes []string
		for _, m := range decision.Group.Members {
			members = append(members, m.Path)
		}
		for _, del := range decision.Deletions {
			deletes = append(deletes, del.File.Path)
		}
		e.Str("fingerprint", decision.Group.Fingerprint.String()).
			Strs("members", members).
			Strs("delete", deletes).
			Msg("重复组决策")
	}
}
