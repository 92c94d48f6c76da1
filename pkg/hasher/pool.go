package hasher

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/moyu-x/rmdup/pkg/logger"
	"github.com/moyu-x/rmdup/pkg/scanner"
)

type HashResult struct {
	File        scanner.FileRecord
	Fingerprint Fingerprint
	Err         error
}

type QuickResult struct {
	File  scanner.FileRecord
	Quick uint64
	Err   error
}

// HashPool 使用 goroutine 池并行计算指纹
// 结果按输入顺序返回，与完成顺序无关
type HashPool struct {
	workers int
	hasher  *Hasher
}

func NewHashPool(h *Hasher, workers int) *HashPool {
	if workers < 1 {
		workers = 1
	}
	logger.Get().Debug().Msgf("创建哈希计算池，工作线程数: %d", workers)
	return &HashPool{
		workers: workers,
		hasher:  h,
	}
}

// Fingerprints 计算每个文件的指纹，observer 需要是并发安全的
// ctx 取消后不再提交新任务，未处理的文件 Err 为 ctx.Err()
func (p *HashPool) Fingerprints(ctx context.Context, files []scanner.FileRecord, observer ProgressObserver) ([]HashResult, error) {
	results := make([]HashResult, len(files))
	for i, f := range files {
		results[i].File = f
	}

	err := p.run(ctx, len(files), func(i int) {
		results[i].Fingerprint, results[i].Err = p.hasher.Calculate(files[i].Path, observer)
	}, func(i int, err error) {
		results[i].Err = err
	})

	return results, err
}

// QuickHashes 计算每个文件首块的 xxHash
func (p *HashPool) QuickHashes(ctx context.Context, files []scanner.FileRecord) ([]QuickResult, error) {
	results := make([]QuickResult, len(files))
	for i, f := range files {
		results[i].File = f
	}

	err := p.run(ctx, len(files), func(i int) {
		results[i].Quick, results[i].Err = p.hasher.QuickHash(files[i].Path)
	}, func(i int, err error) {
		results[i].Err = err
	})

	return results, err
}

func (p *HashPool) run(ctx context.Context, n int, task func(i int), fail func(i int, err error)) error {
	if n == 0 {
		return ctx.Err()
	}

	pool, err := ants.NewPool(p.workers)
	if err != nil {
		logger.Get().Error().Err(err).Msg("创建 goroutine 池失败")
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			for j := i; j < n; j++ {
				fail(j, ctxErr)
			}
			break
		}

		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctxErr := ctx.Err(); ctxErr != nil {
				fail(i, ctxErr)
				return
			}
			task(i)
		})
		if submitErr != nil {
			wg.Done()
			fail(i, submitErr)
		}
	}

	wg.Wait()
	return ctx.Err()
}
