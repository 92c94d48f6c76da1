package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moyu-x/rmdup/pkg/deduplicator"
	"github.com/moyu-x/rmdup/pkg/logger"
)

// ErrCancelled 用户在交互界面中取消
var ErrCancelled = errors.New("interactive review cancelled")

// Run 逐组让用户选择要删除的文件，返回每组的决策
// 用户取消时返回 ErrCancelled，此时不应删除任何文件
func Run(ctx context.Context, groups []*deduplicator.DuplicateGroup, in io.Reader, out io.Writer) ([]deduplicator.Decision, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	logger.Get().Info().Int("groups", len(groups)).Msg("启动交互界面")

	m := newModel(groups)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		logger.Get().Error().Err(err).Msg("交互界面运行错误")
		return nil, err
	}

	result, ok := final.(*model)
	if !ok || result.state != StateComplete {
		logger.Get().Info().Msg("交互界面已取消")
		return nil, ErrCancelled
	}

	logger.Get().Info().Int("decisions", len(result.decisions)).Msg("交互界面正常退出")
	return result.decisions, nil
}
