package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moyu-x/rmdup/pkg/deduplicator"
	"github.com/moyu-x/rmdup/pkg/logger"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.state = StateCancelled
			return m, tea.Quit
		case "enter":
			return m.handleEnterKey()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}

	if m.state != StateReview {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) handleEnterKey() (tea.Model, tea.Cmd) {
	if m.state != StateReview {
		return m, nil
	}

	group := m.groups[m.index]
	sel, err := deduplicator.ParseSelection(m.input.Value(), len(m.members))
	if err != nil {
		m.err = err
		m.input.Reset()
		return m, nil
	}

	decision, err := deduplicator.Select(group, sel)
	if err != nil {
		m.err = err
		m.input.Reset()
		return m, nil
	}

	logger.Get().Debug().
		Int("group", m.index+1).
		Str("input", m.input.Value()).
		Int("selected", len(decision.Deletions)).
		Msg("交互选择")

	m.err = nil
	m.decisions = append(m.decisions, decision)
	m.index++

	if m.index >= len(m.groups) {
		m.state = StateComplete
		return m, tea.Quit
	}

	m.loadGroup()
	return m, nil
}
