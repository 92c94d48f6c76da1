package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moyu-x/rmdup/pkg/deduplicator"
	"github.com/moyu-x/rmdup/pkg/scanner"
)

type State int

const (
	StateReview State = iota
	StateComplete
	StateCancelled
)

type model struct {
	state     State
	groups    []*deduplicator.DuplicateGroup
	index     int
	members   []scanner.FileRecord
	decisions []deduplicator.Decision
	input     textinput.Model
	width     int
	err       error
}

func newModel(groups []*deduplicator.DuplicateGroup) *model {
	input := textinput.New()
	input.Placeholder = "a / n / 2,3"
	input.Prompt = "> "
	input.PromptStyle = focusedPromptStyle
	input.TextStyle = textStyle
	input.Focus()

	m := &model{
		state:  StateReview,
		groups: groups,
		input:  input,
	}
	if len(groups) == 0 {
		m.state = StateComplete
	} else {
		m.loadGroup()
	}
	return m
}

// loadGroup 按修改时间升序展示当前组，序号与 ParseSelection 一致
func (m *model) loadGroup() {
	m.members = deduplicator.SortOldestFirst(m.groups[m.index].Members)
	m.input.Reset()
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}
