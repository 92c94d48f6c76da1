package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/moyu-x/rmdup/pkg/sizeunit"
)

func (m *model) View() string {
	switch m.state {
	case StateReview:
		return m.reviewView()
	case StateComplete:
		return m.completeView()
	case StateCancelled:
		return hintStyle.Render("已取消，不会删除任何文件") + "\n"
	default:
		return "未知状态"
	}
}

func (m *model) reviewView() string {
	var b strings.Builder

	group := m.groups[m.index]
	title := fmt.Sprintf("重复文件组 %d/%d  %s × %d",
		m.index+1, len(m.groups), sizeunit.Format(group.Size()), len(group.Members))
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 60)) + "\n")

	for i, f := range m.members {
		line := fmt.Sprintf("  %2d. %s  %s",
			i+1, f.ModTime.Format("2006-01-02 15:04:05"), filePathStyle.Render(f.Path))
		if i == 0 {
			line += " " + oldestStyle.Render("[最旧]")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + labelStyle.Render("选择要删除的文件：") + "\n")
	b.WriteString(m.input.View() + "\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("输入无效: "+m.err.Error()) + "\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", 60)) + "\n")
	b.WriteString(hintStyle.Render("操作提示：") + "\n")
	b.WriteString("  • a 删除除最旧文件外的全部\n")
	b.WriteString("  • n 或直接回车 保留全部\n")
	b.WriteString("  • 序号（如 2,3）删除指定文件\n")
	b.WriteString("  • Ctrl+C 取消\n")

	return lipgloss.NewStyle().
		Padding(1).
		Render(b.String())
}

func (m *model) completeView() string {
	selected := 0
	var bytes uint64
	for _, d := range m.decisions {
		selected += len(d.Deletions)
		bytes += d.Group.Size() * uint64(len(d.Deletions))
	}
	return fmt.Sprintf("已选择 %d 个文件，共 %s\n", selected, sizeunit.Format(bytes))
}
