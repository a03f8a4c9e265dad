package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/bizflow/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var main string
	switch m.mode {
	case ModeHelp:
		main = m.renderHelp()
	case ModeDetail, ModeComment:
		main = lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.renderDetail())
	case ModeAddTask:
		main = lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.renderModal())
	default:
		main = m.renderBoard()
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderBoard() string {
	colWidth := clamp(m.width/len(model.Statuses)-2, 16, 48)

	cols := make([]string, 0, len(model.Statuses))
	for i, status := range model.Statuses {
		cols = append(cols, m.renderColumn(i, status, colWidth))
	}

	title := "BizFlow"
	if m.project != "" {
		title += " · " + m.project
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render(title),
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
	)
}

func (m Model) renderColumn(i int, status model.Status, width int) string {
	tasks := m.columns[i]

	var b strings.Builder
	header := fmt.Sprintf("%s (%d)", status.Title(), len(tasks))
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColumnColor(status)).Render(header))
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(HelpStyle.Render("empty"))
	}

	for ri, t := range tasks {
		style := CardStyle
		cursor := "  "
		if i == m.col && ri == m.row {
			style = CardSelectedStyle
			cursor = "❯ "
		}
		if t.Status == model.StatusDone && !(i == m.col && ri == m.row) {
			style = CardDoneStyle
		}

		line := fmt.Sprintf("%s#%d %s", cursor, t.ID, truncate(t.Name, width-12))
		b.WriteString(FormatPriority(t.Priority) + style.Render(line))
		if done, total := t.SubtaskProgress(); total > 0 {
			b.WriteString(HelpStyle.Render(fmt.Sprintf(" %d/%d", done, total)))
		}
		b.WriteString("\n")
	}

	style := ColumnStyle
	if i == m.col {
		style = ColumnFocusedStyle
	}
	return style.Width(width).Height(clamp(m.height-6, 5, 200)).Render(b.String())
}

func (m Model) renderDetail() string {
	t := m.currentTask()
	if t == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(fmt.Sprintf("#%d %s", t.ID, t.Name)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s", FormatPriority(t.Priority), HelpStyle.Render(t.Status.Title()))
	if t.Project != "" {
		b.WriteString(HelpStyle.Render("  · " + t.Project))
	}
	if t.DueDate != "" {
		b.WriteString(HelpStyle.Render("  · due " + t.DueDate))
	}
	b.WriteString("\n\n")

	if t.Description != "" {
		b.WriteString(t.Description + "\n\n")
	}

	if len(t.Subtasks) > 0 {
		done, total := t.SubtaskProgress()
		b.WriteString(fmt.Sprintf("Subtasks %d/%d\n", done, total))
		for i, st := range t.Subtasks {
			cursor := "  "
			if i == m.subCursor {
				cursor = "❯ "
			}
			icon := "[ ]"
			if st.Completed {
				icon = "[x]"
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, icon, st.Name))
		}
		b.WriteString("\n")
	}

	if len(t.Tags) > 0 {
		b.WriteString(HelpStyle.Render("#"+strings.Join(t.Tags, " #")) + "\n\n")
	}

	for _, c := range t.Comments {
		b.WriteString(HelpStyle.Render(c.Timestamp.Format("01-02 15:04")+" "+c.Author+": ") + c.Text + "\n")
	}

	if m.mode == ModeComment {
		b.WriteString("\n" + m.input.View() + "\n")
		b.WriteString(HelpStyle.Render("Enter:save  Esc:cancel"))
	} else {
		b.WriteString("\n" + HelpStyle.Render("x:toggle  c:comment  H/L:move  Esc:back"))
	}

	return ModalStyle.Width(clamp(m.width-10, 30, 80)).Render(b.String())
}

func (m Model) renderModal() string {
	title := "Add Task"
	if m.project != "" {
		title = fmt.Sprintf("Add Task to: %s", m.project)
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderStatusBar() string {
	help := "h/l:column  j/k:card  H/L:move  enter:details  a:add  D:dup  d:del  ?:help  q:quit"
	if m.message != "" {
		help = m.message
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Board                   │
│  ─────                   │
│  h/l     Switch column   │
│  j/k     Select card     │
│  H/L     Move task       │
│  Enter   Task details    │
│  a       Add task        │
│  D       Duplicate       │
│  d       Delete          │
│  r       Refresh         │
│                          │
│  Details                 │
│  ───────                 │
│  x       Toggle subtask  │
│  c       Comment         │
│  Esc     Back            │
│                          │
│  ?       Toggle help     │
│  q       Quit            │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}
