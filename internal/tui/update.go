package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
)

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask, ModeComment:
			return m.updateInput(msg)
		case ModeHelp:
			m.mode = ModeBoard
			return m, nil
		case ModeDetail:
			return m.handleDetailKeys(msg)
		}
		return m.handleBoardKeys(msg)
	}

	return m, nil
}

// handleBoardKeys handles key presses on the board
func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.row > 0 {
			m.row--
		}

	case key.Matches(msg, keys.Down):
		if m.row < len(m.columns[m.col])-1 {
			m.row++
		}

	case key.Matches(msg, keys.Left):
		m.col--
		m.clampCursor()

	case key.Matches(msg, keys.Right):
		m.col++
		m.clampCursor()

	case key.Matches(msg, keys.MoveLeft):
		m.handleMove(-1)

	case key.Matches(msg, keys.MoveRight):
		m.handleMove(1)

	case key.Matches(msg, keys.Enter):
		if m.currentTask() != nil {
			m.mode = ModeDetail
			m.subCursor = 0
		}

	case key.Matches(msg, keys.Add):
		return m.startInput(ModeAddTask, "New task name...")

	case key.Matches(msg, keys.Duplicate):
		m.handleDuplicate()

	case key.Matches(msg, keys.Delete):
		m.handleDelete()

	case key.Matches(msg, keys.Refresh):
		m.loadData()
		m.message = "Refreshed"

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

// handleDetailKeys handles key presses on the task detail view
func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task := m.currentTask()
	if task == nil {
		m.mode = ModeBoard
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Enter):
		m.mode = ModeBoard

	case key.Matches(msg, keys.Up):
		if m.subCursor > 0 {
			m.subCursor--
		}

	case key.Matches(msg, keys.Down):
		if m.subCursor < len(task.Subtasks)-1 {
			m.subCursor++
		}

	case key.Matches(msg, keys.Toggle):
		if m.subCursor < len(task.Subtasks) {
			m.handleToggleSubtask(task.ID, task.Subtasks[m.subCursor].ID)
		}

	case key.Matches(msg, keys.Comment):
		return m.startInput(ModeComment, "Comment...")

	case key.Matches(msg, keys.MoveLeft):
		m.handleMove(-1)

	case key.Matches(msg, keys.MoveRight):
		m.handleMove(1)
	}

	return m, nil
}

// handleMove moves the selected task one column; the store decides
// whether the move is allowed.
func (m *Model) handleMove(delta int) {
	task := m.currentTask()
	if task == nil {
		return
	}
	target := m.col + delta
	if target < 0 || target >= len(model.Statuses) {
		return
	}

	id := task.ID
	moved, err := m.store.UpdateStatus(context.Background(), id, model.Statuses[target])
	if err != nil {
		logger.Debug("Board move rejected", logger.F("id", id), logger.F("error", err))
		m.message = err.Error()
		return
	}

	m.loadData()
	m.focus(id)
	m.message = fmt.Sprintf("Moved #%d to %s", id, moved.Status)
}

func (m *Model) handleToggleSubtask(taskID int64, subtaskID int) {
	t, err := m.store.ToggleSubtask(context.Background(), taskID, subtaskID)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.loadData()
	m.focus(taskID)
	done, total := t.SubtaskProgress()
	m.message = fmt.Sprintf("Subtasks %d/%d", done, total)
}

func (m *Model) handleDuplicate() {
	task := m.currentTask()
	if task == nil {
		return
	}
	dup, err := m.store.DuplicateTask(context.Background(), task.ID)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.loadData()
	m.focus(dup.ID)
	m.message = fmt.Sprintf("Duplicated as #%d", dup.ID)
}

func (m *Model) handleDelete() {
	task := m.currentTask()
	if task == nil {
		return
	}
	id, name := task.ID, task.Name
	if err := m.store.DeleteTask(context.Background(), id); err != nil {
		m.message = err.Error()
		return
	}
	m.loadData()
	m.message = fmt.Sprintf("Deleted: %s", name)
}

func (m Model) startInput(mode Mode, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	back := ModeBoard
	if m.mode == ModeComment {
		back = ModeDetail
	}

	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = back
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := m.input.Value()
		mode := m.mode
		m.mode = back
		m.input.Blur()
		if value == "" {
			return m, nil
		}

		switch mode {
		case ModeAddTask:
			t, err := m.store.CreateTask(context.Background(), taskstore.TaskInput{Name: value, Project: m.project}, nil)
			if err != nil {
				m.message = fmt.Sprintf("Error adding task: %v", err)
				return m, nil
			}
			m.loadData()
			m.focus(t.ID)
			m.message = fmt.Sprintf("Added: %s", t.Name)

		case ModeComment:
			task := m.currentTask()
			if task == nil {
				return m, nil
			}
			id := task.ID
			if _, err := m.store.AddComment(context.Background(), id, m.author, value); err != nil {
				m.message = fmt.Sprintf("Error adding comment: %v", err)
				return m, nil
			}
			m.loadData()
			m.focus(id)
			m.message = "Comment added"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
