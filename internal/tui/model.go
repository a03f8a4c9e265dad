package tui

import (
	"sort"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeBoard Mode = iota
	ModeDetail
	ModeAddTask
	ModeComment
	ModeHelp
)

// Model is the kanban board
type Model struct {
	store   *taskstore.Store
	project string // empty shows every project
	author  string

	// One column per status, in model.Statuses order
	columns [][]model.Task

	// UI state
	width     int
	height    int
	mode      Mode
	col       int
	row       int
	subCursor int

	// Input
	input textinput.Model

	message string
}

// NewModel creates a board over store. project limits the board to one
// project; author signs comments added from the board.
func NewModel(store *taskstore.Store, project, author string) Model {
	logger.Info("Initializing board", logger.F("project", project))

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	if author == "" {
		author = "me"
	}

	m := Model{
		store:   store,
		project: project,
		author:  author,
		mode:    ModeBoard,
		input:   ti,
	}
	m.loadData()
	return m
}

// loadData regroups tasks into columns, most urgent first, then oldest.
func (m *Model) loadData() {
	m.columns = make([][]model.Task, len(model.Statuses))
	index := make(map[model.Status]int, len(model.Statuses))
	for i, s := range model.Statuses {
		index[s] = i
	}

	for _, t := range m.store.List(taskstore.Filter{Project: m.project}) {
		m.columns[index[t.Status]] = append(m.columns[index[t.Status]], t)
	}
	for _, c := range m.columns {
		sort.SliceStable(c, func(i, j int) bool {
			if c[i].Priority.Rank() != c[j].Priority.Rank() {
				return c[i].Priority.Rank() > c[j].Priority.Rank()
			}
			return c[i].ID < c[j].ID
		})
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.col < 0 {
		m.col = 0
	}
	if m.col >= len(m.columns) {
		m.col = len(m.columns) - 1
	}
	if n := len(m.columns[m.col]); m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m *Model) currentTask() *model.Task {
	c := m.columns[m.col]
	if m.row < len(c) {
		return &c[m.row]
	}
	return nil
}

// focus puts the cursor on task id, wherever it is now.
func (m *Model) focus(id int64) {
	for ci, c := range m.columns {
		for ri, t := range c {
			if t.ID == id {
				m.col, m.row = ci, ri
				return
			}
		}
	}
}
