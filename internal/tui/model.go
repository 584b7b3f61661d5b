// Package tui is the interactive course browser: a search box over the
// viewer's course collection with enroll and delete actions.
package tui

import (
	"context"
	"fmt"
	"strings"

	"course-catalog-go/internal/catalog"
	"course-catalog-go/internal/model"
	"course-catalog-go/internal/notifications"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type fetchedMsg struct {
	err error
}

type mutatedMsg struct {
	done string
	err  error
}

type Model struct {
	ctx     context.Context
	catalog *catalog.Catalog
	user    model.User

	search textinput.Model
	view   catalog.View
	cursor int
	width  int

	// busy is set while a mutation is outstanding; action keys are ignored
	// until it completes.
	busy          bool
	confirmDelete bool

	status    string
	statusErr bool
}

func New(ctx context.Context, c *catalog.Catalog, user model.User) Model {
	search := textinput.New()
	search.Placeholder = "Search your courses..."
	search.Prompt = "🔍 "
	search.CharLimit = 120
	search.Focus()

	return Model{
		ctx:     ctx,
		catalog: c,
		user:    user,
		search:  search,
		view:    c.View(),
		width:   80,
	}
}

// Run starts the browser in the alternate screen and blocks until the user
// quits.
func Run(ctx context.Context, c *catalog.Catalog, user model.User) error {
	program := tea.NewProgram(New(ctx, c, user), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetch(""))
}

func (m Model) fetch(term string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.catalog.Search(m.ctx, term)
		return fetchedMsg{err: err}
	}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		_, err := m.catalog.Refresh(m.ctx)
		return fetchedMsg{err: err}
	}
}

func (m Model) toggle(course model.Course) tea.Cmd {
	return func() tea.Msg {
		err := m.catalog.ToggleEnrollment(m.ctx, course)
		done := fmt.Sprintf("Enrolled in %s", course.Title)
		if course.IsEnrolled {
			done = fmt.Sprintf("Unenrolled from %s", course.Title)
		}
		return mutatedMsg{done: done, err: err}
	}
}

func (m Model) remove(course model.Course) tea.Cmd {
	return func() tea.Msg {
		err := m.catalog.Delete(m.ctx, course.ID)
		return mutatedMsg{done: fmt.Sprintf("Deleted %s", course.Title), err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case fetchedMsg:
		m.view = m.catalog.View()
		m.clampCursor()
		if msg.err != nil {
			m.setError(msg.err)
		}
		return m, nil

	case mutatedMsg:
		m.busy = false
		m.view = m.catalog.View()
		m.clampCursor()
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.status, m.statusErr = msg.done, false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.confirmDelete {
		m.confirmDelete = false
		course, ok := m.selected()
		if ok && (msg.String() == "y" || msg.String() == "Y") && !m.busy {
			m.busy = true
			m.status, m.statusErr = fmt.Sprintf("Deleting %s...", course.Title), false
			return m, m.remove(course)
		}
		m.status, m.statusErr = "Delete cancelled", false
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.cursor < len(m.view.Courses)-1 {
			m.cursor++
		}
		return m, nil

	case tea.KeyEnter:
		course, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		m.status, m.statusErr = "Updating enrollment...", false
		return m, m.toggle(course)

	case tea.KeyCtrlD:
		course, ok := m.selected()
		if !ok || m.busy {
			return m, nil
		}
		m.confirmDelete = true
		m.status, m.statusErr = fmt.Sprintf("Delete %s? (y/n)", course.Title), false
		return m, nil

	case tea.KeyCtrlR:
		if m.busy {
			return m, nil
		}
		m.view.Status = catalog.Loading
		return m, m.refresh()
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if term := m.search.Value(); term != before {
		m.view.Status = catalog.Loading
		m.cursor = 0
		return m, tea.Batch(cmd, m.fetch(term))
	}

	return m, cmd
}

func (m Model) selected() (model.Course, bool) {
	if m.view.Status != catalog.Populated || m.cursor >= len(m.view.Courses) {
		return model.Course{}, false
	}
	return m.view.Courses[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.view.Courses) {
		m.cursor = len(m.view.Courses) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = notifications.Message(err), true
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("My Courses")
	if m.user.Email != "" {
		header += "  " + mutedStyle.Render("signed in as "+m.user.DisplayName())
	}
	b.WriteString(header + "\n\n")
	b.WriteString(m.search.View() + "\n\n")

	switch m.view.Status {
	case catalog.Loading:
		b.WriteString(mutedStyle.Render("Loading courses...") + "\n")
	case catalog.Empty:
		if !m.view.Loaded {
			b.WriteString(mutedStyle.Render("Could not load courses, press ctrl+r to retry") + "\n")
		} else if m.view.Search == "" {
			b.WriteString(mutedStyle.Render("You haven't created any courses yet") + "\n")
		} else {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("No courses match %q", m.view.Search)) + "\n")
		}
	default:
		for i, course := range m.view.Courses {
			b.WriteString(renderCard(course, i == m.cursor, m.cardWidth()) + "\n")
		}
	}

	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("↑/↓ select • enter enroll/unenroll • ctrl+d delete • ctrl+r refresh • esc quit"))
	return b.String()
}

func (m Model) cardWidth() int {
	width := m.width - 4
	if width > 80 {
		width = 80
	}
	if width < 30 {
		width = 30
	}
	return width
}
