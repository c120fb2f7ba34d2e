// Package tui is the interactive terminal client: a conversation list, the
// open thread with a composer, and a user search that opens new
// conversations.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/directmsg/dmc/internal/chat"
)

const maxDropdownLines = 6

// Controller is what the model drives. *chat.Controller implements it.
type Controller interface {
	Start(ctx context.Context) error
	Select(ctx context.Context, id int64, name string) error
	Send(ctx context.Context, body string) (bool, error)
	SearchInput(text string)
	DismissSearch()
	ChooseResult(ctx context.Context, userID int64, username string) (int64, error)
}

var _ Controller = (*chat.Controller)(nil)

type focusArea int

const (
	focusList focusArea = iota
	focusComposer
	focusSearch
)

// actionDoneMsg reports the end of a user action. A failed action raises the
// alert.
type actionDoneMsg struct {
	action string
	err    error
}

// Model is the bubbletea model of the client.
type Model struct {
	ctl   Controller
	inbox *inbox
	me    string

	width  int
	height int
	focus  focusArea

	rows         []chat.ConversationRow
	cursor       int
	title        string
	thread       chat.ThreadView
	search       chat.SearchView
	searchCursor int
	sending      bool
	status       string
	alert        string

	composer  textinput.Model
	searchBox textinput.Model
	timeline  viewport.Model
	spinner   spinner.Model

	theme theme
}

func newModel(ctl Controller, box *inbox, me string) Model {
	composer := textinput.New()
	composer.Prompt = "> "
	composer.Placeholder = "Write a message"
	composer.CharLimit = chat.MaxBodyLength

	searchBox := textinput.New()
	searchBox.Prompt = "/ "
	searchBox.Placeholder = "Find a user"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true

	return Model{
		ctl:       ctl,
		inbox:     box,
		me:        me,
		focus:     focusList,
		title:     "Select a conversation",
		status:    "loading conversations...",
		composer:  composer,
		searchBox: searchBox,
		timeline:  timeline,
		spinner:   sp,
		theme:     newTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.inbox.wait(),
		m.spinner.Tick,
		m.actionCmd("load", func(ctx context.Context) error { return m.ctl.Start(ctx) }),
	)
}

func (m Model) actionCmd(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(context.Background())}
	}
}

func (m Model) selectCmd(row chat.ConversationRow) tea.Cmd {
	return m.actionCmd("select", func(ctx context.Context) error {
		return m.ctl.Select(ctx, row.ID, row.Name)
	})
}

func (m Model) sendCmd(body string) tea.Cmd {
	return m.actionCmd("send", func(ctx context.Context) error {
		_, err := m.ctl.Send(ctx, body)
		return err
	})
}

func (m Model) chooseCmd(entry chat.SearchEntry) tea.Cmd {
	return m.actionCmd("open", func(ctx context.Context) error {
		_, err := m.ctl.ChooseResult(ctx, entry.UserID, entry.Username)
		return err
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case conversationsMsg:
		m.setRows(msg.rows)
		cmds = append(cmds, m.inbox.wait())
	case titleMsg:
		m.title = msg.title
		cmds = append(cmds, m.inbox.wait())
	case threadMsg:
		m.thread = msg.thread
		m.renderTimeline()
		cmds = append(cmds, m.inbox.wait())
	case searchMsg:
		m.search = msg.view
		m.searchCursor = 0
		cmds = append(cmds, m.inbox.wait())
	case composerClearedMsg:
		m.composer.Reset()
		cmds = append(cmds, m.inbox.wait())
	case searchClearedMsg:
		m.searchBox.Reset()
		m.search = chat.SearchView{}
		cmds = append(cmds, m.inbox.wait())
	case sendingMsg:
		m.sending = msg.sending
		cmds = append(cmds, m.inbox.wait())
	case actionDoneMsg:
		if msg.err != nil {
			m.alert = alertText(msg.action, msg.err)
			m.status = msg.action + " failed"
			break
		}
		m.status = statusAfter(msg.action)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderTimeline()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd := m.handleKey(msg)
		return m, cmd
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.alert != "" {
		switch msg.String() {
		case "enter", "esc", " ":
			m.alert = ""
		}
		return nil
	}

	switch msg.String() {
	case "tab":
		return m.setFocus((m.focus + 1) % 3)
	case "shift+tab":
		return m.setFocus((m.focus + 2) % 3)
	}

	switch m.focus {
	case focusList:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.rows) {
				return m.selectCmd(m.rows[m.cursor])
			}
		case "/":
			return m.setFocus(focusSearch)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.timeline, cmd = m.timeline.Update(msg)
			return cmd
		case "q":
			return tea.Quit
		}
		return nil

	case focusComposer:
		switch msg.String() {
		case "enter":
			if m.sending {
				return nil
			}
			return m.sendCmd(m.composer.Value())
		case "esc":
			return m.setFocus(focusList)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.timeline, cmd = m.timeline.Update(msg)
			return cmd
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return cmd

	case focusSearch:
		switch msg.String() {
		case "esc":
			// Escape closes the dropdown and leaves the field.
			m.dismissSearch()
			m.focus = focusList
			m.searchBox.Blur()
			return nil
		case "up":
			if m.searchCursor > 0 {
				m.searchCursor--
			}
			return nil
		case "down":
			if m.searchCursor < len(m.search.Entries)-1 {
				m.searchCursor++
			}
			return nil
		case "enter":
			if m.searchCursor < len(m.search.Entries) {
				return m.chooseCmd(m.search.Entries[m.searchCursor])
			}
			return nil
		}
		before := m.searchBox.Value()
		var cmd tea.Cmd
		m.searchBox, cmd = m.searchBox.Update(msg)
		if m.searchBox.Value() != before {
			m.ctl.SearchInput(m.searchBox.Value())
		}
		return cmd
	}
	return nil
}

// handleMouse scrolls the thread, picks dropdown entries and conversation
// rows, and treats any other click as a click outside the search.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		return cmd
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.alert != "" {
		return nil
	}
	if msg.X < m.leftWidth() {
		if i := msg.Y - 2; i >= 0 && i < len(m.search.Entries) && i < maxDropdownLines {
			return m.chooseCmd(m.search.Entries[i])
		}
		if msg.Y == 1 {
			return m.setFocus(focusSearch)
		}
		if i := (msg.Y - m.listTop() - 1) / 2; msg.Y > m.listTop() && i < len(m.rows) {
			if m.search.Open() {
				m.dismissSearch()
			}
			m.setFocus(focusList)
			m.cursor = i
			return m.selectCmd(m.rows[i])
		}
	}
	if m.search.Open() {
		m.dismissSearch()
	}
	return nil
}

// listTop is the screen row of the conversation panel's top border, which
// sits below the header, the search box and whatever the dropdown shows.
func (m Model) listTop() int {
	top := 2
	if m.search.Empty() {
		top++
	}
	if n := len(m.search.Entries); n > maxDropdownLines {
		top += maxDropdownLines
	} else {
		top += n
	}
	return top
}

func (m *Model) dismissSearch() {
	m.search = chat.SearchView{}
	m.searchCursor = 0
	m.ctl.DismissSearch()
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	if m.focus == focusSearch && f != focusSearch && m.search.Open() {
		m.dismissSearch()
	}
	m.focus = f
	m.composer.Blur()
	m.searchBox.Blur()
	switch f {
	case focusComposer:
		return m.composer.Focus()
	case focusSearch:
		return m.searchBox.Focus()
	}
	return nil
}

func (m *Model) setRows(rows []chat.ConversationRow) {
	var selected int64
	if m.cursor < len(m.rows) {
		selected = m.rows[m.cursor].ID
	}
	m.rows = rows
	m.cursor = 0
	for i, r := range rows {
		if r.ID == selected {
			m.cursor = i
			break
		}
	}
}

func alertText(action string, err error) string {
	var verr *chat.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return fmt.Sprintf("%s failed: %s", action, err)
}

func statusAfter(action string) string {
	switch action {
	case "load":
		return "ready"
	case "send":
		return "sent"
	case "open":
		return "conversation opened"
	}
	return ""
}

func (m Model) leftWidth() int {
	return maxInt(24, m.width/3)
}

func (m *Model) resize() {
	rightWidth := maxInt(20, m.width-m.leftWidth())
	m.timeline.Width = maxInt(10, rightWidth-2)
	m.timeline.Height = maxInt(3, m.height-9)
	m.composer.Width = maxInt(10, rightWidth-6)
	m.searchBox.Width = maxInt(10, m.leftWidth()-4)
}

func (m *Model) renderTimeline() {
	if len(m.thread.Lines) == 0 {
		m.timeline.SetContent(m.theme.muted.Render("No messages yet."))
		return
	}
	width := maxInt(10, m.timeline.Width-2)
	var b strings.Builder
	for i, line := range m.thread.Lines {
		if i > 0 {
			b.WriteString("\n")
		}
		style := m.theme.other
		if line.Mine {
			style = m.theme.mine
		}
		b.WriteString(style.Width(width).Render(line.Body))
		b.WriteString("\n")
		b.WriteString(m.theme.muted.Render(line.Meta()))
		b.WriteString("\n")
	}
	m.timeline.SetContent(b.String())
	m.timeline.GotoBottom()
}

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderSearch(),
		m.renderList(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.title.Render(m.title),
		m.panelStyle(focusComposer).Render(m.timeline.View()),
		m.renderComposer(),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.leftWidth()).Render(left),
		right,
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m Model) panelStyle(f focusArea) lipgloss.Style {
	if m.focus == f {
		return m.theme.panelActive
	}
	return m.theme.panel
}

func (m Model) renderSearch() string {
	header := m.theme.header.Render("dmc")
	if m.me != "" {
		header += m.theme.muted.Render(" · " + m.me)
	}
	lines := []string{header, m.searchBox.View()}
	if m.search.Empty() {
		lines = append(lines, m.theme.dropdown.Render(m.theme.muted.Render(chat.NoResultsText)))
	}
	for i, entry := range m.search.Entries {
		if i == maxDropdownLines {
			break
		}
		text := m.theme.avatar.Render(entry.Initial) + " " + entry.Username
		if i == m.searchCursor && m.focus == focusSearch {
			text = m.theme.pick.Render("› ") + text
		}
		lines = append(lines, m.theme.dropdown.Render(text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderList() string {
	width := maxInt(10, m.leftWidth()-4)
	if len(m.rows) == 0 {
		return m.panelStyle(focusList).Width(width).Render(m.theme.muted.Render("No conversations"))
	}
	var lines []string
	for i, row := range m.rows {
		nameStyle := m.theme.row
		if i == m.cursor {
			nameStyle = m.theme.rowSelected
		}
		name := nameStyle.Render(row.Name)
		if row.ShowBadge() {
			name += " " + m.theme.badge.Render(fmt.Sprint(row.Unread))
		}
		lines = append(lines, name)
		lines = append(lines, m.theme.muted.Render(xansi.Truncate(row.Preview, width, "…")))
	}
	return m.panelStyle(focusList).Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderComposer() string {
	view := m.composer.View()
	if m.sending {
		view = m.spinner.View() + " sending... " + view
	}
	return m.panelStyle(focusComposer).Width(maxInt(10, m.width-m.leftWidth()-2)).Render(view)
}

func (m Model) renderFooter() string {
	if m.alert != "" {
		return m.theme.alert.Render(m.alert + "\n" + m.theme.help.Render("Enter to dismiss"))
	}
	status := m.theme.status.Render(m.status)
	help := m.theme.help.Render("Tab focus · Enter open/send · / search · Esc close search · Ctrl+C quit")
	return status + "\n" + help
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
