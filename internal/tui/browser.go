// Package tui implements the interactive terminal views of the hotel CLI.
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sternrassler/boutique-hotel-client/pkg/hotel"
	"github.com/Sternrassler/boutique-hotel-client/pkg/pagination"
)

const (
	defaultHeight = 24
	// Lines used by title, footer and help around the table.
	chromeHeight = 6
)

// RoomBrowser pages through rooms one page at a time.
type RoomBrowser struct {
	title    string
	pager    *pagination.Paginator[hotel.Room]
	table    table.Model
	keys     keyMap
	height   int
	quitting bool
}

// NewRoomBrowser returns a browser over pager.
func NewRoomBrowser(title string, pager *pagination.Paginator[hotel.Room]) RoomBrowser {
	m := RoomBrowser{
		title:  title,
		pager:  pager,
		keys:   defaultKeyMap(),
		height: defaultHeight,
	}

	m.table = table.New(
		table.WithColumns(roomColumns()),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	m.table.SetStyles(s)

	m.refresh()
	return m
}

func (m RoomBrowser) Init() tea.Cmd {
	return nil
}

func (m RoomBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.pager.NextPage()
		case key.Matches(msg, m.keys.Prev):
			m.pager.PrevPage()
		case key.Matches(msg, m.keys.First):
			m.pager.FirstPage()
		case key.Matches(msg, m.keys.Last):
			m.pager.LastPage()
		case key.Matches(msg, m.keys.Grow):
			if size := m.pager.PageSize(); size < math.MaxInt {
				m.pager.SetPageSize(size + 1)
			}
		case key.Matches(msg, m.keys.Shrink):
			if size := m.pager.PageSize(); size > 1 {
				m.pager.SetPageSize(size - 1)
			}
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m RoomBrowser) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render(Footer(m.pager.State())))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.helpLine()))
	return b.String()
}

// Page returns the page currently shown.
func (m RoomBrowser) Page() pagination.Page[hotel.Room] {
	return m.pager.State()
}

// refresh loads the current page into the table. The page is read through
// the paginator, so a source that shrank since the last key press is
// clamped before display.
func (m *RoomBrowser) refresh() {
	items := m.pager.Items()
	m.table.SetRows(roomRows(items))

	h := len(items) + 1
	if limit := m.height - chromeHeight; limit > 1 && h > limit {
		h = limit
	}
	m.table.SetHeight(h)
	if m.table.Cursor() >= len(items) {
		m.table.SetCursor(0)
	}
}

func (m RoomBrowser) helpLine() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// Footer describes a page, e.g. "page 2/3 · 12 items · 5 per page".
func Footer[T any](p pagination.Page[T]) string {
	return fmt.Sprintf("page %d/%d · %d items · %d per page", p.Page, p.TotalPages, p.TotalItems, p.PageSize)
}
