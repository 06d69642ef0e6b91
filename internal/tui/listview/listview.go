// ABOUTME: Generic paginated table view shared by the list screens
// ABOUTME: bubbles table for rows, textinput for the search bar, spinner while loading

package listview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/listing"
	"github.com/interntrack/admin-cli/internal/tui/icons"
	"github.com/interntrack/admin-cli/internal/tui/styles"
)

// chrome is the lines around the table: search bar, blank, footer, blank
const chrome = 4

// Column describes one table column
type Column[T any] struct {
	Title string
	Width int
	// SortKey is the backend sort_by value; empty when not sortable
	SortKey string
	Value   func(T) string
}

// Model renders a listing.State as a table
type Model[T any] struct {
	columns []Column[T]
	table   table.Model
	search  textinput.Model
	spinner spinner.Model

	state      listing.State[T]
	sort       listing.Sort
	sortCursor int
	width      int
	height     int
}

// New creates a table with a search bar
func New[T any](columns []Column[T], placeholder string) *Model[T] {
	search := textinput.New()
	search.Prompt = icons.Search.String() + " "
	search.Placeholder = placeholder
	search.CharLimit = 100

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	st.Selected = st.Selected.
		Foreground(styles.Text).
		Background(styles.Surface).
		Bold(false)

	m := &Model[T]{
		columns: columns,
		table:   table.New(table.WithFocused(true), table.WithStyles(st)),
		search:  search,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
	}
	for i, c := range columns {
		if c.SortKey != "" {
			m.sortCursor = i
			break
		}
	}
	m.table.SetColumns(m.tableColumns())
	return m
}

// Init starts the spinner
func (m *Model[T]) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model[T]) tableColumns() []table.Column {
	cols := make([]table.Column, len(m.columns))
	for i, c := range m.columns {
		title := c.Title
		if c.SortKey != "" && c.SortKey == m.sort.Key {
			if m.sort.Direction == listing.Desc {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		if i == m.sortCursor && c.SortKey != "" {
			title = "›" + title
		}
		cols[i] = table.Column{Title: title, Width: c.Width}
	}
	return cols
}

// SetState replaces the rows and the active sort
func (m *Model[T]) SetState(st listing.State[T], sort listing.Sort) {
	m.state = st
	m.sort = sort
	rows := make([]table.Row, 0, len(st.Rows))
	for _, r := range st.Rows {
		row := make(table.Row, len(m.columns))
		for i, c := range m.columns {
			row[i] = c.Value(r)
		}
		rows = append(rows, row)
	}
	m.table.SetColumns(m.tableColumns())
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// SetSize fits the table to the content area
func (m *Model[T]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-chrome, 3))
	m.search.Width = max(width-4, 10)
}

// Update routes keys to the search bar while it has focus, otherwise to the
// table. Spinner ticks are always handled.
func (m *Model[T]) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	if m.search.Focused() {
		m.search, cmd = m.search.Update(msg)
		return cmd
	}
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// FocusSearch moves key input to the search bar
func (m *Model[T]) FocusSearch() tea.Cmd {
	m.table.Blur()
	return m.search.Focus()
}

// BlurSearch returns key input to the table
func (m *Model[T]) BlurSearch() {
	m.search.Blur()
	m.table.Focus()
}

// Searching reports whether the search bar has focus
func (m *Model[T]) Searching() bool { return m.search.Focused() }

// Search returns the search bar text
func (m *Model[T]) Search() string { return m.search.Value() }

// SetSearch replaces the search bar text
func (m *Model[T]) SetSearch(s string) { m.search.SetValue(s) }

// Selected returns the row under the cursor
func (m *Model[T]) Selected() (T, bool) {
	var zero T
	i := m.table.Cursor()
	if i < 0 || i >= len(m.state.Rows) {
		return zero, false
	}
	return m.state.Rows[i], true
}

// NextSortColumn moves the sort cursor to the next sortable column
func (m *Model[T]) NextSortColumn() {
	for step := 1; step <= len(m.columns); step++ {
		i := (m.sortCursor + step) % len(m.columns)
		if m.columns[i].SortKey != "" {
			m.sortCursor = i
			break
		}
	}
	m.table.SetColumns(m.tableColumns())
}

// SortKey is the backend key of the column under the sort cursor
func (m *Model[T]) SortKey() string {
	if m.sortCursor < len(m.columns) {
		return m.columns[m.sortCursor].SortKey
	}
	return ""
}

// PrevLink and NextLink are the paginator's first and last entries, which
// the backend fills with the previous and next page URLs
func PrevLink(links []client.PageLink) *string {
	if len(links) < 2 {
		return nil
	}
	return links[0].URL
}

func NextLink(links []client.PageLink) *string {
	if len(links) < 2 {
		return nil
	}
	return links[len(links)-1].URL
}

// Footer is the range line under the table
func Footer[T any](st listing.State[T]) string {
	if st.Total == 0 {
		return "No results"
	}
	out := fmt.Sprintf("Showing %d-%d of %s", st.From, st.To, humanize.Comma(int64(st.Total)))
	if st.Page > 0 {
		out += fmt.Sprintf(" · page %d", st.Page)
	}
	return out
}

// View renders the search bar, table, and footer
func (m *Model[T]) View() string {
	var sb strings.Builder
	sb.WriteString(m.search.View())
	sb.WriteString("\n\n")

	if m.state.Loading && len(m.state.Rows) == 0 {
		sb.WriteString(m.spinner.View() + " Loading...")
		return sb.String()
	}
	sb.WriteString(m.table.View())
	sb.WriteString("\n")

	footer := styles.Subtitle.Render(Footer(m.state))
	if m.state.Loading {
		footer = m.spinner.View() + " " + footer
	}
	var nav []string
	if PrevLink(m.state.Links) != nil {
		nav = append(nav, styles.KeyStyle.Render("p")+" prev")
	}
	if NextLink(m.state.Links) != nil {
		nav = append(nav, styles.KeyStyle.Render("n")+" next")
	}
	if len(nav) > 0 {
		footer += "  " + strings.Join(nav, "  ")
	}
	sb.WriteString(footer)
	return sb.String()
}
