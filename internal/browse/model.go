// Package browse is a terminal browser for a generated article index.
package browse

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/folio/internal/article"
	"github.com/pfassina/folio/internal/theme"
)

// RecordsMsg replaces the records being browsed.
type RecordsMsg struct {
	Records []article.Record
	Source  string
}

// ErrMsg reports a failure to load records.
type ErrMsg struct{ Err error }

// LoadFunc loads the records to browse.
type LoadFunc func() ([]article.Record, error)

// Model is the Bubble Tea model for the article browser.
type Model struct {
	input    textinput.Model
	records  []article.Record
	visible  []int
	cursor   int
	offset   int
	detail   bool
	width    int
	height   int
	source   string
	err      error
	load     LoadFunc
	theme    *theme.Theme
	renderer *lipgloss.Renderer
	quitting bool
}

// New creates a browser over recs. source labels the status bar.
func New(recs []article.Record, source string) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter articles (#tag for tags only)"
	ti.CharLimit = 256
	ti.Prompt = "/ "
	ti.Focus()

	th := theme.DefaultTheme()
	m := Model{
		input:    ti,
		source:   source,
		theme:    &th,
		renderer: lipgloss.DefaultRenderer(),
	}
	m.setRecords(recs)
	return m
}

// NewWithLoader creates a browser that loads its records on Init.
func NewWithLoader(load LoadFunc, source string) Model {
	m := New(nil, source)
	m.load = load
	return m
}

// SetOutput renders styles for w instead of stdout.
func (m *Model) SetOutput(w io.Writer) {
	m.renderer = lipgloss.NewRenderer(w)
}

// SetTheme sets the color theme.
func (m *Model) SetTheme(th *theme.Theme) { m.theme = th }

func (m *Model) setRecords(recs []article.Record) {
	m.records = recs
	m.refilter()
}

func (m *Model) refilter() {
	m.visible = Filter(m.records, m.input.Value())
	m.cursor = 0
	m.offset = 0
	if len(m.visible) == 0 {
		m.detail = false
	}
}

// Selected returns the record under the cursor.
func (m Model) Selected() (article.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return article.Record{}, false
	}
	return m.records[m.visible[m.cursor]], true
}

// Visible returns the number of records passing the filter.
func (m Model) Visible() int { return len(m.visible) }

func (m Model) Init() tea.Cmd {
	if m.load == nil {
		return textinput.Blink
	}
	load, source := m.load, m.source
	return tea.Batch(textinput.Blink, func() tea.Msg {
		recs, err := load()
		if err != nil {
			return ErrMsg{Err: err}
		}
		return RecordsMsg{Records: recs, Source: source}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case RecordsMsg:
		m.err = nil
		if msg.Source != "" {
			m.source = msg.Source
		}
		m.setRecords(msg.Records)
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "esc":
			switch {
			case m.detail:
				m.detail = false
			case m.input.Value() != "":
				m.input.SetValue("")
				m.refilter()
			default:
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case "enter", "tab":
			if len(m.visible) > 0 {
				m.detail = !m.detail
			}
			return m, nil

		case "up", "ctrl+p", "ctrl+k":
			m.move(-1)
			return m, nil

		case "down", "ctrl+n", "ctrl+j":
			m.move(1)
			return m, nil

		case "pgup":
			m.move(-m.listHeight())
			return m, nil

		case "pgdown":
			m.move(m.listHeight())
			return m, nil
		}
	}

	var cmd tea.Cmd
	prev := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.refilter()
	}
	return m, cmd
}

func (m *Model) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}

	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// listHeight is the number of rows available for the result list.
func (m Model) listHeight() int {
	h := m.height - 4 // input, blank line, status bar, margin
	if m.detail {
		h -= detailHeight
	}
	if h < 3 {
		h = 3
	}
	return h
}

const detailHeight = 9

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.listView(width))
	if m.detail {
		if rec, ok := m.Selected(); ok {
			b.WriteString("\n")
			b.WriteString(m.detailView(rec, width))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.statusView(width))
	return b.String()
}

func (m Model) listView(width int) string {
	th := m.theme
	r := m.renderer
	dim := r.NewStyle().Foreground(th.Dim)

	if m.err != nil {
		return r.NewStyle().Foreground(th.Error).Render("Error: " + m.err.Error())
	}
	if len(m.visible) == 0 {
		if len(m.records) == 0 {
			return dim.Render("No articles")
		}
		return dim.Render("No matches")
	}

	normal := r.NewStyle().Foreground(th.Text)
	selected := r.NewStyle().Foreground(th.Accent).Bold(true)
	date := r.NewStyle().Foreground(th.Subtle)

	h := m.listHeight()
	var lines []string
	for i := m.offset; i < len(m.visible) && i < m.offset+h; i++ {
		rec := m.records[m.visible[i]]
		prefix, style := "  ", normal
		if i == m.cursor {
			prefix, style = "> ", selected
		}

		d := rec.Date
		if d == "" {
			d = "----------"
		}
		title := truncate(rec.Title, width-lipgloss.Width(d)-4)
		lines = append(lines, prefix+date.Render(d)+" "+style.Render(title))
	}

	if rest := len(m.visible) - (m.offset + h); rest > 0 {
		lines = append(lines, dim.Render(fmt.Sprintf("  ... and %d more", rest)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) detailView(rec article.Record, width int) string {
	th := m.theme
	r := m.renderer
	inner := width - 4

	label := r.NewStyle().Foreground(th.Subtle)
	tag := r.NewStyle().Foreground(th.Tag)

	lines := []string{
		r.NewStyle().Bold(true).Foreground(th.Accent).Render(truncate(rec.Title, inner)),
		label.Render("date       ") + rec.Date,
		label.Render("permalink  ") + truncate(rec.Permalink, inner-11),
	}
	if rec.Author != "" {
		lines = append(lines, label.Render("author     ")+rec.Author)
	}
	lines = append(lines,
		label.Render("tags       ")+tag.Render(joinList(rec.Tags)),
		label.Render("categories ")+tag.Render(joinList(rec.Categories)),
		"",
		r.NewStyle().Foreground(th.Text).Width(inner).Render(rec.Excerpt),
	)

	return r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Border).
		Padding(0, 1).
		Width(inner).
		Render(strings.Join(lines, "\n"))
}

func (m Model) statusView(width int) string {
	th := m.theme
	r := m.renderer
	bar := r.NewStyle().Background(th.StatusBg).Foreground(th.StatusFg).Padding(0, 1)

	left := bar.Render(m.source)
	right := bar.Render(fmt.Sprintf("%d/%d", len(m.visible), len(m.records)))

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 0 {
		pad = 0
	}
	return left + r.NewStyle().Background(th.StatusBg).Render(strings.Repeat(" ", pad)) + right
}

func joinList(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}

// truncate shortens s to at most n runes, ending in "...".
func truncate(s string, n int) string {
	if n <= 3 {
		n = 3
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
