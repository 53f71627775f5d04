// Package tui provides an interactive terminal search over the
// retrieval index: type a query, browse the ranked passages, open the
// citation details inline.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driving"
)

const resultLimit = 10

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	detailStyle   = lipgloss.NewStyle().PaddingLeft(4)
)

// searchDone carries a finished query back into the update loop.
type searchDone struct {
	results []domain.RetrievedChunk
	err     error
}

// Model is the bubbletea model for the search screen.
type Model struct {
	retriever driving.Retriever
	ctx       context.Context

	input     textinput.Model
	results   []domain.RetrievedChunk
	selected  int
	searching bool
	searched  bool
	expanded  bool
	err       error
	width     int
	height    int
}

// NewModel creates the search screen model.
func NewModel(ctx context.Context, retriever driving.Retriever) Model {
	input := textinput.New()
	input.Placeholder = "Search collected content..."
	input.Focus()
	input.CharLimit = 256

	return Model{
		retriever: retriever,
		ctx:       ctx,
		input:     input,
		width:     80,
		height:    24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case searchDone:
		m.searching = false
		m.searched = true
		m.results = msg.results
		m.err = msg.err
		m.selected = 0
		m.expanded = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.expanded {
			m.expanded = false
			return m, nil
		}
		if !m.input.Focused() {
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, tea.Quit

	case "q":
		if !m.input.Focused() {
			return m, tea.Quit
		}

	case "enter":
		if m.input.Focused() {
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}
			m.searching = true
			m.err = nil
			m.input.Blur()
			return m, m.search(query)
		}
		if len(m.results) > 0 {
			m.expanded = !m.expanded
		}
		return m, nil

	case "up", "k":
		if !m.input.Focused() && m.selected > 0 {
			m.selected--
			m.expanded = false
		}
		return m, nil

	case "down", "j":
		if !m.input.Focused() && m.selected < len(m.results)-1 {
			m.selected++
			m.expanded = false
		}
		return m, nil

	case "/":
		if !m.input.Focused() {
			m.input.Focus()
			return m, textinput.Blink
		}
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// search runs the query off the update loop.
func (m Model) search(query string) tea.Cmd {
	retriever := m.retriever
	ctx := m.ctx
	return func() tea.Msg {
		results, err := retriever.Query(ctx, query, resultLimit, domain.QueryFilters{})
		return searchDone{results: results, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("grantwatch"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.searching:
		b.WriteString(faintStyle.Render("Searching..."))
	case m.searched && len(m.results) == 0:
		b.WriteString(faintStyle.Render("No results found."))
	default:
		m.renderResults(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(faintStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderResults(b *strings.Builder) {
	for i := range m.results {
		chunk := m.results[i].Chunk

		title := chunk.Title
		if title == "" {
			title = chunk.URL
		}
		line := fmt.Sprintf("[%d] %s (%.2f)", i+1, title, m.results[i].Score)
		if i == m.selected && !m.input.Focused() {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")

		if m.expanded && i == m.selected {
			b.WriteString(detailStyle.Render(m.renderDetail(chunk)))
			b.WriteString("\n")
		}
	}
}

func (m Model) renderDetail(chunk domain.Chunk) string {
	var lines []string
	if chunk.Heading != "" {
		lines = append(lines, "Section: "+chunk.Heading)
	}
	lines = append(lines, chunk.URL)
	lines = append(lines, wrap(chunk.Text, max(20, m.width-8)))
	return strings.Join(lines, "\n")
}

func (m Model) helpLine() string {
	if m.input.Focused() {
		return "enter: search | esc: quit"
	}
	return "up/down: navigate | enter: details | /: new search | q: quit"
}

// wrap folds text at word boundaries to the given width.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteString("\n")
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}

// Run starts the interactive search screen and blocks until the user
// quits.
func Run(ctx context.Context, retriever driving.Retriever) error {
	program := tea.NewProgram(NewModel(ctx, retriever), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
