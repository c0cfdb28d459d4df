package memorycmder

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/smartread/pkg/memory"
)

type browseView int

const (
	viewList browseView = iota
	viewDetail
)

const (
	defaultWidth  = 100
	defaultHeight = 24
	sourceWidth   = 32
	dateWidth     = 16
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("214")).Bold(true)
)

type browseKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Sort  key.Binding
	Quit  key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Enter, k.Back, k.Sort, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Enter, k.Back}, {k.Sort, k.Quit}}
}

func defaultKeyMap() browseKeyMap {
	return browseKeyMap{
		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Enter: key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "open")),
		Back:  key.NewBinding(key.WithKeys("esc", "h"), key.WithHelp("esc", "back")),
		Sort:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type browseModel struct {
	userID      string
	memories    []memory.Memory
	newestFirst bool
	view        browseView
	cursor      int
	offset      int
	width       int
	height      int
	keys        browseKeyMap
	help        help.Model
}

func newBrowseModel(userID string, memories []memory.Memory) browseModel {
	m := browseModel{
		userID:      userID,
		memories:    slices.Clone(memories),
		newestFirst: true,
		view:        viewList,
		width:       defaultWidth,
		height:      defaultHeight,
		keys:        defaultKeyMap(),
		help:        help.New(),
	}
	m.sortMemories()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampOffset()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		if m.view == viewList && m.cursor < len(m.memories)-1 {
			m.cursor++
			m.clampOffset()
		}
	case key.Matches(msg, m.keys.Up):
		if m.view == viewList && m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}
	case key.Matches(msg, m.keys.Enter):
		if m.view == viewList && len(m.memories) > 0 {
			m.view = viewDetail
		}
	case key.Matches(msg, m.keys.Back):
		m.view = viewList
	case key.Matches(msg, m.keys.Sort):
		if m.view == viewList {
			m.newestFirst = !m.newestFirst
			m.sortMemories()
			m.cursor = 0
			m.offset = 0
		}
	}
	return m, nil
}

func (m *browseModel) sortMemories() {
	sort.SliceStable(m.memories, func(i, j int) bool {
		if m.newestFirst {
			return m.memories[i].CreatedAt.After(m.memories[j].CreatedAt)
		}
		return m.memories[i].CreatedAt.Before(m.memories[j].CreatedAt)
	})
}

// listRows is the number of memory rows that fit between header and help.
func (m browseModel) listRows() int {
	return max(m.height-6, 1)
}

func (m *browseModel) clampOffset() {
	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m browseModel) selected() (memory.Memory, bool) {
	if m.cursor < 0 || m.cursor >= len(m.memories) {
		return memory.Memory{}, false
	}
	return m.memories[m.cursor], true
}

func (m browseModel) View() string {
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	var b strings.Builder

	order := "newest first"
	if !m.newestFirst {
		order = "oldest first"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("smartread memories · %s", m.userID)))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d total · %s", len(m.memories), order)))
	b.WriteString("\n\n")

	if len(m.memories) == 0 {
		b.WriteString(mutedStyle.Render("No memories yet. Add a page with 'smartread add'."))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	textWidth := max(m.width-dateWidth-sourceWidth-6, 10)
	end := min(m.offset+m.listRows(), len(m.memories))
	for i := m.offset; i < end; i++ {
		mem := m.memories[i]
		row := fmt.Sprintf("%s  %s  %s",
			fitCell(formatDate(mem.CreatedAt), dateWidth),
			fitCell(memory.SourceURL(mem), sourceWidth),
			fitCell(mem.Text, textWidth),
		)
		if i == m.cursor {
			b.WriteString(highlightStyle.Render(row))
		} else {
			b.WriteString(valueStyle.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m browseModel) viewDetail() string {
	mem, ok := m.selected()
	if !ok {
		return m.viewList()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Memory " + mem.ID))
	b.WriteString("\n\n")
	b.WriteString(ansi.Wordwrap(mem.Text, max(m.width-4, 20), " "))
	b.WriteString("\n\n")

	writeField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(valueStyle.Render(ansi.Truncate(value, max(m.width-14, 10), "…")))
		b.WriteString("\n")
	}
	writeField("source", memory.SourceURL(mem))
	writeField("created", formatDate(mem.CreatedAt))
	for _, k := range slices.Sorted(maps.Keys(mem.Metadata)) {
		if k == "url" || k == "source_url" {
			continue
		}
		writeField(k, fmt.Sprint(mem.Metadata[k]))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// fitCell truncates or pads value to exactly width terminal cells.
func fitCell(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if ansi.StringWidth(value) > width {
		return ansi.Truncate(value, width, "…")
	}
	return value + strings.Repeat(" ", width-ansi.StringWidth(value))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
