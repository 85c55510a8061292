package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/nodestore/internal/cli/formatter"
	"github.com/alexanderramin/nodestore/internal/domain"
	"github.com/alexanderramin/nodestore/internal/repository"
	"github.com/alexanderramin/nodestore/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	var pf pageFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through nodes interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("browse needs a terminal; use 'node page' instead")
			}
			m := newBrowseModel(context.Background(), app.Nodes, pf.query(app.DefaultPageSize), app.now)
			return app.runProgram(m,
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&pf.size, "size", "s", 0, "Page size (default from config)")
	addFilterFlags(fs, &pf)
	pf.page = 1

	return cmd
}

type browseKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Detail  key.Binding
	Back    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Next:    key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next page")),
		Prev:    key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/p", "prev page")),
		Detail:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Detail, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Detail, k.Back},
		{k.Next, k.Prev, k.Refresh},
		{k.Help, k.Quit},
	}
}

// pageLoadedMsg carries the result of a page query.
type pageLoadedMsg struct {
	page domain.PageResult[*domain.Node]
	err  error
}

// browseModel pages through nodes with the same filters as 'node page'.
type browseModel struct {
	ctx   context.Context
	nodes service.NodeService
	query repository.PageQuery
	now   func() time.Time

	page    domain.PageResult[*domain.Node]
	cursor  int
	loading bool
	detail  bool
	err     error

	keys  browseKeyMap
	help  help.Model
	width int
}

func newBrowseModel(ctx context.Context, nodes service.NodeService, q repository.PageQuery, now func() time.Time) browseModel {
	if q.Page < 1 {
		q.Page = 1
	}
	return browseModel{
		ctx:     ctx,
		nodes:   nodes,
		query:   q,
		now:     now,
		loading: true,
		keys:    defaultBrowseKeys(),
		help:    help.New(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.load(m.query)
}

func (m browseModel) load(q repository.PageQuery) tea.Cmd {
	nodes, ctx := m.nodes, m.ctx
	return func() tea.Msg {
		page, err := nodes.Page(ctx, q)
		return pageLoadedMsg{page: page, err: err}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.page = msg.page
		m.query.Page = int(msg.page.Current)
		if m.cursor >= len(m.page.Records) {
			m.cursor = max(len(m.page.Records)-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m browseModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.detail {
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Detail) {
			m.detail = false
		}
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.page.Records)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Next):
		if m.page.HasNext() {
			return m.goTo(m.query.Page + 1)
		}
	case key.Matches(msg, m.keys.Prev):
		if m.query.Page > 1 {
			return m.goTo(min(m.query.Page-1, max(int(m.page.Pages), 1)))
		}
	case key.Matches(msg, m.keys.Refresh):
		return m.goTo(m.query.Page)
	case key.Matches(msg, m.keys.Detail):
		if m.cursor < len(m.page.Records) {
			m.detail = true
		}
	}
	return m, nil
}

func (m browseModel) goTo(page int) (tea.Model, tea.Cmd) {
	m.loading = true
	m.cursor = 0
	q := m.query
	q.Page = page
	return m, m.load(q)
}

func (m browseModel) selected() *domain.Node {
	if m.cursor < len(m.page.Records) {
		return m.page.Records[m.cursor]
	}
	return nil
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(formatter.Header("Nodes"))
	if filter := m.filterLabel(); filter != "" {
		b.WriteString("  " + formatter.Dim(filter))
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	case m.loading:
		b.WriteString(formatter.Dim("Loading...") + "\n")
	case m.detail && m.selected() != nil:
		b.WriteString(formatter.FormatNode(m.selected(), m.now()) + "\n")
	case len(m.page.Records) == 0:
		b.WriteString(formatter.Dim("No nodes found.") + "\n")
	default:
		now := m.now()
		for i, n := range m.page.Records {
			cursor := "  "
			name := formatter.StyleFg.Render(padRight(n.Name, 28))
			if i == m.cursor {
				cursor = formatter.StyleGreen.Render("▸ ")
				name = formatter.StyleBold.Render(padRight(n.Name, 28))
			}
			b.WriteString(fmt.Sprintf("%s%-20d %s  %s  %s  %s\n",
				cursor, n.ID, name,
				formatter.TypeBadge(padRight(n.Type, 12)),
				formatter.VersionBadge(n.Version),
				formatter.Dim(formatter.HumanTimestamp(n.UpdateTime, now)),
			))
		}
	}

	b.WriteString("\n")
	if !m.loading && m.err == nil {
		b.WriteString(formatter.PageFooter(m.page) + "\n")
	}
	b.WriteString(m.help.View(m.keys) + "\n")
	return b.String()
}

func (m browseModel) filterLabel() string {
	var parts []string
	if m.query.NameLike != "" {
		parts = append(parts, fmt.Sprintf("name~%q", m.query.NameLike))
	}
	if m.query.Type != "" {
		parts = append(parts, "type="+m.query.Type)
	}
	return strings.Join(parts, " ")
}

// padRight pads or truncates s to exactly width visible characters.
func padRight(s string, width int) string {
	s = formatter.Truncate(s, width)
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
