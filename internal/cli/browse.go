package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yoockh/visadesk/internal/adminlist"
	"github.com/yoockh/visadesk/internal/models"
)

type browseState int

const (
	stateLoading browseState = iota
	stateLoaded
	stateError
)

type loadFunc func(ctx context.Context) ([]models.VisaRecord, error)

type recordsLoadedMsg struct{ records []models.VisaRecord }
type loadFailedMsg struct{ err error }

var searchFields = []adminlist.SearchField{
	adminlist.FieldFullName,
	adminlist.FieldNationality,
	adminlist.FieldPassportNumber,
}

type browseKeys struct {
	Up, Down, Prev, Next, Search, Field, Escape, Quit key.Binding
}

var browseKeyMap = browseKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
	Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
	Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Field:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "search field")),
	Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// browseModel fetches all records once and filters/paginates locally. The
// page is not reset when a new search shrinks the result set.
type browseModel struct {
	ctx  context.Context
	load loadFunc

	state    browseState
	err      error
	snapshot adminlist.Snapshot

	field     int
	search    textinput.Model
	searching bool
	page      int
	pageSize  int
	cursor    int
}

func newBrowseModel(ctx context.Context, load loadFunc) browseModel {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.CharLimit = 64

	return browseModel{
		ctx:      ctx,
		load:     load,
		state:    stateLoading,
		search:   ti,
		page:     1,
		pageSize: adminlist.DefaultPageSize,
	}
}

func (m browseModel) Init() tea.Cmd {
	return func() tea.Msg {
		recs, err := m.load(m.ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return recordsLoadedMsg{records: recs}
	}
}

func (m browseModel) view() adminlist.Page {
	return m.snapshot.
		Filter(searchFields[m.field], m.search.Value()).
		Paginate(m.page, m.pageSize)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		m.snapshot = adminlist.NewSnapshot(msg.records)
		m.state = stateLoaded
		return m, nil
	case loadFailedMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, browseKeyMap.Escape) || msg.Type == tea.KeyEnter {
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, browseKeyMap.Quit) {
		return m, tea.Quit
	}
	if m.state != stateLoaded {
		return m, nil
	}

	p := m.view()
	switch {
	case key.Matches(msg, browseKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, browseKeyMap.Down):
		if m.cursor < len(p.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, browseKeyMap.Prev):
		if m.page > 1 {
			m.page--
			m.cursor = 0
		}
	case key.Matches(msg, browseKeyMap.Next):
		if p.HasNext() {
			m.page++
			m.cursor = 0
		}
	case key.Matches(msg, browseKeyMap.Field):
		m.field = (m.field + 1) % len(searchFields)
		m.cursor = 0
	case key.Matches(msg, browseKeyMap.Search):
		m.searching = true
		return m, m.search.Focus()
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Visa records") + "\n\n")

	switch m.state {
	case stateLoading:
		b.WriteString(styleMuted.Render("Loading records…") + "\n")
		return b.String()
	case stateError:
		b.WriteString(formatError("Failed to load records: "+m.err.Error()) + "\n")
		b.WriteString(styleMuted.Render("q quit") + "\n")
		return b.String()
	}

	b.WriteString(styleHeader.Render("Search ["+string(searchFields[m.field])+"]: "))
	if m.searching {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.search.Value())
	}
	b.WriteString("\n\n")

	p := m.view()
	if len(p.Items) == 0 {
		b.WriteString(styleMuted.Render("No records on this page.") + "\n")
	} else {
		renderTable(&b, p.Items, m.cursor)
	}

	b.WriteString("\n" + styleMuted.Render(pageFooter(p)) + "\n")
	b.WriteString(styleMuted.Render("/ search · tab field · ←/→ page · ↑/↓ move · q quit") + "\n")
	return b.String()
}
