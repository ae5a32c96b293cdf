package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tormodhaugland/lastimport/internal/client"
	"github.com/tormodhaugland/lastimport/internal/config"
	"github.com/tormodhaugland/lastimport/internal/model"
	"github.com/tormodhaugland/lastimport/internal/notify"
	"github.com/tormodhaugland/lastimport/internal/screen"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	buttonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("212")).Padding(0, 2)
	sectionStyle = lipgloss.NewStyle().MarginBottom(1)
)

const (
	footnote    = "Current Price* = price of the stock when the data was extracted."
	showLabel   = "[ show ]"
	headerLines = 2
)

// spinnerFrames defines the animation frames for the loading spinner.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	First    key.Binding
	Last     key.Binding
	Show     key.Binding
	Close    key.Binding
	Force    key.Binding
	Reload   key.Binding
	Retry    key.Binding
	Filter   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevPage: key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),
	NextPage: key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
	First:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home/g", "first page")),
	Last:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "last page")),
	Show:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "show indicators")),
	Close:    key.NewBinding(key.WithKeys("esc", "enter", " "), key.WithHelp("esc", "close")),
	Force:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "force new import")),
	Reload:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
	Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// snapshotMsg carries the result of a fetch run off the event loop.
type snapshotMsg struct {
	snapshot *model.StockImportSnapshot
	err      error
}

type noticeMsg struct {
	note notify.Notification
}

type noticeExpiredMsg struct {
	id int
}

type spinnerTickMsg struct{}

// Model is the last import screen.
type Model struct {
	cfg      *config.Config
	ctx      context.Context
	logger   *slog.Logger
	screen   *screen.Screen
	notifier *notify.Notifier
	notes    chan notify.Notification
	location *time.Location

	table     table.Model
	paginator paginator.Model
	filter    textinput.Model
	filtering bool

	notice       *notify.Notification
	noticeID     int
	spinnerFrame int
	spinning     bool
	width        int
	height       int
}

func New(ctx context.Context, cfg *config.Config, c client.SnapshotClient, logger *slog.Logger) (Model, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ack, err := screen.ParseAckMode(cfg.Reimport.AckMode)
	if err != nil {
		return Model{}, err
	}

	notifier := notify.New()
	trig := screen.NewReimportTrigger(c, notifier,
		screen.WithAckMode(ack),
		screen.WithTriggerTimeout(cfg.API.Timeout.Duration),
		screen.WithTriggerLogger(logger),
	)
	scr := screen.New(c, trig, screen.Options{
		PageSize: cfg.Table.PageSize,
		Retry: screen.RetryPolicy{
			MaxRetries:      cfg.Fetch.MaxRetries,
			InitialInterval: cfg.Fetch.InitialInterval.Duration,
			MaxInterval:     cfg.Fetch.MaxInterval.Duration,
		},
		Logger: logger,
	})

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Stock Code", Width: 12},
			{Title: "Current Price*", Width: 16},
			{Title: "Show Indicators", Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(scr.Pager.PageSize()+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	p := paginator.New()
	p.Type = paginator.Arabic
	p.ArabicFormat = "page %d/%d"

	fi := textinput.New()
	fi.Prompt = "/"
	fi.Placeholder = "stock code"
	fi.CharLimit = 32
	fi.Width = 20

	return Model{
		cfg:       cfg,
		ctx:       ctx,
		logger:    logger,
		screen:    scr,
		notifier:  notifier,
		notes:     notifier.Subscribe(),
		location:  time.Local,
		table:     t,
		paginator: p,
		filter:    fi,
		spinning:  true,
	}, nil
}

// Init activates the screen: the snapshot is fetched once per model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenNotices()}
	if m.screen.Activate() {
		cmds = append(cmds, m.fetch(), m.spinnerTick())
	}
	return tea.Batch(cmds...)
}

// startLoad runs a fetch and keeps a single spinner ticking until it lands.
func (m Model) startLoad() (Model, tea.Cmd) {
	if m.spinning {
		return m, m.fetch()
	}
	m.spinning = true
	return m, tea.Batch(m.fetch(), m.spinnerTick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		_, hadSnapshot := m.screen.Store.Current()
		if msg.err != nil {
			m.screen.ApplyFailure(msg.err)
			if hadSnapshot {
				return m.showNotice(notify.Notification{
					Level:   notify.LevelError,
					Message: fmt.Sprintf("Reload failed: %v", msg.err),
				})
			}
			return m, nil
		}
		m.screen.ApplySnapshot(msg.snapshot)
		m.syncTable()
		return m, nil

	case noticeMsg:
		next, cmd := m.showNotice(msg.note)
		return next, tea.Batch(cmd, m.listenNotices())

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = nil
		}
		return m, nil

	case spinnerTickMsg:
		if m.loading() {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
			return m, m.spinnerTick()
		}
		m.spinning = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.filtering {
		return m.handleFilterKeys(msg)
	}
	if m.screen.Selection.IsOpen() {
		if key.Matches(msg, keys.Close) {
			m.screen.Selection.Close()
		} else if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.screen.Store.State() {
	case screen.StateFailed:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Retry):
			if m.screen.Retry() {
				return m.startLoad()
			}
		}
		return m, nil

	case screen.StateLoaded:
		return m.handleBrowseKeys(msg)
	}

	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.table.MoveUp(1)

	case key.Matches(msg, keys.Down):
		m.table.MoveDown(1)

	case key.Matches(msg, keys.PrevPage):
		if m.screen.Pager.PrevPage() {
			m.syncTable()
		}

	case key.Matches(msg, keys.NextPage):
		if m.screen.Pager.NextPage() {
			m.syncTable()
			m.table.SetCursor(0)
		}

	case key.Matches(msg, keys.First):
		m.screen.Pager.FirstPage()
		m.syncTable()
		m.table.SetCursor(0)

	case key.Matches(msg, keys.Last):
		m.screen.Pager.LastPage()
		m.syncTable()
		m.table.SetCursor(0)

	case key.Matches(msg, keys.Show):
		m.screen.OpenDetail(m.table.Cursor())

	case key.Matches(msg, keys.Force):
		m.screen.TriggerReimport(m.ctx)

	case key.Matches(msg, keys.Reload):
		if m.screen.Reload() {
			return m.startLoad()
		}

	case key.Matches(msg, keys.Filter):
		m.filtering = true
		m.filter.SetValue(m.screen.Query())
		return m, m.filter.Focus()
	}

	return m, nil
}

func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.screen.Filter("")
		m.syncTable()
		return m, nil

	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != m.screen.Query() {
		m.screen.Filter(m.filter.Value())
		m.syncTable()
	}
	return m, cmd
}

// syncTable copies the current page into the table and paginator.
func (m *Model) syncTable() {
	page := m.screen.Pager.Rows()
	rows := make([]table.Row, len(page))
	for i, st := range page {
		rows[i] = table.Row{st.Code, st.PriceLabel(), showLabel}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) || c < 0 {
		m.table.SetCursor(max(len(rows)-1, 0))
	}

	m.paginator.PerPage = m.screen.Pager.PageSize()
	m.paginator.TotalPages = m.screen.Pager.TotalPages()
	m.paginator.Page = m.screen.Pager.CurrentPage()
}

func (m Model) loading() bool {
	state := m.screen.Store.State()
	return state == screen.StateNotLoaded || state == screen.StateLoading || m.screen.Store.InFlight()
}

func (m Model) fetch() tea.Cmd {
	scr := m.screen
	ctx := m.ctx
	return func() tea.Msg {
		snapshot, err := scr.Fetch(ctx)
		return snapshotMsg{snapshot: snapshot, err: err}
	}
}

func (m Model) listenNotices() tea.Cmd {
	ch := m.notes
	return func() tea.Msg {
		note, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg{note: note}
	}
}

func (m Model) spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m Model) showNotice(n notify.Notification) (tea.Model, tea.Cmd) {
	m.noticeID++
	m.notice = &n
	id := m.noticeID

	ttl := m.cfg.TUI.NoticeTTL.Duration
	if ttl <= 0 {
		return m, nil
	}
	return m, tea.Tick(ttl, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m Model) View() string {
	var sb strings.Builder

	if m.notice != nil {
		sb.WriteString(renderNotice(*m.notice) + "\n\n")
	}

	switch m.screen.Store.State() {
	case screen.StateNotLoaded, screen.StateLoading:
		sb.WriteString(titleStyle.Render(spinnerFrames[m.spinnerFrame] + " Fetching data..."))
		sb.WriteString("\n\n" + helpStyle.Render("q: quit"))
		return sb.String()

	case screen.StateFailed:
		sb.WriteString(errorStyle.Bold(true).Render("Failed to load the last import") + "\n\n")
		if err := m.screen.Store.LastError(); err != nil {
			sb.WriteString(errorStyle.Render(err.Error()) + "\n\n")
		}
		sb.WriteString(helpStyle.Render("r: retry • q: quit"))
		return sb.String()
	}

	sb.WriteString(m.loadedView())
	return sb.String()
}

func (m Model) loadedView() string {
	snap, _ := m.screen.Store.Current()

	var sb strings.Builder

	sb.WriteString(labelStyle.Render("Date:") + " " + snap.DateLabel(m.location) + "\n")
	errs := snap.ErrorsLabel()
	if snap.HasErrors() {
		errs = errorStyle.Render(errs)
	}
	sb.WriteString(sectionStyle.Render(labelStyle.Render("Errors:") + " " + errs))
	sb.WriteString("\n")

	title := "Stocks:"
	if q := m.screen.Query(); q != "" {
		title = fmt.Sprintf("Stocks: (filter %q, %d of %d)", q, m.screen.Pager.Len(), len(snap.Stocks))
	}
	if m.screen.Store.InFlight() {
		title += " " + spinnerFrames[m.spinnerFrame]
	}
	sb.WriteString(labelStyle.Render(title) + "\n")

	tableView := m.table.View()
	if anchor, ok := m.screen.Selection.Anchor(); ok {
		popover := renderPopover(m.screen.Selection, m.cfg.TUI.PopoverMaxIndicators)
		placed := lipgloss.NewStyle().MarginTop(anchor.Row + headerLines).MarginLeft(2).Render(popover)
		tableView = lipgloss.JoinHorizontal(lipgloss.Top, tableView, placed)
	}
	sb.WriteString(tableView + "\n")
	sb.WriteString(helpStyle.Render(m.paginator.View()) + "\n\n")

	sb.WriteString(footnote + "\n")
	sb.WriteString(buttonStyle.Render("f: Force New Import") + "\n")

	if m.filtering {
		sb.WriteString(m.filter.View() + "\n")
	}
	sb.WriteString(helpStyle.Render("↑/↓: row • ←/→: page • home/end: first/last • enter: show indicators • /: filter • R: reload • q: quit"))

	return sb.String()
}

// Run starts the screen on the terminal's alternate screen.
func Run(ctx context.Context, cfg *config.Config, c client.SnapshotClient, logger *slog.Logger) error {
	m, err := New(ctx, cfg, c, logger)
	if err != nil {
		return err
	}
	defer m.notifier.Unsubscribe(m.notes)
	defer m.screen.Teardown()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
