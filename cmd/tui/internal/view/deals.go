package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/syndic/internal/balance"
	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/present"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

type dealsState int

const (
	dealsStateBrowse dealsState = iota
	dealsStateCreate
	dealsStateShares
	dealsStateDelete
	dealsStateSchedule
)

// DealsModel is the admin screen: every deal with its collection progress.
type DealsModel struct {
	CommonModel
	svc    *tracker.Service
	policy present.Policy

	state    dealsState
	table    table.Model
	form     *huh.Form
	schedule ScheduleModel

	books     []balance.Book
	allocated []float64 // share total per row of books

	loading bool
	err     error
	status  string

	create  *dealForm
	shares  *sharesForm
	confirm *bool
}

func NewDealsModel(svc *tracker.Service, policy present.Policy) DealsModel {
	columns := []table.Column{
		{Title: "Business", Width: 20},
		{Title: "Start", Width: 12},
		{Title: "Term", Width: 6},
		{Title: "Progress", Width: 28},
		{Title: "Collected", Width: 14},
		{Title: "Outstanding", Width: 14},
		{Title: "Allocated", Width: 10},
		{Title: "Status", Width: 10},
	}

	return DealsModel{
		svc:     svc,
		policy:  policy,
		table:   newTable(columns),
		loading: true,
	}
}

func (m DealsModel) Title() string { return "Deals" }

func (m DealsModel) ShortHelp() string {
	switch m.state {
	case dealsStateSchedule:
		return m.schedule.ShortHelp()
	case dealsStateCreate, dealsStateShares, dealsStateDelete:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: schedule | n: new | s: shares | d: toggle default | x: delete | r: refresh"
}

func (m DealsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DealsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDealsMsg:
		m.loading = false
		m.err = msg.err
		m.books = msg.books
		m.allocated = msg.allocated
		m.refreshTable()

		return m, nil

	case dealsActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = errorText(msg.err)
		}

		m.state = dealsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case closeScheduleMsg:
		m.state = dealsStateBrowse
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))
	}

	switch m.state {
	case dealsStateBrowse:
		return m.updateBrowse(msg)
	case dealsStateSchedule:
		sm, cmd := m.schedule.Update(msg)
		m.schedule = sm.(ScheduleModel)

		return m, cmd
	}

	return m.updateForm(msg)
}

func (m DealsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "n":
		return m.enterCreate()
	}

	b, ok := m.selected()
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "enter":
		m.schedule = NewScheduleModel(m.svc, m.policy, b)
		m.state = dealsStateSchedule
		m.table.Blur()

		return m, m.schedule.Init()
	case "s":
		return m.enterShares(b)
	case "d":
		return m, m.toggleDefaultCmd(b)
	case "x":
		return m.enterDelete(b)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DealsModel) selected() (balance.Book, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.books) {
		return balance.Book{}, false
	}

	return m.books[idx], true
}

func (m DealsModel) enterCreate() (tea.Model, tea.Cmd) {
	m.create = &dealForm{start: present.Date(time.Now())}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Business name").
				Value(&m.create.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("business name cannot be empty")
					}

					return nil
				}),
			huh.NewInput().Title("Principal").Placeholder("30000").Value(&m.create.principal).Validate(validateNumber),
			huh.NewInput().Title("Factor rate").Placeholder("1.49").Value(&m.create.factor).Validate(validateNumber),
			huh.NewInput().Title("Term (days)").Placeholder("30").Value(&m.create.term).Validate(validateInt),
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&m.create.start).Validate(validateDate),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = dealsStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m DealsModel) enterShares(b balance.Book) (tea.Model, tea.Cmd) {
	m.shares = &sharesForm{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Shares for " + b.Deal.BusinessName).
				Description("name=percent, comma separated").
				Placeholder("albert=40, jacobo=60").
				Value(&m.shares.shares).
				Validate(func(s string) error {
					_, err := parseShares(s)
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = dealsStateShares
	m.table.Blur()

	return m, m.form.Init()
}

func (m DealsModel) enterDelete(b balance.Book) (tea.Model, tea.Cmd) {
	m.confirm = new(false)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s with its schedule and shares?", b.Deal.BusinessName)).
				Affirmative("Delete").
				Negative("Keep").
				Value(m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = dealsStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m DealsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = dealsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.state {
	case dealsStateCreate:
		return m, m.createCmd()
	case dealsStateShares:
		b, _ := m.selected()
		return m, m.assignCmd(b)
	case dealsStateDelete:
		b, _ := m.selected()
		return m, m.deleteCmd(b)
	}

	return m, nil
}

func (m DealsModel) View() string {
	if m.state == dealsStateSchedule {
		return m.schedule.View()
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading deals...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(m.err))
	}

	header := fmt.Sprintf("Deals: %s | Pending shown as: %s",
		activeStyle(strconv.Itoa(len(m.books))),
		activeStyle(present.Label(m.policy.Status(deal.StatusPending))),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.form != nil {
		titles := map[dealsState]string{
			dealsStateCreate: "New Deal",
			dealsStateShares: "Assign Shares",
			dealsStateDelete: "Delete Deal",
		}

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel(titles[m.state], m.form.View()))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *DealsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.books))

	for i, b := range m.books {
		sum := balance.SummarizeDeal(b.Deal, b.Schedule)

		state := "Active"
		if b.Deal.Defaulted {
			state = "Defaulted"
		}

		rows = append(rows, table.Row{
			b.Deal.BusinessName,
			present.Date(b.Deal.StartDate),
			strconv.Itoa(b.Deal.TermDays),
			present.Bar(sum.Progress, 20) + " " + present.Progress(sum.Progress),
			present.Money(sum.TotalCollected),
			present.Money(sum.Outstanding),
			present.Percent(m.allocated[i]),
			state,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadDealsMsg struct {
	books     []balance.Book
	allocated []float64
	err       error
}

type dealsActionMsg struct {
	status string
	err    error
}

func (m DealsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		books, err := m.svc.Books(ctx)
		if err != nil {
			return loadDealsMsg{err: err}
		}

		allocated := make([]float64, len(books))

		for i, b := range books {
			l, err := m.svc.DealShares(ctx, b.Deal.ID)
			if err != nil {
				return loadDealsMsg{err: err}
			}

			allocated[i] = l.Allocated(b.Deal.ID)
		}

		return loadDealsMsg{books: books, allocated: allocated}
	}
}

func (m DealsModel) createCmd() tea.Cmd {
	in := *m.create

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		start := time.Now()
		if s := strings.TrimSpace(in.start); s != "" {
			start, _ = time.Parse(time.DateOnly, s)
		}

		d, err := m.svc.CreateDeal(ctx, tracker.CreateDealParams{
			BusinessName: in.name,
			Principal:    parseFloat(in.principal),
			FactorRate:   parseFloat(in.factor),
			TermDays:     parseInt(in.term),
			StartDate:    start,
		})
		if err != nil {
			return dealsActionMsg{err: err}
		}

		return dealsActionMsg{status: fmt.Sprintf("Created %s, payback %s", d.BusinessName, present.Money(d.PaybackTotal))}
	}
}

func (m DealsModel) assignCmd(b balance.Book) tea.Cmd {
	raw := m.shares.shares

	return func() tea.Msg {
		shares, err := parseShares(raw)
		if err != nil {
			return dealsActionMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		l, err := m.svc.AssignShares(ctx, b.Deal.ID, shares)
		if err != nil {
			return dealsActionMsg{err: err}
		}

		return dealsActionMsg{status: fmt.Sprintf("%s is %s allocated",
			b.Deal.BusinessName, present.Percent(l.Allocated(b.Deal.ID)))}
	}
}

func (m DealsModel) deleteCmd(b balance.Book) tea.Cmd {
	if !*m.confirm {
		return func() tea.Msg { return dealsActionMsg{} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.svc.DeleteDeal(ctx, b.Deal.ID); err != nil {
			return dealsActionMsg{err: err}
		}

		return dealsActionMsg{status: "Deleted " + b.Deal.BusinessName}
	}
}

func (m DealsModel) toggleDefaultCmd(b balance.Book) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.svc.SetDefaulted(ctx, b.Deal.ID, !b.Deal.Defaulted)
		if err != nil {
			return dealsActionMsg{err: err}
		}

		if d.Defaulted {
			return dealsActionMsg{status: d.BusinessName + " marked defaulted"}
		}

		return dealsActionMsg{status: d.BusinessName + " marked active"}
	}
}
