package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/syndic/internal/balance"
	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/present"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

type scheduleState int

const (
	scheduleStateBrowse scheduleState = iota
	scheduleStateAdjust
)

// ScheduleModel lists one deal's installments and applies admin edits.
type ScheduleModel struct {
	CommonModel
	svc    *tracker.Service
	policy present.Policy

	state  scheduleState
	book   balance.Book
	table  table.Model
	form   *huh.Form
	adjust *adjustForm

	status string
}

func NewScheduleModel(svc *tracker.Service, policy present.Policy, b balance.Book) ScheduleModel {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Status", Width: 10},
	}

	m := ScheduleModel{
		svc:    svc,
		policy: policy,
		book:   b,
		table:  newTable(columns),
	}
	m.refreshTable()

	return m
}

func (m ScheduleModel) Title() string { return m.book.Deal.BusinessName }

func (m ScheduleModel) ShortHelp() string {
	if m.state == scheduleStateAdjust {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | p: paid | m: missed | a: adjust"
}

func (m ScheduleModel) Init() tea.Cmd {
	return nil
}

func (m ScheduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case amendedMsg:
		m.state = scheduleStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}

		m.book = balance.Book{Deal: msg.res.Deal, Schedule: msg.res.Schedule}
		m.status = fmt.Sprintf("Payment %d is now %s", msg.res.Changed[0].Index, msg.res.Changed[0].Status)

		if added := len(msg.res.Changed) - 1; added > 0 {
			m.status += fmt.Sprintf(", term extended by %d days", added)
		}

		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil
	}

	if m.state == scheduleStateAdjust {
		return m.updateAdjust(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, closeSchedule
		case "p":
			return m, m.amendCmd(deal.Amendment{Index: m.table.Cursor(), Status: deal.StatusPaid})
		case "m":
			return m, m.amendCmd(deal.Amendment{Index: m.table.Cursor(), Status: deal.StatusMissed})
		case "a":
			return m.enterAdjust()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ScheduleModel) enterAdjust() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.book.Schedule) {
		return m, nil
	}

	m.adjust = &adjustForm{
		amount: strconv.FormatFloat(balance.Round2(m.book.Schedule[idx].Amount), 'f', 2, 64),
		extend: "0",
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Value(&m.adjust.amount).
				Validate(validateNumber),
			huh.NewInput().
				Title("Extend term (days)").
				Description("Appends daily entries after the last one").
				Value(&m.adjust.extend).
				Validate(validateInt),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = scheduleStateAdjust
	m.table.Blur()

	return m, m.form.Init()
}

func (m ScheduleModel) updateAdjust(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = scheduleStateBrowse
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

	return m, m.amendCmd(deal.Amendment{
		Index:      m.table.Cursor(),
		Status:     deal.StatusAdjusted,
		Amount:     new(parseFloat(m.adjust.amount)),
		ExtendDays: parseInt(m.adjust.extend),
	})
}

func (m ScheduleModel) View() string {
	d := m.book.Deal
	sum := balance.SummarizeDeal(d, m.book.Schedule)

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(d.BusinessName),
		fmt.Sprintf("Principal %s | Factor %.2f | Payback %s | Term %d of %d days",
			present.Money(d.Principal), d.FactorRate, present.Money(d.PaybackTotal), d.TermDays, d.OriginalTermDays),
		fmt.Sprintf("%s %s | Collected %s | Outstanding %s",
			present.Bar(sum.Progress, 30), present.Progress(sum.Progress),
			present.Money(sum.TotalCollected), present.Money(sum.Outstanding)),
	}

	if d.Defaulted {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("DEFAULTED"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(strings.Join(lines, "\n")),
		boxed(m.table.View()),
	)

	if m.state == scheduleStateAdjust && m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			panel(fmt.Sprintf("Adjust payment %d", m.table.Cursor()), m.form.View()))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ScheduleModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.book.Schedule))

	for _, p := range m.book.Schedule {
		rows = append(rows, table.Row{
			strconv.Itoa(p.Index),
			present.Date(p.Date),
			present.Money(p.Amount),
			present.Label(m.policy.Status(p.Status)),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type closeScheduleMsg struct{}

func closeSchedule() tea.Msg {
	return closeScheduleMsg{}
}

type amendedMsg struct {
	res *deal.Amended
	err error
}

func (m ScheduleModel) amendCmd(a deal.Amendment) tea.Cmd {
	dealID := m.book.Deal.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.AmendPayment(ctx, dealID, a)

		return amendedMsg{res: res, err: err}
	}
}
