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
	"github.com/MrJamesThe3rd/syndic/internal/export"
	"github.com/MrJamesThe3rd/syndic/internal/present"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

type investorsState int

const (
	investorsStateBrowse investorsState = iota
	investorsStateStatement
	investorsStateAdd
	investorsStateDelete
)

// InvestorsModel shows the syndicator metrics: one row per investor with
// their drawn and available balances.
type InvestorsModel struct {
	CommonModel
	svc *tracker.Service

	state     investorsState
	table     table.Model
	summaries []balance.InvestorSummary
	form      *huh.Form

	loading bool
	err     error
	status  string

	add     *investorForm
	confirm *bool
}

func NewInvestorsModel(svc *tracker.Service) InvestorsModel {
	columns := []table.Column{
		{Title: "Investor", Width: 16},
		{Title: "Deals", Width: 6},
		{Title: "Funded", Width: 14},
		{Title: "Expected", Width: 14},
		{Title: "Drawn", Width: 14},
		{Title: "Available", Width: 14},
	}

	return InvestorsModel{
		svc:     svc,
		table:   newTable(columns),
		loading: true,
	}
}

func (m InvestorsModel) Title() string { return "Investors" }

func (m InvestorsModel) ShortHelp() string {
	switch m.state {
	case investorsStateStatement:
		return "Esc/Enter: close statement"
	case investorsStateAdd, investorsStateDelete:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: statement | n: add | x: delete | r: refresh"
}

func (m InvestorsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvestorsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvestorsMsg:
		m.loading = false
		m.err = msg.err
		m.summaries = msg.summaries
		m.refreshTable()

		return m, nil

	case investorsActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = errorText(msg.err)
		}

		m.state = investorsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case investorsStateBrowse:
		return m.updateBrowse(msg)
	case investorsStateStatement:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && (keyMsg.Type == tea.KeyEsc || keyMsg.Type == tea.KeyEnter) {
			m.state = investorsStateBrowse
			m.table.Focus()
		}

		return m, nil
	}

	return m.updateForm(msg)
}

func (m InvestorsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterAdd()
		case "enter":
			if _, ok := m.selected(); ok {
				m.state = investorsStateStatement
				m.table.Blur()
			}

			return m, nil
		case "x":
			if sum, ok := m.selected(); ok {
				return m.enterDelete(sum.Investor)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvestorsModel) selected() (balance.InvestorSummary, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.summaries) {
		return balance.InvestorSummary{}, false
	}

	return m.summaries[idx], true
}

func (m InvestorsModel) enterAdd() (tea.Model, tea.Cmd) {
	m.add = &investorForm{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Investor name").
				Value(&m.add.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = investorsStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvestorsModel) enterDelete(name string) (tea.Model, tea.Cmd) {
	m.confirm = new(false)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove %s and all of their shares?", name)).
				Affirmative("Remove").
				Negative("Keep").
				Value(m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = investorsStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvestorsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = investorsStateBrowse
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

	if m.state == investorsStateAdd {
		return m, m.addCmd(m.add.name)
	}

	sum, _ := m.selected()

	return m, m.deleteCmd(sum.Investor)
}

func (m InvestorsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading investors...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(m.err))
	}

	var drawn, available float64
	for _, s := range m.summaries {
		drawn += s.Drawn
		available += s.Available
	}

	header := fmt.Sprintf("Syndicator Metrics | Investors: %s | Drawn: %s | Available: %s",
		activeStyle(strconv.Itoa(len(m.summaries))),
		activeStyle(present.Money(drawn)),
		activeStyle(present.Money(available)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	switch m.state {
	case investorsStateStatement:
		if sum, ok := m.selected(); ok {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content,
				lipgloss.NewStyle().
					Padding(1, 2).
					BorderStyle(lipgloss.RoundedBorder()).
					BorderForeground(lipgloss.Color("63")).
					Render(export.FormatStatement(sum, time.Now())))
		}
	case investorsStateAdd:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel("Add Investor", m.form.View()))
	case investorsStateDelete:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel("Remove Investor", m.form.View()))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *InvestorsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.summaries))

	for _, s := range m.summaries {
		rows = append(rows, table.Row{
			s.Investor,
			strconv.Itoa(len(s.Positions)),
			present.Money(s.Funded),
			present.Money(s.ExpectedReturn),
			present.Money(s.Drawn),
			present.Money(s.Available),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvestorsMsg struct {
	summaries []balance.InvestorSummary
	err       error
}

type investorsActionMsg struct {
	status string
	err    error
}

func (m InvestorsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sums, err := m.svc.Portfolio(ctx)

		return loadInvestorsMsg{summaries: sums, err: err}
	}
}

func (m InvestorsModel) addCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.svc.AddInvestor(ctx, name)
		if err != nil {
			return investorsActionMsg{err: err}
		}

		return investorsActionMsg{status: "Added " + inv.Name}
	}
}

func (m InvestorsModel) deleteCmd(name string) tea.Cmd {
	if !*m.confirm {
		return func() tea.Msg { return investorsActionMsg{} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.svc.DeleteInvestor(ctx, name); err != nil {
			return investorsActionMsg{err: err}
		}

		return investorsActionMsg{status: "Removed " + name}
	}
}
