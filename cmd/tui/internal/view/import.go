package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/importer"
	"github.com/MrJamesThe3rd/syndic/internal/matching"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStatePick importState = iota
	importStateRunning
	importStateResult
	importStateAlias
)

// ImportModel applies a processor remittance report to the schedules. Rows
// whose descriptor matched no deal can be taught as aliases and the same
// file imported again.
type ImportModel struct {
	CommonModel
	importService *importer.Service
	aliases       *matching.Service
	svc           *tracker.Service

	state      importState
	filePicker filepicker.Model
	unmatched  table.Model
	form       *huh.Form

	path   string
	result *importer.Result
	alias  *aliasForm
	status string
	err    error
}

func NewImportModel(impSvc *importer.Service, aliases *matching.Service, svc *tracker.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		aliases:       aliases,
		svc:           svc,
		filePicker:    fp,
		unmatched: newTable([]table.Column{
			{Title: "Row", Width: 5},
			{Title: "Deal", Width: 28},
			{Title: "Reason", Width: 44},
		}),
	}
}

func (m ImportModel) Title() string { return "Import Remittances" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateResult:
		return "a: alias selected row | r: import again | Esc: pick another file"
	case importStateAlias:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err
		m.result = msg.result
		m.fillUnmatched()

		return m, nil

	case aliasFormMsg:
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}

		return m.enterAlias(msg.descriptor, msg.deals)

	case aliasLearnedMsg:
		m.state = importStateResult
		m.form = nil
		m.unmatched.Focus()

		if msg.err != nil {
			m.status = errorText(msg.err)
		} else {
			m.status = fmt.Sprintf("Learned alias %q. Press r to import the file again.", msg.pattern)
		}

		return m, nil
	}

	switch m.state {
	case importStatePick:
		return m.updatePicker(msg)
	case importStateResult:
		return m.updateResult(msg)
	case importStateAlias:
		return m.updateAlias(msg)
	}

	return m, nil
}

func (m ImportModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		return m.run(path)
	}

	return m, cmd
}

func (m ImportModel) run(path string) (tea.Model, tea.Cmd) {
	m.path = path
	m.state = importStateRunning
	m.status = ""

	return m, m.importCmd(path)
}

func (m ImportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = importStatePick
			m.err = nil
			m.result = nil
			m.status = ""

			return m, m.filePicker.Init()
		case "r":
			return m.run(m.path)
		case "a":
			row, ok := m.selectedUnmatched()
			if !ok || row.Deal == "" {
				m.status = "Select a row that names a deal."
				return m, nil
			}

			if _, err := uuid.Parse(row.Deal); err == nil {
				m.status = "That row names a deal ID; aliases are for descriptors."
				return m, nil
			}

			return m, m.aliasFormCmd(row.Deal)
		}
	}

	var cmd tea.Cmd
	m.unmatched, cmd = m.unmatched.Update(msg)

	return m, cmd
}

func (m ImportModel) selectedUnmatched() (importer.Skipped, bool) {
	if m.result == nil {
		return importer.Skipped{}, false
	}

	idx := m.unmatched.Cursor()
	if idx < 0 || idx >= len(m.result.Unmatched) {
		return importer.Skipped{}, false
	}

	return m.result.Unmatched[idx], true
}

func (m *ImportModel) fillUnmatched() {
	if m.result == nil {
		m.unmatched.SetRows(nil)
		return
	}

	rows := make([]table.Row, 0, len(m.result.Unmatched))
	for _, u := range m.result.Unmatched {
		rows = append(rows, table.Row{strconv.Itoa(u.Row), u.Deal, u.Reason})
	}

	m.unmatched.SetRows(rows)
	m.unmatched.SetCursor(0)
	m.unmatched.Focus()
}

func (m ImportModel) enterAlias(descriptor string, deals []huh.Option[uuid.UUID]) (tea.Model, tea.Cmd) {
	if len(deals) == 0 {
		m.status = "There are no deals to alias to."
		return m, nil
	}

	m.alias = &aliasForm{pattern: descriptor}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Pattern").
				Description("Descriptors containing this text, ignoring case, map to the deal").
				Value(&m.alias.pattern).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("pattern cannot be empty")
					}

					return nil
				}),
			huh.NewSelect[uuid.UUID]().
				Title("Deal").
				Options(deals...).
				Value(&m.alias.dealID),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = importStateAlias
	m.unmatched.Blur()

	return m, m.form.Init()
}

func (m ImportModel) updateAlias(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = importStateResult
		m.form = nil
		m.unmatched.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.learnCmd(m.alias.pattern, m.alias.dealID)
}

func (m ImportModel) View() string {
	switch m.state {
	case importStatePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a remittance report (.csv or .xlsx):\n\n" + m.filePicker.View(),
		)
	case importStateRunning:
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Importing from %s...", m.path))
	case importStateResult:
		return m.viewResult()
	case importStateAlias:
		return lipgloss.JoinHorizontal(lipgloss.Top, m.viewResult(), panel("Learn Alias", m.form.View()))
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(1)
	if m.err != nil {
		return style.Render(errorText(m.err) + "\n\n(Esc to pick another file)")
	}

	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(
		fmt.Sprintf("Applied %d remittances from %s (%s format).",
			len(m.result.Applied), filepath.Base(m.path), m.result.Profile)))
	sb.WriteString("\n\n")

	if len(m.result.Unmatched) == 0 {
		sb.WriteString("Every row was applied.")
	} else {
		fmt.Fprintf(&sb, "%d rows were not applied:\n", len(m.result.Unmatched))
		sb.WriteString(boxed(m.unmatched.View()))
	}

	if m.status != "" {
		sb.WriteString("\n\n" + m.status)
	}

	return style.Render(sb.String())
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

type aliasFormMsg struct {
	descriptor string
	deals      []huh.Option[uuid.UUID]
	err        error
}

type aliasLearnedMsg struct {
	pattern string
	err     error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		format := importer.FormatCSV
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			format = importer.FormatXLSX
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importService.Import(ctx, format, f)

		return importResultMsg{result: result, err: err}
	}
}

func (m ImportModel) aliasFormCmd(descriptor string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		deals, err := m.svc.ListDeals(ctx)
		if err != nil {
			return aliasFormMsg{err: err}
		}

		opts := make([]huh.Option[uuid.UUID], 0, len(deals))
		for _, d := range deals {
			label := fmt.Sprintf("%s (%s)", d.BusinessName, d.StartDate.Format(time.DateOnly))
			opts = append(opts, huh.NewOption(label, d.ID))
		}

		return aliasFormMsg{descriptor: descriptor, deals: opts}
	}
}

func (m ImportModel) learnCmd(pattern string, dealID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		alias, err := m.aliases.Learn(ctx, pattern, dealID)
		if err != nil {
			return aliasLearnedMsg{err: err}
		}

		return aliasLearnedMsg{pattern: alias.Pattern}
	}
}
