package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/syndic/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/syndic/internal/app"
	"github.com/MrJamesThe3rd/syndic/internal/config"
	"github.com/MrJamesThe3rd/syndic/internal/export"
	"github.com/MrJamesThe3rd/syndic/internal/importer"
	"github.com/MrJamesThe3rd/syndic/internal/matching"
	"github.com/MrJamesThe3rd/syndic/internal/present"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

type model struct {
	appName        string
	trackerService *tracker.Service
	importService  *importer.Service
	exportService  *export.Service
	aliases        *matching.Service
	policy         present.Policy

	currentView View

	dealsView     view.DealsModel
	investorsView view.InvestorsModel
	importView    view.ImportModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDeals     View = 1
	ViewInvestors View = 2
	ViewImport    View = 3
	ViewExport    View = 4
)

func initialModel() (model, func() error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	policy, err := present.ParsePolicy(cfg.View.DefaultStatus)
	if err != nil {
		slog.Error("invalid view policy", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	services, err := app.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	trackerSvc := services.Tracker

	if err := app.Seed(ctx, cfg, trackerSvc); err != nil {
		slog.Error("failed to seed book", "error", err)
		os.Exit(1)
	}

	impSvc := importer.NewService(trackerSvc, services.Aliases)
	expSvc := export.NewService(trackerSvc)

	return model{
		appName:        cfg.App.Name,
		trackerService: trackerSvc,
		importService:  impSvc,
		exportService:  expSvc,
		aliases:        services.Aliases,
		policy:         policy,
		currentView:    ViewMenu,
		dealsView:      view.NewDealsModel(trackerSvc, policy),
		investorsView:  view.NewInvestorsModel(trackerSvc),
		importView:     view.NewImportModel(impSvc, services.Aliases, trackerSvc),
		exportView:     view.NewExportModel(expSvc, trackerSvc),
	}, services.Close
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDeals
				m.dealsView = view.NewDealsModel(m.trackerService, m.policy)

				return m, m.dealsView.Init()
			case "2":
				m.currentView = ViewInvestors
				m.investorsView = view.NewInvestorsModel(m.trackerService)

				return m, m.investorsView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.aliases, m.trackerService)

				return m, m.importView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.trackerService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDeals:
		var newModel tea.Model
		newModel, cmd = m.dealsView.Update(msg)
		m.dealsView = newModel.(view.DealsModel)
	case ViewInvestors:
		var newModel tea.Model
		newModel, cmd = m.investorsView.Update(msg)
		m.investorsView = newModel.(view.InvestorsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Deals\n" +
				"2. Investors\n" +
				"3. Import Remittances\n" +
				"4. Export Book\n\n" +
				"q. Quit",
		)
	case ViewDeals:
		current = m.dealsView
	case ViewInvestors:
		current = m.investorsView
	case ViewImport:
		current = m.importView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.Title() + " | " + current.ShortHelp())

	return current.View() + "\n" + help
}

func main() {
	m, closeStore := initialModel()
	defer closeStore()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
