package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budgetree/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budgetree/internal/category"
	categoryStore "github.com/MrJamesThe3rd/budgetree/internal/category/store"
	"github.com/MrJamesThe3rd/budgetree/internal/config"
	"github.com/MrJamesThe3rd/budgetree/internal/database"
	"github.com/MrJamesThe3rd/budgetree/internal/export"
	"github.com/MrJamesThe3rd/budgetree/internal/importer"
	"github.com/MrJamesThe3rd/budgetree/internal/logging"
	"github.com/MrJamesThe3rd/budgetree/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/budgetree/internal/matching/store"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budgetree/internal/transaction/store"
	"github.com/MrJamesThe3rd/budgetree/internal/user"
	userStore "github.com/MrJamesThe3rd/budgetree/internal/user/store"
)

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewReport
	ViewTree
	ViewImport
	ViewExport
)

type model struct {
	userService     *user.Service
	categoryService *category.Service
	reportService   *report.Service
	importService   *importer.Service
	exportService   *export.Service
	pageSize        int

	currentView View
	userID      int64
	username    string

	loginView  view.LoginModel
	reportView view.ReportModel
	treeView   view.TreeModel
	importView view.ImportModel
	exportView view.ExportModel
}

func initialModel(cfg *config.Config) model {
	db, err := database.New(cfg.ConnectionString(), database.PoolConfig{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	userSvc := user.NewService(userStore.New(db), cfg.Auth.BcryptCost)
	catSvc := category.NewService(categoryStore.New(db))
	txSvc := transaction.NewService(txStore.New(db), catSvc)
	reportSvc := report.NewService(catSvc, txSvc)
	matchSvc := matching.NewService(matchingStore.New(db), catSvc)

	return model{
		userService:     userSvc,
		categoryService: catSvc,
		reportService:   reportSvc,
		importService:   importer.NewService(matchSvc, txSvc),
		exportService:   export.NewService(reportSvc, cfg.Report.MaxPageSize),
		pageSize:        cfg.Report.DefaultPageSize,
		currentView:     ViewLogin,
		loginView:       view.NewLoginModel(userSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
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
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.reportService, m.userID, m.pageSize)

				return m, m.reportView.Init()
			case "2":
				m.currentView = ViewTree
				m.treeView = view.NewTreeModel(m.categoryService, m.userID)

				return m, m.treeView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.userID)

				return m, m.importView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.userID)

				return m, m.exportView.Init()
			}
		}
	case view.LoggedInMsg:
		m.userID = msg.UserID
		m.username = msg.Username
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	case ViewTree:
		var newModel tea.Model
		newModel, cmd = m.treeView.Update(msg)
		m.treeView = newModel.(view.TreeModel)
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
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Budgetree - %s\n\n", m.username) +
				"1. Browse Report\n" +
				"2. Categories\n" +
				"3. Import Statement\n" +
				"4. Export Transactions\n\n" +
				"q. Quit",
		)
	case ViewReport:
		return m.reportView.View()
	case ViewTree:
		return m.treeView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the program, so logs go to a file.
	logFile, err := tea.LogToFile("budgetree-tui.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logging.Setup(logFile, cfg.Log.Level, cfg.Log.Format)

	p := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
