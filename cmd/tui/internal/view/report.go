package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
	"github.com/MrJamesThe3rd/budgetree/internal/period"
	"github.com/MrJamesThe3rd/budgetree/internal/report"
)

type ReportBuilder interface {
	Build(ctx context.Context, f report.Filters, userID int64) (*report.Report, error)
}

type ReportModel struct {
	CommonModel
	reports ReportBuilder

	table     table.Model
	rep       *report.Report
	periodIdx int
	page      int
	pageSize  int

	loading bool
	err     error
}

func NewReportModel(reports ReportBuilder, userID int64, pageSize int) ReportModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 36},
		{Title: "Category", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ReportModel{
		CommonModel: CommonModel{UserID: userID},
		reports:     reports,
		table:       t,
		page:        1,
		pageSize:    pageSize,
		loading:     true,
	}
}

func (m ReportModel) Title() string     { return "Report" }
func (m ReportModel) ShortHelp() string { return "Esc: back | p: period | n: next page | b: previous page | r: refresh" }

func (m ReportModel) Init() tea.Cmd {
	return m.loadCmd()
}

// PeriodLabel names the period at idx of the cycle; idx 0 means every date.
func PeriodLabel(idx int) string {
	if idx == 0 {
		return "all time"
	}

	return string(period.Names[idx-1])
}

// NextPeriod advances the period cycle, wrapping back to every date.
func NextPeriod(idx int) int {
	return (idx + 1) % (len(period.Names) + 1)
}

func (m ReportModel) filters() report.Filters {
	f := report.Filters{Page: m.page, PageSize: m.pageSize}
	if m.periodIdx > 0 {
		f.Period = new(string(period.Names[m.periodIdx-1]))
	}

	return f
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadReportMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.rep = msg.rep
			m.table.SetRows(reportRows(msg.rep))
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			m.periodIdx = NextPeriod(m.periodIdx)
			m.page = 1
			m.loading = true

			return m, m.loadCmd()
		case "n":
			if m.rep == nil || m.rep.NextPage == "" {
				return m, nil
			}

			m.page++
			m.loading = true

			return m, m.loadCmd()
		case "b":
			if m.page <= 1 {
				return m, nil
			}

			m.page--
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func reportRows(rep *report.Report) []table.Row {
	rows := make([]table.Row, 0, len(rep.Lines))

	for _, line := range rep.Lines {
		desc := ""
		if line.Transaction.Description != nil {
			desc = *line.Transaction.Description
		}

		rows = append(rows, table.Row{
			FormatDate(line.Transaction.Date),
			FormatAmount(line.Transaction.Signed()),
			desc,
			Breadcrumb(line.Categories),
		})
	}

	return rows
}

// Breadcrumb renders a child-first category path root first.
func Breadcrumb(path []category.Node) string {
	names := make([]string, len(path))
	for i, n := range path {
		names[len(path)-1-i] = n.Name
	}

	return strings.Join(names, " > ")
}

func (m ReportModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(p: next period, Esc: back)",
		)
	}

	if m.loading || m.rep == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading report...")
	}

	header := fmt.Sprintf(
		"[p] Period: %s | Page %d of %d | %d transactions | Total: %s",
		activeStyle(PeriodLabel(m.periodIdx)),
		m.rep.Page,
		max(m.rep.TotalPages, 1),
		m.rep.TotalItems,
		activeStyle(FormatAmount(m.rep.Total)),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render(m.ShortHelp()),
	))
}

type loadReportMsg struct {
	rep *report.Report
	err error
}

func (m ReportModel) loadCmd() tea.Cmd {
	f := m.filters()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rep, err := m.reports.Build(ctx, f, m.UserID)
		if f.Page == 1 && errors.Is(err, report.ErrPageNotExist) {
			return loadReportMsg{rep: &report.Report{Page: 1, PageSize: f.PageSize, Lines: []report.Line{}}}
		}

		return loadReportMsg{rep: rep, err: err}
	}
}
