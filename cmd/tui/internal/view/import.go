package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetree/internal/transaction"
)

const importTimeout = 2 * time.Minute

type Importer interface {
	Import(ctx context.Context, userID int64, r io.Reader, defaultCategory *int64) (*transaction.ImportResult, error)
}

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importer Importer

	state      importState
	filePicker filepicker.Model

	result *transaction.ImportResult
	status string
	err    error
}

func NewImportModel(importer Importer, userID int64) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel: CommonModel{UserID: userID},
		importer:    importer,
		filePicker:  fp,
	}
}

func (m ImportModel) Title() string     { return "Import Statement" }
func (m ImportModel) ShortHelp() string { return "Esc: back | Enter: select" }

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == importStateResult {
				m.state = importStateFilePick
				m.result = nil
				m.err = nil

				return m, nil
			}

			return m, Back
		}

	case importResultMsg:
		m.state = importStateResult
		m.result = msg.result
		m.err = msg.err

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a bank statement to import:\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf(
		"Imported %d transactions, skipped %d already stored.",
		len(m.result.Imported), len(m.result.Skipped),
	)))
	b.WriteString("\n\n")

	for _, tx := range m.result.Imported {
		desc := ""
		if tx.Description != nil {
			desc = *tx.Description
		}

		uncategorized := ""
		if tx.CategoryID == nil {
			uncategorized = faintStyle.Render(" (uncategorized)")
		}

		fmt.Fprintf(&b, "%s  %10s  %s%s\n", FormatDate(tx.Date), FormatAmount(tx.Signed()), desc, uncategorized)
	}

	return style.Render(b.String() + "\n(Esc to go back)")
}

type importResultMsg struct {
	result *transaction.ImportResult
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importer.Import(ctx, m.UserID, f, nil)

		return importResultMsg{result: result, err: err}
	}
}
