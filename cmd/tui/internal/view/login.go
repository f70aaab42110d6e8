package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetree/internal/user"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

// LoggedInMsg is emitted once the credentials check out.
type LoggedInMsg struct {
	UserID   int64
	Username string
}

type loginFailedMsg struct {
	err error
}

type LoginModel struct {
	CommonModel
	users Authenticator

	form     *huh.Form
	email    string
	password string
	pending  bool
	err      error
}

func NewLoginModel(users Authenticator) LoginModel {
	m := LoginModel{users: users}
	m.form = m.buildForm()

	return m
}

func (m LoginModel) Title() string     { return "Login" }
func (m LoginModel) ShortHelp() string { return "Enter: submit | Ctrl+C: quit" }

func (m *LoginModel) buildForm() *huh.Form {
	notBlank := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s cannot be empty", field)
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.email).
				Validate(notBlank("email")),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(notBlank("password")),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if failed, ok := msg.(loginFailedMsg); ok {
		m.err = failed.err
		m.pending = false
		m.password = ""
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted || m.pending {
		return m, cmd
	}

	m.pending = true

	return m, m.authenticateCmd(strings.TrimSpace(m.form.GetString("email")), m.form.GetString("password"))
}

func (m LoginModel) authenticateCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.users.Authenticate(ctx, email, password)
		if err != nil {
			if errors.Is(err, user.ErrUserDoesNotExist) {
				err = user.ErrAuthorizationFailed
			}

			return loginFailedMsg{err: err}
		}

		return LoggedInMsg{UserID: u.ID, Username: u.Username}
	}
}

func (m LoginModel) View() string {
	content := lipgloss.NewStyle().Bold(true).Render("Budgetree") + "\n\n" + m.form.View()

	if m.err != nil {
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}
