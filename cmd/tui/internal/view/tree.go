package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetree/internal/category"
)

type Categories interface {
	Forest(ctx context.Context, userID int64) (*category.Forest, error)
	Create(ctx context.Context, params category.CreateParams) (*category.Category, error)
	Delete(ctx context.Context, id, userID int64) error
}

type treeState int

const (
	treeStateBrowse treeState = iota
	treeStateAdd
	treeStateConfirmDelete
)

// TreeLine is one rendered row of the category forest.
type TreeLine struct {
	Category *category.Category
	Depth    int
}

// FlattenForest lists the forest depth first, children sorted by name.
func FlattenForest(f *category.Forest) []TreeLine {
	var lines []TreeLine

	f.Walk(func(c *category.Category, depth int) {
		lines = append(lines, TreeLine{Category: c, Depth: depth})
	})

	return lines
}

// SelectionInfo describes the category id: its path from the root and how many
// subcategories sit below it.
func SelectionInfo(f *category.Forest, id int64) string {
	if _, ok := f.Get(id); !ok {
		return ""
	}

	info := "Path: " + Breadcrumb(f.Ancestors(id))

	switch below := len(f.Descendants(id)) - 1; below {
	case 0:
	case 1:
		info += " | 1 subcategory"
	default:
		info += fmt.Sprintf(" | %d subcategories", below)
	}

	return info
}

// DeleteDescription warns what deleting id does to the rest of the forest.
func DeleteDescription(f *category.Forest, id int64) string {
	switch n := len(f.Children(id)); n {
	case 0:
		return "Its transactions lose their category."
	case 1:
		return "1 subcategory moves to the top level and its transactions lose their category."
	default:
		return fmt.Sprintf("%d subcategories move to the top level and its transactions lose their category.", n)
	}
}

type TreeModel struct {
	CommonModel
	categories Categories

	state  treeState
	forest *category.Forest
	lines  []TreeLine
	cursor int

	form     *huh.Form
	formName string
	asChild  bool
	confirm  bool

	status string
	err    error
}

func NewTreeModel(categories Categories, userID int64) TreeModel {
	return TreeModel{
		CommonModel: CommonModel{UserID: userID},
		categories:  categories,
	}
}

func (m TreeModel) Title() string { return "Categories" }

func (m TreeModel) ShortHelp() string {
	if m.state != treeStateBrowse {
		return "Esc: cancel"
	}

	return "Esc: back | ↑/↓: move | a: add | d: delete | r: refresh"
}

func (m TreeModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TreeModel) selected() *category.Category {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return nil
	}

	return m.lines[m.cursor].Category
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTreeMsg:
		m.err = msg.err
		if msg.err == nil {
			var prev int64
			if sel := m.selected(); sel != nil {
				prev = sel.ID
			}

			m.forest = msg.forest
			m.lines = FlattenForest(msg.forest)
			m.cursor = min(m.cursor, max(len(m.lines)-1, 0))

			if _, ok := m.forest.Get(prev); ok {
				for i, line := range m.lines {
					if line.Category.ID == prev {
						m.cursor = i
						break
					}
				}
			}
		}

		return m, nil

	case treeChangedMsg:
		m.state = treeStateBrowse
		m.form = nil
		m.status = msg.status

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()
	}

	switch m.state {
	case treeStateAdd, treeStateConfirmDelete:
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.lines)-1 {
			m.cursor++
		}
	case "r":
		return m, m.loadCmd()
	case "a":
		return m.enterAdd()
	case "d":
		return m.enterDelete()
	}

	return m, nil
}

func (m TreeModel) enterAdd() (tea.Model, tea.Cmd) {
	m.formName = ""
	m.asChild = false

	fields := []huh.Field{
		huh.NewInput().
			Key("name").
			Title("Name").
			Value(&m.formName).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name cannot be empty")
				}
				return nil
			}),
	}

	if sel := m.selected(); sel != nil {
		fields = append(fields, huh.NewConfirm().
			Key("child").
			Title(fmt.Sprintf("Add under %q?", sel.Name)).
			Affirmative("Child").
			Negative("Top level").
			Value(&m.asChild))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.state = treeStateAdd

	return m, m.form.Init()
}

func (m TreeModel) enterDelete() (tea.Model, tea.Cmd) {
	sel := m.selected()
	if sel == nil {
		return m, nil
	}

	m.confirm = false
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Key("confirm").
			Title(fmt.Sprintf("Delete %q?", sel.Name)).
			Description(DeleteDescription(m.forest, sel.ID)).
			Value(&m.confirm),
	)).WithWidth(45).WithShowHelp(false)
	m.state = treeStateConfirmDelete

	return m, m.form.Init()
}

func (m TreeModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = treeStateBrowse
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	sel := m.selected()
	done, state := m.form, m.state

	m.state = treeStateBrowse
	m.form = nil

	if state == treeStateAdd {
		var parentID *int64
		if done.GetBool("child") && sel != nil {
			parentID = &sel.ID
		}

		return m, m.createCmd(strings.TrimSpace(done.GetString("name")), parentID)
	}

	if !done.GetBool("confirm") || sel == nil {
		return m, nil
	}

	return m, m.deleteCmd(sel)
}

func (m TreeModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	var b strings.Builder

	title := "Categories"
	if m.forest != nil {
		title = fmt.Sprintf("Categories (%d)", m.forest.Len())
	}

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")

	if len(m.lines) == 0 {
		b.WriteString(faintStyle.Render("No categories yet, press a to add one.") + "\n")
	}

	for i, line := range m.lines {
		cursor := "  "
		name := line.Category.Name

		if i == m.cursor {
			cursor = "> "
			name = activeStyle(name)
		}

		b.WriteString(cursor + strings.Repeat("  ", line.Depth) + name + "\n")
	}

	if sel := m.selected(); sel != nil && m.forest != nil {
		b.WriteString("\n" + faintStyle.Render(SelectionInfo(m.forest, sel.ID)) + "\n")
	}

	content := b.String()

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + faintStyle.Render(m.ShortHelp()))
}

type loadTreeMsg struct {
	forest *category.Forest
	err    error
}

type treeChangedMsg struct {
	status string
	err    error
}

func (m TreeModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		forest, err := m.categories.Forest(ctx, m.UserID)

		return loadTreeMsg{forest: forest, err: err}
	}
}

func (m TreeModel) createCmd(name string, parentID *int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.categories.Create(ctx, category.CreateParams{
			Name:     name,
			ParentID: parentID,
			UserID:   m.UserID,
		})
		if errors.Is(err, category.ErrFullCopy) {
			return treeChangedMsg{status: fmt.Sprintf("%q already exists", name)}
		}

		return treeChangedMsg{status: fmt.Sprintf("Added %q", name), err: err}
	}
}

func (m TreeModel) deleteCmd(c *category.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.categories.Delete(ctx, c.ID, m.UserID)

		return treeChangedMsg{status: fmt.Sprintf("Deleted %q", c.Name), err: err}
	}
}
