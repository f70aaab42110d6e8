package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/budgetree/internal/period"
)

// Timeframe is one choice of the picker. Neither Period nor Custom set means every date.
type Timeframe struct {
	Label  string
	Period *string
	Custom bool
}

func timeframes() []Timeframe {
	out := make([]Timeframe, 0, len(period.Names)+2)
	for _, name := range period.Names {
		label := strings.ReplaceAll(string(name), "_", " ")
		out = append(out, Timeframe{Label: label, Period: new(string(name))})
	}

	return append(out,
		Timeframe{Label: "all time"},
		Timeframe{Label: "custom range", Custom: true},
	)
}

// TimeframeSelectedMsg carries the chosen range as report filter values. From is inclusive
// and To exclusive, both unix seconds.
type TimeframeSelectedMsg struct {
	Period *string
	From   *int64
	To     *int64
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

type TimeframePicker struct {
	state    timeframeState
	options  []Timeframe
	selected int

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		options:    timeframes(),
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == timeframeStateSelect {
			return m.updateSelect(keyMsg)
		}

		if next, cmd, handled := m.updateCustom(keyMsg); handled {
			return next, cmd
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(m.options)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		opt := m.options[m.selected]

		if opt.Custom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		sel := TimeframeSelectedMsg{Period: opt.Period}

		return m, func() tea.Msg { return sel }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		from, to, err := CustomRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil
		sel := TimeframeSelectedMsg{From: &from, To: &to}

		return m, func() tea.Msg { return sel }, true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

// CustomRange turns two inclusive YYYY-MM-DD days into a half-open range of UTC unix seconds.
func CustomRange(start, end string) (int64, int64, error) {
	from, err := time.Parse(time.DateOnly, strings.TrimSpace(start))
	if err != nil {
		return 0, 0, errors.New("invalid start date (YYYY-MM-DD)")
	}

	to, err := time.Parse(time.DateOnly, strings.TrimSpace(end))
	if err != nil {
		return 0, 0, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if to.Before(from) {
		return 0, 0, errors.New("end date is before start date")
	}

	return from.Unix(), to.AddDate(0, 0, 1).Unix(), nil
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	var b strings.Builder

	b.WriteString("Select Timeframe:\n\n")

	for i, opt := range m.options {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, opt.Label)
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	return b.String() + errStr
}

// IsSelecting returns true if the picker is in the selection state (not custom input).
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = 0
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
