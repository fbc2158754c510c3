package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabsave/internal/types"
)

// ErrPickCancelled is returned when the picker is closed without a choice.
var ErrPickCancelled = errors.New("profile selection cancelled")

// ProfilePicker is a list for selecting a Firefox profile.
type ProfilePicker struct {
	Profiles []types.Profile
	Cursor   int
}

func NewProfilePicker(profiles []types.Profile) ProfilePicker {
	// Pre-select the default profile
	cursor := 0
	for i, p := range profiles {
		if p.IsDefault {
			cursor = i
			break
		}
	}
	return ProfilePicker{
		Profiles: profiles,
		Cursor:   cursor,
	}
}

func (m *ProfilePicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *ProfilePicker) MoveDown() {
	if m.Cursor < len(m.Profiles)-1 {
		m.Cursor++
	}
}

func (m ProfilePicker) Selected() types.Profile {
	return m.Profiles[m.Cursor]
}

func (m ProfilePicker) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	dimStyle := lipgloss.NewStyle().Faint(true)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Export tabs from which profile?") + "\n\n")

	for i, p := range m.Profiles {
		label := p.Name
		if p.IsDefault {
			label += " (default)"
		}
		if i == m.Cursor {
			b.WriteString(selectedStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(normalStyle.Render("  "+label) + "\n")
		}
	}

	if len(m.Profiles) > 0 {
		b.WriteString("\n" + normalStyle.Render(dimStyle.Render(m.Selected().SessionFile)) + "\n")
	}
	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter select · esc cancel"))

	return boxStyle.Render(b.String())
}

// pickerModel runs a ProfilePicker as a standalone bubbletea program.
type pickerModel struct {
	picker    ProfilePicker
	chosen    bool
	cancelled bool
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.picker.MoveUp()
	case "down", "j":
		m.picker.MoveDown()
	case "enter":
		m.chosen = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}
	return m.picker.View() + "\n"
}

// PickProfile lets the user choose one of profiles interactively.
func PickProfile(profiles []types.Profile) (types.Profile, error) {
	if len(profiles) == 0 {
		return types.Profile{}, fmt.Errorf("no profiles to choose from")
	}

	final, err := tea.NewProgram(pickerModel{picker: NewProfilePicker(profiles)}).Run()
	if err != nil {
		return types.Profile{}, fmt.Errorf("run profile picker: %w", err)
	}
	m := final.(pickerModel)
	if !m.chosen {
		return types.Profile{}, ErrPickCancelled
	}
	return m.picker.Selected(), nil
}
