package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// EntryPickerAction represents the action to perform after selection.
type EntryPickerAction int

const (
	// EntryPickerActionNone means no action was taken (user quit).
	EntryPickerActionNone EntryPickerAction = iota
	// EntryPickerActionSelect means the user confirmed a provider and entries.
	EntryPickerActionSelect
)

// EntryItem is one command or skill offered by the picker.
type EntryItem struct {
	Ref         model.EntryRef
	Description string
	Ready       bool
}

// EntryPickerResult contains the result of the entry picker interaction.
type EntryPickerResult struct {
	Action   EntryPickerAction
	Provider model.Provider
	// Refs lists the chosen entries in list order. Empty means the whole bundle.
	Refs []model.EntryRef
}

// IsBundle reports whether the whole provider bundle was chosen.
func (r EntryPickerResult) IsBundle() bool {
	return len(r.Refs) == 0
}

type entryPickerPhase int

const (
	phaseProvider entryPickerPhase = iota
	phaseEntries
)

type entryPickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Back    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultEntryPickerKeyMap() entryPickerKeyMap {
	return entryPickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// EntryPickerModel is the BubbleTea model that picks a provider and then the commands and
// skills to extract from its archives.
type EntryPickerModel struct {
	providers []model.Provider
	items     []EntryItem
	selected  map[int]bool
	cursor    int
	provider  model.Provider
	phase     entryPickerPhase
	keys      entryPickerKeyMap
	result    EntryPickerResult
	showHelp  bool
	width     int
	height    int
	quitting  bool
}

var entryPickerStyles = struct {
	Title       lipgloss.Style
	Help        lipgloss.Style
	Item        lipgloss.Style
	Selected    lipgloss.Style
	Description lipgloss.Style
	Status      lipgloss.Style
	Highlight   lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Item:        lipgloss.NewStyle().Padding(0, 2),
	Selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2),
	Description: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 4),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	Highlight:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
}

// NewEntryPickerModel creates a picker over items. A non-empty provider skips the
// provider phase.
func NewEntryPickerModel(provider model.Provider, items []EntryItem) EntryPickerModel {
	m := EntryPickerModel{
		providers: model.AllProviders(),
		items:     items,
		selected:  make(map[int]bool),
		keys:      defaultEntryPickerKeyMap(),
		phase:     phaseProvider,
		width:     80,
	}
	if provider != "" {
		m.provider = provider
		m.phase = phaseEntries
	}
	return m
}

// Init implements tea.Model.
func (m EntryPickerModel) Init() tea.Cmd {
	return nil
}

func (m EntryPickerModel) listLen() int {
	if m.phase == phaseProvider {
		return len(m.providers)
	}
	return len(m.items)
}

// Update implements tea.Model.
func (m EntryPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < m.listLen()-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, m.keys.Back):
			if m.phase == phaseEntries && len(m.providers) > 0 {
				m.phase = phaseProvider
				m.cursor = 0
				for i, p := range m.providers {
					if p == m.provider {
						m.cursor = i
						break
					}
				}
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Toggle):
			if m.phase == phaseEntries && len(m.items) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
			return m, nil

		case key.Matches(msg, m.keys.All):
			if m.phase == phaseEntries {
				all := len(m.selectedRefs()) < len(m.items)
				for i := range m.items {
					m.selected[i] = all
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Confirm):
			if m.phase == phaseProvider {
				m.provider = m.providers[m.cursor]
				m.phase = phaseEntries
				m.cursor = 0
				return m, nil
			}

			m.result = EntryPickerResult{
				Action:   EntryPickerActionSelect,
				Provider: m.provider,
				Refs:     m.selectedRefs(),
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m EntryPickerModel) selectedRefs() []model.EntryRef {
	var refs []model.EntryRef
	for i, item := range m.items {
		if m.selected[i] {
			refs = append(refs, item.Ref)
		}
	}
	return refs
}

// View implements tea.Model.
func (m EntryPickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.phase == phaseProvider {
		b.WriteString(entryPickerStyles.Title.Render("Extract - Select Provider"))
		b.WriteString("\n\n")
		for i, p := range m.providers {
			b.WriteString(m.renderLine(i, p.String()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(entryPickerStyles.Status.Render("Select the provider to extract"))
		b.WriteString("\n")
		b.WriteString(m.renderHelp())
		return b.String()
	}

	b.WriteString(entryPickerStyles.Title.Render("Extract - Select Entries"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Provider: %s\n\n", entryPickerStyles.Highlight.Render(m.provider.String())))

	for i, item := range m.items {
		check := "[ ]"
		if m.selected[i] {
			check = "[x]"
		}
		label := fmt.Sprintf("%s %s/%s", check, item.Ref.Kind, item.Ref.ID)
		if !item.Ready {
			label += " (pending)"
		}
		b.WriteString(m.renderLine(i, truncateText(label, m.width-6)))
		b.WriteString("\n")
	}

	if m.cursor < len(m.items) && m.items[m.cursor].Description != "" {
		b.WriteString("\n")
		b.WriteString(entryPickerStyles.Description.Render(formatDescription(m.items[m.cursor].Description, m.width-8)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := fmt.Sprintf("%d of %d selected", len(m.selectedRefs()), len(m.items))
	if len(m.selectedRefs()) == 0 {
		status += " (enter extracts the whole bundle)"
	}
	b.WriteString(entryPickerStyles.Status.Render(status))
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m EntryPickerModel) renderLine(i int, text string) string {
	if i == m.cursor {
		return entryPickerStyles.Selected.Render("> " + text)
	}
	return entryPickerStyles.Item.Render("  " + text)
}

func (m EntryPickerModel) renderHelp() string {
	if m.showHelp {
		help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down

Actions:
  Space    Toggle entry
  a        Toggle all entries
  Enter    Confirm
  Esc      Go back

General:
  ?        Toggle full help
  q        Quit`
		return "\n" + entryPickerStyles.Help.Render(help)
	}

	keys := []string{"↑/↓ navigate"}
	if m.phase == phaseEntries {
		keys = append(keys, "space toggle", "a all")
	}
	keys = append(keys, "enter confirm", "esc back", "? help", "q quit")
	return entryPickerStyles.Help.Render(strings.Join(keys, " • "))
}

// Result returns the result of the user interaction.
func (m EntryPickerModel) Result() EntryPickerResult {
	return m.result
}

// RunEntryPicker runs the interactive entry picker and returns the result.
func RunEntryPicker(provider model.Provider, items []EntryItem) (EntryPickerResult, error) {
	m, err := Run(NewEntryPickerModel(provider, items))
	if err != nil {
		return EntryPickerResult{}, err
	}
	return m.Result(), nil
}
