package tui

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oneirolab/dreamweave/pkg/dreams"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type model struct {
	entries []dreams.Entry

	currentEntry entryDetailsMsg // Currently loaded entry details

	columnFocus int // 0 = entries, 1 = entry details
	width       int // Current terminal width (for layout)
	height      int // Current terminal height
	err         error

	db         *sql.DB
	dbFilename string

	quitting bool

	entryCursor int // Index of selected entry

	capturing          bool
	capturingStep      int // 0 = editing title, 1 = editing dream text
	capturingError     string
	titleInput         textinput.Model
	transcriptionInput textinput.Model

	entryDeleting         bool
	entryDeleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	// Animation state
	marqueeOffset int
	marqueeTimer  int
}

// Initialize TUI model
func initModel(db *sql.DB) model {
	// Fetch database file path with name
	_, file := getDbPragmaList(db)

	// Initialize text input fields for the capture form
	title := textinput.New()
	title.Placeholder = "Dream title (optional)"
	title.Focus() // focus title field initially
	title.CharLimit = 256

	transcription := textinput.New()
	transcription.Placeholder = "What happened in the dream?"
	transcription.CharLimit = 4000

	return model{
		entries: []dreams.Entry{},

		currentEntry: entryDetailsMsg{},

		columnFocus: 0,
		width:       0,
		height:      0,

		db:         db,
		dbFilename: filepath.Base(file),

		entryCursor: 0,

		titleInput:         title,
		transcriptionInput: transcription,

		marqueeOffset: 0,
		marqueeTimer:  0,
	}
}

// Execute commands concurrently with no ordering guarantees during initialization
func (m model) Init() tea.Cmd {
	return tea.Batch(
		listEntries(m.db),
		tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
			return t
		}),
	)
}

// Processes events like window resize, errors, loaded data, and key presses
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Save the new window size in the model for responsive layout
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case []dreams.Entry:
		// When entries are loaded from DB, store them in model
		m.entries = msg
		m.entryCursor = 0
		m.currentEntry = entryDetailsMsg{}
		if len(m.entries) > 0 {
			return m, getEntryDetails(m.db, m.entries[0].ID)
		}
		return m, nil

	case entryDetailsMsg:
		// Store the full entry detail in the model for the right pane
		m.currentEntry = msg
		return m, nil

	// Handle key presses for navigation and input
	case tea.KeyMsg:
		if m.capturing {
			// Capturing New Dream Mode
			switch msg.Type {
			case tea.KeyEnter:
				if m.capturingStep == 0 {
					// Press Enter on title field -> move to dream text field
					m.capturingError = ""
					m.capturingStep = 1
					m.titleInput.Blur()
					m.transcriptionInput.Focus()
				} else {
					// Press Enter on dream text field -> submit the form
					if m.transcriptionInput.Value() == "" {
						m.capturingError = "Dream text cannot be empty"
						return m, nil
					}

					_, err := dreams.CreateEntry(context.Background(), m.db, dreams.NewEntry{
						Title:         m.titleInput.Value(),
						Transcription: m.transcriptionInput.Value(),
					})
					if err != nil {
						m.err = err
					}
					// Exit capture mode, reset form inputs and reload the list
					m.capturing = false
					m.capturingStep = 0
					m.titleInput.Reset()
					m.transcriptionInput.Reset()
					return m, listEntries(m.db)
				}

			case tea.KeyEsc:
				// Cancel capture and reset form inputs
				m.capturing = false
				m.capturingStep = 0
				m.titleInput.Reset()
				m.transcriptionInput.Reset()
			}

			// If still in capture mode, route character input to the appropriate text field
			var cmd tea.Cmd
			if m.capturingStep == 0 {
				m.titleInput, cmd = m.titleInput.Update(msg)
			} else {
				m.transcriptionInput, cmd = m.transcriptionInput.Update(msg)
			}
			return m, cmd
		}

		if m.entryDeleting {
			// Deleting Entry Mode
			switch msg.String() {
			case "up", "k":
				m.entryDeleteConfirmIdx = 0

			case "down", "j":
				m.entryDeleteConfirmIdx = 1

			case "enter":
				if m.entryDeleteConfirmIdx == 0 {
					// Confirm deletion of selected entry, recordings included
					entryID := m.entries[m.entryCursor].ID
					err := dreams.DeleteEntry(context.Background(), m.db, entryID, os.Remove)
					if err != nil {
						m.err = err
						m.entryDeleting = false
						return m, nil
					}
					// Remove entry from list and adjust selection
					oldIndex := m.entryCursor
					m.entries = append(m.entries[:oldIndex], m.entries[oldIndex+1:]...)

					m.entryDeleting = false

					// Adjust cursor
					if len(m.entries) > 0 {
						if oldIndex > 0 {
							m.entryCursor--
						}
						m.currentEntry = entryDetailsMsg{}
						return m, getEntryDetails(m.db, m.entries[m.entryCursor].ID)
					}
					// No entry remaining; clear current entry
					m.currentEntry = entryDetailsMsg{}
					return m, nil
				}
				// Chosen No, cancel deletion
				m.entryDeleting = false
				return m, nil

			case "esc":
				// Cancel deletion on Escape
				m.entryDeleting = false
				return m, nil
			}
			return m, nil
		}

		// Root Navigation Mode
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			// Exit alt screen before quitting so the goodbye message displays
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

		case "up", "k":
			// Move selection up (stop at top)
			if m.entryCursor > 0 {
				m.entryCursor--
				return m, getEntryDetails(m.db, m.entries[m.entryCursor].ID)
			}

		case "down", "j":
			// Move selection down (stop at last item)
			if m.entryCursor < len(m.entries)-1 {
				m.entryCursor++
				return m, getEntryDetails(m.db, m.entries[m.entryCursor].ID)
			}

		case "n":
			m.capturingStep = 0
			m.titleInput.Reset()
			m.transcriptionInput.Reset()
			m.transcriptionInput.Blur() // Ensure dream text input is not focused
			m.titleInput.Focus()        // Make sure to focus the title input

			m.capturing = true

		case "d":
			if len(m.entries) > 0 {
				m.entryDeleteConfirmIdx = 1
				m.entryDeleting = true
			}
			return m, nil

		case "r":
			// Reload the list from the database
			return m, listEntries(m.db)
		}

	case time.Time:
		// Update marquee animation every x ticks (adjust for speed)
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
			return t
		})
	}

	return m, nil
}

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Closing the dream journal. Sleep well.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	titleText := "DreamWeave - voice-first dream journal"
	// Render the title bar (full width)
	titleBar := titleStyle.Width(m.width).Render(titleText)

	// Calculate column widths (left ~35%, right ~65%)
	leftWidth := (m.width * 35) / 100
	rightWidth := m.width - leftWidth

	bordersAndPaddingWidth := 4

	// Update input widths to match right pane
	m.titleInput.Width = rightWidth - bordersAndPaddingWidth
	m.transcriptionInput.Width = rightWidth - bordersAndPaddingWidth

	// Left column: entries list plus database info
	var entriesBuilder, infoBuilder strings.Builder

	quarterHeight := (m.height - bordersAndPaddingWidth) / 4

	entriesBuilder.WriteString(subtitleStyle.Width(leftWidth - bordersAndPaddingWidth).Render("  Dreams"))
	entriesBuilder.WriteString("\n\n")

	if len(m.entries) == 0 {
		entriesBuilder.WriteString("No dreams yet. Press 'n' to capture one.\n")
	} else {
		for i, entry := range m.entries {
			pointer := "  "
			itemStyle := inactiveStyle
			// Calculate available width for the row (panel width - pointer - padding - border)
			availableWidth := leftWidth - len(pointer) - 4 - 1

			label := entry.EntryDate + " " + entry.Title
			if entry.Title == "" {
				label = entry.EntryDate + " (untitled)"
			}

			if m.entryCursor == i {
				pointer = "> "
				itemStyle = selectedStyle
				label = marqueeText(label, availableWidth, m.marqueeOffset)
			} else {
				label = truncateText(label, availableWidth)
			}
			label = lipgloss.NewStyle().MaxWidth(availableWidth).Render(label)
			entriesBuilder.WriteString(pointer + itemStyle.Render(label) + "\n")
		}
	}

	infoBuilder.WriteString(fmt.Sprintf("Dreams: %d\nDatabase file: %s\n", len(m.entries), m.dbFilename))

	// Style and render the entries panel (top)
	entriesPanelStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, true, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2)
	entriesPanel := entriesPanelStyle.Width(leftWidth).Height(quarterHeight * 3).
		Render(entriesBuilder.String())

	// Style and render the info panel (bottom)
	infoPanelStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(1, 2)
	infoPanel := infoPanelStyle.Width(leftWidth).Height(quarterHeight).
		Render(infoBuilder.String())

	leftPanel := lipgloss.JoinVertical(lipgloss.Left, entriesPanel, infoPanel)

	// Right column: entry detail, capture form or delete confirmation
	var rightBuilder strings.Builder

	rightSubtitleText := "Dream"
	if m.capturing {
		rightSubtitleText = "Capture New Dream"
	}
	if m.entryDeleting {
		rightSubtitleText = "Delete Dream"
	}
	rightBuilder.WriteString(subtitleStyle.Width(rightWidth - bordersAndPaddingWidth).Render(rightSubtitleText))
	rightBuilder.WriteString("\n\n")

	if m.capturing {
		// Show the capture form
		rightBuilder.WriteString("Title: " + m.titleInput.View() + "\n")
		rightBuilder.WriteString("Dream: " + m.transcriptionInput.View() + "\n\n")
		rightBuilder.WriteString("(enter to submit, esc to cancel)")

		if m.capturingError != "" {
			rightBuilder.WriteString("\n\n" + errorStyle.Render(m.capturingError) + "\n")
		}
	} else if m.entryDeleting {
		// Show delete confirmation prompt
		doomed := m.entries[m.entryCursor]
		rightBuilder.WriteString("Title: " + errorStyle.Render(doomed.Title) + "\n")
		rightBuilder.WriteString("This also deletes its recordings, analysis and images.\n\n")
		yesOpt, noOpt := "Yes", "No"
		if m.entryDeleteConfirmIdx == 0 {
			yesOpt = dangerSelectedStyle.Render(" >" + yesOpt)
			noOpt = inactiveStyle.Render("  " + noOpt)
		} else {
			yesOpt = inactiveStyle.Render("  " + yesOpt)
			noOpt = selectedStyle.Render(" >" + noOpt)
		}
		rightBuilder.WriteString(fmt.Sprintf("%s\n%s\n\n", yesOpt, noOpt))
		rightBuilder.WriteString("(enter to confirm, esc to cancel, up/down to switch)")
	} else if m.currentEntry.detail.ID != 0 {
		detail := m.currentEntry.detail

		entryTitle := detail.Title
		if entryTitle == "" {
			entryTitle = "(untitled)"
		}
		rightBuilder.WriteString(lipgloss.NewStyle().Bold(true).
			Render(labelStyle.Render("Title: ")+inactiveStyle.Render(entryTitle)) + "\n")
		rightBuilder.WriteString(labelStyle.Render("Date: ") + inactiveStyle.Render(detail.EntryDate) + "\n")
		rightBuilder.WriteString(labelStyle.Render("Lucidity: ") + accentStyle.Render(levelDots(detail.LucidityLevel)) +
			labelStyle.Render("  Vividness: ") + accentStyle.Render(levelDots(detail.VividnessLevel)) + "\n\n")

		// Detected labels for the dream
		var tagsLine string
		if detail.Analysis != nil {
			tags := append([]string{}, detail.Analysis.Emotions...)
			tags = append(tags, detail.Analysis.Themes...)
			tags = append(tags, detail.Analysis.Symbols...)
			if len(tags) > 0 {
				tagsLine = strings.Join(tags, " ")
			}
		}
		if tagsLine == "" {
			tagsLine = "-"
		}
		rightBuilder.WriteString(labelStyle.Render("Detected: ") + accentStyle.Render(tagsLine) + "\n\n")

		// Dream text
		rightBuilder.WriteString(inactiveStyle.Render(detail.Transcription))
		if detail.Description != "" {
			rightBuilder.WriteString("\n\n" + inactiveStyle.Render(detail.Description))
		}
		if detail.ImageURL != "" {
			rightBuilder.WriteString("\n\n" + labelStyle.Render("Image: ") + inactiveStyle.Render(detail.ImageURL))
		}
	} else {
		rightBuilder.WriteString("Select a dream to view details.")
	}

	panelHeightPadding := 3

	// Right panel: no border (open content area)
	rightPanelStyle := lipgloss.NewStyle().Padding(0, 2)
	rightPanel := rightPanelStyle.Width(rightWidth).Height(m.height - panelHeightPadding).
		Render(rightBuilder.String())

	// Join the two panels horizontally (top aligned)
	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	// Footer with usage instructions
	footerText := "\n↑/↓ to navigate • n to capture • d to delete • r to reload • q to quit"
	footerBar := footerStyle.Width(m.width).Render(footerText)

	// Assemble final UI string
	return titleBar + "\n\n" + columns + footerBar
}

// Create and start the Bubble Tea TUI
func ShowTUI(db *sql.DB) error {
	p := tea.NewProgram(initModel(db), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
