package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/tui/components"
	"github.com/theirongolddev/echolon/internal/tui/theme"
	"github.com/theirongolddev/echolon/internal/vault"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const notesListLimit = 50

// notesState holds the note editor and the most recently fetched notes.
type notesState struct {
	input   textarea.Model
	urgent  bool
	saving  bool
	notes   []model.Note
	cursor  int
	remote  bool // notes came from the vault rather than the local store
	warning string
}

func newNotesState() notesState {
	ta := textarea.New()
	ta.Placeholder = "Write a note for the team..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetWidth(60)
	return notesState{input: ta}
}

type notesLoadedMsg struct {
	notes  []model.Note
	remote bool
	err    error
}

type noteSavedMsg struct {
	note  model.Note
	where string
	err   error
}

type noteStatusMsg struct {
	id     string
	status string
	err    error
}

var errEmptyNote = errors.New("note is empty")

// toggleNoteDone flips the selected note between open and done. Vault notes
// are append-only, so only local notes can be checked off.
func (a App) toggleNoteDone() (tea.Model, tea.Cmd) {
	if len(a.notesState.notes) == 0 {
		return a, nil
	}
	if a.notesState.remote {
		a.message = "vault notes are read-only"
		return a, nil
	}
	n := a.notesState.notes[min(a.notesState.cursor, len(a.notesState.notes)-1)]
	status := model.NoteDone
	if n.Done() {
		status = model.NoteOpen
	}
	return a, setNoteStatusCmd(n.ID, status)
}

func setNoteStatusCmd(id, status string) tea.Cmd {
	return func() tea.Msg {
		cache, err := storeOpen()
		if err != nil {
			return noteStatusMsg{err: err}
		}
		defer cache.Close()
		full, err := cache.SetNoteStatus(id, status)
		return noteStatusMsg{id: full, status: status, err: err}
	}
}

func (a App) updateNotesInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.notesState.input.Blur()
		return a, nil
	case "ctrl+t":
		a.notesState.urgent = !a.notesState.urgent
		return a, nil
	case "ctrl+s":
		if a.notesState.saving {
			return a, nil
		}
		text := strings.TrimSpace(a.notesState.input.Value())
		if text == "" {
			a.message = errEmptyNote.Error()
			return a, nil
		}
		a.notesState.saving = true
		n := model.Note{Text: text, Urgent: a.notesState.urgent, CreatedAt: time.Now()}
		return a, saveNoteCmd(a.opts.Vault, n)
	}

	var cmd tea.Cmd
	a.notesState.input, cmd = a.notesState.input.Update(msg)
	return a, cmd
}

// fetchNotesCmd lists notes from the vault, falling back to the local store.
func fetchNotesCmd(v *vault.Client) tea.Cmd {
	return func() tea.Msg {
		var vaultErr error
		if v != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			notes, err := v.Notes(ctx)
			if err == nil {
				return notesLoadedMsg{notes: notes, remote: true}
			}
			vaultErr = fmt.Errorf("vault: %w; showing local notes", err)
		}

		cache, err := storeOpen()
		if err != nil {
			return notesLoadedMsg{err: errors.Join(vaultErr, err)}
		}
		defer cache.Close()
		notes, err := cache.ListNotes(notesListLimit)
		if err != nil {
			return notesLoadedMsg{err: errors.Join(vaultErr, err)}
		}
		return notesLoadedMsg{notes: notes, err: vaultErr}
	}
}

// saveNoteCmd posts a note to the vault and keeps it locally when the
// vault is missing or fails.
func saveNoteCmd(v *vault.Client, n model.Note) tea.Cmd {
	return func() tea.Msg {
		where := "locally"
		if v != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			saved, err := v.PostNote(ctx, n)
			if err == nil {
				return noteSavedMsg{note: saved, where: "to vault"}
			}
			where = "locally (vault unavailable)"
		}

		cache, err := storeOpen()
		if err != nil {
			return noteSavedMsg{err: err}
		}
		defer cache.Close()
		saved, err := cache.AddNote(n)
		if err != nil {
			return noteSavedMsg{err: err}
		}
		return noteSavedMsg{note: saved, where: where}
	}
}

func (a App) renderNotesTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	urgentStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	metaStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	doneStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)

	// Editor
	var ed strings.Builder
	ed.WriteString(a.notesState.input.View())
	ed.WriteString("\n")
	if a.notesState.urgent {
		ed.WriteString(urgentStyle.Render("URGENT  "))
	}
	switch {
	case a.notesState.saving:
		ed.WriteString(dimStyle.Render("saving..."))
	case a.notesState.input.Focused():
		ed.WriteString(dimStyle.Render("ctrl+s save · ctrl+t urgent · esc done"))
	default:
		ed.WriteString(dimStyle.Render("enter to write · x check off · ctrl+r reload"))
	}
	title := "New Note"
	if a.opts.Vault == nil {
		title += " · local only"
	}
	b.WriteString(components.ContentCard(title, ed.String(), cw))
	b.WriteString("\n")

	// List
	var list strings.Builder
	if a.notesState.warning != "" {
		list.WriteString(warnStyle.Render(truncStr("⚠ "+a.notesState.warning, innerW)))
		list.WriteString("\n")
	}
	if len(a.notesState.notes) == 0 {
		list.WriteString(dimStyle.Render("No notes yet."))
	}
	for i, n := range a.notesState.notes {
		meta := cli.FormatDate(n.CreatedAt)
		if n.Owner != "" {
			meta += " · " + n.Owner
		}
		if n.Due != "" {
			meta += " · due " + n.Due
		}
		marker := "  "
		if i == a.notesState.cursor {
			marker = "▸ "
		}
		list.WriteString(metaStyle.Render(marker))
		if n.Done() {
			list.WriteString(doneStyle.Render("[x] "))
		} else {
			list.WriteString(dimStyle.Render("[ ] "))
		}
		if n.Urgent {
			list.WriteString(urgentStyle.Render("! "))
		} else {
			list.WriteString(dimStyle.Render("  "))
		}
		list.WriteString(metaStyle.Render(meta))
		list.WriteString("\n")
		body := textStyle
		if n.Done() {
			body = dimStyle.Strikethrough(true)
		}
		for _, line := range strings.Split(n.Text, "\n") {
			list.WriteString(body.Render("      " + truncStr(line, innerW-6)))
			list.WriteString("\n")
		}
		if i < len(a.notesState.notes)-1 {
			list.WriteString("\n")
		}
	}
	src := "Local Notes"
	if a.notesState.remote {
		src = "Vault Notes"
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("%s (%d)", src, len(a.notesState.notes)),
		strings.TrimRight(list.String(), "\n"), cw))
	return b.String()
}
