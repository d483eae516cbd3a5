package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagNoteUrgent bool
	flagNoteDue    string
	flagNotesLimit int
	flagNoteUndo   bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List team notes from the vault or the local store",
	Args:  cobra.NoArgs,
	RunE:  runNotes,
}

var notesAddCmd = &cobra.Command{
	Use:   "add TEXT",
	Short: "Add a note",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNotesAdd,
}

var notesDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Check off a local note (an id prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesDone,
}

func init() {
	notesDoneCmd.Flags().BoolVar(&flagNoteUndo, "undo", false, "Reopen the note instead")
	notesCmd.AddCommand(notesDoneCmd)
	notesCmd.Flags().IntVarP(&flagNotesLimit, "limit", "l", 20, "Max notes to list")
	notesAddCmd.Flags().BoolVar(&flagNoteUrgent, "urgent", false, "Mark the note urgent")
	notesAddCmd.Flags().StringVar(&flagNoteDue, "due", "", "Due date (YYYY-MM-DD)")
	notesCmd.AddCommand(notesAddCmd)
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	var (
		notes []model.Note
		where = "local"
	)
	if v := vaultClient(cfg); v != nil {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		remote, err := v.Notes(ctx)
		if err == nil {
			notes, where = remote, "vault"
		} else {
			warnf("vault: %v; showing local notes", err)
		}
	}
	if where == "local" {
		cache, err := openCache()
		if err != nil {
			return err
		}
		defer cache.Close()
		if notes, err = cache.ListNotes(flagNotesLimit); err != nil {
			return fmt.Errorf("listing notes: %w", err)
		}
	}
	if len(notes) > flagNotesLimit && flagNotesLimit > 0 {
		notes = notes[:flagNotesLimit]
	}

	fmt.Println()
	if len(notes) == 0 {
		fmt.Printf("  No %s notes yet. Add one with: echolon notes add \"text\"\n", where)
		return nil
	}

	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		flag := ""
		if n.Urgent {
			flag = "!"
		}
		rows = append(rows, []string{checkbox(n), shortID(n.ID), cli.FormatDate(n.CreatedAt), flag, n.Owner, n.Due, n.Text})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Notes (%s)", where),
		Headers: []string{"", "ID", "Date", "", "Owner", "Due", "Note"},
		Rows:    rows,
	}))
	return nil
}

func runNotesAdd(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.New("note text is empty")
	}
	if flagNoteDue != "" {
		if _, err := time.Parse("2006-01-02", flagNoteDue); err != nil {
			return fmt.Errorf("invalid --due %q: want YYYY-MM-DD", flagNoteDue)
		}
	}

	cfg := loadConfig()
	n := model.Note{
		Owner:     cfg.Vault.UserID,
		Text:      text,
		Urgent:    flagNoteUrgent,
		Due:       flagNoteDue,
		CreatedAt: time.Now(),
	}

	if v := vaultClient(cfg); v != nil {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		saved, err := v.PostNote(ctx, n)
		if err == nil {
			fmt.Printf("  Saved note %s to vault\n", saved.ID)
			return nil
		}
		warnf("vault: %v; saving locally", err)
	}

	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()
	saved, err := cache.AddNote(n)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	fmt.Printf("  Saved note %s locally\n", saved.ID)
	return nil
}

func runNotesDone(_ *cobra.Command, args []string) error {
	status := model.NoteDone
	if flagNoteUndo {
		status = model.NoteOpen
	}
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()
	id, err := cache.SetNoteStatus(strings.TrimSpace(args[0]), status)
	if err != nil {
		return fmt.Errorf("note %s: %w", args[0], err)
	}
	fmt.Printf("  Note %s marked %s\n", shortID(id), status)
	return nil
}

func checkbox(n model.Note) string {
	if n.Done() {
		return "[x]"
	}
	return "[ ]"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
