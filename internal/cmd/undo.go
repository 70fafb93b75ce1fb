package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Digital-Shane/scrappy/internal/config"
	"github.com/Digital-Shane/scrappy/internal/log"
	"github.com/spf13/cobra"
)

type undoOptions struct {
	list    bool
	limit   int
	session string
}

func newUndoCommand(_ *globalOptions) *cobra.Command {
	opts := &undoOptions{}

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo a previous rename session",
		Long: `Reverse the renames of a journaled session, newest rename first. Without
--session the most recent session is undone. A fully undone session is removed
from the journal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.LogDir()
			if err != nil {
				return err
			}
			if opts.list {
				return listSessions(cmd, dir, opts.limit)
			}
			return undoSession(cmd, dir, opts.session)
		},
	}

	cmd.Flags().BoolVar(&opts.list, "list", false, "List recent sessions instead of undoing")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Number of sessions --list shows")
	cmd.Flags().StringVarP(&opts.session, "session", "s", "", "ID (or ID prefix) of the session to undo")
	return cmd
}

func listSessions(cmd *cobra.Command, dir string, limit int) error {
	sessions, err := log.ReadSessions(dir, limit)
	if err != nil {
		return fmt.Errorf("failed to read log sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No rename sessions found.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		meta := s.Metadata
		rows = append(rows, []string{
			shortID(meta.SessionID),
			log.RelativeTime(meta.Timestamp, now),
			strings.Join(meta.CommandArgs, " "),
			meta.WorkingDir,
			fmt.Sprintf("%d/%d", meta.SuccessfulOps, meta.TotalOps),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Session", "When", "Command", "Directory", "Ops"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}

func undoSession(cmd *cobra.Command, dir, id string) error {
	session, err := log.FindSession(dir, id)
	if err != nil {
		return err
	}

	successful, failed, errs := log.UndoSession(session)
	fmt.Fprintf(cmd.OutOrStdout(), "Session %s: %d renames undone, %d failed\n",
		shortID(session.Metadata.SessionID), successful, failed)

	if failed > 0 {
		return fmt.Errorf("undo incomplete: %w", errors.Join(errs...))
	}
	return session.Discard()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
