package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	timeago "github.com/caarlos0/timea.go"
	"github.com/charmbracelet/sheetprompt/internal/cache"
	"github.com/charmbracelet/sheetprompt/internal/store"
	"github.com/spf13/cobra"
)

func (c *cli) runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "runs",
		Aliases: []string{"history"},
		Short:   "List, show and delete recorded runs.",
	}

	var copyResult bool
	show := withSession(&cobra.Command{
		Use:   "show [ID|TITLE]",
		Short: "Print the result of a run, the latest one by default.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := c.findRun(cmd, args)
			if err != nil {
				return err
			}
			var out cache.Output
			if err := c.sess.outputs.Read(run.ID, &out); err != nil {
				return appError{err, "Could not read the run output."}
			}
			fmt.Fprint(cmd.OutOrStdout(), out.Result)
			if out.Err != "" {
				c.logger.Warn("run stopped early", "progress", out.Progress, "err", out.Err)
			}
			if copyResult {
				if err := clipboard.WriteAll(out.Result); err != nil {
					return appError{err, "Could not copy the result to the clipboard."}
				}
			}
			return nil
		},
	})
	show.Flags().BoolVarP(&copyResult, "copy", "c", false, help["copy"])

	var olderThan time.Duration
	prune := withSession(&cobra.Command{
		Use:   "prune",
		Short: "Delete old runs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return appError{
					errors.New("missing --older-than"),
					"Tell me how old the runs to delete are with --older-than.",
				}
			}
			runs, err := c.sess.db.ListRunsOlderThan(cmd.Context(), olderThan)
			if err != nil {
				return appError{err, "Could not list runs."}
			}
			for _, run := range runs {
				if err := c.deleteRun(cmd, run); err != nil {
					return err
				}
			}
			if !c.cfg.Quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %d runs.\n", len(runs))
			}
			return nil
		},
	})
	prune.Flags().Var(newDurationFlag(0, &olderThan), "older-than", help["older-than"])

	cmd.AddCommand(
		withSession(&cobra.Command{
			Use:   "list",
			Short: "List recorded runs, newest first.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				runs, err := c.sess.db.ListRuns(cmd.Context())
				if err != nil {
					return appError{err, "Could not list runs."}
				}
				if len(runs) == 0 && isErrTTY() {
					fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
					return nil
				}
				printRuns(cmd.OutOrStdout(), runs, isOutputTTY())
				return nil
			},
		}),
		show,
		withSession(&cobra.Command{
			Use:     "rm ID|TITLE",
			Aliases: []string{"delete"},
			Short:   "Delete a run.",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				run, err := c.findRun(cmd, args)
				if err != nil {
					return err
				}
				return c.deleteRun(cmd, *run)
			},
		}),
		prune,
	)
	return cmd
}

func (c *cli) findRun(cmd *cobra.Command, args []string) (*store.Run, error) {
	var run *store.Run
	var err error
	if len(args) == 0 {
		run, err = c.sess.db.LatestRun(cmd.Context())
	} else {
		run, err = c.sess.db.FindRun(cmd.Context(), args[0])
	}
	switch {
	case errors.Is(err, store.ErrNoMatches):
		return nil, appError{err, "No run found."}
	case errors.Is(err, store.ErrManyMatches):
		return nil, appError{err, "More than one run matches, use a longer ID."}
	case err != nil:
		return nil, appError{err, "Could not find the run."}
	}
	return run, nil
}

func (c *cli) deleteRun(cmd *cobra.Command, run store.Run) error {
	if err := c.sess.db.DeleteRun(cmd.Context(), run.ID); err != nil {
		return appError{err, "Could not delete the run."}
	}
	if err := c.sess.outputs.Delete(run.ID); err != nil && !errors.Is(err, os.ErrNotExist) {
		return appError{err, "Could not delete the run output."}
	}
	c.logger.Debug("deleted run", "id", run.ID, "title", run.Title)
	return nil
}

func printRuns(w io.Writer, runs []store.Run, tty bool) {
	for _, run := range runs {
		if !tty {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(run.ID), run.Title, run.Status, run.Progress)
			continue
		}
		fmt.Fprintf(
			w, "%s %s %s %s\n",
			stdoutStyles().SHA1.Render(shortID(run.ID)),
			run.Title,
			stdoutStyles().Comment.Render(run.Status+" "+run.Progress),
			stdoutStyles().Timeago.Render(timeago.Of(run.Time())),
		)
	}
}
