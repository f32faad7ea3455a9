package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/charmbracelet/sheetprompt/internal/cache"
	"github.com/charmbracelet/sheetprompt/internal/proto"
	"github.com/charmbracelet/sheetprompt/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const maxTitleLen = 50

type runOptions struct {
	sheet  string
	title  string
	copy   bool
	dryRun bool
}

func (c *cli) runCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send every row through the enabled queries.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.sheet, "sheet", "s", "", help["sheet"])
	flags.StringVarP(&opts.title, "title", "t", "", help["title"])
	flags.BoolVarP(&opts.copy, "copy", "c", false, help["copy"])
	flags.BoolVar(&opts.dryRun, "dry-run", false, help["dry-run"])
	flags.BoolVarP(&c.cfg.Quiet, "quiet", "q", c.cfg.Quiet, help["quiet"])
	flags.BoolVar(&c.cfg.NoHistory, "no-history", c.cfg.NoHistory, help["no-history"])
	flags.Var(newDurationFlag(c.cfg.Timeout, &c.cfg.Timeout), "timeout", help["timeout"])
	flags.IntVar(&c.cfg.MaxRetries, "max-retries", c.cfg.MaxRetries, help["max-retries"])
	flags.Int64Var(&c.cfg.MaxTokens, "max-tokens", c.cfg.MaxTokens, help["max-tokens"])
	flags.Float64Var(&c.cfg.Temperature, "temp", c.cfg.Temperature, help["temp"])
	flags.Float64Var(&c.cfg.TopP, "topp", c.cfg.TopP, help["topp"])
	flags.Float64Var(&c.cfg.PresencePenalty, "presence-penalty", c.cfg.PresencePenalty, help["presence-penalty"])
	return withSession(cmd)
}

func (c *cli) run(cmd *cobra.Command, opts runOptions) error {
	ctx := cmd.Context()
	if err := c.readSheet(cmd, opts.sheet); err != nil {
		return err
	}

	job := c.sess.app.Job(c.cfg.Params())
	rows, err := batch.ParseRows(job.Sheet)
	if err != nil {
		return appError{err, "Could not parse the sheet."}
	}
	if opts.dryRun {
		return printPrompts(cmd.OutOrStdout(), job)
	}
	if batch.CountEnabled(job.Queries) == 0 {
		c.logger.Warn("every query is disabled, nothing will be sent")
	}

	client, err := c.sess.client(job.API)
	if err != nil {
		return err
	}

	title := opts.title
	if title == "" {
		title = defaultTitle(job.Queries)
	}
	run := c.startRun(ctx, title, job, len(rows))

	st, runErr := c.runJob(ctx, client, job)
	fmt.Fprint(cmd.OutOrStdout(), st.Result)

	c.finishRun(ctx, run, st, runErr)
	if runErr != nil {
		return describeRunError(runErr, job.API)
	}

	if opts.copy {
		if err := clipboard.WriteAll(st.Result); err != nil {
			return appError{err, "Could not copy the result to the clipboard."}
		}
	}
	if run != nil && !c.cfg.Quiet && isErrTTY() {
		fmt.Fprintf(
			cmd.ErrOrStderr(),
			"\n  Run saved: %s %s\n\n",
			stderrStyles().SHA1.Render(shortID(run.ID)),
			stderrStyles().Comment.Render(run.Title),
		)
	}
	return nil
}

// readSheet replaces the saved sheet with the one given by src, or with
// piped stdin when there is something on it.
func (c *cli) readSheet(cmd *cobra.Command, src string) error {
	var sheet string
	switch {
	case src != "":
		s, err := loadSheet(cmd.Context(), src, cmd.InOrStdin())
		if err != nil {
			return err
		}
		sheet = s
	case !isInputTTY():
		bts, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return appError{err, "Unable to read stdin."}
		}
		if len(bytes.TrimSpace(bts)) == 0 {
			return nil
		}
		sheet = string(bts)
	default:
		return nil
	}

	if err := c.sess.app.SetSheet(cmd.Context(), sheet); err != nil {
		return appError{err, "Could not save the sheet."}
	}
	return nil
}

// runJob runs the job, showing the progress on stderr unless quiet.
func (c *cli) runJob(ctx context.Context, client batch.Completer, job batch.Job) (batch.State, error) {
	runner := batch.New(client, c.logger)
	if c.cfg.Quiet || !isErrTTY() {
		return runner.Run(ctx, job, func(st batch.State) {
			c.logger.Debug("progress", "rows", st.Progress())
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []tea.ProgramOption{tea.WithOutput(os.Stderr)}
	if !isInputTTY() {
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(newProgressModel(stderrStyles(), "Processing rows", cancel), opts...)

	var st batch.State
	var g errgroup.Group
	g.Go(func() error {
		defer p.Send(runDoneMsg{})
		var err error
		st, err = runner.Run(ctx, job, func(s batch.State) {
			p.Send(progressMsg(s))
		})
		return err
	})

	if _, err := p.Run(); err != nil {
		cancel()
		_ = g.Wait()
		return st, appError{err, "Could not start the progress view."}
	}
	err := g.Wait()
	return st, err //nolint:wrapcheck
}

func (c *cli) startRun(ctx context.Context, title string, job batch.Job, rows int) *store.Run {
	if c.cfg.NoHistory {
		return nil
	}
	run := &store.Run{
		ID:       newRunID(),
		Title:    title,
		API:      job.API.Name,
		Model:    job.API.SelectedModel,
		Rows:     rows,
		Progress: batch.State{Total: rows}.Progress(),
		Status:   store.StatusRunning,
	}
	if err := c.sess.db.SaveRun(ctx, *run); err != nil {
		c.logger.Warn("could not record run", "err", err)
		return nil
	}
	return run
}

func (c *cli) finishRun(ctx context.Context, run *store.Run, st batch.State, runErr error) {
	if run == nil {
		return
	}
	// the run may have been stopped by canceling ctx.
	ctx = context.WithoutCancel(ctx)

	out := cache.Output{Result: st.Result, Progress: st.Progress()}
	if runErr != nil {
		out.Err = runErr.Error()
	}
	if err := c.sess.outputs.Write(run.ID, &out); err != nil {
		c.logger.Warn("could not save run output", "id", run.ID, "err", err)
	}

	run.Progress = st.Progress()
	run.Status = runStatus(runErr)
	if err := c.sess.db.SaveRun(ctx, *run); err != nil {
		c.logger.Warn("could not record run", "id", run.ID, "err", err)
	}
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return store.StatusDone
	case errors.Is(err, context.Canceled):
		return store.StatusCanceled
	default:
		return store.StatusFailed
	}
}

// defaultTitle names a run after the first line of its first enabled query.
func defaultTitle(queries []batch.Query) string {
	for _, q := range queries {
		if !q.Enabled {
			continue
		}
		title, _, _ := strings.Cut(strings.TrimSpace(q.Text), "\n")
		if title == "" {
			break
		}
		if r := []rune(title); len(r) > maxTitleLen {
			title = string(r[:maxTitleLen-1]) + "…"
		}
		return title
	}
	return "untitled"
}

// printPrompts writes every request a run would send.
func printPrompts(w io.Writer, job batch.Job) error {
	prompts, err := batch.Prompts(job)
	if err != nil {
		return appError{err, "Could not parse the sheet."}
	}
	for _, p := range prompts {
		fmt.Fprintf(w, "# Row %d, query %d\n\n", p.Row, p.Query)
		fmt.Fprint(w, proto.Conversation(p.Request.Messages).String())
	}
	return nil
}
