package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/charmbracelet/sheetprompt/internal/state"
	xstrings "github.com/charmbracelet/x/exp/strings"
	"github.com/spf13/cobra"
)

const statusWordWrap = 80

func (c *cli) statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the selected API, the queries and the sheet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			md := statusMarkdown(c.sess.app)
			if c.cfg.Raw || !isOutputTTY() {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			out, err := renderMarkdown(md)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&c.cfg.Raw, "raw", "r", c.cfg.Raw, help["raw"])
	return withSession(cmd)
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(statusWordWrap),
	)
	if err != nil {
		return "", appError{err, "Could not create the markdown renderer."}
	}
	out, err := r.Render(md)
	if err != nil {
		return "", appError{err, "Could not render the status."}
	}
	return out, nil
}

// statusMarkdown summarizes what the next run would do.
func statusMarkdown(app *state.App) string {
	var sb strings.Builder
	api := app.API()
	key := "not set"
	if api.Key != "" {
		key = "set"
	}

	fmt.Fprintf(&sb, "# %s\n\n", api.Name)
	fmt.Fprintf(&sb, "- **URL:** %s\n", api.URL)
	fmt.Fprintf(&sb, "- **Model:** `%s`\n", api.SelectedModel)
	fmt.Fprintf(&sb, "- **Key:** %s\n\n", key)

	sb.WriteString("## System prompt\n\n")
	for _, line := range strings.Split(strings.TrimSpace(app.SystemPrompt), "\n") {
		fmt.Fprintf(&sb, "> %s\n", line)
	}
	sb.WriteString("\n")

	sb.WriteString("## Queries\n\n")
	for i, q := range app.Queries {
		mark := " "
		if q.Enabled {
			mark = "x"
		}
		text := oneLine(q.Text)
		if text == "" {
			text = "_empty_"
		} else {
			text = "`" + text + "`"
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, mark, text)
	}
	sb.WriteString("\n")

	sb.WriteString("## Sheet\n\n")
	rows, err := batch.ParseRows(app.Sheet)
	switch {
	case err != nil:
		fmt.Fprintf(&sb, "The sheet can't be parsed: %v\n", err)
	case len(rows) == 0:
		sb.WriteString("The sheet is empty.\n")
	default:
		columns := make([]string, 0, len(rows[0].Columns))
		for _, col := range rows[0].Columns {
			columns = append(columns, "`"+col+"`")
		}
		enabled := batch.CountEnabled(app.Queries)
		fmt.Fprintf(
			&sb,
			"%d rows with %s. A run sends %d requests.\n",
			len(rows),
			xstrings.EnglishJoin(columns, true),
			len(rows)*enabled,
		)
	}
	return sb.String()
}
