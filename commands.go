package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/sheetprompt/internal/state"
	"github.com/spf13/cobra"
)

func (c *cli) sheetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Show or replace the CSV data.",
	}
	cmd.AddCommand(
		withSession(&cobra.Command{
			Use:   "show",
			Short: "Print the CSV data.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprint(cmd.OutOrStdout(), c.sess.app.Sheet)
				return nil
			},
		}),
		withSession(&cobra.Command{
			Use:   "set [FILE|URL|-]",
			Short: "Replace the CSV data, reading stdin by default.",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				src := "-"
				if len(args) == 1 {
					src = args[0]
				}
				sheet, err := loadSheet(cmd.Context(), src, cmd.InOrStdin())
				if err != nil {
					return err
				}
				return c.save(c.sess.app.SetSheet(cmd.Context(), sheet))
			},
		}),
		withSession(&cobra.Command{
			Use:   "edit",
			Short: "Edit the CSV data in your $EDITOR.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sheet, err := editText(cmd.Context(), "sheet.csv", c.sess.app.Sheet)
				if err != nil {
					return err
				}
				return c.save(c.sess.app.SetSheet(cmd.Context(), sheet))
			},
		}),
	)
	return cmd
}

func (c *cli) queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"queries", "q"},
		Short:   "Manage the prompt templates.",
	}
	cmd.AddCommand(
		withSession(&cobra.Command{
			Use:   "list",
			Short: "List the queries.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				printQueries(cmd.OutOrStdout(), c.sess.app, isOutputTTY())
				return nil
			},
		}),
		withSession(&cobra.Command{
			Use:   "add [TEXT]",
			Short: "Add an enabled query, use {{column}} for row values.",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.save(c.sess.app.AddQuery(cmd.Context(), strings.Join(args, " ")))
			},
		}),
		withSession(&cobra.Command{
			Use:     "rm N",
			Aliases: []string{"delete"},
			Short:   "Delete a query. The last one is always kept.",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := parseIndex(args[0], len(c.sess.app.Queries), "query")
				if err != nil {
					return err
				}
				if len(c.sess.app.Queries) == 1 {
					c.logger.Warn("the last query can't be deleted")
				}
				return c.save(c.sess.app.DeleteQuery(cmd.Context(), i))
			},
		}),
		withSession(&cobra.Command{
			Use:   "toggle N",
			Short: "Enable or disable a query.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := parseIndex(args[0], len(c.sess.app.Queries), "query")
				if err != nil {
					return err
				}
				return c.save(c.sess.app.ToggleQuery(cmd.Context(), i))
			},
		}),
		withSession(&cobra.Command{
			Use:   "set N TEXT",
			Short: "Replace the text of a query.",
			Args:  cobra.MinimumNArgs(2), //nolint:mnd
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := parseIndex(args[0], len(c.sess.app.Queries), "query")
				if err != nil {
					return err
				}
				return c.save(c.sess.app.SetQueryText(cmd.Context(), i, strings.Join(args[1:], " ")))
			},
		}),
		withSession(&cobra.Command{
			Use:   "edit N",
			Short: "Edit a query in your $EDITOR.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := parseIndex(args[0], len(c.sess.app.Queries), "query")
				if err != nil {
					return err
				}
				text, err := editText(cmd.Context(), "query.md", c.sess.app.Queries[i].Text)
				if err != nil {
					return err
				}
				return c.save(c.sess.app.SetQueryText(cmd.Context(), i, strings.TrimSuffix(text, "\n")))
			},
		}),
	)
	return cmd
}

func (c *cli) systemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Show or change the system prompt.",
	}
	cmd.AddCommand(
		withSession(&cobra.Command{
			Use:   "show",
			Short: "Print the system prompt.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), c.sess.app.SystemPrompt)
				return nil
			},
		}),
		withSession(&cobra.Command{
			Use:   "set TEXT",
			Short: "Replace the system prompt.",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.save(c.sess.app.SetSystemPrompt(cmd.Context(), strings.Join(args, " ")))
			},
		}),
		withSession(&cobra.Command{
			Use:   "edit",
			Short: "Edit the system prompt in your $EDITOR.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				text, err := editText(cmd.Context(), "system.md", c.sess.app.SystemPrompt)
				if err != nil {
					return err
				}
				return c.save(c.sess.app.SetSystemPrompt(cmd.Context(), strings.TrimSuffix(text, "\n")))
			},
		}),
	)
	return cmd
}

func (c *cli) apiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Pick and configure the chat completion API.",
	}
	cmd.AddCommand(
		withSession(&cobra.Command{
			Use:   "list",
			Short: "List the APIs.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				printAPIs(cmd.OutOrStdout(), c.sess.app, isOutputTTY())
				return nil
			},
		}),
		withSession(&cobra.Command{
			Use:   "use N|NAME",
			Short: "Select the API used by runs.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := strconv.Atoi(args[0]); err == nil {
					i, err := parseIndex(args[0], len(c.sess.app.APIs), "api")
					if err != nil {
						return err
					}
					return c.save(c.sess.app.SelectAPI(cmd.Context(), i))
				}
				return c.save(c.sess.app.SelectAPIByName(cmd.Context(), args[0]))
			},
		}),
		withSession(&cobra.Command{
			Use:   "url URL",
			Short: "Set the chat completions URL of the selected API.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.save(c.sess.app.SetAPIURL(cmd.Context(), args[0]))
			},
		}),
		withSession(&cobra.Command{
			Use:   "key [KEY]",
			Short: "Set the key of the selected API, prompting for it if missing.",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var key string
				if len(args) == 1 {
					key = args[0]
				} else {
					var err error
					if key, err = c.askKey(cmd); err != nil {
						return err
					}
				}
				return c.save(c.sess.app.SetAPIKey(cmd.Context(), key))
			},
		}),
		withSession(&cobra.Command{
			Use:   "model [MODEL]",
			Short: "Select a model of the selected API, or list them.",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					printModels(cmd.OutOrStdout(), c.sess.app, isOutputTTY())
					return nil
				}
				return c.save(c.sess.app.SetModel(cmd.Context(), args[0]))
			},
		}),
		withSession(&cobra.Command{
			Use:   "add-model MODEL",
			Short: "Add a model to the selected API.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.save(c.sess.app.AddModel(cmd.Context(), args[0]))
			},
		}),
	)
	return cmd
}

func (c *cli) askKey(cmd *cobra.Command) (string, error) {
	api := c.sess.app.API()
	if !isInputTTY() {
		bts, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", appError{err, "Unable to read stdin."}
		}
		return strings.TrimSpace(string(bts)), nil
	}

	var key string
	if err := huh.NewInput().
		Title(fmt.Sprintf("%s API key", api.Name)).
		Description("Stored in the local database, sent as a bearer token.").
		EchoMode(huh.EchoModePassword).
		Value(&key).
		Run(); err != nil {
		return "", appError{err, "Could not read the key."}
	}
	return strings.TrimSpace(key), nil
}

// save turns state errors into user facing errors.
func (c *cli) save(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, state.ErrOutOfRange):
		return appError{err, "There is nothing at that position."}
	case errors.Is(err, state.ErrUnknownAPI):
		return appError{err, "There is no API with that name."}
	case errors.Is(err, state.ErrUnknownModel):
		return appError{err, fmt.Sprintf(
			"Unknown model, add it first with %s.",
			stderrStyles().InlineCode.Render("sheetprompt api add-model"),
		)}
	default:
		return appError{err, "Could not save your changes."}
	}
}
