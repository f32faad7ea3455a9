package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

// sessionAnnotation marks commands that need the database and state.
const sessionAnnotation = "session"

type cli struct {
	cfg    *Config
	logger *log.Logger
	sess   *session
	root   *cobra.Command
}

func newCLI(cfg *Config) *cli {
	c := &cli{cfg: cfg}
	root := &cobra.Command{
		Use:               "sheetprompt",
		Short:             "Run every row of a CSV through your prompts.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           buildVersion(),
		PersistentPreRunE: c.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	root.SetUsageFunc(usageFunc)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newFlagParseError(err)
	})
	root.PersistentFlags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, help["verbose"])

	root.AddCommand(
		c.runCmd(),
		c.sheetCmd(),
		c.queryCmd(),
		c.systemCmd(),
		c.apiCmd(),
		c.statusCmd(),
		c.runsCmd(),
		c.settingsCmd(),
		c.manCmd(),
	)
	c.root = root
	return c
}

func withSession(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[sessionAnnotation] = "true"
	return cmd
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	c.logger = newLogger(c.cfg)
	if cmd.Annotations[sessionAnnotation] == "" {
		return nil
	}
	sess, err := openSession(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	c.sess = sess
	return nil
}

func (c *cli) execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	if c.sess != nil {
		if cerr := c.sess.Close(); err == nil {
			err = cerr
		}
		c.sess = nil
	}
	return err
}

func (c *cli) settingsCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Open settings in your $EDITOR.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reset {
				return resetSettings(*c.cfg)
			}
			if err := openEditor(cmd.Context(), c.cfg.SettingsPath); err != nil {
				return err
			}
			if !c.cfg.Quiet {
				fmt.Fprintln(cmd.ErrOrStderr(), "Wrote config file to:", c.cfg.SettingsPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset-settings", false, help["reset-settings"])
	return cmd
}

func (c *cli) manCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "man",
		Short:                 "Generates manpages",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Hidden:                true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manPage, err := mcobra.NewManPage(1, c.root)
			if err != nil {
				//nolint:wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2024 Charmbracelet, Inc.\n"+
				"Released under MIT license.")
			fmt.Fprintln(cmd.OutOrStdout(), manPage.Build(roff.NewDocument()))
			return nil
		},
	}
}
