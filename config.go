package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v9"
	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SHEETPROMPT_"

var help = map[string]string{
	"data-path":        "Directory where the state database and run outputs are kept.",
	"log-level":        "Log level (debug, info, warn, error).",
	"verbose":          "Log every request and state change.",
	"quiet":            "Quiet mode (hide the progress while running).",
	"raw":              "Render output as raw text when connected to a TTY.",
	"timeout":          "Timeout for each API request (0 waits forever).",
	"max-retries":      "Maximum number of times to retry a failed API request.",
	"http-proxy":       "HTTP proxy to use for API requests.",
	"max-tokens":       "Maximum number of tokens in each response.",
	"temp":             "Temperature (randomness) of results, from 0.0 to 2.0.",
	"topp":             "TopP, an alternative to temperature that narrows response, from 0.0 to 1.0.",
	"presence-penalty": "Presence penalty, from -2.0 to 2.0.",
	"no-history":       "Do not record runs.",
	"sheet":            "Read the CSV data from a file, URL or - for stdin, and save it.",
	"title":            "Save the run with the given title.",
	"copy":             "Copy the result to the clipboard.",
	"dry-run":          "Print the prompts that would be sent, without sending them.",
	"settings":         "Open settings in your $EDITOR.",
	"reset-settings":   "Backup your old settings file and reset everything to the defaults.",
	"older-than":       "Delete runs older than the given duration (10d, 1mo).",
}

// Config holds the main configuration and is mapped to the YAML settings file.
type Config struct {
	DataPath        string        `yaml:"data-path" env:"DATA_PATH"`
	LogLevel        string        `yaml:"log-level" env:"LOG_LEVEL"`
	Quiet           bool          `yaml:"quiet" env:"QUIET"`
	Raw             bool          `yaml:"raw" env:"RAW"`
	Timeout         time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries      int           `yaml:"max-retries" env:"MAX_RETRIES"`
	HTTPProxy       string        `yaml:"http-proxy" env:"HTTP_PROXY"`
	MaxTokens       int64         `yaml:"max-tokens" env:"MAX_TOKENS"`
	Temperature     float64       `yaml:"temp" env:"TEMP"`
	TopP            float64       `yaml:"topp" env:"TOPP"`
	PresencePenalty float64       `yaml:"presence-penalty" env:"PRESENCE_PENALTY"`
	NoHistory       bool          `yaml:"no-history" env:"NO_HISTORY"`

	SettingsPath string
	Verbose      bool
}

func defaultConfig() Config {
	params := batch.DefaultParams()
	return Config{
		LogLevel:        "warn",
		MaxTokens:       params.MaxTokens,
		Temperature:     params.Temperature,
		TopP:            params.TopP,
		PresencePenalty: params.PresencePenalty,
	}
}

// Params returns the sampling parameters for a run.
func (c Config) Params() batch.Params {
	return batch.Params{
		MaxTokens:       c.MaxTokens,
		PresencePenalty: c.PresencePenalty,
		Temperature:     c.Temperature,
		TopP:            c.TopP,
	}
}

func ensureConfig() (Config, error) {
	sp, err := xdg.ConfigFile(filepath.Join("sheetprompt", "sheetprompt.yml"))
	if err != nil {
		return defaultConfig(), appError{err, "Could not find settings path."}
	}

	dir := filepath.Dir(sp)
	if dirErr := os.MkdirAll(dir, 0o700); dirErr != nil {
		return defaultConfig(), appError{dirErr, "Could not create settings directory."}
	}

	if err := writeConfigFile(sp); err != nil {
		return defaultConfig(), err
	}
	return loadConfig(sp)
}

// loadConfig reads the settings file at path and applies the environment.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	c.SettingsPath = path

	content, err := os.ReadFile(path)
	if err != nil {
		return c, appError{err, "Could not read settings file."}
	}
	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, appError{err, "Could not parse settings file."}
	}

	if err := env.ParseWithOptions(&c, env.Options{Prefix: envPrefix}); err != nil {
		return c, appError{err, "Could not parse environment into settings file."}
	}

	if c.DataPath == "" {
		c.DataPath = filepath.Join(xdg.DataHome, "sheetprompt")
	}
	return c, nil
}

func writeConfigFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return createConfigFile(path)
	} else if err != nil {
		return appError{err, "Could not stat path."}
	}
	return nil
}

func createConfigFile(path string) error {
	tmpl := template.Must(template.New("config").Parse(configTemplate))

	f, err := os.Create(path)
	if err != nil {
		return appError{err, "Could not create configuration file."}
	}
	defer func() { _ = f.Close() }()

	m := struct {
		Config Config
		Help   map[string]string
	}{
		Config: defaultConfig(),
		Help:   help,
	}
	if err := tmpl.Execute(f, m); err != nil {
		return appError{err, "Could not render template."}
	}
	return nil
}

func resetSettings(cfg Config) error {
	if _, err := os.Stat(cfg.SettingsPath); err != nil {
		return appError{err, "Couldn't read config file."}
	}
	inputFile, err := os.Open(cfg.SettingsPath)
	if err != nil {
		return appError{err, "Couldn't open config file."}
	}
	defer inputFile.Close() //nolint:errcheck
	outputFile, err := os.Create(cfg.SettingsPath + ".bak")
	if err != nil {
		return appError{err, "Couldn't backup config file."}
	}
	defer outputFile.Close() //nolint:errcheck
	if _, err := outputFile.ReadFrom(inputFile); err != nil {
		return appError{err, "Couldn't write config file."}
	}
	// The copy was successful, so now delete the original file
	if err := os.Remove(cfg.SettingsPath); err != nil {
		return appError{err, "Couldn't remove config file."}
	}
	if err := writeConfigFile(cfg.SettingsPath); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "\n  Settings restored to defaults!")
	fmt.Fprintf(os.Stderr,
		"\n  %s %s\n\n",
		stderrStyles().Comment.Render("Your old settings have been saved to:"),
		stderrStyles().Link.Render(cfg.SettingsPath+".bak"),
	)
	return nil
}

func useLine(cmd *cobra.Command) string {
	appName := cmd.Root().Name()
	if stdoutRenderer().ColorProfile() == termenv.TrueColor {
		appName = makeGradientText(stdoutStyles().AppName, appName)
	}

	args := "[OPTIONS]"
	if cmd.HasAvailableSubCommands() {
		args = "[COMMAND] [OPTIONS]"
	} else if _, rest, ok := strings.Cut(cmd.Use, " "); ok {
		args = rest + " [OPTIONS]"
	}

	return fmt.Sprintf(
		"%s%s %s",
		appName,
		strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()),
		stdoutStyles().CliArgs.Render(args),
	)
}

func usageFunc(cmd *cobra.Command) error {
	fmt.Printf("%s\n\n", cmd.Short)
	fmt.Printf(
		"Usage:\n  %s\n\n",
		useLine(cmd),
	)
	if cmds := cmd.Commands(); len(cmds) > 0 {
		fmt.Println("Commands:")
		for _, c := range cmds {
			if c.Hidden {
				continue
			}
			fmt.Printf(
				"  %-22s %s\n",
				stdoutStyles().Flag.Render(c.Name()),
				stdoutStyles().FlagDesc.Render(c.Short),
			)
		}
		fmt.Println()
	}
	fmt.Println("Options:")
	cmd.Flags().VisitAll(func(f *flag.Flag) {
		if f.Hidden {
			return
		}
		if f.Shorthand == "" {
			fmt.Printf(
				"  %-44s %s\n",
				stdoutStyles().Flag.Render("--"+f.Name),
				stdoutStyles().FlagDesc.Render(f.Usage),
			)
		} else {
			fmt.Printf(
				"  %s%s %-40s %s\n",
				stdoutStyles().Flag.Render("-"+f.Shorthand),
				stdoutStyles().FlagComma,
				stdoutStyles().Flag.Render("--"+f.Name),
				stdoutStyles().FlagDesc.Render(f.Usage),
			)
		}
	})
	if cmd.HasParent() {
		return nil
	}
	desc, example := randomExample()
	fmt.Printf(
		"\nExample:\n  %s\n  %s\n",
		stdoutStyles().Comment.Render("# "+desc),
		cheapHighlighting(stdoutStyles(), example),
	)

	return nil
}
