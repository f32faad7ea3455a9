// Package state holds everything the user edits between runs: the sheet, the
// queries, the system prompt and the APIs.
//
// State is loaded once from a [Store], with defaults for missing keys, and
// every change is written back right away.
package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/charmbracelet/sheetprompt/internal/store"
	xstrings "github.com/charmbracelet/x/exp/strings"
	"github.com/google/uuid"
)

// Store keys.
const (
	KeySheet        = "sheetData"
	KeyQueries      = "queries"
	KeySystemPrompt = "systemPrompt"
	KeyAPIIndex     = "apiIndex"
	KeyAPIs         = "apis"
)

// DefaultSystemPrompt is the system prompt used until the user sets one.
const DefaultSystemPrompt = "You are a helpful AI assistant."

// Errors.
var (
	ErrOutOfRange   = errors.New("index out of range")
	ErrUnknownModel = errors.New("unknown model")
	ErrUnknownAPI   = errors.New("unknown api")
)

// Store is a key/value store. Get returns [store.ErrNotFound] for missing
// keys.
type Store interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
}

// Get reads key from s, falling back to def when it was never set.
func Get[T any](ctx context.Context, s Store, key string, def func() T) (T, error) {
	var v T
	err := s.Get(ctx, key, &v)
	if errors.Is(err, store.ErrNotFound) {
		return def(), nil
	}
	if err != nil {
		return v, err //nolint:wrapcheck
	}
	return v, nil
}

// App is the application state.
type App struct {
	Sheet        string
	Queries      []batch.Query
	SystemPrompt string
	APIIndex     int
	APIs         []batch.API

	store  Store
	logger *log.Logger
}

// Load reads the state from s. A nil logger discards everything.
func Load(ctx context.Context, s Store, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	app := &App{store: s, logger: logger}

	var err error
	if app.Sheet, err = Get(ctx, s, KeySheet, func() string { return "" }); err != nil {
		return nil, err
	}
	if app.Queries, err = Get(ctx, s, KeyQueries, DefaultQueries); err != nil {
		return nil, err
	}
	if app.SystemPrompt, err = Get(ctx, s, KeySystemPrompt, func() string { return DefaultSystemPrompt }); err != nil {
		return nil, err
	}
	if app.APIIndex, err = Get(ctx, s, KeyAPIIndex, func() int { return 0 }); err != nil {
		return nil, err
	}
	if app.APIs, err = Get(ctx, s, KeyAPIs, DefaultAPIs); err != nil {
		return nil, err
	}

	if len(app.Queries) == 0 {
		app.Queries = DefaultQueries()
		if err := app.save(ctx, KeyQueries, app.Queries); err != nil {
			return nil, err
		}
	}
	if len(app.APIs) == 0 {
		app.APIs = DefaultAPIs()
		if err := app.save(ctx, KeyAPIs, app.APIs); err != nil {
			return nil, err
		}
	}
	if app.APIIndex < 0 || app.APIIndex >= len(app.APIs) {
		logger.Warn("selected api out of range, using the first one", "index", app.APIIndex)
		app.APIIndex = 0
		if err := app.save(ctx, KeyAPIIndex, app.APIIndex); err != nil {
			return nil, err
		}
	}
	return app, nil
}

func (a *App) save(ctx context.Context, key string, value any) error {
	a.logger.Debug("saving state", "key", key)
	if err := a.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("could not save %s: %w", key, err)
	}
	return nil
}

// SetSheet replaces the CSV data.
func (a *App) SetSheet(ctx context.Context, sheet string) error {
	a.Sheet = sheet
	return a.save(ctx, KeySheet, a.Sheet)
}

// SetSystemPrompt replaces the system prompt.
func (a *App) SetSystemPrompt(ctx context.Context, prompt string) error {
	a.SystemPrompt = prompt
	return a.save(ctx, KeySystemPrompt, a.SystemPrompt)
}

// AddQuery appends a new enabled query.
func (a *App) AddQuery(ctx context.Context, text string) error {
	a.Queries = append(a.Queries, newQuery(text))
	return a.save(ctx, KeyQueries, a.Queries)
}

// DeleteQuery removes the query at i. The last remaining query is never
// removed.
func (a *App) DeleteQuery(ctx context.Context, i int) error {
	if err := a.checkQuery(i); err != nil {
		return err
	}
	if len(a.Queries) == 1 {
		a.logger.Debug("not deleting the only query")
		return nil
	}
	a.Queries = slices.Delete(a.Queries, i, i+1)
	return a.save(ctx, KeyQueries, a.Queries)
}

// SetQueryText replaces the text of the query at i.
func (a *App) SetQueryText(ctx context.Context, i int, text string) error {
	if err := a.checkQuery(i); err != nil {
		return err
	}
	a.Queries[i].Text = text
	return a.save(ctx, KeyQueries, a.Queries)
}

// SetQueryEnabled enables or disables the query at i.
func (a *App) SetQueryEnabled(ctx context.Context, i int, enabled bool) error {
	if err := a.checkQuery(i); err != nil {
		return err
	}
	a.Queries[i].Enabled = enabled
	return a.save(ctx, KeyQueries, a.Queries)
}

// ToggleQuery flips the enabled flag of the query at i.
func (a *App) ToggleQuery(ctx context.Context, i int) error {
	if err := a.checkQuery(i); err != nil {
		return err
	}
	return a.SetQueryEnabled(ctx, i, !a.Queries[i].Enabled)
}

func (a *App) checkQuery(i int) error {
	if i < 0 || i >= len(a.Queries) {
		return fmt.Errorf("query %d: %w", i+1, ErrOutOfRange)
	}
	return nil
}

// API returns the selected API.
func (a *App) API() batch.API {
	return a.APIs[a.APIIndex]
}

// SelectAPI selects the API at i.
func (a *App) SelectAPI(ctx context.Context, i int) error {
	if i < 0 || i >= len(a.APIs) {
		return fmt.Errorf("api %d: %w", i+1, ErrOutOfRange)
	}
	a.APIIndex = i
	return a.save(ctx, KeyAPIIndex, a.APIIndex)
}

// SelectAPIByName selects the API with the given name, ignoring case.
func (a *App) SelectAPIByName(ctx context.Context, name string) error {
	for i, api := range a.APIs {
		if strings.EqualFold(api.Name, name) {
			return a.SelectAPI(ctx, i)
		}
	}
	names := make([]string, 0, len(a.APIs))
	for _, api := range a.APIs {
		names = append(names, api.Name)
	}
	return fmt.Errorf("%w %q, expected %s", ErrUnknownAPI, name, xstrings.EnglishJoin(names, true))
}

// SetAPIURL sets the URL of the selected API.
func (a *App) SetAPIURL(ctx context.Context, url string) error {
	a.APIs[a.APIIndex].URL = url
	return a.save(ctx, KeyAPIs, a.APIs)
}

// SetAPIKey sets the key of the selected API.
func (a *App) SetAPIKey(ctx context.Context, key string) error {
	a.APIs[a.APIIndex].Key = key
	return a.save(ctx, KeyAPIs, a.APIs)
}

// SetModel selects one of the selected API's models.
func (a *App) SetModel(ctx context.Context, model string) error {
	api := a.API()
	if !slices.Contains(api.Models, model) {
		return fmt.Errorf(
			"%w %q for %s, expected %s",
			ErrUnknownModel, model, api.Name,
			xstrings.EnglishJoin(api.Models, false),
		)
	}
	a.APIs[a.APIIndex].SelectedModel = model
	return a.save(ctx, KeyAPIs, a.APIs)
}

// AddModel adds a model to the selected API, if it is not there yet.
func (a *App) AddModel(ctx context.Context, model string) error {
	if slices.Contains(a.API().Models, model) {
		return nil
	}
	a.APIs[a.APIIndex].Models = append(a.APIs[a.APIIndex].Models, model)
	return a.save(ctx, KeyAPIs, a.APIs)
}

// Job returns a snapshot of the state for a run.
func (a *App) Job(params batch.Params) batch.Job {
	api := a.API()
	api.Models = slices.Clone(api.Models)
	return batch.Job{
		Sheet:        a.Sheet,
		Queries:      slices.Clone(a.Queries),
		SystemPrompt: a.SystemPrompt,
		API:          api,
		Params:       params,
	}
}

func newQuery(text string) batch.Query {
	return batch.Query{
		ID:      uuid.NewString(),
		Enabled: true,
		Text:    text,
	}
}

// DefaultQueries returns the queries used until the user sets some.
func DefaultQueries() []batch.Query {
	return []batch.Query{newQuery("")}
}

// DefaultAPIs returns the APIs used until the user sets some.
func DefaultAPIs() []batch.API {
	return []batch.API{
		{
			Name: "OpenAI",
			URL:  "https://api.openai.com/v1/chat/completions",
			Models: []string{
				"gpt-3.5-turbo-0125",
				"gpt-3.5-turbo-0301",
				"gpt-3.5-turbo-0613",
				"gpt-3.5-turbo-1106",
				"gpt-3.5-turbo-16k-0613",
				"gpt-3.5-turbo-16k",
				"gpt-3.5-turbo-instruct-0914",
				"gpt-3.5-turbo-instruct",
				"gpt-3.5-turbo",
				"gpt-4-0125-preview",
				"gpt-4-0613",
				"gpt-4-1106-preview",
				"gpt-4-turbo-preview",
				"gpt-4-vision-preview",
				"gpt-4",
			},
			SelectedModel: "gpt-3.5-turbo",
		},
		{
			Name: "OctoAI",
			URL:  "https://text.octoai.run/v1/chat/completions",
			Models: []string{
				"codellama-7b-instruct-fp16",
				"llama-2-13b-chat-fp16",
				"llamaguard-7b-fp16",
				"mistral-7b-instruct-fp16",
				"mixtral-8x7b-instruct-fp16",
			},
			SelectedModel: "mixtral-8x7b-instruct-fp16",
		},
	}
}
