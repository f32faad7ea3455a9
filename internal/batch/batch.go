// Package batch runs every row of a sheet through a list of prompt
// templates, one chat completion at a time.
package batch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/sheetprompt/internal/proto"
)

// Completer sends a single chat request and returns the first choice's
// content.
type Completer interface {
	Complete(ctx context.Context, request proto.Request) (string, error)
}

// API is a chat completion endpoint and its models.
type API struct {
	Name          string   `json:"name"`
	URL           string   `json:"url"`
	Key           string   `json:"key"`
	Models        []string `json:"models"`
	SelectedModel string   `json:"selectedModel"`
}

// Params are the sampling parameters sent with every request.
type Params struct {
	MaxTokens       int64
	PresencePenalty float64
	Temperature     float64
	TopP            float64
}

// DefaultParams returns the parameters used when nothing else is set.
func DefaultParams() Params {
	return Params{
		MaxTokens:       128, //nolint:mnd
		PresencePenalty: 0,
		Temperature:     0.1, //nolint:mnd
		TopP:            0.9, //nolint:mnd
	}
}

// Job is a read-only snapshot of everything a run needs.
type Job struct {
	Sheet        string
	Queries      []Query
	SystemPrompt string
	API          API
	Params       Params
}

// Request builds the chat request for an already rendered prompt.
func (j Job) Request(prompt string) proto.Request {
	p := j.Params
	return proto.Request{
		API:   j.API.Name,
		Model: j.API.SelectedModel,
		Messages: []proto.Message{
			{Role: proto.RoleSystem, Content: j.SystemPrompt},
			{Role: proto.RoleUser, Content: prompt},
		},
		MaxTokens:       &p.MaxTokens,
		PresencePenalty: &p.PresencePenalty,
		Temperature:     &p.Temperature,
		TopP:            &p.TopP,
	}
}

// State is the observable state of a run.
type State struct {
	Result string
	Done   int
	Total  int
}

// Progress returns the "done/total" readout.
func (s State) Progress() string {
	return fmt.Sprintf("%d/%d", s.Done, s.Total)
}

// Runner runs jobs against a [Completer].
type Runner struct {
	client Completer
	logger *log.Logger
}

// New creates a new [Runner]. A nil logger discards everything.
func New(client Completer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		client: client,
		logger: logger,
	}
}

// Run processes every row of the job in order, and every enabled query of a
// row in order, waiting for each completion before sending the next one.
//
// observe, if not nil, is called with the new state after the run starts,
// after every appended field and after every finished row.
//
// The first error stops the run. The returned state then holds everything
// produced so far.
func (r *Runner) Run(ctx context.Context, job Job, observe func(State)) (State, error) {
	if observe == nil {
		observe = func(State) {}
	}

	rows, err := ParseRows(job.Sheet)
	if err != nil {
		return State{}, fmt.Errorf("could not parse sheet: %w", err)
	}

	st := State{Total: len(rows)}
	observe(st)

	last := LastEnabled(job.Queries)
	r.logger.Debug("starting run", "rows", len(rows), "queries", CountEnabled(job.Queries), "model", job.API.SelectedModel)

	var sb strings.Builder
	for ri, row := range rows {
		for qi, query := range job.Queries {
			if !query.Enabled {
				continue
			}
			if err := ctx.Err(); err != nil {
				return st, err //nolint:wrapcheck
			}

			prompt := Render(query.Text, row)
			r.logger.Debug("requesting completion", "row", ri+1, "query", qi+1)
			content, err := r.client.Complete(ctx, job.Request(prompt))
			if err != nil {
				return st, fmt.Errorf("row %d, query %d: %w", ri+1, qi+1, err)
			}

			sb.WriteString(Field(content))
			if qi == last {
				sb.WriteByte(lineTerminator)
			} else {
				sb.WriteByte(fieldSeparator)
			}
			st.Result = sb.String()
			observe(st)
		}
		st.Done = ri + 1
		observe(st)
	}

	r.logger.Debug("run finished", "progress", st.Progress())
	return st, nil
}

// Prompt is a request a run would send, with 1-based row and query numbers.
type Prompt struct {
	Row     int
	Query   int
	Request proto.Request
}

// Prompts renders every request of the job without sending any.
func Prompts(job Job) ([]Prompt, error) {
	rows, err := ParseRows(job.Sheet)
	if err != nil {
		return nil, fmt.Errorf("could not parse sheet: %w", err)
	}
	var prompts []Prompt
	for ri, row := range rows {
		for qi, query := range job.Queries {
			if !query.Enabled {
				continue
			}
			prompts = append(prompts, Prompt{
				Row:     ri + 1,
				Query:   qi + 1,
				Request: job.Request(Render(query.Text, row)),
			})
		}
	}
	return prompts, nil
}
