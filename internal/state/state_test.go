package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/charmbracelet/sheetprompt/internal/store"
	"github.com/stretchr/testify/require"
)

// memStore is a map backed Store that records writes.
type memStore struct {
	data   map[string][]byte
	writes []string
	err    error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string, dst any) error {
	bts, ok := m.data[key]
	if !ok {
		return store.ErrNotFound
	}
	return json.Unmarshal(bts, dst)
}

func (m *memStore) Set(_ context.Context, key string, value any) error {
	if m.err != nil {
		return m.err
	}
	bts, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = bts
	m.writes = append(m.writes, key)
	return nil
}

func (m *memStore) put(t *testing.T, key string, value any) {
	t.Helper()
	bts, err := json.Marshal(value)
	require.NoError(t, err)
	m.data[key] = bts
}

func testApp(t *testing.T) (*App, *memStore) {
	t.Helper()
	s := newMemStore()
	app, err := Load(context.Background(), s, nil)
	require.NoError(t, err)
	return app, s
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		app, s := testApp(t)
		require.Empty(t, app.Sheet)
		require.Len(t, app.Queries, 1)
		require.True(t, app.Queries[0].Enabled)
		require.Empty(t, app.Queries[0].Text)
		require.NotEmpty(t, app.Queries[0].ID)
		require.Equal(t, DefaultSystemPrompt, app.SystemPrompt)
		require.Equal(t, 0, app.APIIndex)
		require.Equal(t, "OpenAI", app.API().Name)
		require.Equal(t, "gpt-3.5-turbo", app.API().SelectedModel)
		require.Empty(t, s.writes)
	})

	t.Run("persisted", func(t *testing.T) {
		s := newMemStore()
		s.put(t, KeySheet, "name\nAnn\n")
		s.put(t, KeyQueries, []batch.Query{{ID: "1", Enabled: false, Text: "Hello {{name}}"}})
		s.put(t, KeySystemPrompt, "be brief")
		s.put(t, KeyAPIIndex, 1)

		app, err := Load(context.Background(), s, nil)
		require.NoError(t, err)
		require.Equal(t, "name\nAnn\n", app.Sheet)
		require.Equal(t, []batch.Query{{ID: "1", Enabled: false, Text: "Hello {{name}}"}}, app.Queries)
		require.Equal(t, "be brief", app.SystemPrompt)
		require.Equal(t, "OctoAI", app.API().Name)
	})

	t.Run("api index out of range", func(t *testing.T) {
		s := newMemStore()
		s.put(t, KeyAPIIndex, 7)
		app, err := Load(context.Background(), s, nil)
		require.NoError(t, err)
		require.Equal(t, 0, app.APIIndex)
		require.Equal(t, []string{KeyAPIIndex}, s.writes)
	})

	t.Run("empty queries", func(t *testing.T) {
		s := newMemStore()
		s.put(t, KeyQueries, []batch.Query{})
		app, err := Load(context.Background(), s, nil)
		require.NoError(t, err)
		require.Len(t, app.Queries, 1)
	})

	t.Run("store error", func(t *testing.T) {
		s := newMemStore()
		s.data[KeyAPIIndex] = []byte(`"nope"`)
		_, err := Load(context.Background(), s, nil)
		require.Error(t, err)
	})
}

func TestQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("add", func(t *testing.T) {
		app, s := testApp(t)
		require.NoError(t, app.AddQuery(ctx, "Hello {{name}}"))
		require.Len(t, app.Queries, 2)
		require.True(t, app.Queries[1].Enabled)
		require.NotEqual(t, app.Queries[0].ID, app.Queries[1].ID)
		require.Equal(t, []string{KeyQueries}, s.writes)

		var saved []batch.Query
		require.NoError(t, s.Get(ctx, KeyQueries, &saved))
		require.Equal(t, app.Queries, saved)
	})

	t.Run("delete last one is a no-op", func(t *testing.T) {
		app, s := testApp(t)
		require.NoError(t, app.DeleteQuery(ctx, 0))
		require.Len(t, app.Queries, 1)
		require.Empty(t, s.writes)
	})

	t.Run("delete keeps order", func(t *testing.T) {
		app, _ := testApp(t)
		require.NoError(t, app.SetQueryText(ctx, 0, "a"))
		require.NoError(t, app.AddQuery(ctx, "b"))
		require.NoError(t, app.AddQuery(ctx, "c"))
		require.NoError(t, app.DeleteQuery(ctx, 1))
		require.Len(t, app.Queries, 2)
		require.Equal(t, "a", app.Queries[0].Text)
		require.Equal(t, "c", app.Queries[1].Text)

		for range 5 {
			require.NoError(t, app.DeleteQuery(ctx, 0))
		}
		require.Len(t, app.Queries, 1)
		require.Equal(t, "c", app.Queries[0].Text)
	})

	t.Run("out of range", func(t *testing.T) {
		app, _ := testApp(t)
		require.ErrorIs(t, app.DeleteQuery(ctx, 1), ErrOutOfRange)
		require.ErrorIs(t, app.SetQueryText(ctx, -1, "x"), ErrOutOfRange)
		require.ErrorIs(t, app.ToggleQuery(ctx, 3), ErrOutOfRange)
	})

	t.Run("toggle", func(t *testing.T) {
		app, _ := testApp(t)
		require.NoError(t, app.ToggleQuery(ctx, 0))
		require.False(t, app.Queries[0].Enabled)
		require.NoError(t, app.ToggleQuery(ctx, 0))
		require.True(t, app.Queries[0].Enabled)
		require.NoError(t, app.SetQueryEnabled(ctx, 0, false))
		require.False(t, app.Queries[0].Enabled)
	})

	t.Run("save error", func(t *testing.T) {
		app, s := testApp(t)
		s.err = errors.New("disk full")
		require.ErrorContains(t, app.AddQuery(ctx, "x"), "disk full")
	})
}

func TestAPIs(t *testing.T) {
	ctx := context.Background()

	t.Run("select", func(t *testing.T) {
		app, s := testApp(t)
		require.NoError(t, app.SelectAPI(ctx, 1))
		require.Equal(t, "OctoAI", app.API().Name)
		require.ErrorIs(t, app.SelectAPI(ctx, 2), ErrOutOfRange)
		require.ErrorIs(t, app.SelectAPI(ctx, -1), ErrOutOfRange)
		require.Equal(t, 1, app.APIIndex)
		require.Equal(t, []string{KeyAPIIndex}, s.writes)
	})

	t.Run("select by name", func(t *testing.T) {
		app, _ := testApp(t)
		require.NoError(t, app.SelectAPIByName(ctx, "octoai"))
		require.Equal(t, 1, app.APIIndex)
		err := app.SelectAPIByName(ctx, "nope")
		require.ErrorIs(t, err, ErrUnknownAPI)
		require.ErrorContains(t, err, "OpenAI")
		require.ErrorContains(t, err, "OctoAI")
	})

	t.Run("edit selected", func(t *testing.T) {
		app, _ := testApp(t)
		require.NoError(t, app.SelectAPI(ctx, 1))
		require.NoError(t, app.SetAPIURL(ctx, "http://localhost:8080/v1/chat/completions"))
		require.NoError(t, app.SetAPIKey(ctx, "secret"))
		require.NoError(t, app.SetModel(ctx, "llama-2-13b-chat-fp16"))

		api := app.API()
		require.Equal(t, "http://localhost:8080/v1/chat/completions", api.URL)
		require.Equal(t, "secret", api.Key)
		require.Equal(t, "llama-2-13b-chat-fp16", api.SelectedModel)
		require.Empty(t, app.APIs[0].Key)
	})

	t.Run("unknown model", func(t *testing.T) {
		app, _ := testApp(t)
		require.ErrorIs(t, app.SetModel(ctx, "gpt-5"), ErrUnknownModel)
		require.NoError(t, app.AddModel(ctx, "gpt-5"))
		require.NoError(t, app.AddModel(ctx, "gpt-5"))
		require.NoError(t, app.SetModel(ctx, "gpt-5"))
		require.Equal(t, "gpt-5", app.API().SelectedModel)
		require.Len(t, app.API().Models, len(DefaultAPIs()[0].Models)+1)
	})
}

func TestJob(t *testing.T) {
	ctx := context.Background()
	app, _ := testApp(t)
	require.NoError(t, app.SetSheet(ctx, "name\nAnn\n"))
	require.NoError(t, app.SetSystemPrompt(ctx, "be brief"))
	require.NoError(t, app.SetQueryText(ctx, 0, "Hello {{name}}"))

	job := app.Job(batch.DefaultParams())
	require.Equal(t, "name\nAnn\n", job.Sheet)
	require.Equal(t, "be brief", job.SystemPrompt)
	require.Equal(t, "gpt-3.5-turbo", job.API.SelectedModel)

	// the snapshot does not follow later edits.
	require.NoError(t, app.SetQueryText(ctx, 0, "changed"))
	require.NoError(t, app.AddModel(ctx, "gpt-5"))
	require.Equal(t, "Hello {{name}}", job.Queries[0].Text)
	require.NotContains(t, job.API.Models, "gpt-5")
}
