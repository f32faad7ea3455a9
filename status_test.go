package main

import (
	"context"
	"testing"

	"github.com/charmbracelet/sheetprompt/internal/state"
	"github.com/charmbracelet/sheetprompt/internal/store"
	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/require"
)

func TestStatusMarkdown(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	app, err := state.Load(ctx, db, nil)
	require.NoError(t, err)
	require.NoError(t, app.SetSheet(ctx, "name,city\nAnn,Oslo\nBob,Rome\n"))
	require.NoError(t, app.SetQueryText(ctx, 0, "Hello {{name}}"))
	require.NoError(t, app.AddQuery(ctx, "Where is\n{{city}}?"))
	require.NoError(t, app.AddQuery(ctx, "unused"))
	require.NoError(t, app.ToggleQuery(ctx, 2))

	golden.RequireEqual(t, []byte(statusMarkdown(app)))
}

func TestStatusMarkdownEmpty(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	app, err := state.Load(ctx, db, nil)
	require.NoError(t, err)

	md := statusMarkdown(app)
	require.Contains(t, md, "1. [x] _empty_\n")
	require.Contains(t, md, "The sheet is empty.\n")
}
