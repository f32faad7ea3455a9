package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testDB(tb testing.TB) *DB {
	db, err := Open(":memory:")
	require.NoError(tb, err)
	tb.Cleanup(func() {
		require.NoError(tb, db.Close())
	})
	return db
}

func newID() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%x", b)
}

func TestState(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		db := testDB(t)
		var s string
		require.ErrorIs(t, db.Get(ctx, "sheetData", &s), ErrNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		db := testDB(t)
		type query struct {
			ID      string `json:"id"`
			Enabled bool   `json:"enabled"`
		}
		in := []query{{"a", true}, {"b", false}}
		require.NoError(t, db.Set(ctx, "queries", in))

		var out []query
		require.NoError(t, db.Get(ctx, "queries", &out))
		require.Equal(t, in, out)
	})

	t.Run("overwrite", func(t *testing.T) {
		db := testDB(t)
		require.NoError(t, db.Set(ctx, "apiIndex", 0))
		require.NoError(t, db.Set(ctx, "apiIndex", 1))

		var idx int
		require.NoError(t, db.Get(ctx, "apiIndex", &idx))
		require.Equal(t, 1, idx)

		keys, err := db.Keys(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"apiIndex"}, keys)
	})

	t.Run("decode error", func(t *testing.T) {
		db := testDB(t)
		require.NoError(t, db.Set(ctx, "apiIndex", "not a number"))
		var idx int
		err := db.Get(ctx, "apiIndex", &idx)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	const testid = "df31ae23ab8b75b5643c2f846c570997edc71333"

	t.Run("list empty", func(t *testing.T) {
		db := testDB(t)
		list, err := db.ListRuns(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("save", func(t *testing.T) {
		db := testDB(t)
		require.NoError(t, db.SaveRun(ctx, Run{
			ID:       testid,
			Title:    "translate",
			API:      "OpenAI",
			Model:    "gpt-4",
			Rows:     3,
			Progress: "0/3",
			Status:   StatusRunning,
		}))

		run, err := db.FindRun(ctx, "df31")
		require.NoError(t, err)
		require.Equal(t, testid, run.ID)
		require.Equal(t, "translate", run.Title)
		require.Equal(t, 3, run.Rows)
		require.WithinDuration(t, time.Now(), run.Time(), time.Minute)
	})

	t.Run("save no id", func(t *testing.T) {
		db := testDB(t)
		require.Error(t, db.SaveRun(ctx, Run{Title: "translate"}))
	})

	t.Run("save no title", func(t *testing.T) {
		db := testDB(t)
		require.Error(t, db.SaveRun(ctx, Run{ID: newID()}))
	})

	t.Run("update", func(t *testing.T) {
		db := testDB(t)
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid, Title: "translate", Progress: "0/3", Status: StatusRunning}))
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid, Title: "translate", Progress: "1/3", Status: StatusFailed}))

		run, err := db.FindRun(ctx, testid)
		require.NoError(t, err)
		require.Equal(t, "1/3", run.Progress)
		require.Equal(t, StatusFailed, run.Status)

		list, err := db.ListRuns(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("latest", func(t *testing.T) {
		db := testDB(t)
		_, err := db.LatestRun(ctx)
		require.ErrorIs(t, err, ErrNoMatches)

		now := time.Now()
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid, Title: "old", CreatedAt: now.Add(-time.Hour).UnixNano()}))
		next := newID()
		require.NoError(t, db.SaveRun(ctx, Run{ID: next, Title: "new", CreatedAt: now.UnixNano()}))

		run, err := db.LatestRun(ctx)
		require.NoError(t, err)
		require.Equal(t, next, run.ID)

		list, err := db.ListRuns(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, next, list[0].ID)
	})

	t.Run("find by title", func(t *testing.T) {
		db := testDB(t)
		require.NoError(t, db.SaveRun(ctx, Run{ID: newID(), Title: "run 1"}))
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid, Title: "run 2"}))

		run, err := db.FindRun(ctx, "run 2")
		require.NoError(t, err)
		require.Equal(t, testid, run.ID)
	})

	t.Run("find match nothing", func(t *testing.T) {
		db := testDB(t)
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid, Title: "run 1"}))
		_, err := db.FindRun(ctx, "run")
		require.ErrorIs(t, err, ErrNoMatches)
	})

	t.Run("find match many", func(t *testing.T) {
		db := testDB(t)
		const testid2 = "df31ae23ab9b75b5641c2f846c571000edc71315"
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid, Title: "run 1"}))
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid2, Title: "run 2"}))
		_, err := db.FindRun(ctx, "df31ae")
		require.ErrorIs(t, err, ErrManyMatches)
	})

	t.Run("older than", func(t *testing.T) {
		db := testDB(t)
		now := time.Now()
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid, Title: "old", CreatedAt: now.Add(-48 * time.Hour).UnixNano()}))
		require.NoError(t, db.SaveRun(ctx, Run{ID: newID(), Title: "new", CreatedAt: now.UnixNano()}))

		list, err := db.ListRunsOlderThan(ctx, 24*time.Hour)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, testid, list[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		db := testDB(t)
		require.NoError(t, db.SaveRun(ctx, Run{ID: testid, Title: "run 1"}))
		require.NoError(t, db.DeleteRun(ctx, newID()))

		list, err := db.ListRuns(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		for _, item := range list {
			require.NoError(t, db.DeleteRun(ctx, item.ID))
		}

		list, err = db.ListRuns(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	})
}
