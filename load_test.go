package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadSheet(t *testing.T) {
	const content = "name,city\nAnn,Oslo\n"
	ctx := context.Background()

	t.Run("stdin", func(t *testing.T) {
		sheet, err := loadSheet(ctx, "-", strings.NewReader(content))
		require.NoError(t, err)
		require.Equal(t, content, sheet)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sheet.csv")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		sheet, err := loadSheet(ctx, path, nil)
		require.NoError(t, err)
		require.Equal(t, content, sheet)

		sheet, err = loadSheet(ctx, "file://"+path, nil)
		require.NoError(t, err)
		require.Equal(t, content, sheet)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadSheet(ctx, filepath.Join(t.TempDir(), "nope.csv"), nil)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("http url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, content)
		}))
		t.Cleanup(srv.Close)

		sheet, err := loadSheet(ctx, srv.URL+"/sheet.csv", nil)
		require.NoError(t, err)
		require.Equal(t, content, sheet)
	})

	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)

		_, err := loadSheet(ctx, srv.URL, nil)
		var merr appError
		require.ErrorAs(t, err, &merr)
		require.Equal(t, "Could not download sheet.", merr.Reason())
	})

	t.Run("xlsx", func(t *testing.T) {
		f := excelize.NewFile()
		t.Cleanup(func() { _ = f.Close() })
		for cell, value := range map[string]string{
			"A1": "name", "B1": "city",
			"A2": "Ann", "B2": "Oslo, Norway",
			"A3": "Bob",
		} {
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
		path := filepath.Join(t.TempDir(), "sheet.xlsx")
		require.NoError(t, f.SaveAs(path))

		sheet, err := loadSheet(ctx, path, nil)
		require.NoError(t, err)
		require.Equal(t, "name,city\nAnn,\"Oslo, Norway\"\nBob\n", sheet)

		bts, err := os.ReadFile(path)
		require.NoError(t, err)
		sheet, err = loadSheet(ctx, "-", bytes.NewReader(bts))
		require.NoError(t, err)
		require.Equal(t, "name,city\nAnn,\"Oslo, Norway\"\nBob\n", sheet)
	})

	t.Run("broken xlsx", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sheet.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("name\nAnn\n"), 0o644))

		_, err := loadSheet(ctx, path, nil)
		var merr appError
		require.ErrorAs(t, err, &merr)
		require.Equal(t, "Could not open the workbook.", merr.Reason())
	})
}
