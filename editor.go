package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
)

// openEditor opens path in the user's $EDITOR and waits for it to exit.
func openEditor(ctx context.Context, path string) error {
	c, err := editor.Cmd("sheetprompt", path)
	if err != nil {
		return appError{err, "Could not find your $EDITOR."}
	}
	if ctx.Err() != nil {
		return ctx.Err() //nolint:wrapcheck
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return appError{err, "Could not run your $EDITOR."}
	}
	return nil
}

// editText lets the user edit content in their $EDITOR and returns the
// result. name is used as the file name, so editors can pick a syntax.
func editText(ctx context.Context, name, content string) (string, error) {
	dir, err := os.MkdirTemp("", "sheetprompt-")
	if err != nil {
		return "", appError{err, "Could not create a temporary file."}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", appError{err, "Could not create a temporary file."}
	}
	if err := openEditor(ctx, path); err != nil {
		return "", err
	}
	bts, err := os.ReadFile(path)
	if err != nil {
		return "", appError{err, "Could not read the edited file."}
	}
	return string(bts), nil
}
