package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// newUserErrorf is a user-facing error.
// this function is mostly to avoid linters complain about errors starting with a capitalized letter.
func newUserErrorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// appError is a wrapper around an error that adds additional context.
type appError struct {
	err    error
	reason string
}

func (m appError) Error() string {
	return m.err.Error()
}

func (m appError) Reason() string {
	return m.reason
}

func (m appError) Unwrap() error {
	return m.err
}

func handleError(err error) {
	format := "\n%s\n\n"

	var args []any
	var ferr flagParseError
	var merr appError
	if errors.As(err, &ferr) {
		format += "%s\n\n"
		args = []any{
			fmt.Sprintf(
				"Check out %s %s",
				stderrStyles().InlineCode.Render("sheetprompt -h"),
				stderrStyles().Comment.Render("for help."),
			),
			fmt.Sprintf(
				ferr.ReasonFormat(),
				stderrStyles().InlineCode.Render(ferr.Flag()),
			),
		}
	} else if errors.As(err, &merr) {
		args = []any{
			stderrStyles().ErrPadding.Render(stderrStyles().ErrorHeader.String(), merr.reason),
		}

		// Skip the error details if the user simply canceled out of huh.
		if !errors.Is(merr.err, huh.ErrUserAborted) {
			format += "%s\n\n"
			args = append(args, stderrStyles().ErrPadding.Render(stderrStyles().ErrorDetails.Render(err.Error())))
		}
	} else {
		args = []any{
			stderrStyles().ErrPadding.Render(stderrStyles().ErrorDetails.Render(err.Error())),
		}
	}

	fmt.Fprintf(os.Stderr, format, args...)
}
