package proto

import (
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/require"
)

func TestStringer(t *testing.T) {
	messages := []Message{
		{
			Role:    RoleSystem,
			Content: "you are a medieval king",
		},
		{
			Role:    RoleUser,
			Content: "first 4 natural numbers",
		},
		{
			Role:    RoleAssistant,
			Content: "1, 2, 3, 4",
		},
		{
			Role: RoleUser,
		},
		{
			Role:    RoleUser,
			Content: "as a json array",
		},
	}

	golden.RequireEqual(t, []byte(Conversation(messages).String()))
}

func TestHTTPError(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("row 1: %w", &HTTPError{StatusCode: 503, Err: inner})

	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, 503, herr.StatusCode)
	require.EqualError(t, herr, "HTTP error 503")
	require.ErrorIs(t, err, inner)
	require.True(t, herr.Temporary())
	require.False(t, (&HTTPError{StatusCode: 401}).Temporary())
}
