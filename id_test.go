package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunID(t *testing.T) {
	id := newRunID()
	require.Regexp(t, `^[0-9a-f]{40}$`, id)
	require.NotEqual(t, id, newRunID())
	require.Len(t, shortID(id), runIDShort)
	require.Equal(t, id[:runIDShort], shortID(id))
	require.Equal(t, "abc", shortID("abc"))
}
