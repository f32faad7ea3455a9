package main

import (
	"crypto/rand"
	"fmt"
)

const runIDShort = 7

func newRunID() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%x", b)
}

// shortID returns the abbreviated form of a run id.
func shortID(id string) string {
	if len(id) <= runIDShort {
		return id
	}
	return id[:runIDShort]
}
