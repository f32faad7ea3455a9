package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var flagParseErrorTests = []struct {
	in     string
	flag   string
	reason string
}{
	{
		"unknown flag: --nope",
		"--nope",
		"Flag %s is missing.",
	},
	{
		"flag needs an argument: --sheet",
		"--sheet",
		"Flag %s needs an argument.",
	},
	{
		"flag needs an argument: 's' in -s",
		"-s",
		"Flag %s needs an argument.",
	},
	{
		"unknown shorthand flag: 'x' in -x",
		"-x",
		"Short flag %s is missing.",
	},
	{
		`invalid argument "20dd" for "--older-than" flag: time: unknown unit "dd" in duration "20dd"`,
		"--older-than",
		"Flag %s has an invalid argument.",
	},
	{
		`invalid argument "nope" for "-q, --quiet" flag: strconv.ParseBool: parsing "nope": invalid syntax`,
		"-q, --quiet",
		"Flag %s has an invalid argument.",
	},
}

func TestFlagParseError(t *testing.T) {
	for _, tf := range flagParseErrorTests {
		t.Run(tf.in, func(t *testing.T) {
			err := newFlagParseError(errors.New(tf.in))
			require.Equal(t, tf.flag, err.Flag())
			require.Equal(t, tf.reason, err.ReasonFormat())
			require.Equal(t, tf.in, err.Error())
		})
	}
}

func TestDurationFlag(t *testing.T) {
	var d time.Duration
	flag := newDurationFlag(time.Hour, &d)
	require.Equal(t, time.Hour, d)
	require.Equal(t, "duration", flag.Type())

	require.NoError(t, flag.Set("2d"))
	require.Equal(t, 48*time.Hour, d)
	require.Equal(t, "48h0m0s", flag.String())

	require.Error(t, flag.Set("nope"))
}

func TestParseIndex(t *testing.T) {
	i, err := parseIndex("1", 3, "query")
	require.NoError(t, err)
	require.Equal(t, 0, i)

	i, err = parseIndex("3", 3, "query")
	require.NoError(t, err)
	require.Equal(t, 2, i)

	for _, in := range []string{"0", "4", "-1", "one"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseIndex(in, 3, "query")
			var merr appError
			require.ErrorAs(t, err, &merr)
			require.NotEmpty(t, merr.Reason())
		})
	}
}
