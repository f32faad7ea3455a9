package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/duration"
)

var (
	shorthandFlagReg   = regexp.MustCompile(`unknown shorthand flag: '.*' in (-\w)`)
	invalidArgumentReg = regexp.MustCompile(`invalid argument ".*" for "(.*)" flag: .*`)
)

func newFlagParseError(err error) flagParseError {
	var reason, flag string
	s := err.Error()
	switch {
	case strings.HasPrefix(s, "flag needs an argument:"):
		reason = "Flag %s needs an argument."
		ps := strings.Split(s, "-")
		switch len(ps) {
		case 2: //nolint:mnd
			flag = "-" + ps[len(ps)-1]
		case 3: //nolint:mnd
			flag = "--" + ps[len(ps)-1]
		}
	case strings.HasPrefix(s, "unknown flag:"):
		reason = "Flag %s is missing."
		flag = strings.TrimPrefix(s, "unknown flag: ")
	case strings.HasPrefix(s, "unknown shorthand flag:"):
		reason = "Short flag %s is missing."
		if parts := shorthandFlagReg.FindStringSubmatch(s); len(parts) > 1 {
			flag = parts[1]
		}
	case strings.HasPrefix(s, "invalid argument"):
		reason = "Flag %s has an invalid argument."
		if parts := invalidArgumentReg.FindStringSubmatch(s); len(parts) > 1 {
			flag = parts[1]
		}
	default:
		reason = s
	}
	return flagParseError{
		err:    err,
		reason: reason,
		flag:   flag,
	}
}

type flagParseError struct {
	err    error
	reason string
	flag   string
}

func (f flagParseError) Error() string {
	return f.err.Error()
}

func (f flagParseError) ReasonFormat() string {
	return f.reason
}

func (f flagParseError) Flag() string {
	return f.flag
}

func newDurationFlag(val time.Duration, p *time.Duration) *durationFlag {
	*p = val
	return (*durationFlag)(p)
}

// durationFlag accepts days, weeks, months and years on top of what
// time.ParseDuration does.
type durationFlag time.Duration

func (d *durationFlag) Set(s string) error {
	v, err := duration.Parse(s)
	*d = durationFlag(v)
	//nolint: wrapcheck
	return err
}

func (d *durationFlag) String() string {
	return time.Duration(*d).String()
}

func (*durationFlag) Type() string {
	return "duration"
}

// parseIndex parses a 1-based position argument into a 0-based index.
func parseIndex(arg string, n int, what string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, appError{err, newUserErrorf("%q is not a %s number.", arg, what).Error()}
	}
	if i < 1 || i > n {
		return 0, appError{
			newUserErrorf("%s %d out of range", what, i),
			newUserErrorf("There is no %s %d, pick one between 1 and %d.", what, i, n).Error(),
		}
	}
	return i - 1, nil
}
