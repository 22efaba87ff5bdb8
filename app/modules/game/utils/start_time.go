package gameutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnrecognisedStartTime is returned when no parser understood the input.
var ErrUnrecognisedStartTime = errors.New("unrecognised start time")

var compactTime = regexp.MustCompile(`\b(\d{1,2})(\d{2})(am|pm)\b`)

// StartTimeParser turns free text like "tonight at 7pm" or "2026-10-18 19:30"
// into an absolute start time.
type StartTimeParser struct {
	w *when.Parser
}

func NewStartTimeParser() *StartTimeParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &StartTimeParser{w: w}
}

// Parse resolves input relative to clock. Blank input yields the zero time.
func (p *StartTimeParser) Parse(input string, clock Clock) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}
	now := clock.Now()

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return t, nil
		}
	}

	input = compactTime.ReplaceAllString(strings.ToLower(input), "$1:$2 $3")
	r, err := p.w.Parse(input, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognisedStartTime, input)
	}
	return r.Time, nil
}
