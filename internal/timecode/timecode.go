package timecode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrFormat tags timecode parse failures so callers can classify them without
// string matching.
var ErrFormat = errors.New("timecode format error")

// Style selects the textual rendering of a timecode.
type Style int

const (
	// StyleMMSS renders minutes and seconds only ("04:07"). Durations of an
	// hour or more overflow the minute field and must use StyleHMMSS.
	StyleMMSS Style = iota
	// StyleHMMSS renders hours without padding plus zero-padded minutes and
	// seconds ("1:04:07").
	StyleHMMSS
)

// String returns the config/file spelling of the style.
func (s Style) String() string {
	if s == StyleHMMSS {
		return "H:MM:SS"
	}
	return "MM:SS"
}

// ParseStyle maps the textual style names used in configuration and prompts
// back to a Style value.
func ParseStyle(value string) (Style, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "MM:SS":
		return StyleMMSS, nil
	case "H:MM:SS":
		return StyleHMMSS, nil
	default:
		return StyleMMSS, fmt.Errorf("%w: unknown style %q", ErrFormat, value)
	}
}

// Timecode is a non-negative point in media time with second resolution.
type Timecode struct {
	d time.Duration
}

// FromDuration truncates d to whole seconds and clamps negatives to zero.
func FromDuration(d time.Duration) Timecode {
	if d < 0 {
		d = 0
	}
	return Timecode{d: d.Truncate(time.Second)}
}

// Parse reads a timecode in MM:SS or H:MM:SS form. Minute and second fields
// must be two digits and below 60; the hour field carries no padding.
func Parse(value string) (Timecode, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, ":")
	switch len(parts) {
	case 2:
		minutes, err := parseField(parts[0], "minutes")
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q: %v", ErrFormat, value, err)
		}
		seconds, err := parseField(parts[1], "seconds")
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q: %v", ErrFormat, value, err)
		}
		return Timecode{d: time.Duration(minutes*60+seconds) * time.Second}, nil
	case 3:
		hours, err := parseHours(parts[0])
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q: %v", ErrFormat, value, err)
		}
		minutes, err := parseField(parts[1], "minutes")
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q: %v", ErrFormat, value, err)
		}
		seconds, err := parseField(parts[2], "seconds")
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q: %v", ErrFormat, value, err)
		}
		return Timecode{d: time.Duration(hours*3600+minutes*60+seconds) * time.Second}, nil
	default:
		return Timecode{}, fmt.Errorf("%w: %q: expected MM:SS or H:MM:SS", ErrFormat, value)
	}
}

func parseField(text, name string) (int, error) {
	if len(text) != 2 {
		return 0, fmt.Errorf("%s field must be two digits", name)
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s field %q", name, text)
	}
	if n >= 60 {
		return 0, fmt.Errorf("%s field %d out of range", name, n)
	}
	return n, nil
}

func parseHours(text string) (int, error) {
	if text == "" || (len(text) > 1 && text[0] == '0') {
		return 0, fmt.Errorf("invalid hours field %q", text)
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid hours field %q", text)
	}
	return n, nil
}

// Format renders the timecode in the requested style. StyleMMSS lets the
// minute field exceed 59 past the hour mark; such values are not re-parsable
// and callers wanting canonical text should use String.
func (t Timecode) Format(style Style) string {
	total := int(t.d / time.Second)
	if style == StyleHMMSS {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// String renders the canonical form: MM:SS below one hour, H:MM:SS otherwise.
func (t Timecode) String() string {
	if t.d >= time.Hour {
		return t.Format(StyleHMMSS)
	}
	return t.Format(StyleMMSS)
}

// Duration exposes the underlying duration.
func (t Timecode) Duration() time.Duration { return t.d }

// MarshalJSON renders the canonical textual form.
func (t Timecode) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON reads either textual form.
func (t *Timecode) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Compare orders timecodes by duration, returning -1, 0, or 1.
func (t Timecode) Compare(other Timecode) int {
	switch {
	case t.d < other.d:
		return -1
	case t.d > other.d:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is strictly earlier than other.
func (t Timecode) Before(other Timecode) bool { return t.d < other.d }

// After reports whether t is strictly later than other.
func (t Timecode) After(other Timecode) bool { return t.d > other.d }
