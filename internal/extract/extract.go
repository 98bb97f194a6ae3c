// Package extract locates structured JSON payloads embedded in a model's
// free-text reply.
//
// The reply is treated as a small wire format: prose interleaved with one or
// more fenced or inline JSON arrays/objects, one per requested task, in task
// order. A string-aware bracket matcher isolates each balanced region; code
// fences and surrounding prose fall away naturally. Nothing is padded or
// truncated: a missing or extra payload is reported, not repaired.
package extract

import "fmt"

// Reasons carried by ParseError.
const (
	ReasonNoPayload     = "no structured payload"
	ReasonCountMismatch = "payload count mismatch"
)

// ParseError reports a malformed or incomplete structured reply.
type ParseError struct {
	Reason string
	// Found and Want describe the payload count for ReasonCountMismatch.
	Found int
	Want  int
}

func (e *ParseError) Error() string {
	if e.Reason == ReasonCountMismatch {
		return fmt.Sprintf("response parsing error: %s: found %d payloads, want %d", e.Reason, e.Found, e.Want)
	}
	return fmt.Sprintf("response parsing error: %s", e.Reason)
}

// Payloads scans raw for balanced top-level JSON arrays and objects and
// returns them in order of appearance. A reply carrying no structured region
// fails with ReasonNoPayload.
func Payloads(raw string) ([]string, error) {
	var payloads []string
	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '[' && c != '{' {
			i++
			continue
		}
		end, ok := matchRegion(raw, i)
		if !ok {
			// Unterminated or mismatched region; the opener was prose.
			i++
			continue
		}
		payloads = append(payloads, raw[i:end+1])
		i = end + 1
	}
	if len(payloads) == 0 {
		return nil, &ParseError{Reason: ReasonNoPayload}
	}
	return payloads, nil
}

// ExpectPayloads extracts payloads and enforces the count the task plan
// demands (two for segments+speakers, three when translation is requested).
func ExpectPayloads(raw string, want int) ([]string, error) {
	payloads, err := Payloads(raw)
	if err != nil {
		return nil, err
	}
	if len(payloads) != want {
		return nil, &ParseError{Reason: ReasonCountMismatch, Found: len(payloads), Want: want}
	}
	return payloads, nil
}

// matchRegion walks raw from the opening bracket at start and returns the
// index of its balancing close bracket. String literals and escapes inside
// the region are skipped so brackets in transcribed text cannot unbalance it,
// and a mismatched closer ("[1}") invalidates the region.
func matchRegion(raw string, start int) (int, bool) {
	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			stack = append(stack, c)
		case ']', '}':
			if len(stack) == 0 {
				return 0, false
			}
			opener := stack[len(stack)-1]
			if (c == ']' && opener != '[') || (c == '}' && opener != '{') {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
