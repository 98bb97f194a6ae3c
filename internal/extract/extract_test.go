package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestPayloadsTwoArraysWithProse(t *testing.T) {
	raw := `Here are the script segments I found:

[{"start_time":"00:02","end_time":"00:05","text":"Hello","voice_id":1}]

And the speakers identified from visual and audio cues:

[{"voice_id":1,"name":"Ana","company":null,"position":null,"role_in_video":"Host"}]

Let me know if you need anything else.`

	payloads, err := Payloads(raw)
	if err != nil {
		t.Fatalf("Payloads returned error: %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
	if payloads[0][0] != '[' || payloads[0][len(payloads[0])-1] != ']' {
		t.Fatalf("first payload not an array: %q", payloads[0])
	}
	if want := `"Hello"`; !strings.Contains(payloads[0], want) {
		t.Fatalf("segment payload lost content: %q", payloads[0])
	}
	if want := `"Ana"`; !strings.Contains(payloads[1], want) {
		t.Fatalf("payload order wrong: %q", payloads[1])
	}
}

func TestPayloadsFencedBlocks(t *testing.T) {
	raw := "**Task 1**\n```json\n[{\"start_time\":\"00:02\",\"end_time\":\"00:05\",\"text\":\"Hi\",\"voice_id\":1}]\n```\n**Task 2**\n```json\n[{\"voice_id\":1,\"name\":\"?\"}]\n```\n"
	payloads, err := Payloads(raw)
	if err != nil {
		t.Fatalf("Payloads returned error: %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
}

func TestPayloadsBracketsInsideStrings(t *testing.T) {
	raw := `[{"text":"he said [hello] and {waved}","voice_id":1,"start_time":"00:01","end_time":"00:02"}]`
	payloads, err := Payloads(raw)
	if err != nil {
		t.Fatalf("Payloads returned error: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d: %q", len(payloads), payloads)
	}
}

func TestPayloadsEscapedQuotes(t *testing.T) {
	raw := `prose [{"text":"she said \"bye[\"","voice_id":2}] trailing`
	payloads, err := Payloads(raw)
	if err != nil {
		t.Fatalf("Payloads returned error: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
}

func TestPayloadsProseOnly(t *testing.T) {
	_, err := Payloads("I could not find any speech in this video, sorry.")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Reason != ReasonNoPayload {
		t.Fatalf("reason = %q, want %q", perr.Reason, ReasonNoPayload)
	}
}

func TestPayloadsUnterminatedRegionIsProse(t *testing.T) {
	raw := `a stray [ bracket, then the payload {"voice_id":1,"name":"Ana"} ends it`
	payloads, err := Payloads(raw)
	if err != nil {
		t.Fatalf("Payloads returned error: %v", err)
	}
	if len(payloads) != 1 || payloads[0][0] != '{' {
		t.Fatalf("unexpected payloads: %q", payloads)
	}
}

func TestExpectPayloadsCountMismatch(t *testing.T) {
	raw := `[{"voice_id":1}]`
	_, err := ExpectPayloads(raw, 2)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Reason != ReasonCountMismatch || perr.Found != 1 || perr.Want != 2 {
		t.Fatalf("unexpected error details: %+v", perr)
	}

	if got, err := ExpectPayloads(raw, 1); err != nil || len(got) != 1 {
		t.Fatalf("ExpectPayloads(raw, 1) = %v, %v", got, err)
	}
}
