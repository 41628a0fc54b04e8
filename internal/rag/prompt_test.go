package rag

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt(t *testing.T) {
	plain := buildSystemPrompt(false)
	if strings.Contains(plain, "first message") {
		t.Error("non-first turn must not instruct a greeting")
	}

	first := buildSystemPrompt(true)
	if !strings.HasPrefix(first, plain) {
		t.Error("first-turn prompt must extend the base prompt")
	}
	if !strings.Contains(first, "bilingual greeting") {
		t.Error("first-turn prompt must instruct a bilingual greeting")
	}
}

func TestBuildUserPrompt(t *testing.T) {
	got := buildUserPrompt(
		[]string{"Passports are renewed at ICS offices.", "The fee is 600 birr."},
		"User lives in Addis Ababa",
		"How do I renew my passport?",
	)

	wantOrder := []string{
		"Context:",
		"Passports are renewed at ICS offices.",
		"The fee is 600 birr.",
		"Extra_user_context:",
		"User lives in Addis Ababa",
		"Question:",
		"How do I renew my passport?",
	}
	idx := 0
	for _, part := range wantOrder {
		rest := got[idx:]
		at := strings.Index(rest, part)
		if at < 0 {
			t.Fatalf("prompt missing %q after position %d:\n%s", part, idx, got)
		}
		idx += at + len(part)
	}

	if !strings.Contains(got, "Passports are renewed at ICS offices.\n\nThe fee is 600 birr.") {
		t.Error("chunks must be joined with a blank line in ranked order")
	}
}

func TestBuildUserPrompt_EmptySections(t *testing.T) {
	got := buildUserPrompt(nil, "", "hello")
	if !strings.Contains(got, "Question:\nhello") {
		t.Errorf("prompt = %q, want question present even with no context", got)
	}
}
