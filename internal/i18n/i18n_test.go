package i18n

import (
	"context"
	"strings"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestSuggestionMessagesEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "SuggestConsistency", map[string]any{"Count": 3})
	if !strings.Contains(got, "3 problems daily") {
		t.Errorf("SuggestConsistency = %q", got)
	}

	got = T(ctx, "SuggestConcepts")
	if !strings.Contains(got, "understanding concepts") {
		t.Errorf("SuggestConcepts = %q", got)
	}

	got = Td(ctx, "SuggestWeakArea", map[string]any{"Topic": "Graphs"})
	if got != "Review Graphs fundamentals" {
		t.Errorf("SuggestWeakArea = %q", got)
	}
}

func TestSuggestionMessagesRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	got := Td(ctx, "SuggestWeakArea", map[string]any{"Topic": "Graphs"})
	if !strings.Contains(got, "Graphs") || !strings.Contains(got, "основы") {
		t.Errorf("SuggestWeakArea (ru) = %q", got)
	}
}

func TestMissingTranslationFallsBackToID(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NoSuchMessage"); got != "NoSuchMessage" {
		t.Errorf("expected message ID fallback, got %q", got)
	}
}

func TestNoLocalizerInContext(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// A bare context falls back to the English localizer.
	got := T(context.Background(), "SuggestConcepts")
	if !strings.Contains(got, "concepts") {
		t.Errorf("fallback localizer gave %q", got)
	}
}
