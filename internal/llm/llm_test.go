package llm

import (
	"strings"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantErr    bool
		wantSolved bool
		wantScore  float64
	}{
		{
			name:       "full verdict",
			raw:        `{"solved": true, "score": 85, "feedback": "clean solution"}`,
			wantSolved: true,
			wantScore:  85,
		},
		{
			name:       "explicit false",
			raw:        `{"solved": false, "score": 30}`,
			wantSolved: false,
			wantScore:  30,
		},
		{
			name:    "missing solved field",
			raw:     `{"score": 90, "feedback": "great"}`,
			wantErr: true,
		},
		{
			name:    "null verdict",
			raw:     `{"solved": null, "score": 50}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "The solution looks correct to me.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseVerdict(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict: %v", err)
			}
			if *v.Solved != tt.wantSolved {
				t.Errorf("solved = %v, want %v", *v.Solved, tt.wantSolved)
			}
			if v.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", v.Score, tt.wantScore)
			}
		})
	}
}

func TestProblemID(t *testing.T) {
	id := problemID("Dynamic Programming")
	if !strings.HasPrefix(id, "dynamic_programming-") {
		t.Errorf("expected slug prefix, got %q", id)
	}
	if other := problemID("Dynamic Programming"); other == id {
		t.Error("expected unique IDs per call")
	}
}

func TestNewRejectsUnknownVariant(t *testing.T) {
	if _, err := New("", "key", "gpt-4o-mini", "merciless"); err == nil {
		t.Error("expected error for unknown prompt variant")
	}
	if _, err := New("", "key", "gpt-4o-mini", "strict"); err != nil {
		t.Errorf("strict variant should be accepted: %v", err)
	}
}
