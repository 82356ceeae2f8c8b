package classify

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassifyStates(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantType       StateType
		wantConfidence float64
		wantDetail     string
	}{
		{
			name:           "bash permission prompt",
			input:          "⏺ I need to run a command\n\nAllow Bash command?",
			wantType:       StatePermission,
			wantConfidence: 0.9,
			wantDetail:     "bash",
		},
		{
			name:           "permission with command detail",
			input:          "Allow Bash (npm install) to run?",
			wantType:       StatePermission,
			wantConfidence: 0.9,
			wantDetail:     "bash: npm install",
		},
		{
			name:           "error with message",
			input:          "some output\nError: boom",
			wantType:       StateError,
			wantConfidence: 0.8,
			wantDetail:     "boom",
		},
		{
			name:           "tool use",
			input:          "Reading: internal/monitor/monitor.go",
			wantType:       StateToolUse,
			wantConfidence: 0.75,
			wantDetail:     "read: internal/monitor/monitor.go",
		},
		{
			name:           "working spinner",
			input:          "⠋ compiling packages",
			wantType:       StateWorking,
			wantConfidence: 0.7,
			wantDetail:     "spinner",
		},
		{
			name:           "working thinking",
			input:          "Thinking...",
			wantType:       StateWorking,
			wantConfidence: 0.7,
			wantDetail:     "thinking",
		},
		{
			name:           "completion checkmark",
			input:          "✓ All tests passed",
			wantType:       StateComplete,
			wantConfidence: 0.6,
			wantDetail:     "checkmark",
		},
		{
			name:           "idle bare prompt",
			input:          "previous output\n\n> ",
			wantType:       StateIdle,
			wantConfidence: 0.7,
			wantDetail:     "prompt",
		},
		{
			name:           "idle trailing prompt fallback",
			input:          "previous output\nclaude>",
			wantType:       StateIdle,
			wantConfidence: 0.65,
			wantDetail:     "trailing-prompt",
		},
		{
			name:           "unclassifiable output",
			input:          "lorem ipsum dolor sit amet",
			wantType:       StateUnknown,
			wantConfidence: 0.3,
		},
		{
			name:           "empty input",
			input:          "",
			wantType:       StateUnknown,
			wantConfidence: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Classify(tt.input)
			if st.Type != tt.wantType {
				t.Errorf("Classify(%q).Type = %s, want %s", tt.input, st.Type, tt.wantType)
			}
			if st.Confidence != tt.wantConfidence {
				t.Errorf("Classify(%q).Confidence = %.2f, want %.2f", tt.input, st.Confidence, tt.wantConfidence)
			}
			if tt.wantDetail != "" && st.Detail != tt.wantDetail {
				t.Errorf("Classify(%q).Detail = %q, want %q", tt.input, st.Detail, tt.wantDetail)
			}
		})
	}
}

func TestClassifyQuestionMenus(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantType    StateType
		wantOptions []string
	}{
		{
			name:        "numbered menu",
			input:       "Choose an option:\n1. foo\n2. bar\n3. baz",
			wantType:    StateQuestion,
			wantOptions: []string{"foo", "bar", "baz"},
		},
		{
			name:        "plan approval",
			input:       "Would you like to proceed?\n❯ 1. Yes\n  2. No, keep planning",
			wantType:    StateQuestion,
			wantOptions: []string{"Yes", "No, keep planning"},
		},
		{
			name:        "yes no footer",
			input:       "Continue with the change?\nYes / No",
			wantType:    StateQuestion,
			wantOptions: []string{"Yes", "No"},
		},
		{
			// A single repeated label is noise, not a live menu.
			name:     "degenerate menu falls through",
			input:    "1. foo\n2. foo",
			wantType: StateUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Classify(tt.input)
			if st.Type != tt.wantType {
				t.Fatalf("Classify(%q).Type = %s, want %s", tt.input, st.Type, tt.wantType)
			}
			if tt.wantOptions != nil && !reflect.DeepEqual(st.Options, tt.wantOptions) {
				t.Errorf("Classify(%q).Options = %v, want %v", tt.input, st.Options, tt.wantOptions)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  StateType
	}{
		{
			name:  "permission beats question menu",
			input: "Allow Edit main.go?\n1. Yes\n2. No",
			want:  StatePermission,
		},
		{
			name:  "question beats error",
			input: "Error: previous run failed\nHow should I proceed?\n1. Retry\n2. Skip",
			want:  StateQuestion,
		},
		{
			name:  "error beats working",
			input: "⠋ retrying\nError: connection refused",
			want:  StateError,
		},
		{
			name:  "working beats completion",
			input: "✓ step one finished\n⠙ step two running",
			want:  StateWorking,
		},
		{
			name:  "completion beats idle",
			input: "✓ task finished\n> ",
			want:  StateComplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input).Type; got != tt.want {
				t.Errorf("Classify(%q).Type = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassifyWindowBounds(t *testing.T) {
	// An error far above the 50-line window must not leak into the state.
	var sb strings.Builder
	sb.WriteString("Error: ancient failure\n")
	for i := 0; i < 60; i++ {
		sb.WriteString("harmless output line\n")
	}
	sb.WriteString("trailing text")

	if got := Classify(sb.String()).Type; got != StateUnknown {
		t.Errorf("Classify(old error below window).Type = %s, want %s", got, StateUnknown)
	}
}

func TestClassifyIdleTailOnly(t *testing.T) {
	// A prompt line more than five lines above the end is history, not idle.
	input := "> \nout\nout\nout\nout\nout\nout"
	if got := Classify(input).Type; got == StateIdle {
		t.Error("Classify treated a stale prompt line as idle")
	}
}

func TestClassifyStripsANSI(t *testing.T) {
	st := Classify("\x1b[31mError:\x1b[0m boom")
	if st.Type != StateError {
		t.Fatalf("Classify(colored error).Type = %s, want %s", st.Type, StateError)
	}
	if st.Detail != "boom" {
		t.Errorf("Classify(colored error).Detail = %q, want boom", st.Detail)
	}
}

func TestClassifyIsPure(t *testing.T) {
	input := "Allow Bash (ls) to run?"
	a := Classify(input)
	b := Classify(input)

	if a.Type != b.Type || a.Detail != b.Detail || a.Confidence != b.Confidence {
		t.Errorf("Classify is not deterministic: %+v vs %+v", a, b)
	}
}

func TestConfidenceBounds(t *testing.T) {
	inputs := []string{
		"Allow Bash command?",
		"1. foo\n2. bar",
		"Error: x",
		"Reading: f.go",
		"⠋",
		"✓",
		"> ",
		"mystery",
		"",
	}
	for _, input := range inputs {
		st := Classify(input)
		if st.Confidence < 0 || st.Confidence > 1 {
			t.Errorf("Classify(%q).Confidence = %f, out of [0,1]", input, st.Confidence)
		}
		if st.Confidence == 0 {
			t.Errorf("Classify(%q).Confidence = 0, every state carries confidence", input)
		}
	}
}

func TestStateTypePredicates(t *testing.T) {
	if !StatePermission.RequiresHuman() || !StateQuestion.RequiresHuman() {
		t.Error("permission and question should require human input")
	}
	if StateWorking.RequiresHuman() {
		t.Error("working should not require human input")
	}
	if !StateComplete.Terminal() || !StateError.Terminal() {
		t.Error("complete and error should be terminal")
	}
	if StateIdle.Terminal() {
		t.Error("idle should not be terminal")
	}
}

func TestClassifyWithCustomConfidence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Confidence.Error = 0.95

	st := ClassifyWith("Error: boom", cfg)
	if st.Confidence != 0.95 {
		t.Errorf("ClassifyWith custom confidence = %.2f, want 0.95", st.Confidence)
	}
}

func TestClassifyWithZeroConfigUsesDefaults(t *testing.T) {
	st := ClassifyWith("Allow Bash command?", Config{})
	if st.Type != StatePermission {
		t.Errorf("ClassifyWith(zero config).Type = %s, want %s", st.Type, StatePermission)
	}
	if st.Confidence != 0.9 {
		t.Errorf("ClassifyWith(zero config).Confidence = %.2f, want 0.9", st.Confidence)
	}
}
