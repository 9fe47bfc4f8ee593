package ticketflow

import (
	"strings"
	"testing"
)

func TestNewState(t *testing.T) {
	state := NewState("intake", Input{Kind: InputChat, Text: "hello"})

	if state.RunID == "" {
		t.Error("RunID should be generated")
	}
	if !strings.Contains(state.RunID, "intake") {
		t.Errorf("RunID %q should contain the flow ID", state.RunID)
	}
	if state.Control.MaxSteps != DefaultMaxSteps {
		t.Errorf("MaxSteps = %d, want %d", state.Control.MaxSteps, DefaultMaxSteps)
	}
	if state.Input.Text != "hello" {
		t.Errorf("Input.Text = %q", state.Input.Text)
	}
}

func TestState_WithRunID(t *testing.T) {
	state := NewState("intake", Input{Kind: InputChat, Text: "x"}).WithRunID("custom")
	if state.RunID != "custom" {
		t.Errorf("RunID = %q, want custom", state.RunID)
	}
}

func TestState_AbortLatch(t *testing.T) {
	state := NewState("intake", Input{Kind: InputChat, Text: "x"})

	if state.Aborted() {
		t.Error("fresh state should not be aborted")
	}

	state.Abort(AbortContextInsufficient)
	state.Abort(AbortBudgetExceeded)

	if state.Control.AbortReason != AbortContextInsufficient {
		t.Errorf("AbortReason = %q, first latch must win", state.Control.AbortReason)
	}
}

func TestState_Terminal(t *testing.T) {
	approved := true
	rejected := false

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"fresh", State{}, false},
		{"approved only", State{Approved: &approved}, false},
		{"rejected", State{Approved: &rejected}, true},
		{"committed", State{Commit: &CommitResult{IssueKey: "ENG-1"}}, true},
		{"commit error", State{Commit: &CommitResult{Error: "boom"}}, true},
		{"failed", State{Error: "boom"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_Validate(t *testing.T) {
	state := NewState("intake", Input{Kind: InputChat, Text: "x"})

	if err := state.Validate(RequireInput); err != nil {
		t.Errorf("input requirement should pass: %v", err)
	}
	if err := state.Validate(RequireClassification); err == nil {
		t.Error("classification requirement should fail on fresh state")
	}
	if err := state.Validate(RequireDraft); err == nil {
		t.Error("draft requirement should fail on fresh state")
	}
	if err := state.Validate(RequireApproval); err == nil {
		t.Error("approval requirement should fail on fresh state")
	}

	state.Classification = &Classification{Intent: IntentDecision}
	state.Draft = &Draft{Summary: "s", DescriptionMd: "d"}
	approved := true
	state.Approved = &approved

	if err := state.Validate(RequireInput, RequireClassification, RequireDraft, RequireApproval); err != nil {
		t.Errorf("all requirements should pass: %v", err)
	}
}

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		draft   *Draft
		wantErr bool
	}{
		{"nil", nil, true},
		{"valid", &Draft{Summary: "s", DescriptionMd: "d"}, false},
		{"valid with priority", &Draft{Summary: "s", DescriptionMd: "d", Priority: "High"}, false},
		{"missing summary", &Draft{DescriptionMd: "d"}, true},
		{"missing description", &Draft{Summary: "s"}, true},
		{"overlong summary", &Draft{Summary: strings.Repeat("x", 256), DescriptionMd: "d"}, true},
		{"bad priority", &Draft{Summary: "s", DescriptionMd: "d", Priority: "Urgent"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if got := tt.draft.Canonical(); got != (err == nil) {
				t.Errorf("Canonical() = %v, inconsistent with Validate()", got)
			}
		})
	}
}

func TestState_Summary(t *testing.T) {
	state := NewState("intake", Input{Kind: InputChat, Text: "x"})
	if !strings.Contains(state.Summary(), "pending") {
		t.Errorf("Summary() = %q, want pending status", state.Summary())
	}

	state.Commit = &CommitResult{IssueKey: "ENG-1"}
	if !strings.Contains(state.Summary(), "committed") {
		t.Errorf("Summary() = %q, want committed status", state.Summary())
	}
}
