package ticketflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/randalmurphal/ticketflow/tracker"
)

func approvedState(draft *Draft) State {
	state := NewState("intake", Input{Kind: InputChat, Text: "x"})
	state.Draft = draft
	approved := true
	state.Approved = &approved
	return state
}

func TestCommitNode(t *testing.T) {
	mock := tracker.NewMock()
	ctx := WithTracker(context.Background(), mock)

	state := approvedState(&Draft{
		Summary:       "Ship v2",
		DescriptionMd: "body",
		Priority:      "High",
		Labels:        []string{"release"},
	})

	state, err := CommitNode(DefaultNodeConfig())(ctx, state)
	if err != nil {
		t.Fatal(err)
	}

	if state.Commit == nil || state.Commit.Error != "" {
		t.Fatalf("Commit = %+v, want success", state.Commit)
	}
	if state.Commit.IssueKey != "ENG-1" {
		t.Errorf("IssueKey = %q", state.Commit.IssueKey)
	}
	created := mock.CreatedIssues()
	if len(created) != 1 {
		t.Fatalf("created %d issues, want 1", len(created))
	}
	if created[0].Summary != "Ship v2" || created[0].Project != "ENG" || created[0].Type != "Task" {
		t.Errorf("filed issue = %+v", created[0])
	}
}

func TestCommitNode_InvalidDraftSkipsTracker(t *testing.T) {
	mock := tracker.NewMock()
	ctx := WithTracker(context.Background(), mock)

	state := approvedState(&Draft{Summary: "no description"})
	state, err := CommitNode(DefaultNodeConfig())(ctx, state)
	if err != nil {
		t.Fatal(err)
	}

	if state.Commit == nil || !strings.HasPrefix(state.Commit.Error, "DRAFT_INVALID: ") {
		t.Fatalf("Commit = %+v, want DRAFT_INVALID error", state.Commit)
	}
	if len(mock.CreatedIssues()) != 0 {
		t.Error("tracker must not be called for an invalid draft")
	}
}

func TestCommitNode_TrackerErrorRecordedNotRaised(t *testing.T) {
	mock := tracker.NewMock()
	mock.CreateErr = errors.New("tracker down")
	ctx := WithTracker(context.Background(), mock)

	state, err := CommitNode(DefaultNodeConfig())(ctx, approvedState(&Draft{Summary: "s", DescriptionMd: "d"}))
	if err != nil {
		t.Fatalf("tracker failure must not fail the run: %v", err)
	}
	if state.Commit == nil || state.Commit.Error != "tracker down" {
		t.Errorf("Commit = %+v, want recorded error", state.Commit)
	}
}

func TestCommitNode_SetOnlyOnce(t *testing.T) {
	mock := tracker.NewMock()
	ctx := WithTracker(context.Background(), mock)

	state := approvedState(&Draft{Summary: "s", DescriptionMd: "d"})
	state.Commit = &CommitResult{IssueKey: "ENG-99"}

	state, err := CommitNode(DefaultNodeConfig())(ctx, state)
	if err != nil {
		t.Fatal(err)
	}
	if state.Commit.IssueKey != "ENG-99" {
		t.Error("existing commit result must not be overwritten")
	}
	if len(mock.CreatedIssues()) != 0 {
		t.Error("re-execution must not file a second ticket")
	}
}

func TestCommitNode_RequiresApproval(t *testing.T) {
	ctx := WithTracker(context.Background(), tracker.NewMock())
	state := NewState("intake", Input{Kind: InputChat, Text: "x"})
	state.Draft = &Draft{Summary: "s", DescriptionMd: "d"}

	if _, err := CommitNode(DefaultNodeConfig())(ctx, state); err == nil {
		t.Fatal("commit without an approval decision is a wiring bug")
	}
}

func TestCommitNode_DedupedTracker(t *testing.T) {
	mock := tracker.NewMock()
	deduped := tracker.WithDedup(mock)
	ctx := WithTracker(context.Background(), deduped)

	draft := &Draft{Summary: "Ship v2", DescriptionMd: "body"}
	first, err := CommitNode(DefaultNodeConfig())(ctx, approvedState(draft))
	if err != nil {
		t.Fatal(err)
	}
	second, err := CommitNode(DefaultNodeConfig())(ctx, approvedState(draft))
	if err != nil {
		t.Fatal(err)
	}

	if len(mock.CreatedIssues()) != 1 {
		t.Fatalf("created %d issues, identical drafts must dedup to 1", len(mock.CreatedIssues()))
	}
	if first.Commit.IssueKey != second.Commit.IssueKey {
		t.Errorf("keys differ: %q vs %q", first.Commit.IssueKey, second.Commit.IssueKey)
	}
}
