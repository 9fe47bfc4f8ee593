package ticketflow

import (
	"context"
	"testing"
	"time"

	"github.com/randalmurphal/ticketflow/approval"
)

func draftedState() State {
	state := NewState("intake", Input{Kind: InputChat, Text: "x"})
	state.Draft = &Draft{Summary: "Ship v2", DescriptionMd: "body"}
	return state
}

func TestApprovalNode_NoDecisionYet(t *testing.T) {
	ctx := WithApprovals(context.Background(), approval.NewMemory())

	state, err := ApprovalNode(DefaultNodeConfig())(ctx, draftedState())
	if err != nil {
		t.Fatal(err)
	}
	if state.Approved != nil {
		t.Error("Approved must stay nil until a decision lands")
	}
	if got := ApprovalRouter(state); got != Wait {
		t.Errorf("router = %q, want Wait", got)
	}
}

func TestApprovalNode_Approved(t *testing.T) {
	src := approval.NewMemory()
	state := draftedState()
	err := src.Record(context.Background(), approval.Decision{
		RunID:     state.RunID,
		Approved:  true,
		DecidedBy: "dana",
		DecidedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithApprovals(context.Background(), src)
	state, err = ApprovalNode(DefaultNodeConfig())(ctx, state)
	if err != nil {
		t.Fatal(err)
	}

	if state.Approved == nil || !*state.Approved {
		t.Fatal("decision should pass through")
	}
	if got := ApprovalRouter(state); got != NodeCommit {
		t.Errorf("router = %q, want commit", got)
	}
}

func TestApprovalNode_Rejected(t *testing.T) {
	src := approval.NewMemory()
	state := draftedState()
	if err := src.Record(context.Background(), approval.Decision{RunID: state.RunID}); err != nil {
		t.Fatal(err)
	}

	ctx := WithApprovals(context.Background(), src)
	state, err := ApprovalNode(DefaultNodeConfig())(ctx, state)
	if err != nil {
		t.Fatal(err)
	}

	if state.Approved == nil || *state.Approved {
		t.Fatal("rejection should pass through")
	}
	if got := ApprovalRouter(state); got != END {
		t.Errorf("router = %q, want END", got)
	}
}

func TestApprovalNode_RequiresDraft(t *testing.T) {
	ctx := WithApprovals(context.Background(), approval.NewMemory())
	state := NewState("intake", Input{Kind: InputChat, Text: "x"})

	if _, err := ApprovalNode(DefaultNodeConfig())(ctx, state); err == nil {
		t.Fatal("approval without a draft is a wiring bug")
	}
}

func TestApprovalNode_RequiresSource(t *testing.T) {
	if _, err := ApprovalNode(DefaultNodeConfig())(context.Background(), draftedState()); err == nil {
		t.Fatal("missing approval source must fail loudly")
	}
}
