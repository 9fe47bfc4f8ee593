package ticketflow

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// =============================================================================
// Input
// =============================================================================

// InputKind identifies where a run's raw input came from.
type InputKind string

// Input kinds.
const (
	InputChat    InputKind = "chat"
	InputManual  InputKind = "manual"
	InputMeeting InputKind = "meeting"
)

// Input is the raw material for a run. Immutable after creation.
// Reactions and ThreadUserCount carry chat metadata for the decision
// pre-filter; they are empty for manual and meeting input.
type Input struct {
	Kind            InputKind `json:"kind"`
	Text            string    `json:"text"`
	ChannelRef      string    `json:"channelRef,omitempty"`
	SourceRefs      []string  `json:"sourceRefs,omitempty"`
	Reactions       []string  `json:"reactions,omitempty"`
	ThreadUserCount int       `json:"threadUserCount,omitempty"`
}

// =============================================================================
// Classification & Extraction
// =============================================================================

// Intent is the classified purpose of the input.
type Intent string

// Intents.
const (
	IntentDecision   Intent = "decision"
	IntentActionItem Intent = "action_item"
	IntentDiscussion Intent = "discussion"
	IntentQuestion   Intent = "question"
)

// Classification is the output of the classify node.
type Classification struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
}

// ActionItem is an extracted task, bug, or followup. Citation points back
// at the source text; items without one are dropped rather than fabricated.
type ActionItem struct {
	Kind     string `json:"kind"` // task, bug, followup
	Title    string `json:"title"`
	Assignee string `json:"assignee,omitempty"`
	Citation string `json:"citation"`
}

// Decision is an extracted decision with its source citation.
type Decision struct {
	Title    string `json:"title"`
	Citation string `json:"citation"`
}

// =============================================================================
// Retrieved Context
// =============================================================================

// ContextEntry is one ranked retrieval result. An empty RetrievedContext
// slice is valid and meaningful: it signals insufficient grounding.
type ContextEntry struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
	SourceID   string  `json:"sourceId"`
}

// =============================================================================
// Reviews & Conflicts
// =============================================================================

// Verdict is a reviewer's recommendation.
type Verdict string

// Verdicts.
const (
	VerdictApprove Verdict = "APPROVE"
	VerdictReject  Verdict = "REJECT"
	VerdictRevise  Verdict = "REVISE"
)

// Review is one specialist's structured verdict.
type Review struct {
	Recommendation Verdict  `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
	Summary        string   `json:"summary,omitempty"`
	Risks          []string `json:"risks,omitempty"`
	Constraints    []string `json:"constraints,omitempty"`
	MissingInfo    []string `json:"missingInfo,omitempty"`
	Citations      []string `json:"citations,omitempty"`
}

// Reviews holds the three independently-nullable reviewer slots. Each
// reviewer writes only its own slot, so concurrent branches never collide.
// A nil slot means "no opinion", never "approved".
type Reviews struct {
	Biz    *Review `json:"biz,omitempty"`
	QA     *Review `json:"qa,omitempty"`
	Design *Review `json:"design,omitempty"`
}

// Conflict records a detected disagreement between two reviewers.
// Append-only within a run.
type Conflict struct {
	Between            [2]string `json:"between"`
	Topic              string    `json:"topic"`
	ResolutionProposal string    `json:"resolutionProposal,omitempty"`
}

// =============================================================================
// Draft
// =============================================================================

// Draft is the canonical ticket payload. Synthesis and draft generation
// overwrite it outright (replace semantics).
type Draft struct {
	Summary            string   `json:"summary"`
	DescriptionMd      string   `json:"descriptionMd"`
	Priority           string   `json:"priority,omitempty"`
	Labels             []string `json:"labels,omitempty"`
	Components         []string `json:"components,omitempty"`
	AcceptanceCriteria []string `json:"acceptanceCriteria,omitempty"`
	RolloutPlan        string   `json:"rolloutPlan,omitempty"`
	Citations          []string `json:"citations,omitempty"`
	OpenQuestions      []string `json:"openQuestions,omitempty"`
}

// Validate checks the canonical-draft shape required before commit.
func (d *Draft) Validate() error {
	if d == nil {
		return fmt.Errorf("draft is nil")
	}
	if d.Summary == "" {
		return fmt.Errorf("summary required")
	}
	if len(d.Summary) > 255 {
		return fmt.Errorf("summary exceeds 255 characters")
	}
	if d.DescriptionMd == "" {
		return fmt.Errorf("description required")
	}
	switch d.Priority {
	case "", "Highest", "High", "Medium", "Low", "Lowest":
	default:
		return fmt.Errorf("unknown priority %q", d.Priority)
	}
	return nil
}

// Canonical reports whether the draft passes the canonical-draft schema.
// The draft node uses this to choose enrichment over full generation.
func (d *Draft) Canonical() bool {
	return d.Validate() == nil
}

// =============================================================================
// Control, Approval, Commit
// =============================================================================

// Abort reasons recorded by the context gate.
const (
	AbortContextInsufficient = "context_insufficient"
	AbortBudgetExceeded      = "budget_exceeded"
)

// Control tracks engine progress for a run. Step is monotonically
// incremented by the engine; AbortReason is a one-way latch.
type Control struct {
	Step        int    `json:"step"`
	MaxSteps    int    `json:"maxSteps"`
	Node        string `json:"node,omitempty"` // next node (checkpoint cursor)
	AbortReason string `json:"abortReason,omitempty"`
}

// CommitResult is the terminal outcome of the commit node. Set exactly
// once per run; a recorded Error is terminal but recoverable, not a fault.
type CommitResult struct {
	IssueKey string `json:"issueKey,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// =============================================================================
// State
// =============================================================================

// State is the single record threaded through the workflow graph.
// One State is created per triggering event and discarded after the run
// reaches a terminal outcome; it is never reused across runs.
type State struct {
	RunID     string    `json:"runId"`
	FlowID    string    `json:"flowId"`
	CreatedAt time.Time `json:"createdAt"`

	Input Input `json:"input"`

	Classification   *Classification `json:"classification,omitempty"`
	Actions          []ActionItem    `json:"actions,omitempty"`
	Decisions        []Decision      `json:"decisions,omitempty"`
	RetrievedContext []ContextEntry  `json:"retrievedContext"`
	Reviews          Reviews         `json:"reviews"`
	Conflicts        []Conflict      `json:"conflicts,omitempty"`
	Draft            *Draft          `json:"draft,omitempty"`

	Control Control       `json:"control"`
	Approved *bool        `json:"approved,omitempty"`
	Commit   *CommitResult `json:"commitResult,omitempty"`

	// Error tracking for abnormal termination.
	Error string `json:"error,omitempty"`
}

// NewState creates a run state for the given flow and input.
func NewState(flowID string, input Input) State {
	return State{
		RunID:     generateRunID(flowID),
		FlowID:    flowID,
		CreatedAt: time.Now(),
		Input:     input,
		Control:   Control{MaxSteps: DefaultMaxSteps},
	}
}

// WithRunID sets a custom run ID.
func (s State) WithRunID(runID string) State {
	s.RunID = runID
	return s
}

// WithMaxSteps sets the step ceiling for this run.
func (s State) WithMaxSteps(n int) State {
	s.Control.MaxSteps = n
	return s
}

// Abort latches an abort reason. Once set it is never cleared or replaced.
func (s *State) Abort(reason string) {
	if s.Control.AbortReason == "" {
		s.Control.AbortReason = reason
	}
}

// Aborted reports whether the run latched an abort reason.
func (s State) Aborted() bool {
	return s.Control.AbortReason != ""
}

// SetError records an abnormal-termination error.
func (s *State) SetError(err error) {
	if err != nil {
		s.Error = err.Error()
	}
}

// HasError returns true if state has an error.
func (s State) HasError() bool {
	return s.Error != ""
}

// Terminal reports whether the run reached a terminal outcome: a commit
// result recorded, an explicit rejection, or an abnormal error.
func (s State) Terminal() bool {
	if s.Commit != nil || s.HasError() {
		return true
	}
	return s.Approved != nil && !*s.Approved
}

// =============================================================================
// State Validation
// =============================================================================

// Requirement names a state prerequisite a node can declare.
type Requirement string

// Requirements.
const (
	RequireInput          Requirement = "input"
	RequireClassification Requirement = "classification"
	RequireDraft          Requirement = "draft"
	RequireApproval       Requirement = "approval"
)

// Validate checks if state has the required fields.
func (s State) Validate(requirements ...Requirement) error {
	for _, req := range requirements {
		switch req {
		case RequireInput:
			if s.Input.Text == "" {
				return fmt.Errorf("input text required")
			}
		case RequireClassification:
			if s.Classification == nil {
				return fmt.Errorf("classification required")
			}
		case RequireDraft:
			if s.Draft == nil {
				return fmt.Errorf("draft required")
			}
		case RequireApproval:
			if s.Approved == nil {
				return fmt.Errorf("approval decision required")
			}
		default:
			return fmt.Errorf("unknown requirement: %s", req)
		}
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// generateRunID creates a unique run ID like "2026-08-31-intake-k3Tq".
func generateRunID(flowID string) string {
	timestamp := time.Now().Format("2006-01-02")
	suffix, err := nanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 8)
	if err != nil {
		suffix = "00000000"
	}
	return fmt.Sprintf("%s-%s-%s", timestamp, flowID, suffix)
}

// Summary returns a human-readable summary of the state.
func (s State) Summary() string {
	var status string
	switch {
	case s.HasError():
		status = "failed"
	case s.Commit != nil && s.Commit.Error != "":
		status = "commit-error"
	case s.Commit != nil:
		status = "committed"
	case s.Approved != nil && !*s.Approved:
		status = "rejected"
	case s.Approved != nil:
		status = "approved"
	case s.Draft != nil:
		status = "drafted"
	case s.Aborted():
		status = "degraded"
	case s.Classification != nil:
		status = "classified"
	default:
		status = "pending"
	}
	return fmt.Sprintf("Run %s [%s]: %s (step %d/%d)",
		s.RunID, status, s.FlowID, s.Control.Step, s.Control.MaxSteps)
}
