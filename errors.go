package ticketflow

import "errors"

// Core workflow errors.
var (
	// ErrRecursionLimit indicates the engine hit its step ceiling.
	// No further nodes are executed once this is returned.
	ErrRecursionLimit = errors.New("recursion limit exceeded")

	// ErrAwaitingApproval indicates a run suspended at the approval node.
	// The run is checkpointed; ResumeRun continues it once a decision lands.
	ErrAwaitingApproval = errors.New("awaiting approval decision")

	// ErrRunNotFound indicates no run exists for the given ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrNoCheckpoint indicates a resume was requested for a run with no
	// persisted checkpoint.
	ErrNoCheckpoint = errors.New("no checkpoint for run")

	// ErrNotActionable indicates a chat message scored below the decision
	// threshold; no run was started and nothing was spent.
	ErrNotActionable = errors.New("input below decision threshold")

	// ErrUnknownNode indicates a graph edge or router referenced a node
	// that was never registered.
	ErrUnknownNode = errors.New("unknown node")

	// ErrGraphInvalid indicates the graph failed to compile.
	ErrGraphInvalid = errors.New("invalid graph")
)
