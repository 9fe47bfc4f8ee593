// Package ticketflow turns team communication into vetted, ticket-ready
// drafts through a fixed workflow graph.
//
// A run classifies its input and retrieves grounding context in parallel,
// extracts decisions and action items, gates on context sufficiency and the
// daily model budget, fans out three specialist reviews, detects disagreement
// between reviewers, synthesizes a canonical ticket draft, suspends for human
// approval, and finally commits the draft to an external tracker with
// content-hash idempotency.
//
// The package is organized around a few core pieces:
//
//   - State: the single record threaded through the graph (state.go)
//   - Graph/Engine: topology builder and execution loop with checkpointing,
//     a step ceiling, and parallel fan-out (graph.go, engine.go)
//   - Node library: one NodeFunc per graph stage (node_*.go)
//   - Runner: run registry, streaming snapshots, suspension and resumption
//     (runner.go)
//
// Collaborators (model client, context retriever, budget ledger, tracker,
// approval source, notifier) are injected through context.Context; see
// context.go. Subpackages llm, retrieval, budget, decision, tracker,
// approval, notify, store, config, and prompt provide the standard
// implementations.
package ticketflow
