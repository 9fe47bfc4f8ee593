// Package budget tracks model spend against a daily ceiling.
//
// Every model invocation logs its token usage through the Ledger, which
// prices it from a per-model table and persists a usage record. The context
// gate and the invocation wrapper ask ShouldDegrade before spending more.
// The ledger is the only resource mutated from concurrent runs; stores must
// make the running total safe for concurrent increment.
package budget
