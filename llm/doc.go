// Package llm wraps the completion and embedding model behind a small
// client interface and an Invoker that enforces the budget ceiling,
// retries transient failures with exponential backoff, validates
// structured output, and records token spend.
//
// OpenAIClient is the production implementation; MockClient serves tests.
package llm
