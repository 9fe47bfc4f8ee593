// Package prompt provides prompt template loading and management.
//
// Templates are plain text files with Go template syntax, resolved from
// the project's .ticketflow/prompts/ directory, then prompts/, then the
// embedded defaults shipped with the binary. Deployments override a
// prompt by dropping a same-named .txt file in either directory.
//
// Example usage:
//
//	loader := prompt.NewLoader(projectDir)
//	system, err := loader.LoadWithVars("classify", map[string]any{
//	    "Intents": []string{"decision", "action_item"},
//	})
package prompt
