package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceGlobal indicates the value came from
	// ~/.config/ticketflow/config.yaml.
	SourceGlobal Source = "global"

	// SourceLocal indicates the value came from .ticketflow.yaml at the
	// project root.
	SourceLocal Source = "local"

	// SourceEnv indicates the value came from a TICKETFLOW_* environment
	// variable or the .env file.
	SourceEnv Source = "env"

	// SourceFlag indicates the value was set via command-line flag.
	SourceFlag Source = "flag"
)
