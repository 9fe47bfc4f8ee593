package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Layout of the configuration hierarchy.
const (
	// EnvPrefix maps keys to environment variables: "jira_url" reads
	// TICKETFLOW_JIRA_URL.
	EnvPrefix = "TICKETFLOW_"

	// GlobalConfigDir holds the global config under ~/.config/.
	GlobalConfigDir = "ticketflow"

	// GlobalConfigFile is the global config filename.
	GlobalConfigFile = "config.yaml"

	// LocalConfigName is the per-project config filename, looked up at the
	// repository root.
	LocalConfigName = ".ticketflow.yaml"
)

// Defaults are the built-in values, lowest priority in the hierarchy.
var Defaults = map[string]string{
	"project":          "ENG",
	"issue_type":       "Task",
	"tracker":          "jira",
	"db_path":          ".ticketflow/ticketflow.db",
	"daily_budget_usd": "10",
	"max_steps":        "25",
	"context_floor":    "1",
	"approval_ttl":     "72h",
	"retrieve_limit":   "5",
	"min_similarity":   "0.7",

	// Decision heuristic threshold; the component weights stay in code.
	"decision_threshold": "0.85",
}

// SecretKeys may only come from the environment or a dotenv file, never
// from committed config files.
var SecretKeys = []string{
	"openai_api_key",
	"jira_token",
	"github_token",
	"gitlab_token",
	"approval_secret",
	"slack_webhook",
}

// LocalKeys may be set in the per-project .ticketflow.yaml.
var LocalKeys = []string{
	"project",
	"issue_type",
	"tracker",
	"db_path",
	"context_floor",
	"retrieve_limit",
	"min_similarity",
	"decision_threshold",
	"jira_url",
	"github_repo",
	"gitlab_project",
	"gitlab_url",
}

// GlobalKeys may be set in ~/.config/ticketflow/config.yaml.
var GlobalKeys = []string{
	"jira_url",
	"jira_email",
	"jira_auth_type",
	"daily_budget_usd",
	"max_steps",
	"approval_ttl",
	"tracker",
}

// Resolver merges the configuration hierarchy. Priority, highest first:
// flags, environment, local file, global file, defaults.
type Resolver struct {
	globalPath string
	localPath  string
	root       string
	errWriter  io.Writer

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPaths overrides the global and local config file locations.
func WithPaths(globalPath, localPath string) ResolverOption {
	return func(r *Resolver) {
		r.globalPath = globalPath
		r.localPath = localPath
	}
}

// WithErrWriter redirects resolution warnings.
func WithErrWriter(w io.Writer) ResolverOption {
	return func(r *Resolver) { r.errWriter = w }
}

// NewResolver creates a resolver rooted at the current directory. A
// .env file at the project root is loaded into the environment first, so
// secrets can live outside committed config.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{errWriter: os.Stderr}

	if root := findProjectRoot("."); root != "" {
		r.root = root
		r.localPath = filepath.Join(root, LocalConfigName)
		// Missing .env is the normal case.
		_ = godotenv.Load(filepath.Join(root, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.globalPath = filepath.Join(home, ".config", GlobalConfigDir, GlobalConfigFile)
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolved holds the merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// All returns a copy of all key-value pairs, secrets redacted.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		if contains(SecretKeys, k) && v != "" {
			result[k] = "(redacted)"
			continue
		}
		result[k] = v
	}
	return result
}

// Resolve builds the final config by merging all sources.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}
	r.applyFile(cfg, r.globalPath, GlobalKeys, SourceGlobal)
	r.applyFile(cfg, r.localPath, LocalKeys, SourceLocal)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves config and applies flag overrides on top.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceFlag
		}
	}
	return cfg
}

func (r *Resolver) applyFile(cfg *Resolved, path string, validKeys []string, source Source) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return // missing file is not an error
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if contains(SecretKeys, key) {
			r.warn(fmt.Sprintf("%s: secret %q ignored, set %s%s instead",
				path, key, EnvPrefix, strings.ToUpper(key)))
			continue
		}
		if !contains(validKeys, key) {
			r.warn(fmt.Sprintf("%s: unknown key %q ignored", path, key))
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.values[key] = strVal
			cfg.sources[key] = source
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	keys := make(map[string]bool)
	for k := range Defaults {
		keys[k] = true
	}
	for _, k := range GlobalKeys {
		keys[k] = true
	}
	for _, k := range LocalKeys {
		keys[k] = true
	}
	for _, k := range SecretKeys {
		keys[k] = true
	}
	for k := range cfg.values {
		keys[k] = true
	}

	for key := range keys {
		envKey := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if value := os.Getenv(envKey); value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceEnv
		}
	}
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.errWriter != nil {
		fmt.Fprintf(r.errWriter, "Warning: %s\n", msg)
	}
}

// ProjectRoot returns the detected project root directory.
func (r *Resolver) ProjectRoot() string {
	return r.root
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findProjectRoot walks up from startDir looking for a .git directory or a
// .ticketflow.yaml file.
func findProjectRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, LocalConfigName)); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
