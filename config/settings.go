package config

import (
	"fmt"
	"strconv"
	"time"
)

// Settings is the typed view of the resolved configuration that the
// wiring code consumes.
type Settings struct {
	Project   string
	IssueType string

	// Tracker selects the issue tracker backend: jira, github, or gitlab.
	Tracker string

	JiraURL      string
	JiraEmail    string
	JiraAuthType string
	JiraToken    string

	GitHubToken string
	GitHubRepo  string // "owner/repo"

	GitLabToken   string
	GitLabURL     string
	GitLabProject string

	OpenAIAPIKey string

	DBPath         string
	DailyBudgetUSD float64
	MaxSteps       int
	ContextFloor   int

	RetrieveLimit     int
	MinSimilarity     float64
	DecisionThreshold float64

	ApprovalSecret string
	ApprovalTTL    time.Duration

	SlackWebhook string
}

// Load resolves the hierarchy and converts it into Settings. Malformed
// numeric or duration values are reported, not silently defaulted.
func Load() (Settings, error) {
	return NewResolver().Settings()
}

// Settings converts this resolver's merged configuration.
func (r *Resolver) Settings() (Settings, error) {
	return resolvedSettings(r.Resolve())
}

func resolvedSettings(cfg *Resolved) (Settings, error) {
	s := Settings{
		Project:   cfg.Get("project"),
		IssueType: cfg.Get("issue_type"),
		Tracker:   cfg.Get("tracker"),

		JiraURL:      cfg.Get("jira_url"),
		JiraEmail:    cfg.Get("jira_email"),
		JiraAuthType: cfg.Get("jira_auth_type"),
		JiraToken:    cfg.Get("jira_token"),

		GitHubToken: cfg.Get("github_token"),
		GitHubRepo:  cfg.Get("github_repo"),

		GitLabToken:   cfg.Get("gitlab_token"),
		GitLabURL:     cfg.Get("gitlab_url"),
		GitLabProject: cfg.Get("gitlab_project"),

		OpenAIAPIKey: cfg.Get("openai_api_key"),

		DBPath: cfg.Get("db_path"),

		ApprovalSecret: cfg.Get("approval_secret"),
		SlackWebhook:   cfg.Get("slack_webhook"),
	}

	var err error
	if s.DailyBudgetUSD, err = strconv.ParseFloat(cfg.Get("daily_budget_usd"), 64); err != nil {
		return s, fmt.Errorf("daily_budget_usd: %w", err)
	}
	if s.MaxSteps, err = strconv.Atoi(cfg.Get("max_steps")); err != nil {
		return s, fmt.Errorf("max_steps: %w", err)
	}
	if s.ContextFloor, err = strconv.Atoi(cfg.Get("context_floor")); err != nil {
		return s, fmt.Errorf("context_floor: %w", err)
	}
	if s.ApprovalTTL, err = time.ParseDuration(cfg.Get("approval_ttl")); err != nil {
		return s, fmt.Errorf("approval_ttl: %w", err)
	}
	if s.RetrieveLimit, err = strconv.Atoi(cfg.Get("retrieve_limit")); err != nil {
		return s, fmt.Errorf("retrieve_limit: %w", err)
	}
	if s.MinSimilarity, err = strconv.ParseFloat(cfg.Get("min_similarity"), 64); err != nil {
		return s, fmt.Errorf("min_similarity: %w", err)
	}
	if s.DecisionThreshold, err = strconv.ParseFloat(cfg.Get("decision_threshold"), 64); err != nil {
		return s, fmt.Errorf("decision_threshold: %w", err)
	}

	switch s.Tracker {
	case "jira", "github", "gitlab", "mock":
	default:
		return s, fmt.Errorf("unknown tracker %q", s.Tracker)
	}
	return s, nil
}
