package tracker

import (
	"context"
	"fmt"

	"github.com/randalmurphal/ticketflow/jira"
)

// Jira adapts the Jira REST client to the Tracker interface.
type Jira struct {
	client *jira.Client

	// defaultType is used when an issue carries no type of its own.
	defaultType string
}

// NewJira creates a Jira tracker.
func NewJira(cfg *jira.Config) (*Jira, error) {
	client, err := jira.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("jira tracker: %w", err)
	}
	return &Jira{client: client, defaultType: "Task"}, nil
}

// CreateIssue implements Tracker.
func (j *Jira) CreateIssue(ctx context.Context, issue Issue) (*Created, error) {
	created, err := j.client.CreateIssue(ctx, j.fields(issue, true))
	if err != nil {
		return nil, err
	}
	return &Created{Key: created.Key, URL: j.client.BrowseURL(created.Key)}, nil
}

// UpdateIssue implements Tracker. Project and type are immutable on
// update; only the content fields are sent.
func (j *Jira) UpdateIssue(ctx context.Context, key string, issue Issue) error {
	return j.client.UpdateIssue(ctx, key, j.fields(issue, false))
}

// FindByContentHash implements HashSearcher via a JQL label query.
func (j *Jira) FindByContentHash(ctx context.Context, hash string) (*Created, error) {
	jql := fmt.Sprintf("labels = %q ORDER BY created ASC", HashLabel(hash))
	result, err := j.client.SearchIssues(ctx, jql, 1)
	if err != nil {
		return nil, err
	}
	if len(result.Issues) == 0 {
		return nil, nil
	}
	key := result.Issues[0].Key
	return &Created{Key: key, URL: j.client.BrowseURL(key)}, nil
}

func (j *Jira) fields(issue Issue, create bool) jira.IssueFields {
	fields := jira.IssueFields{
		Summary:     issue.Summary,
		Description: issue.Description,
		Labels:      issue.Labels,
	}
	if create {
		issueType := issue.Type
		if issueType == "" {
			issueType = j.defaultType
		}
		fields.Project = &jira.ProjectRef{Key: issue.Project}
		fields.IssueType = &jira.IssueTypeRef{Name: issueType}
	}
	if issue.Priority != "" {
		fields.Priority = &jira.PriorityRef{Name: issue.Priority}
	}
	for _, c := range issue.Components {
		fields.Components = append(fields.Components, jira.ComponentRef{Name: c})
	}
	return fields
}
