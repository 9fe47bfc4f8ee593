package jira

// IssueFields is the writable field set for create and update calls.
// Description is an ADF document on v3 and a plain string on v2.
type IssueFields struct {
	Project     *ProjectRef    `json:"project,omitempty"`
	IssueType   *IssueTypeRef  `json:"issuetype,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Description any            `json:"description,omitempty"`
	Priority    *PriorityRef   `json:"priority,omitempty"`
	Labels      []string       `json:"labels,omitempty"`
	Components  []ComponentRef `json:"components,omitempty"`
}

// ProjectRef references a project by key.
type ProjectRef struct {
	Key string `json:"key"`
}

// IssueTypeRef references an issue type by name.
type IssueTypeRef struct {
	Name string `json:"name"`
}

// PriorityRef references a priority by name.
type PriorityRef struct {
	Name string `json:"name"`
}

// ComponentRef references a component by name.
type ComponentRef struct {
	Name string `json:"name"`
}

// CreateIssueRequest is the create-issue payload.
type CreateIssueRequest struct {
	Fields IssueFields `json:"fields"`
}

// UpdateIssueRequest is the update-issue payload.
type UpdateIssueRequest struct {
	Fields IssueFields `json:"fields"`
}

// CreatedIssue is the create-issue response.
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Issue is a read-model issue as returned by search and get.
type Issue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Self   string `json:"self"`
	Fields struct {
		Summary string   `json:"summary"`
		Labels  []string `json:"labels"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
	} `json:"fields"`
}

// SearchRequest is the JQL search payload.
type SearchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt,omitempty"`
	MaxResults int      `json:"maxResults,omitempty"`
	Fields     []string `json:"fields,omitempty"`
}

// SearchResult is the JQL search response.
type SearchResult struct {
	Total  int     `json:"total"`
	Issues []Issue `json:"issues"`
}
