package jira

import "errors"

// Configuration errors.
var (
	ErrConfigURLRequired      = errors.New("jira url is required")
	ErrConfigAuthTypeRequired = errors.New("jira auth type is required")
	ErrConfigAuthTypeInvalid  = errors.New("jira auth type must be api_token, basic, or pat")
	ErrConfigAPITokenAuth     = errors.New("api_token auth requires email and token")
	ErrConfigBasicAuth        = errors.New("basic auth requires username and password")
	ErrConfigPATAuth          = errors.New("pat auth requires token")
)

// ErrIssueNotFound indicates the requested issue does not exist or is not
// visible to the authenticated user.
var ErrIssueNotFound = errors.New("jira issue not found")
