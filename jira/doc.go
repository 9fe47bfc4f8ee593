// Package jira is a minimal Jira REST client covering the operations the
// commit path needs: creating, updating, and searching issues. It speaks
// API v3 (Cloud, ADF descriptions) and v2 (Server/DC, plain text
// descriptions) and retries transient failures with backoff.
package jira
