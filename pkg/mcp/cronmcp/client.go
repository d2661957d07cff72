// Package cronmcp is a typed wrapper over the mcp registry for servers that
// manage cron jobs. It decodes the tool envelope those servers return; the
// registry itself stays envelope-agnostic.
package cronmcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harun/vela/pkg/mcp"
)

// Dispatcher is the slice of the registry the client needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args any) (any, error)
}

// Client issues typed calls against one named cron MCP server.
type Client struct {
	dispatcher Dispatcher
	server     string
}

// NewClient creates a client for the named server.
func NewClient(dispatcher Dispatcher, server string) *Client {
	return &Client{
		dispatcher: dispatcher,
		server:     server,
	}
}

// Job is one managed cron job.
type Job struct {
	ID          string   `json:"id"`
	Schedule    string   `json:"schedule"`
	Command     string   `json:"command"`
	Description string   `json:"description,omitempty"`
	Enabled     bool     `json:"enabled"`
	Source      string   `json:"source"`
	RawLines    []string `json:"rawLines"`
}

// SafetyIssue is one finding from the server's safety analysis.
type SafetyIssue struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Details  any    `json:"details,omitempty"`
}

// SafetyReport summarizes whether a mutation may proceed.
type SafetyReport struct {
	Issues     []SafetyIssue `json:"issues"`
	CanProceed bool          `json:"canProceed"`
}

// Mutation is the server's response to a job-changing call.
type Mutation struct {
	Status     string       `json:"status"`
	DryRun     bool         `json:"dryRun,omitempty"`
	Job        *Job         `json:"job,omitempty"`
	Jobs       []Job        `json:"jobs,omitempty"`
	Safety     SafetyReport `json:"safety"`
	BackupPath string       `json:"backupPath,omitempty"`
}

// ListJobs returns the managed jobs, optionally filtered by enabled state
// and source.
func (c *Client) ListJobs(ctx context.Context, enabled *bool, source string) ([]Job, error) {
	args := map[string]any{}
	if enabled != nil {
		args["enabled"] = *enabled
	}
	if source != "" {
		args["source"] = source
	}

	env, err := c.call(ctx, "cron_list_jobs", args)
	if err != nil {
		return nil, err
	}

	var result struct {
		Jobs []Job `json:"jobs"`
	}
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, fmt.Errorf("cron_list_jobs: failed to decode jobs: %w", err)
	}
	return result.Jobs, nil
}

// CreateOrUpdateJob creates a job or updates the one matching the command.
func (c *Client) CreateOrUpdateJob(ctx context.Context, command, schedule, description string, forceUpdate, dryRun bool) (*Mutation, error) {
	args := map[string]any{
		"command":  command,
		"schedule": schedule,
	}
	if description != "" {
		args["description"] = description
	}
	if forceUpdate {
		args["forceUpdate"] = true
	}
	if dryRun {
		args["dryRun"] = true
	}
	return c.mutate(ctx, "cron_create_or_update_job", args)
}

// EnableJobByCommand enables the job matching the command.
func (c *Client) EnableJobByCommand(ctx context.Context, command string, dryRun bool) (*Mutation, error) {
	return c.mutate(ctx, "cron_enable_job", selector(command, dryRun))
}

// DisableJobByCommand disables the job matching the command.
func (c *Client) DisableJobByCommand(ctx context.Context, command string, dryRun bool) (*Mutation, error) {
	return c.mutate(ctx, "cron_disable_job", selector(command, dryRun))
}

// DeleteJobByCommand removes the job matching the command.
func (c *Client) DeleteJobByCommand(ctx context.Context, command string, dryRun bool) (*Mutation, error) {
	return c.mutate(ctx, "cron_delete_job", selector(command, dryRun))
}

// ExplainSchedule asks the server to describe a cron expression.
func (c *Client) ExplainSchedule(ctx context.Context, schedule string, occurrences int) (any, error) {
	args := map[string]any{"schedule": schedule}
	if occurrences > 0 {
		args["showNextOccurrences"] = occurrences
	}

	env, err := c.call(ctx, "cron_explain_schedule", args)
	if err != nil {
		return nil, err
	}
	return decodeAny(env.Result)
}

// NLToCron converts a natural-language description to a cron expression.
func (c *Client) NLToCron(ctx context.Context, text string) (any, error) {
	env, err := c.call(ctx, "cron_nl_to_cron", map[string]any{"text": text})
	if err != nil {
		return nil, err
	}
	return decodeAny(env.Result)
}

func (c *Client) mutate(ctx context.Context, toolName string, args map[string]any) (*Mutation, error) {
	env, err := c.call(ctx, toolName, args)
	if err != nil {
		return nil, err
	}

	var mutation Mutation
	if err := json.Unmarshal(env.Result, &mutation); err != nil {
		return nil, fmt.Errorf("%s: failed to decode result: %w", toolName, err)
	}
	return &mutation, nil
}

func (c *Client) call(ctx context.Context, toolName string, args map[string]any) (*envelope, error) {
	name, err := mcp.ToolName(c.server, toolName)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		args = nil
	}
	raw, err := c.dispatcher.Dispatch(ctx, name, args)
	if err != nil {
		return nil, err
	}

	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", toolName, err)
	}
	if !env.OK {
		return nil, fmt.Errorf("%s failed: %s", toolName, env.errorMessage())
	}
	if len(env.Result) == 0 {
		env.Result = json.RawMessage("null")
	}
	return env, nil
}

func selector(command string, dryRun bool) map[string]any {
	args := map[string]any{"command": command}
	if dryRun {
		args["dryRun"] = true
	}
	return args
}

func decodeAny(raw json.RawMessage) (any, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return value, nil
}
