package cronmcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	result any
	err    error

	lastName string
	lastArgs any
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, name string, args any) (any, error) {
	f.lastName = name
	f.lastArgs = args
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func decoded(t *testing.T, raw string) any {
	t.Helper()
	var value any
	require.NoError(t, json.Unmarshal([]byte(raw), &value))
	return value
}

func TestClient_ListJobs(t *testing.T) {
	dispatcher := &fakeDispatcher{result: decoded(t, `{
		"tool": "cron_list_jobs",
		"ok": true,
		"status": "listed",
		"result": {
			"jobs": [
				{
					"id": "job-1",
					"schedule": "0 4 * * *",
					"command": "backup.sh",
					"enabled": true,
					"source": "managed",
					"rawLines": ["0 4 * * * backup.sh"]
				}
			]
		}
	}`)}
	client := NewClient(dispatcher, "cron")

	jobs, err := client.ListJobs(context.Background(), nil, "")

	require.NoError(t, err)
	assert.Equal(t, "mcp__cron__cron_list_jobs", dispatcher.lastName)
	assert.Nil(t, dispatcher.lastArgs)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "0 4 * * *", jobs[0].Schedule)
	assert.True(t, jobs[0].Enabled)
}

func TestClient_ListJobs_Filters(t *testing.T) {
	dispatcher := &fakeDispatcher{result: decoded(t, `{
		"tool": "cron_list_jobs", "ok": true, "status": "listed",
		"result": {"jobs": []}
	}`)}
	client := NewClient(dispatcher, "cron")

	enabled := true
	_, err := client.ListJobs(context.Background(), &enabled, "managed")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"enabled": true, "source": "managed"}, dispatcher.lastArgs)
}

func TestClient_EnvelopeInContentBlock(t *testing.T) {
	// Servers speaking the generic tool-result shape wrap the envelope in a
	// text content block.
	dispatcher := &fakeDispatcher{result: decoded(t, `{
		"content": [
			{"type": "text", "text": "{\"tool\":\"cron_list_jobs\",\"ok\":true,\"status\":\"listed\",\"result\":{\"jobs\":[]}}"}
		]
	}`)}
	client := NewClient(dispatcher, "cron")

	jobs, err := client.ListJobs(context.Background(), nil, "")

	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestClient_ServerReportedFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{result: decoded(t, `{
		"tool": "cron_delete_job",
		"ok": false,
		"status": "not_found",
		"error": {"message": "no job matches that command"}
	}`)}
	client := NewClient(dispatcher, "cron")

	_, err := client.DeleteJobByCommand(context.Background(), "backup.sh", false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no job matches that command")
}

func TestClient_MalformedEnvelopeRejected(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{"missing status", `{"tool": "cron_list_jobs", "ok": true}`},
		{"wrong ok type", `{"tool": "cron_list_jobs", "ok": "yes", "status": "listed"}`},
		{"unrecognized shape", `{"something": "else"}`},
		{"non-json content", `{"content": [{"type": "text", "text": "plain text"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{result: decoded(t, tt.result)}
			client := NewClient(dispatcher, "cron")

			_, err := client.ListJobs(context.Background(), nil, "")

			assert.Error(t, err)
		})
	}
}

func TestClient_DispatchErrorPassesThrough(t *testing.T) {
	dispatchErr := errors.New("server not connected")
	client := NewClient(&fakeDispatcher{err: dispatchErr}, "cron")

	_, err := client.ListJobs(context.Background(), nil, "")

	assert.ErrorIs(t, err, dispatchErr)
}

func TestClient_CreateOrUpdateJob(t *testing.T) {
	dispatcher := &fakeDispatcher{result: decoded(t, `{
		"tool": "cron_create_or_update_job",
		"ok": true,
		"status": "created",
		"result": {
			"status": "created",
			"job": {
				"id": "job-2",
				"schedule": "*/5 * * * *",
				"command": "sync.sh",
				"enabled": true,
				"source": "managed",
				"rawLines": []
			},
			"safety": {"issues": [], "canProceed": true},
			"backupPath": "/tmp/crontab.bak"
		}
	}`)}
	client := NewClient(dispatcher, "cron")

	mutation, err := client.CreateOrUpdateJob(context.Background(), "sync.sh", "*/5 * * * *", "sync data", true, false)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"command":     "sync.sh",
		"schedule":    "*/5 * * * *",
		"description": "sync data",
		"forceUpdate": true,
	}, dispatcher.lastArgs)
	assert.Equal(t, "created", mutation.Status)
	require.NotNil(t, mutation.Job)
	assert.Equal(t, "job-2", mutation.Job.ID)
	assert.True(t, mutation.Safety.CanProceed)
	assert.Equal(t, "/tmp/crontab.bak", mutation.BackupPath)
}

func TestClient_DryRunSelector(t *testing.T) {
	dispatcher := &fakeDispatcher{result: decoded(t, `{
		"tool": "cron_disable_job", "ok": true, "status": "dry_run",
		"result": {"status": "dry_run", "dryRun": true, "safety": {"issues": [], "canProceed": true}}
	}`)}
	client := NewClient(dispatcher, "cron")

	mutation, err := client.DisableJobByCommand(context.Background(), "backup.sh", true)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"command": "backup.sh", "dryRun": true}, dispatcher.lastArgs)
	assert.True(t, mutation.DryRun)
}

func TestClient_ExplainSchedule(t *testing.T) {
	dispatcher := &fakeDispatcher{result: decoded(t, `{
		"tool": "cron_explain_schedule",
		"ok": true,
		"status": "explained",
		"result": {"schedule": "0 4 * * *", "next": ["2026-08-25T04:00:00Z"]}
	}`)}
	client := NewClient(dispatcher, "cron")

	result, err := client.ExplainSchedule(context.Background(), "0 4 * * *", 1)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"schedule": "0 4 * * *", "showNextOccurrences": 1}, dispatcher.lastArgs)
	assert.Equal(t, map[string]any{
		"schedule": "0 4 * * *",
		"next":     []any{"2026-08-25T04:00:00Z"},
	}, result)
}

func TestClient_NLToCron(t *testing.T) {
	dispatcher := &fakeDispatcher{result: decoded(t, `{
		"tool": "cron_nl_to_cron",
		"ok": true,
		"status": "converted",
		"result": {"schedule": "0 4 * * *", "confidence": "high"}
	}`)}
	client := NewClient(dispatcher, "cron")

	result, err := client.NLToCron(context.Background(), "every day at 4am")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "every day at 4am"}, dispatcher.lastArgs)
	assert.Equal(t, map[string]any{"schedule": "0 4 * * *", "confidence": "high"}, result)
}
