// Command vela-mcp-echo is a small stdio MCP server used to exercise the
// client stack end to end. It exposes a structured echo tool and a cron
// schedule explainer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/harun/vela/internal/config"
	"github.com/harun/vela/internal/logger"
)

type echoInput struct {
	Text  string `json:"text" jsonschema:"the text to echo back"`
	Count int    `json:"count,omitempty" jsonschema:"how many times to repeat the text"`
}

type echoOutput struct {
	Echoed   string `json:"echoed"`
	Repeated int    `json:"repeated"`
}

func echoStructured(ctx context.Context, req *sdk.CallToolRequest, in echoInput) (*sdk.CallToolResult, echoOutput, error) {
	count := in.Count
	if count < 1 {
		count = 1
	}
	if count > 100 {
		return nil, echoOutput{}, fmt.Errorf("count %d exceeds the limit of 100", count)
	}

	parts := make([]string, count)
	for i := range parts {
		parts[i] = in.Text
	}

	return nil, echoOutput{
		Echoed:   strings.Join(parts, " "),
		Repeated: count,
	}, nil
}

type explainInput struct {
	Schedule    string `json:"schedule" jsonschema:"a five-field cron expression or descriptor such as @daily"`
	Occurrences int    `json:"occurrences,omitempty" jsonschema:"how many upcoming run times to include"`
}

type explainOutput struct {
	Schedule string   `json:"schedule"`
	Next     []string `json:"next"`
}

func explainSchedule(ctx context.Context, req *sdk.CallToolRequest, in explainInput) (*sdk.CallToolResult, explainOutput, error) {
	schedule, err := cron.ParseStandard(in.Schedule)
	if err != nil {
		return nil, explainOutput{}, fmt.Errorf("invalid cron expression %q: %w", in.Schedule, err)
	}

	occurrences := in.Occurrences
	if occurrences < 1 {
		occurrences = 3
	}
	if occurrences > 20 {
		occurrences = 20
	}

	next := make([]string, 0, occurrences)
	at := time.Now().UTC()
	for range occurrences {
		at = schedule.Next(at)
		next = append(next, at.Format(time.RFC3339))
	}

	return nil, explainOutput{
		Schedule: in.Schedule,
		Next:     next,
	}, nil
}

func main() {
	// Stdout carries the protocol; logs go to stderr.
	logg, err := logger.New(config.LoggingConfig{Level: "info", Console: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up logging:", err)
		os.Exit(1)
	}
	defer logg.Close()
	logg.Install()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := sdk.NewServer(&sdk.Implementation{
		Name:    "vela-mcp-echo",
		Version: "0.1.0",
	}, nil)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "echo_structured",
		Description: "Echo text back, optionally repeated.",
	}, echoStructured)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "cron_explain_schedule",
		Description: "Parse a cron expression and report its next run times.",
	}, explainSchedule)

	log.Info().Msg("Echo MCP server listening on stdio")

	if err := server.Run(ctx, &sdk.StdioTransport{}); err != nil {
		log.Error().Err(err).Msg("Server terminated")
		os.Exit(1)
	}
}
