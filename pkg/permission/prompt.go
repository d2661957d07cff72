package permission

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/harun/vela/pkg/tool"
)

const maxArgumentsDisplay = 400

// CLIPrompter asks for tool-call confirmation on the terminal. Without an
// interactive terminal it fails closed: deny, no prompt, no hang.
type CLIPrompter struct {
	reader      io.Reader
	writer      io.Writer
	interactive func() bool
}

// NewCLIPrompter creates a prompter on stdin/stdout.
func NewCLIPrompter() *CLIPrompter {
	return &CLIPrompter{
		reader: os.Stdin,
		writer: os.Stdout,
		interactive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
		},
	}
}

// NewCLIPrompterWithStreams creates a prompter on caller-supplied streams,
// treated as always interactive. Used in tests.
func NewCLIPrompterWithStreams(reader io.Reader, writer io.Writer) *CLIPrompter {
	return &CLIPrompter{
		reader:      reader,
		writer:      writer,
		interactive: func() bool { return true },
	}
}

// Confirm presents the three-way choice. Any outcome other than an explicit
// approval, including cancellation and read failure, denies.
func (c *CLIPrompter) Confirm(ctx context.Context, call tool.Call) (Decision, error) {
	if !c.interactive() {
		return DecisionDeny, nil
	}

	c.display(call)

	// Read in a dedicated goroutine so a cancelled context never leaves
	// the caller blocked on the terminal.
	decisionChan := make(chan Decision, 1)
	errChan := make(chan error, 1)

	go func() {
		decision, err := c.readDecision()
		if err != nil {
			errChan <- err
		} else {
			decisionChan <- decision
		}
	}()

	select {
	case decision := <-decisionChan:
		return decision, nil
	case err := <-errChan:
		return DecisionDeny, err
	case <-ctx.Done():
		return DecisionDeny, ctx.Err()
	}
}

func (c *CLIPrompter) display(call tool.Call) {
	fmt.Fprintln(c.writer, "")
	fmt.Fprintf(c.writer, "Can I run %s with the following arguments?\n", call.Name)
	fmt.Fprintln(c.writer, formatArguments(call.Arguments))
	fmt.Fprintln(c.writer, "")
	fmt.Fprintln(c.writer, "  [y] Yes (this time only)")
	fmt.Fprintln(c.writer, "  [s] Yes (for this session)")
	fmt.Fprintln(c.writer, "  [n] No")
	fmt.Fprint(c.writer, "Allow this tool call? [y/s/N]: ")
}

func (c *CLIPrompter) readDecision() (Decision, error) {
	scanner := bufio.NewScanner(c.reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return DecisionDeny, fmt.Errorf("failed to read input: %w", err)
		}
		// EOF counts as cancellation.
		return DecisionDeny, nil
	}

	switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
	case "y", "yes":
		return DecisionAllowOnce, nil
	case "s", "session":
		return DecisionAllowSession, nil
	default:
		return DecisionDeny, nil
	}
}

func formatArguments(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}

	display := string(raw)
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err == nil {
		display = pretty.String()
	}

	if len(display) > maxArgumentsDisplay {
		display = display[:maxArgumentsDisplay] + "... (truncated)"
	}
	return display
}
