package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Killo023/assignment-sub000/internal/utils"
)

// WorkerExtractor runs PDF extraction in a child process. The worker reads
// base64 file bytes on stdin and answers with a single JSON object:
// {"text": "..."} on stdout with exit 0, or {"error": "..."} on stderr with
// a non-zero exit. Parser crashes and hangs stay inside the child; the host
// only ever sees an exit code and two byte streams.
type WorkerExtractor struct {
	command string
	args    []string
	timeout time.Duration
	logger  *utils.Logger
}

type workerResult struct {
	Text string `json:"text"`
}

type workerFailure struct {
	Error string `json:"error"`
}

func NewWorkerExtractor(timeout time.Duration, logger *utils.Logger, command string, args ...string) *WorkerExtractor {
	return &WorkerExtractor{
		command: command,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

// Extract spawns the worker, feeds it the document, and waits for process
// exit. The wait is bounded by the configured timeout; a hung worker is
// killed rather than stalling the submission forever.
func (w *WorkerExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()

	cmd := exec.CommandContext(ctx, w.command, w.args...)
	// Don't let a killed worker's orphaned children hold the pipes open.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(base64.StdEncoding.EncodeToString(data))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			w.logger.Error("PDF worker timed out", "command", w.command, "timeout", w.timeout)
			return "", fmt.Errorf("pdf extraction timed out after %s", w.timeout)
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The worker never ran (missing binary, fork failure).
			w.logger.Error("PDF worker failed to start", "command", w.command, "error", err)
			return "", fmt.Errorf("failed to start pdf worker: %w", err)
		}

		w.logger.Warn("PDF worker exited non-zero",
			"command", w.command,
			"exit_code", exitErr.ExitCode(),
			"duration_ms", dur.Milliseconds())

		// The worker reports failures as JSON on stderr. Anything else
		// (a panic trace, garbage from a crashed parser) is opaque.
		var failure workerFailure
		if jsonErr := json.Unmarshal(stderr.Bytes(), &failure); jsonErr == nil && failure.Error != "" {
			return "", fmt.Errorf("pdf extraction failed: %s", failure.Error)
		}
		return "", fmt.Errorf("pdf worker exited with code %d", exitErr.ExitCode())
	}

	w.logger.Debug("PDF worker finished",
		"command", w.command,
		"duration_ms", dur.Milliseconds(),
		"stdout_bytes", stdout.Len())

	var result workerResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return "", fmt.Errorf("pdf worker produced malformed output: %w", err)
	}

	return result.Text, nil
}
