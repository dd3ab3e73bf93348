package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

var (
	ErrScriptInvocation = errors.New("script invocation failed")
	ErrScriptStderr     = errors.New("script wrote to stderr")
	ErrScriptOutput     = errors.New("script output is not valid JSON")
)

// ScriptExecutor runs an external script and reports what it produced.
type ScriptExecutor interface {
	Run(ctx context.Context, script string, args ...string) *ScriptResult
}

type ScriptResult struct {
	Script  string
	Args    []string
	ExitErr error
	Stdout  []byte
	Stderr  []byte
}

// Err classifies the result. Any stderr output counts as a failure, even
// when the process exited with status 0.
func (r *ScriptResult) Err() error {
	if r.ExitErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrScriptInvocation, r.Script, r.ExitErr)
	}
	if len(r.Stderr) > 0 {
		return fmt.Errorf("%w: %s", ErrScriptStderr, r.Script)
	}
	return nil
}

// JSON returns stdout as a single JSON document with surrounding
// whitespace removed.
func (r *ScriptResult) JSON() (json.RawMessage, error) {
	out := bytes.TrimSpace(r.Stdout)
	if !json.Valid(out) {
		return nil, fmt.Errorf("%w: %s", ErrScriptOutput, r.Script)
	}
	return json.RawMessage(out), nil
}

func (r *ScriptResult) DecodeJSON(v interface{}) error {
	out, err := r.JSON()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScriptOutput, r.Script, err)
	}
	return nil
}

type ScriptRunner struct {
	interpreter string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewScriptRunner returns a runner that starts scripts as
// "interpreter script args...". An empty interpreter executes the script
// directly. A zero timeout means the script may run for as long as the
// caller's context allows.
func NewScriptRunner(interpreter string, timeout time.Duration, logger *zap.Logger) *ScriptRunner {
	return &ScriptRunner{
		interpreter: interpreter,
		timeout:     timeout,
		logger:      logger,
	}
}

func (r *ScriptRunner) Run(ctx context.Context, script string, args ...string) *ScriptResult {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	name, argv := r.command(script, args)

	// Arguments are passed as separate argv entries, never through a shell.
	cmd := exec.CommandContext(ctx, name, argv...)
	killProcessGroupOnCancel(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := &ScriptResult{
		Script:  script,
		Args:    args,
		ExitErr: err,
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
	}

	r.logger.Debug("script finished",
		zap.String("script", script),
		zap.Int("args", len(args)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("stdout_bytes", stdout.Len()),
		zap.Int("stderr_bytes", stderr.Len()),
		zap.Error(err),
	)

	return result
}

func (r *ScriptRunner) command(script string, args []string) (string, []string) {
	if r.interpreter == "" {
		return script, args
	}
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, script)
	argv = append(argv, args...)
	return r.interpreter, argv
}
