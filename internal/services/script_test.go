package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"typing-trainer-backend/internal/services"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newRunner(timeout time.Duration) *services.ScriptRunner {
	return services.NewScriptRunner("sh", timeout, zap.NewNop())
}

func TestScriptRunnerSuccess(t *testing.T) {
	script := writeScript(t, `printf '{"upper": "HELLO"}\n'`)

	result := newRunner(0).Run(context.Background(), script, "hello")
	require.NoError(t, result.Err())

	out, err := result.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{"upper": "HELLO"}`, string(out))
}

func TestScriptRunnerPassesArgsVerbatim(t *testing.T) {
	script := writeScript(t, `printf '%s|%s' "$#" "$1"`)
	arg := `hello"; echo pwned; $(id) && rm -rf /tmp/x`

	result := newRunner(0).Run(context.Background(), script, arg)
	require.NoError(t, result.Err())
	assert.Equal(t, "1|"+arg, string(result.Stdout))
}

func TestScriptRunnerStderrIsFailure(t *testing.T) {
	script := writeScript(t, `printf '{"ok": true}'; echo "warning" >&2; exit 0`)

	result := newRunner(0).Run(context.Background(), script)
	assert.NoError(t, result.ExitErr)
	assert.ErrorIs(t, result.Err(), services.ErrScriptStderr)
}

func TestScriptRunnerNonZeroExit(t *testing.T) {
	script := writeScript(t, `exit 3`)

	result := newRunner(0).Run(context.Background(), script)
	assert.ErrorIs(t, result.Err(), services.ErrScriptInvocation)
}

func TestScriptRunnerMissingExecutable(t *testing.T) {
	runner := services.NewScriptRunner("", 0, zap.NewNop())

	result := runner.Run(context.Background(), filepath.Join(t.TempDir(), "missing.py"))
	assert.ErrorIs(t, result.Err(), services.ErrScriptInvocation)
}

func TestScriptRunnerInvalidJSON(t *testing.T) {
	script := writeScript(t, `echo "not json"`)

	result := newRunner(0).Run(context.Background(), script)
	require.NoError(t, result.Err())

	_, err := result.JSON()
	assert.ErrorIs(t, err, services.ErrScriptOutput)

	var v map[string]interface{}
	assert.ErrorIs(t, result.DecodeJSON(&v), services.ErrScriptOutput)
}

func TestScriptRunnerEmptyOutputIsNotJSON(t *testing.T) {
	script := writeScript(t, `exit 0`)

	result := newRunner(0).Run(context.Background(), script)
	require.NoError(t, result.Err())

	_, err := result.JSON()
	assert.ErrorIs(t, err, services.ErrScriptOutput)
}

func TestScriptRunnerTimeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)

	start := time.Now()
	result := newRunner(100*time.Millisecond).Run(context.Background(), script)

	assert.ErrorIs(t, result.Err(), services.ErrScriptInvocation)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestScriptRunnerWaitsForBackgroundChildOutput(t *testing.T) {
	script := writeScript(t, `printf '{"ok": true}'; (sleep 2) & exit 0`)

	result := newRunner(0).Run(context.Background(), script)
	require.NoError(t, result.Err())

	out, err := result.JSON()
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, string(out))
}

func TestScriptRunnerTimeoutKillsChildren(t *testing.T) {
	script := writeScript(t, `sleep 5; printf '{}'`)

	start := time.Now()
	result := newRunner(100*time.Millisecond).Run(context.Background(), script)

	assert.ErrorIs(t, result.Err(), services.ErrScriptInvocation)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestScriptRunnerContextCancel(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	result := newRunner(0).Run(ctx, script)
	assert.ErrorIs(t, result.Err(), services.ErrScriptInvocation)
}
