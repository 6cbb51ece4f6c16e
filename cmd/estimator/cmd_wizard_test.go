package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spboyer/estimator/internal/execution"
	"github.com/spboyer/estimator/internal/session"
	"github.com/spboyer/estimator/internal/store"
	"github.com/spboyer/estimator/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const b2bDescription = "B2B ecommerce platform with ERP integration"

// scriptPrompter replays answers in order. Input replies are strings, Select
// replies are strings and MultiSelect replies are []string.
type scriptPrompter struct {
	replies []any
}

var errNoReply = errors.New("no scripted reply")

func (p *scriptPrompter) pop() (any, error) {
	if len(p.replies) == 0 {
		return nil, errNoReply
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r, nil
}

func (p *scriptPrompter) Input(wizard.InputPrompt) (string, error) {
	r, err := p.pop()
	if err != nil {
		return "", err
	}
	return r.(string), nil
}

func (p *scriptPrompter) Select(string, string, []wizard.Choice, string) (string, error) {
	r, err := p.pop()
	if err != nil {
		return "", err
	}
	return r.(string), nil
}

func (p *scriptPrompter) MultiSelect(string, string, []wizard.Choice, []string) ([]string, error) {
	r, err := p.pop()
	if err != nil {
		return nil, err
	}
	return r.([]string), nil
}

// withScript swaps the prompter and engine hooks for the duration of the test
// and runs it from an empty working directory.
func withScript(t *testing.T, replies ...any) *scriptPrompter {
	t.Helper()
	t.Chdir(t.TempDir())

	p := &scriptPrompter{replies: replies}
	origPrompter, origEngine := newPrompter, newEngine
	t.Cleanup(func() {
		newPrompter, newEngine = origPrompter, origEngine
	})
	newPrompter = func(io.Reader, io.Writer) wizard.Prompter { return p }
	newEngine = func(_ context.Context, name, model string, _ *slog.Logger) (execution.AgentEngine, error) {
		require.Equal(t, "mock", name)
		return execution.NewMockEngine(model), nil
	}
	return p
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPresetCommand_SavesPreset(t *testing.T) {
	p := withScript(t,
		"web",
		[]string{"sap"},
		"next",
		"",
		"next",
		"save",
	)
	outDir := filepath.Join(t.TempDir(), "presets")

	out, err := runCLI(t, "preset", "--engine", "mock", "-o", outDir, "--session-log", b2bDescription)
	require.NoError(t, err)
	assert.Empty(t, p.replies)
	assert.Contains(t, out, `Saved preset "B2B Commerce"`)
	assert.Contains(t, out, "Session log: ")

	preset, err := store.New(outDir).LoadPreset("B2B Commerce")
	require.NoError(t, err)
	assert.Len(t, preset.Activities, 5)

	files, err := session.ListSessions(filepath.Join(".estimator", "sessions"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name, "-single-session.jsonl")
}

func TestPresetCommand_QuitIsNotAnError(t *testing.T) {
	withScript(t,
		"web",
		[]string{"sap"},
		"next",
		"",
		"next",
		"quit",
	)

	out, err := runCLI(t, "preset", "--engine", "mock", b2bDescription)
	require.NoError(t, err)
	assert.Contains(t, out, "Closed without saving.")
}

func TestPresetCommand_UnknownEngine(t *testing.T) {
	withScript(t)

	_, err := runCLI(t, "preset", "--engine", "openai", b2bDescription)
	require.ErrorContains(t, err, `unknown engine "openai"`)
}

func TestPresetCommand_ReadsProjectConfig(t *testing.T) {
	withScript(t,
		"mobile",
		[]string{"crm"},
		"next",
		"",
		"next",
		"save",
	)
	require.NoError(t, os.WriteFile(".estimator.yaml", []byte("defaults:\n  engine: mock\npaths:\n  output: out/\n"), 0o644))

	_, err := runCLI(t, "preset", b2bDescription)
	require.NoError(t, err)

	_, err = store.New("out").LoadPreset("B2B Commerce")
	require.NoError(t, err)
}

func TestBulkCommand_SavesSelection(t *testing.T) {
	withScript(t,
		"both",
		[]string{"crm"},
		"next",
		"",
		"next",
		"save",
	)
	reqs := filepath.Join(t.TempDir(), "reqs.yaml")
	require.NoError(t, os.WriteFile(reqs, []byte(`
- id: req-1
  code: REQ-001
  title: Customer login
- id: req-2
  code: REQ-002
  title: Order history
`), 0o644))
	outDir := t.TempDir()

	out, err := runCLI(t, "bulk", "--engine", "mock", "-r", reqs, "-o", outDir, b2bDescription)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2 of 2 estimations")

	for _, id := range []string{"req-1", "req-2"} {
		res, err := store.New(outDir).LoadEstimation(id)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 3.0, res.TotalBaseDays)
	}
}

func TestBulkCommand_RequiresRequirementsFlag(t *testing.T) {
	withScript(t)

	_, err := runCLI(t, "bulk", "--engine", "mock", b2bDescription)
	require.ErrorContains(t, err, "requirements")
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()
	logger, err := session.NewJSONLogger(session.DefaultLogPath(dir, "bulk"))
	require.NoError(t, err)
	require.NoError(t, logger.Log(session.NewEvent(session.EventSessionStart, session.SessionStartData("bulk", "mock", "mock-model"))))
	require.NoError(t, logger.Close())

	out, err := runCLI(t, "session", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "OUTCOME")
	assert.Contains(t, out, "-bulk-session.jsonl")
	assert.Contains(t, out, "unfinished")

	out, err = runCLI(t, "session", "view", logger.Path())
	require.NoError(t, err)
	assert.Contains(t, out, "bulk mode, mock/mock-model")
	assert.Contains(t, out, "unfinished: 0 saved, 0 failed")

	out, err = runCLI(t, "session", "view", "--errors", logger.Path())
	require.NoError(t, err)
	assert.Contains(t, out, "No errors recorded.")

	empty := t.TempDir()
	out, err = runCLI(t, "session", "list", "--dir", empty)
	require.NoError(t, err)
	assert.Contains(t, out, "No session logs found.")
}
