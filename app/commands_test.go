package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type cliHarness struct {
	t      *testing.T
	config string
}

// newHarness points every command at a fresh file store and a config file
// that does not exist, so only the environment below applies.
func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	for _, k := range []string{
		"STORAGE_KEY", "SESSION_TTL", "NATS_URL", "NATS_BUCKET", "NATS_NKEY_SEED_FILE",
		"DATABASE_URL", "TURN_ORDER", "EVENTS_BACKEND", "ARCHIVE_DIR", "REAP_INTERVAL",
		"LOG_LEVEL", "LOG_FORMAT", "PUSHGATEWAY_URL", "ENV", "CROWNKEEPER_CONFIG",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("STORAGE_DIR", t.TempDir())
	return &cliHarness{t: t, config: filepath.Join(t.TempDir(), "missing.yaml")}
}

func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	a := &cli.App{
		Name:           "crownkeeper",
		Flags:          []cli.Flag{ConfigFlag},
		Commands:       Commands(),
		Writer:         &out,
		ErrWriter:      io.Discard,
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := a.RunContext(context.Background(), append([]string{"crownkeeper", "--config", h.config}, args...))
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "crownkeeper %v", args)
	return out
}

func TestCLIGameFlow(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("player", "add", "Ada"), "Added Ada (")
	assert.Contains(t, h.mustRun("player", "add", " Grace ", "Hopper"), "Added Grace Hopper (")

	out := h.mustRun("round", "add")
	assert.Contains(t, out, "Round 1: 3 wild.")
	assert.Contains(t, out, "leads.")

	assert.Equal(t, "Round 1: Ada scored 12.\n", h.mustRun("round", "score", "1", "ada", "12"))

	out = h.mustRun("round", "winner", "1", "grace hopper")
	assert.Contains(t, out, "Toggled Grace Hopper as winner of round 1.")
	assert.Contains(t, out, "Round 2 dealt: 4 wild.")

	assert.Equal(t, "Nothing changed.\n", h.mustRun("round", "score", "9", "Ada", "5"))

	out = h.mustRun("show")
	assert.Contains(t, out, "ROUND")
	assert.Contains(t, out, "0*")
	assert.Contains(t, out, "12")

	out = h.mustRun("standings")
	assert.Regexp(t, `♛♛♛\s+Grace Hopper\s+0\s+1`, out)
	assert.NotContains(t, out, "wins with")

	out = h.mustRun("status")
	assert.Regexp(t, `Stored game:\s+yes`, out)
	assert.Regexp(t, `Phase:\s+in_progress`, out)

	assert.Equal(t, "Player panel hidden.\n", h.mustRun("panel", "hide"))
	assert.Equal(t, "Nothing changed.\n", h.mustRun("panel", "hide"))

	dir := t.TempDir()
	for _, cmd := range []string{"chart", "export"} {
		path := filepath.Join(dir, cmd+".out")
		assert.Contains(t, h.mustRun(cmd, "--out", path), "Wrote "+path)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	assert.Contains(t, h.mustRun("sessions", "reap"), "Removed 0 expired sessions.")

	assert.Equal(t, "Started a new game.\n", h.mustRun("new"))
	out = h.mustRun("status")
	assert.Regexp(t, `Stored game:\s+no`, out)
	assert.Regexp(t, `Phase:\s+empty`, out)
}

func TestCLIRenameAndRemove(t *testing.T) {
	h := newHarness(t)
	h.mustRun("player", "add", "Ada")

	assert.Equal(t, "Renamed Ada to Ada Lovelace.\n", h.mustRun("player", "rename", "ADA", "Ada", "Lovelace"))
	assert.Contains(t, h.mustRun("player", "list"), "Ada Lovelace")
	assert.Equal(t, "Removed Ada Lovelace.\n", h.mustRun("player", "remove", "ada lovelace"))
	assert.Equal(t, "No players yet.\n", h.mustRun("player", "list"))
}

func TestCLIStartedAt(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Started a new game at Sun 18 Oct 19:30.\n", h.mustRun("new", "--started-at", "2026-10-18 19:30"))
	assert.Regexp(t, `Stored game:\s+yes`, h.mustRun("status"))

	_, err := h.run("new", "--started-at", "xyzzy plugh")
	assert.Error(t, err)
}

func TestCLIErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "blank player name", args: []string{"player", "add", "   "}, wantErr: ErrBlankName},
		{name: "unknown player", args: []string{"player", "remove", "Nobody"}, wantErr: ErrUnknownPlayer},
		{name: "reaper needs postgres", args: []string{"sessions", "reaper"}, wantErr: ErrReaperNeedsDB},
		{name: "archiver needs nats", args: []string{"archiver"}, wantErr: ErrArchiverNeedsNATS},
		{name: "bad round", args: []string{"round", "winner", "0", "Ada"}},
		{name: "bad score", args: []string{"round", "score", "1", "Ada", "lots"}},
		{name: "bad panel", args: []string{"panel", "sideways"}},
		{name: "missing args", args: []string{"round", "score", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.mustRun("player", "add", "Ada")

			_, err := h.run(tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCLIMemoryBackendIsNotReapable(t *testing.T) {
	h := newHarness(t)
	t.Setenv("STORAGE_BACKEND", "memory")

	_, err := h.run("sessions", "reap")
	assert.ErrorIs(t, err, ErrNotReapable)
}

func TestResolvePlayer(t *testing.T) {
	g := gamedomain.NewGameState()
	g.Players = []gamedomain.Player{
		{ID: "a1b2", Name: "Ada"},
		{ID: "a1c3", Name: "Grace"},
		{ID: "f9e8", Name: "grace"},
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{name: "exact id", ref: "a1c3", wantID: "a1c3"},
		{name: "name ignores case", ref: "ADA", wantID: "a1b2"},
		{name: "unique id prefix", ref: "f9", wantID: "f9e8"},
		{name: "ambiguous prefix", ref: "a1", wantErr: ErrAmbiguousPlayer},
		{name: "ambiguous name", ref: "Grace", wantErr: ErrAmbiguousPlayer},
		{name: "unknown", ref: "zz", wantErr: ErrUnknownPlayer},
		{name: "blank", ref: "  ", wantErr: ErrBlankName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := resolvePlayer(g, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}
