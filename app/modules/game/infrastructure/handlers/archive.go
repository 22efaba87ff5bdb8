package gamehandlers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	gameservice "github.com/Black-And-White-Club/crownkeeper/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
)

const archiveStampLayout = "20060102T150405Z"

// Archiver stores a finished game somewhere durable.
type Archiver interface {
	Archive(ctx context.Context, payload gamedomain.GameCompletedPayload) ([]string, error)
}

// FileArchiver writes a standings chart and a scoresheet per finished game.
type FileArchiver struct {
	dir     string
	palette gameservice.ChartPalette
}

func NewFileArchiver(dir string) *FileArchiver {
	return &FileArchiver{dir: dir, palette: gameservice.DefaultPalette}
}

// archiveStamp names a game's files after its start time so a re-announced
// game replaces its earlier archive.
func archiveStamp(payload gamedomain.GameCompletedPayload) string {
	at := payload.GameStartedAt
	if at.IsZero() {
		at = payload.CompletedAt
	}
	return at.UTC().Format(archiveStampLayout)
}

// Archive returns the paths it wrote.
func (a *FileArchiver) Archive(ctx context.Context, payload gamedomain.GameCompletedPayload) ([]string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive dir: %w", err)
	}

	g := gamedomain.GameState{
		Players:       payload.Players,
		Rounds:        payload.Rounds,
		GameStartedAt: payload.GameStartedAt,
		LastUpdatedAt: payload.CompletedAt,
	}
	stamp := archiveStamp(payload)

	png, err := gameservice.GenerateScoreChart(g, a.palette)
	if err != nil {
		return nil, err
	}
	chartPath := filepath.Join(a.dir, stamp+"-standings.png")
	if err := os.WriteFile(chartPath, png, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write chart: %w", err)
	}

	var sheet bytes.Buffer
	if err := gameservice.WriteScoresheet(g, &sheet); err != nil {
		return []string{chartPath}, err
	}
	sheetPath := filepath.Join(a.dir, stamp+"-scoresheet.xlsx")
	if err := os.WriteFile(sheetPath, sheet.Bytes(), 0o644); err != nil {
		return []string{chartPath}, fmt.Errorf("failed to write scoresheet: %w", err)
	}

	return []string{chartPath, sheetPath}, nil
}
