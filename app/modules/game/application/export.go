package gameservice

import (
	"fmt"
	"io"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	"github.com/xuri/excelize/v2"
)

const (
	ScoresheetSheet = "Scoresheet"
	StandingsSheet  = "Standings"
)

// ExportScoresheet writes the current game as an XLSX workbook.
func (s *GameService) ExportScoresheet(w io.Writer) error {
	return WriteScoresheet(s.Snapshot(), w)
}

// WriteScoresheet lays out one row per round with a column per player,
// followed by totals and wins, plus a standings sheet.
func WriteScoresheet(g gamedomain.GameState, w io.Writer) error {
	if len(g.Players) == 0 {
		return ErrNoPlayers
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ScoresheetSheet); err != nil {
		return fmt.Errorf("failed to name scoresheet: %w", err)
	}

	header := []any{"Round", "Card"}
	for _, p := range g.Players {
		header = append(header, p.Name)
	}
	header = append(header, "Winner")
	if err := f.SetSheetRow(ScoresheetSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range g.Rounds {
		row := []any{r.RoundNumber, gamedomain.CardLabel(r.RoundNumber)}
		winner := ""
		for _, p := range g.Players {
			var cell any = ""
			for _, sc := range r.Scores {
				if sc.PlayerID != p.ID {
					continue
				}
				cell = sc.Score
				if sc.IsWinner {
					winner = p.Name
				}
			}
			row = append(row, cell)
		}
		row = append(row, winner)
		if err := setRow(f, ScoresheetSheet, i+2, row); err != nil {
			return err
		}
	}

	totals := []any{"Total", ""}
	wins := []any{"Wins", ""}
	for _, p := range g.Players {
		totals = append(totals, g.TotalScore(p.ID))
		wins = append(wins, g.Wins(p.ID))
	}
	if err := setRow(f, ScoresheetSheet, len(g.Rounds)+2, totals); err != nil {
		return err
	}
	if err := setRow(f, ScoresheetSheet, len(g.Rounds)+3, wins); err != nil {
		return err
	}

	if _, err := f.NewSheet(StandingsSheet); err != nil {
		return fmt.Errorf("failed to add standings sheet: %w", err)
	}
	if err := setRow(f, StandingsSheet, 1, []any{"Place", "Crown", "Player", "Total", "Wins"}); err != nil {
		return err
	}
	for i, pl := range gamedomain.Placements(g.Rankings()) {
		row := []any{pl.Position, gamedomain.CrownMarker(pl.Position), pl.Name, pl.TotalScore, pl.Wins}
		if err := setRow(f, StandingsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
