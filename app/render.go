package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// RenderPlayers lists the roster in seating order.
func RenderPlayers(w io.Writer, g gamedomain.GameState) error {
	if len(g.Players) == 0 {
		_, err := fmt.Fprintln(w, "No players yet.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, p := range g.Players {
		fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Name)
	}
	return tw.Flush()
}

// RenderRounds prints one row per round. A trailing * marks the round winner
// and - a player who joined after the round was dealt.
func RenderRounds(w io.Writer, g gamedomain.GameState) error {
	if len(g.Rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds played.")
		return err
	}

	tw := newTable(w)
	header := []string{"ROUND", "CARD", "TURN"}
	for _, p := range g.Players {
		header = append(header, p.Name)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range g.Rounds {
		row := []string{strconv.Itoa(r.RoundNumber), gamedomain.CardLabel(r.RoundNumber), "-"}
		if turn, ok := g.TurnFor(r.RoundNumber); ok {
			row[2] = turn.Name
		}
		for _, p := range g.Players {
			row = append(row, scoreCell(r, p.ID))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	total := []string{"TOTAL", "", ""}
	for _, p := range g.Players {
		total = append(total, strconv.Itoa(g.TotalScore(p.ID)))
	}
	fmt.Fprintln(tw, strings.Join(total, "\t"))
	return tw.Flush()
}

func scoreCell(r gamedomain.Round, playerID string) string {
	for _, sc := range r.Scores {
		if sc.PlayerID != playerID {
			continue
		}
		if sc.IsWinner {
			return strconv.Itoa(sc.Score) + "*"
		}
		return strconv.Itoa(sc.Score)
	}
	return "-"
}

// RenderStandings prints ranked standings and, once the game is complete,
// the winner banner.
func RenderStandings(w io.Writer, g gamedomain.GameState) error {
	placements := gamedomain.Placements(g.Rankings())
	if len(placements) == 0 {
		_, err := fmt.Fprintln(w, "No players yet.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "POS\tPLAYER\tTOTAL\tWINS")
	for _, p := range placements {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", gamedomain.CrownMarker(p.Position), p.Name, p.TotalScore, p.Wins)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if winner, ok := g.Winner(); ok {
		_, err := fmt.Fprintf(w, "\n♛ %s wins with %d points and %d round wins ♛\n", winner.Name, winner.TotalScore, winner.Wins)
		return err
	}
	return nil
}

// RenderStatus summarises the stored game in a few lines.
func RenderStatus(w io.Writer, g gamedomain.GameState, stored bool) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Stored game:\t%s\n", yesNo(stored))
	fmt.Fprintf(tw, "Phase:\t%s\n", g.Phase())
	fmt.Fprintf(tw, "Players:\t%d\n", len(g.Players))
	if n := g.CurrentRoundNumber(); n > 0 {
		fmt.Fprintf(tw, "Round:\t%d of %d (%s wild)\n", n, gamedomain.MaxRounds, gamedomain.CardLabel(n))
	}
	if turn, ok := g.CurrentTurn(); ok {
		fmt.Fprintf(tw, "Turn:\t%s\n", turn.Name)
	}
	if !g.GameStartedAt.IsZero() {
		fmt.Fprintf(tw, "Started:\t%s\n", g.GameStartedAt.Local().Format("Mon 2 Jan 15:04"))
	}
	if !g.LastUpdatedAt.IsZero() {
		fmt.Fprintf(tw, "Updated:\t%s\n", g.LastUpdatedAt.Local().Format("Mon 2 Jan 15:04"))
	}
	fmt.Fprintf(tw, "Player panel:\t%s\n", showHide(g.ShowPlayerManagement))
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func showHide(b bool) string {
	if b {
		return "shown"
	}
	return "hidden"
}
