package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/crownkeeper/app/modules/game"
	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	gamequeue "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/queue"
	gamerouter "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/router"
	gameutil "github.com/Black-And-White-Club/crownkeeper/app/modules/game/utils"
	"github.com/Black-And-White-Club/crownkeeper/config"
	natsutil "github.com/Black-And-White-Club/crownkeeper/internal/nats"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/urfave/cli/v2"
)

// ConfigFlag is the global flag every command reads its config from.
var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Value:   "config.yaml",
	Usage:   "path to the configuration file",
	EnvVars: []string{"CROWNKEEPER_CONFIG"},
}

const shutdownTimeout = 10 * time.Second

// Commands returns the crownkeeper command tree.
func Commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "new",
			Usage: "discard the current game and start a new one",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "started-at", Usage: `when the game starts, e.g. "tonight at 7pm" or "2026-10-18 19:30"`},
			},
			Action: withApp(cmdNew),
		},
		{
			Name:  "player",
			Usage: "manage the roster",
			Subcommands: []*cli.Command{
				{Name: "add", Usage: "add a player", ArgsUsage: "NAME", Action: withApp(cmdPlayerAdd)},
				{Name: "remove", Usage: "remove a player", ArgsUsage: "PLAYER", Action: withApp(cmdPlayerRemove)},
				{Name: "rename", Usage: "rename a player", ArgsUsage: "PLAYER NAME", Action: withApp(cmdPlayerRename)},
				{Name: "list", Usage: "list players", Action: withApp(cmdPlayerList)},
			},
		},
		{
			Name:  "round",
			Usage: "deal and score rounds",
			Subcommands: []*cli.Command{
				{Name: "add", Usage: "deal the next round", Action: withApp(cmdRoundAdd)},
				{Name: "score", Usage: "record a score", ArgsUsage: "ROUND PLAYER SCORE", Action: withApp(cmdRoundScore)},
				{Name: "winner", Usage: "toggle the round winner", ArgsUsage: "ROUND PLAYER", Action: withApp(cmdRoundWinner)},
			},
		},
		{
			Name:      "panel",
			Usage:     "show or hide the player management panel",
			ArgsUsage: "show|hide",
			Action:    withApp(cmdPanel),
		},
		{Name: "show", Usage: "print the scoresheet and standings", Action: withApp(cmdShow)},
		{Name: "standings", Usage: "print the standings", Action: withApp(cmdStandings)},
		{
			Name:   "chart",
			Usage:  "render the cumulative score chart as PNG",
			Flags:  []cli.Flag{outFlag("standings.png")},
			Action: withApp(cmdChart),
		},
		{
			Name:   "export",
			Usage:  "export the scoresheet as XLSX",
			Flags:  []cli.Flag{outFlag("scoresheet.xlsx")},
			Action: withApp(cmdExport),
		},
		{Name: "status", Usage: "summarise the stored game", Action: withApp(cmdStatus)},
		{
			Name:  "sessions",
			Usage: "expire stale sessions",
			Subcommands: []*cli.Command{
				{Name: "reap", Usage: "delete expired sessions once", Action: withApp(cmdSessionsReap)},
				{Name: "reaper", Usage: "reap expired sessions periodically until interrupted", Action: withApp(cmdSessionsReaper)},
			},
		},
		{
			Name:   "archiver",
			Usage:  "archive completed games published over NATS until interrupted",
			Action: cmdArchiver,
		},
	}
}

func outFlag(def string) cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: def, Usage: "output file"}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String(ConfigFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// withApp builds the App for one command and always releases it afterwards.
func withApp(fn func(c *cli.Context, a *App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		a, err := NewApp(c.Context, cfg, c.App.ErrWriter)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Context), shutdownTimeout)
			defer cancel()
			a.Close(ctx)
		}()
		return fn(c, a)
	}
}

func reportChange(w io.Writer, changed bool, msg string, args ...any) error {
	if !changed {
		_, err := fmt.Fprintln(w, "Nothing changed.")
		return err
	}
	_, err := fmt.Fprintf(w, msg+"\n", args...)
	return err
}

func cmdNew(c *cli.Context, a *App) error {
	startedAt, err := gameutil.NewStartTimeParser().Parse(c.String("started-at"), gameutil.RealClock{})
	if err != nil {
		return err
	}
	a.GameModule.GameService.StartNewGame(c.Context, startedAt)
	if startedAt.IsZero() {
		_, err = fmt.Fprintln(c.App.Writer, "Started a new game.")
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "Started a new game at %s.\n", startedAt.Format("Mon 2 Jan 15:04"))
	return err
}

func cmdPlayerAdd(c *cli.Context, a *App) error {
	name, err := playerName(c.Args().Slice())
	if err != nil {
		return err
	}
	p, added := a.GameModule.GameService.AddPlayer(c.Context, name)
	return reportChange(c.App.Writer, added, "Added %s (%s).", p.Name, p.ID)
}

func cmdPlayerRemove(c *cli.Context, a *App) error {
	svc := a.GameModule.GameService
	p, err := resolvePlayer(svc.Snapshot(), c.Args().First())
	if err != nil {
		return err
	}
	return reportChange(c.App.Writer, svc.RemovePlayer(c.Context, p.ID), "Removed %s.", p.Name)
}

func cmdPlayerRename(c *cli.Context, a *App) error {
	svc := a.GameModule.GameService
	p, err := resolvePlayer(svc.Snapshot(), c.Args().First())
	if err != nil {
		return err
	}
	name, err := playerName(c.Args().Tail())
	if err != nil {
		return err
	}
	return reportChange(c.App.Writer, svc.UpdatePlayer(c.Context, p.ID, name), "Renamed %s to %s.", p.Name, name)
}

func cmdPlayerList(c *cli.Context, a *App) error {
	return RenderPlayers(c.App.Writer, a.GameModule.GameService.Snapshot())
}

func cmdRoundAdd(c *cli.Context, a *App) error {
	svc := a.GameModule.GameService
	if !svc.AddRound(c.Context) {
		return reportChange(c.App.Writer, false, "")
	}
	g := svc.Snapshot()
	n := g.CurrentRoundNumber()
	msg := fmt.Sprintf("Round %d: %s wild.", n, gamedomain.CardLabel(n))
	if turn, ok := g.CurrentTurn(); ok {
		msg += fmt.Sprintf(" %s leads.", turn.Name)
	}
	_, err := fmt.Fprintln(c.App.Writer, msg)
	return err
}

func cmdRoundScore(c *cli.Context, a *App) error {
	if c.NArg() != 3 {
		return fmt.Errorf("expected ROUND PLAYER SCORE, got %d arguments", c.NArg())
	}
	svc := a.GameModule.GameService
	round, err := parseRound(c.Args().Get(0))
	if err != nil {
		return err
	}
	p, err := resolvePlayer(svc.Snapshot(), c.Args().Get(1))
	if err != nil {
		return err
	}
	score, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", c.Args().Get(2), err)
	}
	changed := svc.UpdateRoundScore(c.Context, round-1, p.ID, score)
	return reportChange(c.App.Writer, changed, "Round %d: %s scored %d.", round, p.Name, score)
}

func cmdRoundWinner(c *cli.Context, a *App) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected ROUND PLAYER, got %d arguments", c.NArg())
	}
	svc := a.GameModule.GameService
	round, err := parseRound(c.Args().Get(0))
	if err != nil {
		return err
	}
	p, err := resolvePlayer(svc.Snapshot(), c.Args().Get(1))
	if err != nil {
		return err
	}
	before := svc.Snapshot().CurrentRoundNumber()
	if !svc.ToggleRoundWinner(c.Context, round-1, p.ID) {
		return reportChange(c.App.Writer, false, "")
	}

	g := svc.Snapshot()
	out := c.App.Writer
	fmt.Fprintf(out, "Toggled %s as winner of round %d.\n", p.Name, round)
	if n := g.CurrentRoundNumber(); n > before {
		fmt.Fprintf(out, "Round %d dealt: %s wild.\n", n, gamedomain.CardLabel(n))
	}
	if winner, ok := g.Winner(); ok && g.IsDecided() {
		_, err = fmt.Fprintf(out, "Game over. %s leads with %d points.\n", winner.Name, winner.TotalScore)
	}
	return err
}

func cmdPanel(c *cli.Context, a *App) error {
	var visible bool
	switch strings.ToLower(c.Args().First()) {
	case "show":
		visible = true
	case "hide":
	default:
		return fmt.Errorf("expected show or hide, got %q", c.Args().First())
	}
	changed := a.GameModule.GameService.SetManagementVisible(c.Context, visible)
	return reportChange(c.App.Writer, changed, "Player panel %s.", showHide(visible))
}

func cmdShow(c *cli.Context, a *App) error {
	g := a.GameModule.GameService.Snapshot()
	if err := RenderRounds(c.App.Writer, g); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer)
	return RenderStandings(c.App.Writer, g)
}

func cmdStandings(c *cli.Context, a *App) error {
	return RenderStandings(c.App.Writer, a.GameModule.GameService.Snapshot())
}

func cmdChart(c *cli.Context, a *App) error {
	return writeFile(c, c.String("out"), a.GameModule.GameService.RenderScoreChart)
}

func cmdExport(c *cli.Context, a *App) error {
	return writeFile(c, c.String("out"), a.GameModule.GameService.ExportScoresheet)
}

func writeFile(c *cli.Context, path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, err = fmt.Fprintf(c.App.Writer, "Wrote %s.\n", path)
	return err
}

func cmdStatus(c *cli.Context, a *App) error {
	svc := a.GameModule.GameService
	return RenderStatus(c.App.Writer, svc.Snapshot(), svc.HasStoredGame(c.Context))
}

func cmdSessionsReap(c *cli.Context, a *App) error {
	store, err := a.ExpiringStore()
	if err != nil {
		return err
	}
	n, err := gamequeue.Reap(c.Context, store, a.Observability.Logger, a.Observability.Metrics)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "Removed %d expired sessions.\n", n)
	return err
}

func cmdSessionsReaper(c *cli.Context, a *App) error {
	if a.Config.Storage.Backend != config.BackendPostgres {
		return ErrReaperNeedsDB
	}
	store, err := a.ExpiringStore()
	if err != nil {
		return err
	}

	queue, err := gamequeue.NewService(c.Context, a.Config.Postgres.DSN, a.Config.Sessions.ReapInterval,
		store, a.Observability.Logger, a.Observability.Metrics)
	if err != nil {
		return err
	}
	if err := queue.Start(c.Context); err != nil {
		return err
	}

	<-c.Context.Done()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Context), shutdownTimeout)
	defer cancel()
	return queue.Stop(ctx)
}

// cmdArchiver consumes game.completed from NATS. It needs no storage, so it
// skips the App and wires only what the router uses.
func cmdArchiver(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Events.Backend != config.EventsNATS {
		return ErrArchiverNeedsNATS
	}

	obs, err := observability.Init(c.App.ErrWriter, observability.Config{
		LogLevel:       cfg.Observability.LogLevel,
		LogFormat:      cfg.Observability.LogFormat,
		Environment:    cfg.Observability.Environment,
		PushgatewayURL: cfg.Observability.PushgatewayURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	subscriber, err := natsutil.NewWatermillSubscriber(natsConnection(cfg), ArchiverQueueGroup, logger)
	if err != nil {
		return err
	}
	defer subscriber.Close()

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: shutdownTimeout}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create Watermill router: %w", err)
	}
	gameRouter := gamerouter.NewGameRouter(logger, router, subscriber, obs.Registry)
	if err := gameRouter.Configure(c.Context, game.NewHandlers(cfg, obs)); err != nil {
		return fmt.Errorf("failed to configure game router: %w", err)
	}

	logger.InfoContext(c.Context, "Archiver running", attr.String("archive_dir", cfg.Archive.Dir))
	runErr := router.Run(c.Context)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Context), shutdownTimeout)
	defer cancel()
	if err := obs.Flush(ctx); err != nil {
		logger.WarnContext(ctx, "Failed to push metrics", attr.Error(err))
	}
	return runErr
}

func playerName(args []string) (string, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return "", ErrBlankName
	}
	return name, nil
}

func parseRound(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid round %q: rounds are numbered from 1", s)
	}
	return n, nil
}

// resolvePlayer matches ref against, in order, an exact id, a
// case-insensitive name and a unique id prefix.
func resolvePlayer(g gamedomain.GameState, ref string) (gamedomain.Player, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return gamedomain.Player{}, ErrBlankName
	}
	if p, ok := g.PlayerByID(ref); ok {
		return p, nil
	}

	match := func(pred func(gamedomain.Player) bool) (gamedomain.Player, bool, error) {
		var found []gamedomain.Player
		for _, p := range g.Players {
			if pred(p) {
				found = append(found, p)
			}
		}
		switch len(found) {
		case 0:
			return gamedomain.Player{}, false, nil
		case 1:
			return found[0], true, nil
		default:
			return gamedomain.Player{}, false, fmt.Errorf("%w: %q", ErrAmbiguousPlayer, ref)
		}
	}

	if p, ok, err := match(func(p gamedomain.Player) bool { return strings.EqualFold(p.Name, ref) }); ok || err != nil {
		return p, err
	}
	if p, ok, err := match(func(p gamedomain.Player) bool { return strings.HasPrefix(p.ID, ref) }); ok || err != nil {
		return p, err
	}
	return gamedomain.Player{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, ref)
}
