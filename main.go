package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/crownkeeper/app"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:                 "crownkeeper",
		Usage:                "keep score for a game of Five Crowns",
		Flags:                []cli.Flag{app.ConfigFlag},
		Commands:             app.Commands(),
		EnableBashCompletion: true,
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "crownkeeper:", err)
		stop()
		os.Exit(1)
	}
}
