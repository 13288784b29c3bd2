package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/wishtrack/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (default ~/.config/wishtrack/config.toml)")
	prefsPath := flag.String("prefs", "", "override prefs path (default ~/.config/wishtrack/prefs.toml)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), app.Usage)
		fmt.Fprintln(flag.CommandLine.Output(), "\nflags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, app.Options{ConfigPath: *configPath, PrefsPath: *prefsPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wishtrack: %v\n", err)
		return 1
	}
	defer func() { _ = a.Close() }()

	if err := a.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, a.Renderer.Error(err))
		if errors.Is(err, app.ErrUsage) {
			fmt.Fprintln(os.Stderr, "\n"+app.Usage)
			return 2
		}
		return 1
	}
	return 0
}
