package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"code.cryptopower.dev/group/govledger/ledger"
	"code.cryptopower.dev/group/govledger/logger"
	"code.cryptopower.dev/group/govledger/pagestore"
	flags "github.com/jessevdk/go-flags"
)

// Version is the application version. It is set using the -ldflags
var Version = "0.1.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run parses args and executes the selected command. Errors are reported on
// standard error before being returned; the parser prints its own.
func run(args []string) error {
	cfg, parser, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	a := &app{cfg: cfg}
	if err := addCommands(parser, a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}
		return a.execute(command, args)
	}

	_, err = parser.ParseArgs(args)
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	}
	return err
}

// app holds the process-wide state shared by every command: the parsed
// configuration and the ledger opened for the command's lifetime.
type app struct {
	cfg    *config
	ledger *ledger.Ledger
	ctx    context.Context
}

// execute opens the page store, runs command against it and closes the
// store again.
func (a *app) execute(command flags.Commander, args []string) error {
	if err := a.cfg.validate(); err != nil {
		return err
	}

	if err := initLogRotator(a.cfg.LogDir, a.cfg.MaxLogZips); err != nil {
		return err
	}
	defer closeLogRotator()

	if err := logger.ParseAndSetDebugLevels(a.cfg.DebugLevel); err != nil {
		return err
	}

	store, err := pagestore.Open(a.cfg.DBDriver, a.cfg.AppDataDir)
	if err != nil {
		return err
	}
	log.Infof("govledger version %s (driver %s)", Version, store.Driver())
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("Error closing page store: %v", err)
		}
	}()

	a.ledger, err = ledger.New(store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if a.cfg.Principal != "" {
		ctx = ledger.WithCaller(ctx, ledger.Principal(a.cfg.Principal))
	}
	a.ctx = ctx

	return command.Execute(args)
}
