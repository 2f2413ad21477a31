package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/memview/invoke"
	"github.com/wippyai/memview/layout"
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/module"
	"github.com/wippyai/memview/view"
)

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		usage(os.Stderr)
		os.Exit(1)
	}

	log := newLogger(cfg.Verbose)
	defer func() { _ = log.Sync() }()

	if cfg.Interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		err = runInteractive(cfg, log)
	} else {
		err = run(context.Background(), cfg, log, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	memory.SetLogger(log.Named("memory"))
	view.SetLogger(log.Named("view"))
	invoke.SetLogger(log.Named("invoke"))
	module.SetLogger(log.Named("module"))
	return log
}

// session is an opened target with the object overlaid on it.
type session struct {
	target *target
	object view.Object
}

func openSession(ctx context.Context, cfg Config, log *zap.Logger) (*session, error) {
	set, err := layout.LoadFile(cfg.Layouts, cfg.PointerSize)
	if err != nil {
		return nil, err
	}
	l, ok := set.Layout(cfg.Layout)
	if !ok {
		return nil, fmt.Errorf("layout %q not found in %s (have %s)", cfg.Layout, cfg.Layouts, strings.Join(set.Names(), ", "))
	}
	t, err := openTarget(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if t.mem.PointerSize() != set.PointerSize {
		log.Warn("pointer size differs between layouts and memory",
			zap.Uint64("layouts", set.PointerSize),
			zap.Uint64("memory", t.mem.PointerSize()))
	}
	return &session{target: t, object: view.NewObject(t.root, l)}, nil
}

func run(ctx context.Context, cfg Config, log *zap.Logger, out io.Writer) (err error) {
	s, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.target.Close()) }()

	for _, expr := range cfg.Set {
		if err := assign(s.object.Root(), expr); err != nil {
			return err
		}
		log.Info("assigned", zap.String("expr", expr))
	}

	fmt.Fprintf(out, "%s at %s (%d bytes)\n\n", s.object.Layout().Name, s.object.View().AddressOfObject(), s.object.Layout().Size)
	printRows(out, collect(s.object.Root()))

	if cfg.Call == "" {
		return nil
	}
	if s.target.call == nil {
		return fmt.Errorf("source %s cannot call functions", cfg.Source)
	}
	results, err := s.target.call(ctx, cfg.Call, cfg.Args)
	if err != nil {
		return fmt.Errorf("call %s: %w", cfg.Call, err)
	}
	fmt.Fprintf(out, "\n%s(%s) = %s\n", cfg.Call, strings.Join(cfg.Args, ", "), strings.Join(results, ", "))
	return nil
}
