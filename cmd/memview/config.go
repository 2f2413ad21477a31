package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/memview"
)

// Config is everything the CLI needs to overlay one layout. It can be
// loaded from YAML with -config; flags given explicitly win.
type Config struct {
	Layouts          string   `yaml:"layouts"`
	Layout           string   `yaml:"layout"`
	Source           string   `yaml:"source"`
	File             string   `yaml:"file"`
	Module           string   `yaml:"module"`
	Base             string   `yaml:"base"`
	MapBase          string   `yaml:"map_base"`
	Call             string   `yaml:"call"`
	Args             []string `yaml:"args"`
	Set              []string `yaml:"set"`
	PID              int      `yaml:"pid"`
	PointerSize      uint64   `yaml:"pointer_size"`
	MemoryLimitPages uint32   `yaml:"memory_limit_pages"`
	Writable         bool     `yaml:"writable"`
	Interactive      bool     `yaml:"interactive"`
	Verbose          bool     `yaml:"verbose"`
}

const (
	sourceDump = "dump"
	sourceWasm = "wasm"
	sourcePID  = "pid"
	sourceSelf = "self"
)

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: memview -layouts <file.yaml> -layout <name> -source dump -file <dump> [-base 0x...]")
	fmt.Fprintln(w, "       memview -layouts <file.yaml> -layout <name> -source wasm -file <mod.wasm> [-base off] [-call export -arg 1]")
	fmt.Fprintln(w, "       memview -layouts <file.yaml> -layout <name> -source pid -pid <n> -module <lib.so> -base <off>")
	fmt.Fprintln(w, "       memview -config <memview.yaml> [-i]")
}

// parseFlags builds a Config from args. A -config file is read first and
// explicitly set flags override its values.
func parseFlags(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("memview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		usage(stderr)
		fs.PrintDefaults()
	}

	var (
		flagCfg  Config
		sets     listFlag
		callArgs listFlag
	)
	configFile := fs.String("config", "", "YAML config file")
	fs.StringVar(&flagCfg.Layouts, "layouts", "", "YAML layout descriptor file")
	fs.StringVar(&flagCfg.Layout, "layout", "", "Layout to overlay")
	fs.StringVar(&flagCfg.Source, "source", "", "Memory source: dump, wasm, pid or self")
	fs.StringVar(&flagCfg.File, "file", "", "Dump file or wasm module")
	fs.StringVar(&flagCfg.Module, "module", "", "Module whose base -base is relative to")
	fs.StringVar(&flagCfg.Base, "base", "", "Object address, or offset from -module")
	fs.StringVar(&flagCfg.MapBase, "map-base", "", "Address the first byte of a dump file had")
	fs.StringVar(&flagCfg.Call, "call", "", "Function to call: wasm export or library:symbol")
	fs.Var(&callArgs, "arg", "Call argument (repeatable)")
	fs.Var(&sets, "set", "Assign path=value before printing (repeatable)")
	fs.IntVar(&flagCfg.PID, "pid", 0, "Process id for -source pid")
	fs.Uint64Var(&flagCfg.PointerSize, "ptr", 0, "Pointer size (4 or 8)")
	fs.BoolVar(&flagCfg.Writable, "w", false, "Map dump files writable")
	fs.BoolVar(&flagCfg.Interactive, "i", false, "Interactive mode with TUI")
	fs.BoolVar(&flagCfg.Verbose, "v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var cfg Config
	if *configFile != "" {
		loaded, err := loadConfig(*configFile)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	flagCfg.Args = callArgs
	flagCfg.Set = sets

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "layouts":
			cfg.Layouts = flagCfg.Layouts
		case "layout":
			cfg.Layout = flagCfg.Layout
		case "source":
			cfg.Source = flagCfg.Source
		case "file":
			cfg.File = flagCfg.File
		case "module":
			cfg.Module = flagCfg.Module
		case "base":
			cfg.Base = flagCfg.Base
		case "map-base":
			cfg.MapBase = flagCfg.MapBase
		case "call":
			cfg.Call = flagCfg.Call
		case "arg":
			cfg.Args = flagCfg.Args
		case "set":
			cfg.Set = flagCfg.Set
		case "pid":
			cfg.PID = flagCfg.PID
		case "ptr":
			cfg.PointerSize = flagCfg.PointerSize
		case "w":
			cfg.Writable = flagCfg.Writable
		case "i":
			cfg.Interactive = flagCfg.Interactive
		case "v":
			cfg.Verbose = flagCfg.Verbose
		}
	})
	return cfg, cfg.validate()
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Layouts == "" || c.Layout == "" {
		return fmt.Errorf("-layouts and -layout are required")
	}
	switch c.Source {
	case sourceDump, sourceWasm:
		if c.File == "" {
			return fmt.Errorf("source %s needs -file", c.Source)
		}
	case sourcePID:
		if c.PID <= 0 {
			return fmt.Errorf("source pid needs -pid")
		}
	case sourceSelf:
	case "":
		return fmt.Errorf("-source is required")
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if c.PointerSize != 0 && c.PointerSize != 4 && c.PointerSize != 8 {
		return fmt.Errorf("pointer size must be 4 or 8")
	}
	if _, err := parseAddress("base", c.Base); err != nil {
		return err
	}
	if _, err := parseAddress("map base", c.MapBase); err != nil {
		return err
	}
	return nil
}

// parseAddress reads s with Go literal syntax, so hex needs 0x. Empty is 0.
func parseAddress(what, s string) (memview.Address, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return memview.Address(v), nil
}
