//go:build linux || darwin

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/module"
)

// openDump maps a raw memory dump at the address its first byte had and
// registers it as a module named after the file.
func openDump(cfg Config) (*target, error) {
	st, err := os.Stat(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("stat dump: %w", err)
	}
	if st.Size() == 0 {
		return nil, fmt.Errorf("dump %s is empty", cfg.File)
	}
	mapBase, _ := parseAddress("map base", cfg.MapBase)
	m, err := memory.MapFile(cfg.File, int(st.Size()), memory.MappedConfig{
		Base:        mapBase,
		PointerSize: cfg.PointerSize,
		ReadOnly:    !cfg.Writable,
	})
	if err != nil {
		return nil, err
	}
	module.Register(filepath.Base(cfg.File), m, mapBase)
	return &target{mem: m, closers: []func() error{m.Close}}, nil
}
