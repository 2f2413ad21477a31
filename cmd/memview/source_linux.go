//go:build linux

package main

import (
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/module"
)

// openPID attaches to a live process. Modules are found in its memory map.
func openPID(cfg Config) (*target, error) {
	mem := memory.OpenProcess(cfg.PID, cfg.PointerSize)
	p, err := module.NewProcess(cfg.PID, mem)
	if err != nil {
		return nil, err
	}
	module.Use(p)
	return &target{mem: mem}, nil
}
