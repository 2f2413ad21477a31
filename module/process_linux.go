//go:build linux

package module

import (
	"path/filepath"
	"sort"
	"strconv"

	"github.com/prometheus/procfs"
	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/view"
)

// Mapping is one file-backed module in a process memory map.
type Mapping struct {
	Path string
	Base memview.Address
	End  memview.Address
}

// Name is the base name used for lookups.
func (m Mapping) Name() string { return filepath.Base(m.Path) }

// Process locates modules in the memory map of a Linux process. The map
// is re-read on every lookup so libraries loaded later are found.
type Process struct {
	proc procfs.Proc
	mem  memview.Memory
}

// NewProcess locates modules of pid, reading their memory through mem.
// A nil mem opens the process with memory.OpenProcess.
func NewProcess(pid int, mem memview.Memory) (*Process, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, errors.Load("open procfs", err)
	}
	return newProcess(fs, pid, mem)
}

// NewProcessFS is NewProcess against procfs mounted at mountPoint.
func NewProcessFS(mountPoint string, pid int, mem memview.Memory) (*Process, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, errors.Load("open procfs at "+mountPoint, err)
	}
	return newProcess(fs, pid, mem)
}

func newProcess(fs procfs.FS, pid int, mem memview.Memory) (*Process, error) {
	proc, err := fs.Proc(pid)
	if err != nil {
		return nil, errors.NotFound(errors.PhaseLookup, "process", strconv.Itoa(pid))
	}
	if mem == nil {
		mem = memory.OpenProcess(pid, 8)
	}
	return &Process{proc: proc, mem: mem}, nil
}

// Self locates modules in the current process through native memory.
func Self() (*Process, error) {
	proc, err := procfs.Self()
	if err != nil {
		return nil, errors.Load("open /proc/self", err)
	}
	return &Process{proc: proc, mem: memory.Native()}, nil
}

// PID returns the process id.
func (p *Process) PID() int { return p.proc.PID }

// Memory returns the memory views are anchored in.
func (p *Process) Memory() memview.Memory { return p.mem }

// Mappings lists file-backed modules, one entry per path, ordered by base.
// A module's base is its lowest mapped address and End its highest.
func (p *Process) Mappings() ([]Mapping, error) {
	maps, err := p.proc.ProcMaps()
	if err != nil {
		return nil, errors.Load("read memory map", err)
	}
	byPath := make(map[string]*Mapping)
	for _, m := range maps {
		if m.Pathname == "" || m.Pathname[0] != '/' {
			continue
		}
		start, end := memview.Address(m.StartAddr), memview.Address(m.EndAddr)
		cur, ok := byPath[m.Pathname]
		if !ok {
			byPath[m.Pathname] = &Mapping{Path: m.Pathname, Base: start, End: end}
			continue
		}
		cur.Base = min(cur.Base, start)
		cur.End = max(cur.End, end)
	}
	out := make([]Mapping, 0, len(byPath))
	for _, m := range byPath {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base < out[j].Base })
	return out, nil
}

// Find returns the mapping whose path or base name equals name.
func (p *Process) Find(name string) (Mapping, bool) {
	maps, err := p.Mappings()
	if err != nil {
		Logger().Debug("memory map unavailable", zap.Int("pid", p.PID()), zap.Error(err))
		return Mapping{}, false
	}
	for _, m := range maps {
		if m.Path == name || m.Name() == name {
			return m, true
		}
	}
	return Mapping{}, false
}

func (p *Process) Locate(name string) (view.View, bool) {
	m, ok := p.Find(name)
	if !ok {
		return view.View{}, false
	}
	return view.Cast(p.mem, m.Base), true
}

func selfLocator() Locator {
	p, err := Self()
	if err != nil {
		Logger().Debug("process locator disabled", zap.Error(err))
		return nil
	}
	return p
}

var _ Locator = (*Process)(nil)
