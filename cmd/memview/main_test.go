package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/layout"
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/view"
)

const playerYAML = `
layouts:
  - name: Vec2
    kind: aggregate
    fields:
      - {name: x, type: f32}
      - {name: y, type: f32}
  - name: Player
    size: 0x30
    fields:
      - {name: alive, type: bool}
      - {name: health, type: i32, offset: 0x04}
      - {name: pos, type: Vec2}
      - {name: ammo, type: "u16[3]"}
      - {name: target, type: "*Player"}
      - {name: id, type: usize}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFlags_ConfigAndOverrides(t *testing.T) {
	cfgFile := writeFile(t, "memview.yaml", `
layouts: players.yaml
layout: Player
source: dump
file: core.bin
base: "0x1000"
pointer_size: 4
set: ["health=1"]
`)
	cfg, err := parseFlags([]string{"-config", cfgFile, "-base", "0x2000", "-set", "alive=true", "-set", "id=7"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Layouts != "players.yaml" || cfg.Layout != "Player" || cfg.Source != sourceDump || cfg.File != "core.bin" {
		t.Fatalf("config values lost: %+v", cfg)
	}
	if cfg.Base != "0x2000" {
		t.Fatalf("flag did not override base: %s", cfg.Base)
	}
	if cfg.PointerSize != 4 {
		t.Fatalf("pointer size: %d", cfg.PointerSize)
	}
	if strings.Join(cfg.Set, ";") != "alive=true;id=7" {
		t.Fatalf("set: %v", cfg.Set)
	}
}

func TestParseFlags_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no layouts", []string{"-source", "self"}},
		{"no source", []string{"-layouts", "a.yaml", "-layout", "A"}},
		{"unknown source", []string{"-layouts", "a.yaml", "-layout", "A", "-source", "core"}},
		{"dump without file", []string{"-layouts", "a.yaml", "-layout", "A", "-source", "dump"}},
		{"pid without pid", []string{"-layouts", "a.yaml", "-layout", "A", "-source", "pid"}},
		{"bad pointer size", []string{"-layouts", "a.yaml", "-layout", "A", "-source", "self", "-ptr", "2"}},
		{"bad base", []string{"-layouts", "a.yaml", "-layout", "A", "-source", "self", "-base", "zz"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseFlags(tc.args, io.Discard); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	cfg, err := parseFlags([]string{"-layouts", "a.yaml", "-layout", "A", "-source", "self", "-base", "0x10_00"}, io.Discard)
	if err != nil {
		t.Fatalf("valid flags: %v", err)
	}
	if addr, _ := parseAddress("base", cfg.Base); addr != 0x1000 {
		t.Fatalf("base: %s", addr)
	}
}

// playerSession overlays Player at 0x1000 of a space, with target
// pointing at a second Player at 0x1040.
func playerSession(t *testing.T) (*memory.Space, *session) {
	t.Helper()
	set, err := layout.Parse([]byte(playerYAML), 8)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	l, _ := set.Layout("Player")
	s := memory.NewSpace(memory.SpaceConfig{})
	s.Map(0x1000, 0x100)
	_ = memview.WriteUint32(s, 0x1004, 100)
	_ = memview.WritePointer(s, 0x1018, 0x1040)
	_ = memview.WriteUint32(s, 0x1044, 55)

	root := view.Cast(s, 0x1000)
	return s, &session{
		target: &target{mem: s, root: root},
		object: view.NewObject(root, l),
	}
}

func TestCollect(t *testing.T) {
	_, sess := playerSession(t)
	rows := collect(sess.object.Root())

	want := []struct {
		name  string
		depth int
		value string
	}{
		{"Player", 0, ""},
		{"alive", 1, "false"},
		{"health", 1, "100"},
		{"pos", 1, ""},
		{"x", 2, "0"},
		{"y", 2, "0"},
		{"ammo", 1, "[0 0 0]"},
		{"target", 1, "0x1040"},
		{"id", 1, "0x0"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows: got %d, want %d", len(rows), len(want))
	}
	for i, w := range want {
		r := rows[i]
		if r.member.Name() != w.name || r.depth != w.depth || r.text() != w.value {
			t.Errorf("row %d: got %s/%d/%q, want %s/%d/%q", i, r.member.Name(), r.depth, r.text(), w.name, w.depth, w.value)
		}
	}

	var out bytes.Buffer
	printRows(&out, rows)
	if !strings.Contains(out.String(), "0x1004") || !strings.Contains(out.String(), "100") {
		t.Fatalf("printed rows:\n%s", out.String())
	}
}

func TestAssign(t *testing.T) {
	s, sess := playerSession(t)
	root := sess.object.Root()

	for _, expr := range []string{"health=-5", "alive=true", "pos.y=2.5", "ammo.1=0x10", "target.health=9", "id=0xff"} {
		if err := assign(root, expr); err != nil {
			t.Fatalf("assign %s: %v", expr, err)
		}
	}
	if v, _ := memview.ReadUint32(s, 0x1004); int32(v) != -5 {
		t.Fatalf("health: %d", int32(v))
	}
	if v, _ := memview.ReadUint8(s, 0x1000); v != 1 {
		t.Fatalf("alive: %d", v)
	}
	if v, _ := memview.ReadUint16(s, 0x1012); v != 0x10 {
		t.Fatalf("ammo[1]: %d", v)
	}
	if v, _ := memview.ReadUint32(s, 0x1044); v != 9 {
		t.Fatalf("target.health: %d", v)
	}
	if v, _ := memview.ReadUint64(s, 0x1020); v != 0xff {
		t.Fatalf("id: %d", v)
	}
	m, err := resolvePath(root, "pos.y")
	if err != nil {
		t.Fatalf("resolvePath: %v", err)
	}
	if got, _ := m.Get(); got != float32(2.5) {
		t.Fatalf("pos.y: %v", got)
	}
	if m, err := resolvePath(root, "target.*.health"); err != nil || m.Address() != 0x1044 {
		t.Fatalf("deref path: %v %v", m.Address(), err)
	}

	bad := []string{"health", "nope=1", "health=abc", "alive=maybe", "ammo.3=1", "pos=1"}
	for _, expr := range bad {
		if err := assign(root, expr); err == nil {
			t.Errorf("assign %q: expected error", expr)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowser_FollowAndEdit(t *testing.T) {
	s, sess := playerSession(t)
	b := newBrowser(sess)

	// Rows: Player, alive, health, pos, x, y, ammo, target, id.
	for i := 0; i < 7; i++ {
		b.Update(key("down"))
	}
	if b.rows[b.selected].member.Name() != "target" {
		t.Fatalf("selected %s", b.rows[b.selected].member.Name())
	}
	b.Update(key("enter"))
	if len(b.stack) != 2 || b.current().Address() != 0x1040 {
		t.Fatalf("did not follow pointer: depth %d at %s", len(b.stack), b.current().Address())
	}
	if !strings.Contains(b.View(), "0x1040") {
		t.Fatal("view does not show the pointee")
	}

	// Edit the pointee's health.
	b.Update(key("down"))
	b.Update(key("down"))
	if b.rows[b.selected].member.Name() != "health" {
		t.Fatalf("selected %s", b.rows[b.selected].member.Name())
	}
	b.Update(key("enter"))
	if b.state != stateEdit {
		t.Fatal("not editing")
	}
	b.input.SetValue("77")
	b.Update(key("enter"))
	if b.err != nil {
		t.Fatalf("edit: %v", b.err)
	}
	if v, _ := memview.ReadUint32(s, 0x1044); v != 77 {
		t.Fatalf("pointee health: %d", v)
	}
	if b.rows[b.selected].text() != "77" {
		t.Fatalf("row not refreshed: %q", b.rows[b.selected].text())
	}

	b.Update(key("esc"))
	if len(b.stack) != 1 {
		t.Fatal("esc did not pop")
	}
	if _, cmd := b.Update(key("q")); cmd == nil {
		t.Fatal("q should quit")
	}
}

func TestBrowser_NullPointer(t *testing.T) {
	s, sess := playerSession(t)
	_ = memview.WritePointer(s, 0x1018, 0)
	b := newBrowser(sess)
	for i := 0; i < 7; i++ {
		b.Update(key("down"))
	}
	b.Update(key("enter"))
	if b.err == nil || len(b.stack) != 1 {
		t.Fatalf("null pointer followed: %v", b.err)
	}
	if !strings.Contains(b.View(), "Error") {
		t.Fatal("error not rendered")
	}
}

// scaleWASM exports scale(i32, f64) -> f64 returning a * b.
var scaleWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type: (i32, f64) -> f64
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7c, 0x01, 0x7c,
	// function 0 has type 0
	0x03, 0x02, 0x01, 0x00,
	// export "scale"
	0x07, 0x09, 0x01, 0x05, 's', 'c', 'a', 'l', 'e', 0x00, 0x00,
	// local.get 0, f64.convert_i32_s, local.get 1, f64.mul
	0x0a, 0x0a, 0x01, 0x08, 0x00, 0x20, 0x00, 0xb7, 0x20, 0x01, 0xa2, 0x0b,
}

func TestWasmCaller(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := rt.Instantiate(ctx, scaleWASM)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	call := wasmCaller(mod)
	out, err := call(ctx, "scale", []string{"3", "1.5"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(out) != 1 || out[0] != "4.5" {
		t.Fatalf("result: %v", out)
	}
	if out, err := call(ctx, "scale", []string{"-2", "0.25"}); err != nil || out[0] != "-0.5" {
		t.Fatalf("negative result: %v %v", out, err)
	}
	if _, err := call(ctx, "scale", []string{"3"}); err == nil {
		t.Fatal("expected arity error")
	}
	if _, err := call(ctx, "scale", []string{"x", "1"}); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := call(ctx, "missing", nil); err == nil {
		t.Fatal("expected missing export error")
	}
}

func TestRun_Self(t *testing.T) {
	layouts := writeFile(t, "layouts.yaml", playerYAML)
	buf := make([]byte, 0x30)
	buf[4] = 42
	var pin runtime.Pinner
	pin.Pin(&buf[0])
	defer pin.Unpin()
	cfg := Config{
		Layouts: layouts,
		Layout:  "Player",
		Source:  sourceSelf,
		Base:    memory.AddressOf(buf).String(),
		Set:     []string{"id=9"},
	}
	var out bytes.Buffer
	if err := run(context.Background(), cfg, zap.NewNop(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Player at") || !strings.Contains(out.String(), "42") {
		t.Fatalf("output:\n%s", out.String())
	}
	if buf[0x20] != 9 {
		t.Fatalf("id not written: %d", buf[0x20])
	}

	cfg.Layout = "Missing"
	if err := run(context.Background(), cfg, zap.NewNop(), &out); err == nil {
		t.Fatal("expected missing layout error")
	}
}
