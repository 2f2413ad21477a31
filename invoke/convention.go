package invoke

import (
	"runtime"
	"strings"

	"github.com/wippyai/memview/errors"
)

// Convention names a calling convention.
type Convention uint8

const (
	CDecl Convention = iota
	StdCall
	ThisCall
	FastCall
	VectorCall
	SysV
	Win64
	Wasm
)

var conventionNames = [...]string{
	CDecl:      "cdecl",
	StdCall:    "stdcall",
	ThisCall:   "thiscall",
	FastCall:   "fastcall",
	VectorCall: "vectorcall",
	SysV:       "sysv",
	Win64:      "win64",
	Wasm:       "wasm",
}

func (c Convention) String() string {
	if int(c) < len(conventionNames) {
		return conventionNames[c]
	}
	return "unknown"
}

// ParseConvention maps a name such as "stdcall" or "__stdcall" to a Convention.
func ParseConvention(name string) (Convention, error) {
	n := strings.ToLower(strings.TrimLeft(strings.TrimSpace(name), "_"))
	switch n {
	case "", "c", "default":
		return Platform(), nil
	case "ms_abi":
		return Win64, nil
	case "sysv_abi":
		return SysV, nil
	}
	for i, cn := range conventionNames {
		if cn == n {
			return Convention(i), nil
		}
	}
	return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Value(name).
		Detail("unknown calling convention").
		Build()
}

var platform = platformConvention(runtime.GOOS, runtime.GOARCH)

// Platform returns the native C convention of the running binary.
func Platform() Convention { return platform }

func platformConvention(goos, goarch string) Convention {
	switch {
	case goarch == "wasm":
		return Wasm
	case goos == "windows" && goarch == "amd64":
		return Win64
	case goarch == "amd64":
		return SysV
	}
	return CDecl
}
