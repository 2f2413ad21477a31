//go:build !linux

package main

import "fmt"

func openPID(Config) (*target, error) {
	return nil, fmt.Errorf("attaching to a process is supported on linux only")
}
