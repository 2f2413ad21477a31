//go:build !(linux || darwin)

package main

import "fmt"

func openDump(Config) (*target, error) {
	return nil, fmt.Errorf("dump files need mmap support")
}
