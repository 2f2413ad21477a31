//go:build !linux

package module

// Memory maps are read from procfs, which exists only on Linux.
func selfLocator() Locator { return nil }
