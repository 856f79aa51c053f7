package workbench

import "time"

// Polling bounds for assert.Eventually across the package tests.
const (
	waitLong = 2 * time.Second
	waitTick = 5 * time.Millisecond
)
