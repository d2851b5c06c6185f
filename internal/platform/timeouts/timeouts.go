// Package timeouts defines shared timeout constants.
package timeouts

import "time"

// ReadHeader limits how long the console waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the console waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// Import bounds a full import run when no explicit timeout is configured.
const Import = 10 * time.Minute

// Query bounds a single report or statement issued from the console or MCP.
const Query = 15 * time.Second
