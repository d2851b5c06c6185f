// Package service wires the MCP stdio transport to the statistics tools in
// the domain package.
package service
