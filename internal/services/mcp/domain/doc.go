// Package domain maps MCP tool calls onto the read-only statistics surface:
// catalog reports, the champion chart data and paged player lines.
//
// Handlers never write. They only see storage.ReadStore.
package domain
