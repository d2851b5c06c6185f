package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/lolworlds/internal/services/stats/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReportSummary describes one catalog report.
type ReportSummary struct {
	ID          string `json:"id" jsonschema:"report identifier accepted by run_report"`
	Title       string `json:"title" jsonschema:"short report title"`
	Description string `json:"description" jsonschema:"what the report shows"`
}

// ListReportsInput represents the MCP tool input for listing reports.
type ListReportsInput struct{}

// ListReportsResult represents the MCP tool output for listing reports.
type ListReportsResult struct {
	Reports []ReportSummary `json:"reports" jsonschema:"catalog reports in display order"`
}

// ListReportsTool defines the MCP tool schema for listing reports.
func ListReportsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_reports",
		Description: "Lists the named statistics reports that run_report accepts.",
	}
}

// ListReportsHandler returns the report catalog.
func ListReportsHandler() mcp.ToolHandlerFor[ListReportsInput, ListReportsResult] {
	return func(context.Context, *mcp.CallToolRequest, ListReportsInput) (*mcp.CallToolResult, ListReportsResult, error) {
		catalog := report.Catalog()
		result := ListReportsResult{Reports: make([]ReportSummary, 0, len(catalog))}
		for _, r := range catalog {
			result.Reports = append(result.Reports, ReportSummary{ID: r.ID, Title: r.Title, Description: r.Description})
		}
		return nil, result, nil
	}
}

// RunReportInput represents the MCP tool input for running a report.
type RunReportInput struct {
	ID string `json:"id" jsonschema:"report identifier from list_reports"`
}

// RunReportResult represents the MCP tool output for running a report.
type RunReportResult struct {
	ID      string     `json:"id" jsonschema:"report identifier"`
	Title   string     `json:"title" jsonschema:"report title"`
	Columns []string   `json:"columns" jsonschema:"column names"`
	Rows    [][]string `json:"rows" jsonschema:"row values formatted as text"`
}

// RunReportTool defines the MCP tool schema for running a report.
func RunReportTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "run_report",
		Description: "Runs one named statistics report and returns its table.",
	}
}

// RunReportHandler executes a catalog report.
func RunReportHandler(runner *report.Runner) mcp.ToolHandlerFor[RunReportInput, RunReportResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RunReportInput) (*mcp.CallToolResult, RunReportResult, error) {
		rep, err := report.Lookup(input.ID)
		if err != nil {
			return nil, RunReportResult{}, err
		}
		table, err := runner.Run(ctx, rep.ID)
		if err != nil {
			return nil, RunReportResult{}, fmt.Errorf("run report failed: %w", err)
		}
		result := RunReportResult{
			ID:      rep.ID,
			Title:   rep.Title,
			Columns: table.Columns,
			Rows:    table.Rows,
		}
		if result.Columns == nil {
			result.Columns = []string{}
		}
		if result.Rows == nil {
			result.Rows = [][]string{}
		}
		return nil, result, nil
	}
}

// ChampionAveragesInput represents the MCP tool input for champion averages.
type ChampionAveragesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of champions to return (default 10, max 50)"`
}

// ChampionAverage is one champion with its average kills.
type ChampionAverage struct {
	Champion string  `json:"champion" jsonschema:"champion name"`
	AvgKills float64 `json:"avg_kills" jsonschema:"average kills per game"`
}

// ChampionAveragesResult represents the MCP tool output for champion averages.
type ChampionAveragesResult struct {
	Champions []ChampionAverage `json:"champions" jsonschema:"champions ordered by average kills, highest first"`
}

// ChampionAveragesTool defines the MCP tool schema for champion averages.
func ChampionAveragesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "champion_averages",
		Description: "Returns the champions with the highest average kills, as shown in the console chart.",
	}
}

// ChampionAveragesHandler returns the top champions by average kills.
func ChampionAveragesHandler(runner *report.Runner) mcp.ToolHandlerFor[ChampionAveragesInput, ChampionAveragesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ChampionAveragesInput) (*mcp.CallToolResult, ChampionAveragesResult, error) {
		if input.Limit < 0 {
			return nil, ChampionAveragesResult{}, fmt.Errorf("limit must not be negative")
		}
		averages, err := runner.ChampionAverages(ctx, input.Limit)
		if err != nil {
			return nil, ChampionAveragesResult{}, fmt.Errorf("champion averages failed: %w", err)
		}
		result := ChampionAveragesResult{Champions: make([]ChampionAverage, 0, len(averages))}
		for _, avg := range averages {
			result.Champions = append(result.Champions, ChampionAverage{Champion: avg.Champion, AvgKills: avg.AvgKills})
		}
		return nil, result, nil
	}
}
