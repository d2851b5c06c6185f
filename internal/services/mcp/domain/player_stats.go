package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/lolworlds/internal/platform/timeouts"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PlayerStatsInput represents the MCP tool input for listing player lines.
type PlayerStatsInput struct {
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter over player line fields such as kills, team_name or patch"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"page size (default 50, max 200)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous next_page_token"`
}

// PlayerStatEntry is one player line.
type PlayerStatEntry struct {
	GameID     string `json:"game_id" jsonschema:"game identifier"`
	League     string `json:"league" jsonschema:"league name"`
	Patch      string `json:"patch" jsonschema:"game patch"`
	PlayerID   string `json:"player_id" jsonschema:"player identifier"`
	PlayerName string `json:"player_name" jsonschema:"player name"`
	TeamID     string `json:"team_id" jsonschema:"team identifier"`
	TeamName   string `json:"team_name" jsonschema:"team name"`
	Position   string `json:"position" jsonschema:"position played"`
	ChampionID string `json:"champion_id" jsonschema:"champion identifier"`
	Champion   string `json:"champion" jsonschema:"champion name"`
	Kills      int    `json:"kills"`
	Deaths     int    `json:"deaths"`
	Assists    int    `json:"assists"`
	GoldEarned int    `json:"gold_earned"`
	CS         int    `json:"cs"`
}

// PlayerStatsResult represents the MCP tool output for listing player lines.
type PlayerStatsResult struct {
	Stats         []PlayerStatEntry `json:"stats" jsonschema:"player lines ordered by game then player"`
	NextPageToken string            `json:"next_page_token,omitempty" jsonschema:"token for the next page, empty on the last page"`
}

// PlayerStatsTool defines the MCP tool schema for listing player lines.
func PlayerStatsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "player_stats",
		Description: "Lists per-game player lines with an optional AIP-160 filter and pagination.",
	}
}

// PlayerStatsHandler pages through player lines.
func PlayerStatsHandler(store storage.ReadStore) mcp.ToolHandlerFor[PlayerStatsInput, PlayerStatsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayerStatsInput) (*mcp.CallToolResult, PlayerStatsResult, error) {
		if store == nil {
			return nil, PlayerStatsResult{}, fmt.Errorf("player stats store is not configured")
		}
		if input.PageSize < 0 {
			return nil, PlayerStatsResult{}, fmt.Errorf("page_size must not be negative")
		}
		runCtx, cancel := context.WithTimeout(ctx, timeouts.Query)
		defer cancel()

		page, err := store.ListPlayerStats(runCtx, storage.PlayerStatQuery{
			Filter:    input.Filter,
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
		})
		if err != nil {
			return nil, PlayerStatsResult{}, fmt.Errorf("list player stats failed: %w", err)
		}
		result := PlayerStatsResult{
			Stats:         make([]PlayerStatEntry, 0, len(page.Stats)),
			NextPageToken: page.NextPageToken,
		}
		for _, s := range page.Stats {
			result.Stats = append(result.Stats, PlayerStatEntry{
				GameID:     s.GameID,
				League:     s.League,
				Patch:      s.Patch,
				PlayerID:   s.PlayerID,
				PlayerName: s.PlayerName,
				TeamID:     s.TeamID,
				TeamName:   s.TeamName,
				Position:   s.Position,
				ChampionID: s.ChampionID,
				Champion:   s.ChampionName,
				Kills:      s.Kills,
				Deaths:     s.Deaths,
				Assists:    s.Assists,
				GoldEarned: s.GoldEarned,
				CS:         s.CS,
			})
		}
		return nil, result, nil
	}
}
