package matchimporter

import (
	"fmt"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

const draftSlots = 5

// warning describes a row that was skipped or partially read.
type warning struct {
	Source  string
	Line    int
	Message string
}

func (w warning) String() string {
	return fmt.Sprintf("%s line %d: %s", w.Source, w.Line, w.Message)
}

// warnings collects row warnings. In strict mode the first warning is
// returned as an error instead.
type warnings struct {
	strict bool
	items  []warning
}

func (w *warnings) add(source string, line int, format string, args ...any) error {
	item := warning{Source: source, Line: line, Message: fmt.Sprintf(format, args...)}
	if w.strict {
		return apperrors.WithMetadata(apperrors.CodeImportInvalidRow, item.String(), map[string]string{
			"source": source,
			"line":   fmt.Sprint(line),
		})
	}
	w.items = append(w.items, item)
	return nil
}

func orPlaceholder(value string) string {
	if value == "" {
		return storage.Placeholder
	}
	return value
}

// rowStats counts rows seen by a source.
type rowStats struct {
	Read    int
	Skipped int
}

func addGame(b *batchBuilder, r row, gameID string) {
	b.addGame(storage.Game{
		ID:     gameID,
		Date:   parseDate(r.get("date")),
		League: r.get("league"),
		Patch:  r.get("patch"),
	})
}

// addChampionByName upserts a champion from its display name and returns its ID.
func addChampionByName(b *batchBuilder, name string) string {
	id := championID(name)
	if id == "" {
		return ""
	}
	b.addChampion(storage.Champion{ID: id, Name: name})
	return id
}

// goldEarned prefers totalgold and falls back to damagetochampions.
func goldEarned(r row) int {
	if r.has("totalgold") {
		return parseCount(r.get("totalgold"))
	}
	if r.has("damagetochampions") {
		return parseCount(r.get("damagetochampions"))
	}
	return 0
}

// collectParticipants turns participant rows into dimension and fact records.
// Rows without a player id (team summary lines) still contribute their game,
// team and bans.
func collectParticipants(name string, s sheet, b *batchBuilder, warn *warnings) (rowStats, error) {
	var stats rowStats
	err := s.each(func(r row) error {
		stats.Read++
		gameID := cleanID(r.get("gameid"))
		if gameID == "" {
			stats.Skipped++
			return warn.add(name, r.line, "empty gameid, row skipped")
		}
		addGame(b, r, gameID)

		teamID := cleanID(r.get("teamid"))
		if teamID != "" {
			b.addTeam(storage.Team{ID: teamID, Name: orPlaceholder(r.get("teamname"))})
		}

		playerID := cleanID(r.get("playerid"))
		position := orPlaceholder(r.get("position"))
		if playerID != "" {
			b.addPlayer(storage.Player{ID: playerID, Name: orPlaceholder(r.get("playername")), Position: position})
			if teamID == "" {
				if err := warn.add(name, r.line, "player %s has no teamid, stats skipped", playerID); err != nil {
					return err
				}
			} else {
				champion := addChampionByName(b, orPlaceholder(r.get("champion")))
				b.addPlayerStat(storage.PlayerStat{
					GameID:     gameID,
					PlayerID:   playerID,
					TeamID:     teamID,
					Position:   position,
					ChampionID: champion,
					Kills:      parseCount(r.get("kills")),
					Deaths:     parseCount(r.get("deaths")),
					Assists:    parseCount(r.get("assists")),
					GoldEarned: goldEarned(r),
					CS:         parseCount(r.get("cs")),
				})
			}
		}

		return collectBans(name, r, b, warn, gameID, teamID, "ban%d")
	})
	return stats, err
}

// collectBans reads up to five ban columns named by pattern. Empty cells are
// skipped but keep their slot in the draft order.
func collectBans(name string, r row, b *batchBuilder, warn *warnings, gameID, teamID, pattern string) error {
	for order := 1; order <= draftSlots; order++ {
		champion := r.get(fmt.Sprintf(pattern, order))
		if champion == "" {
			continue
		}
		if teamID == "" {
			return warn.add(name, r.line, "bans without a team id skipped")
		}
		b.addBan(storage.Ban{
			GameID:     gameID,
			TeamID:     teamID,
			Order:      order,
			ChampionID: addChampionByName(b, champion),
		})
	}
	return nil
}

// collectGames turns one-row-per-game summaries into records for both sides.
func collectGames(name string, s sheet, b *batchBuilder, warn *warnings) (rowStats, error) {
	var stats rowStats
	err := s.each(func(r row) error {
		stats.Read++
		gameID := cleanID(r.get("gameid"))
		if gameID == "" {
			stats.Skipped++
			return warn.add(name, r.line, "empty gameid, row skipped")
		}
		addGame(b, r, gameID)

		for side := 1; side <= 2; side++ {
			if err := collectSide(name, r, b, warn, gameID, side); err != nil {
				return err
			}
		}
		return nil
	})
	return stats, err
}

func collectSide(name string, r row, b *batchBuilder, warn *warnings, gameID string, side int) error {
	prefix := fmt.Sprintf("t%d", side)
	teamID := cleanID(r.get(prefix + "_id"))
	if teamID == "" {
		return warn.add(name, r.line, "empty %s_id, side skipped", prefix)
	}
	b.addTeam(storage.Team{ID: teamID, Name: orPlaceholder(r.get(prefix + "_name"))})
	b.addTeamStat(storage.TeamStat{
		GameID:      gameID,
		TeamID:      teamID,
		TotalKills:  parseCount(r.get(prefix + "_kills")),
		TotalDeaths: parseCount(r.get(prefix + "_deaths")),
	})

	if err := collectBans(name, r, b, warn, gameID, teamID, prefix+"_ban%d"); err != nil {
		return err
	}

	for order := 1; order <= draftSlots; order++ {
		slot := fmt.Sprintf("%sp%d", prefix, order)
		champion := r.get(slot + "_champion")
		playerID := cleanID(r.get(slot + "_playerid"))
		if champion == "" || playerID == "" {
			continue
		}
		b.addPlayer(storage.Player{
			ID:       playerID,
			Name:     storage.Placeholder,
			Position: orPlaceholder(r.get(slot + "_position")),
		})
		b.addPick(storage.Pick{
			GameID:     gameID,
			TeamID:     teamID,
			Order:      order,
			PlayerID:   playerID,
			ChampionID: addChampionByName(b, champion),
		})
	}
	return nil
}
