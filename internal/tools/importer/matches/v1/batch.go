package matchimporter

import (
	"fmt"

	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

// batchBuilder collects the records of one source, merging repeated keys the
// way the store upserts do so counts reflect distinct records.
type batchBuilder struct {
	batch storage.Batch

	games       map[string]int
	teams       map[string]int
	players     map[string]int
	champions   map[string]int
	playerStats map[string]int
	teamStats   map[string]int
	bans        map[string]int
	picks       map[string]int
}

func newBatchBuilder(sourceName string) *batchBuilder {
	return &batchBuilder{
		batch:       storage.Batch{Source: sourceName},
		games:       map[string]int{},
		teams:       map[string]int{},
		players:     map[string]int{},
		champions:   map[string]int{},
		playerStats: map[string]int{},
		teamStats:   map[string]int{},
		bans:        map[string]int{},
		picks:       map[string]int{},
	}
}

func known(value string) bool {
	return value != "" && value != storage.Placeholder
}

func (b *batchBuilder) addGame(game storage.Game) {
	if idx, ok := b.games[game.ID]; ok {
		existing := &b.batch.Games[idx]
		if game.Date != nil {
			existing.Date = game.Date
		}
		if game.League != "" {
			existing.League = game.League
		}
		if game.Patch != "" {
			existing.Patch = game.Patch
		}
		return
	}
	b.games[game.ID] = len(b.batch.Games)
	b.batch.Games = append(b.batch.Games, game)
}

func (b *batchBuilder) addTeam(team storage.Team) {
	if idx, ok := b.teams[team.ID]; ok {
		if known(team.Name) {
			b.batch.Teams[idx].Name = team.Name
		}
		return
	}
	b.teams[team.ID] = len(b.batch.Teams)
	b.batch.Teams = append(b.batch.Teams, team)
}

func (b *batchBuilder) addPlayer(player storage.Player) {
	if idx, ok := b.players[player.ID]; ok {
		existing := &b.batch.Players[idx]
		if known(player.Name) {
			existing.Name = player.Name
		}
		if known(player.Position) {
			existing.Position = player.Position
		}
		return
	}
	b.players[player.ID] = len(b.batch.Players)
	b.batch.Players = append(b.batch.Players, player)
}

func (b *batchBuilder) addChampion(champion storage.Champion) {
	if idx, ok := b.champions[champion.ID]; ok {
		if known(champion.Name) {
			b.batch.Champions[idx].Name = champion.Name
		}
		return
	}
	b.champions[champion.ID] = len(b.batch.Champions)
	b.batch.Champions = append(b.batch.Champions, champion)
}

func (b *batchBuilder) addPlayerStat(stat storage.PlayerStat) {
	key := stat.GameID + "\x00" + stat.PlayerID
	if idx, ok := b.playerStats[key]; ok {
		b.batch.PlayerStats[idx] = stat
		return
	}
	b.playerStats[key] = len(b.batch.PlayerStats)
	b.batch.PlayerStats = append(b.batch.PlayerStats, stat)
}

func (b *batchBuilder) addTeamStat(stat storage.TeamStat) {
	key := stat.GameID + "\x00" + stat.TeamID
	if idx, ok := b.teamStats[key]; ok {
		b.batch.TeamStats[idx] = stat
		return
	}
	b.teamStats[key] = len(b.batch.TeamStats)
	b.batch.TeamStats = append(b.batch.TeamStats, stat)
}

func (b *batchBuilder) addBan(ban storage.Ban) {
	key := fmt.Sprintf("%s\x00%s\x00%d", ban.GameID, ban.TeamID, ban.Order)
	if idx, ok := b.bans[key]; ok {
		b.batch.Bans[idx] = ban
		return
	}
	b.bans[key] = len(b.batch.Bans)
	b.batch.Bans = append(b.batch.Bans, ban)
}

func (b *batchBuilder) addPick(pick storage.Pick) {
	key := fmt.Sprintf("%s\x00%s\x00%d", pick.GameID, pick.TeamID, pick.Order)
	if idx, ok := b.picks[key]; ok {
		b.batch.Picks[idx] = pick
		return
	}
	b.picks[key] = len(b.batch.Picks)
	b.batch.Picks = append(b.batch.Picks, pick)
}

// counts reports the distinct records collected so far.
func (b *batchBuilder) counts() storage.LoadCounts {
	return storage.LoadCounts{
		Games:       len(b.batch.Games),
		Teams:       len(b.batch.Teams),
		Players:     len(b.batch.Players),
		Champions:   len(b.batch.Champions),
		PlayerStats: len(b.batch.PlayerStats),
		TeamStats:   len(b.batch.TeamStats),
		Bans:        len(b.batch.Bans),
		Picks:       len(b.batch.Picks),
	}
}
