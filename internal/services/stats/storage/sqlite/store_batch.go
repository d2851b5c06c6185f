package sqlite

import (
	"context"
	"fmt"

	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

// LoadBatch writes every record of batch in one transaction. Dimensions are
// written before the facts that reference them; any failure rolls back the
// whole batch.
func (s *Store) LoadBatch(ctx context.Context, batch storage.Batch) (storage.LoadCounts, error) {
	if err := s.ready(ctx); err != nil {
		return storage.LoadCounts{}, err
	}
	if batch.Empty() {
		return storage.LoadCounts{}, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.LoadCounts{}, fmt.Errorf("begin batch %s: %w", batch.Source, err)
	}
	txStore := s.withTx(tx)

	counts, err := txStore.loadBatch(ctx, batch)
	if err != nil {
		_ = tx.Rollback()
		return storage.LoadCounts{}, fmt.Errorf("load batch %s: %w", batch.Source, err)
	}
	if err := tx.Commit(); err != nil {
		return storage.LoadCounts{}, fmt.Errorf("commit batch %s: %w", batch.Source, err)
	}
	return counts, nil
}

func (s *Store) loadBatch(ctx context.Context, batch storage.Batch) (storage.LoadCounts, error) {
	var counts storage.LoadCounts
	for _, game := range batch.Games {
		if err := s.PutGame(ctx, game); err != nil {
			return counts, err
		}
		counts.Games++
	}
	for _, team := range batch.Teams {
		if err := s.PutTeam(ctx, team); err != nil {
			return counts, err
		}
		counts.Teams++
	}
	for _, player := range batch.Players {
		if err := s.PutPlayer(ctx, player); err != nil {
			return counts, err
		}
		counts.Players++
	}
	for _, champion := range batch.Champions {
		if err := s.PutChampion(ctx, champion); err != nil {
			return counts, err
		}
		counts.Champions++
	}
	for _, stat := range batch.PlayerStats {
		if err := s.PutPlayerStat(ctx, stat); err != nil {
			return counts, err
		}
		counts.PlayerStats++
	}
	for _, stat := range batch.TeamStats {
		if err := s.PutTeamStat(ctx, stat); err != nil {
			return counts, err
		}
		counts.TeamStats++
	}
	for _, ban := range batch.Bans {
		if err := s.PutBan(ctx, ban); err != nil {
			return counts, err
		}
		counts.Bans++
	}
	for _, pick := range batch.Picks {
		if err := s.PutPick(ctx, pick); err != nil {
			return counts, err
		}
		counts.Picks++
	}
	return counts, nil
}
