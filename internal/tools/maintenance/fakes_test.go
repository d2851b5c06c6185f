package maintenance

import (
	"context"

	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

type fakeStore struct {
	recomputed   int
	recomputeErr error
	integrity    storage.IntegrityReport
	integrityErr error
	counts       map[string]int64
	countsErr    error
	calls        []string
	closed       bool
}

func (f *fakeStore) RecomputeTeamTotals(context.Context) (int, error) {
	f.calls = append(f.calls, modeRecompute)
	return f.recomputed, f.recomputeErr
}

func (f *fakeStore) CheckIntegrity(context.Context) (storage.IntegrityReport, error) {
	f.calls = append(f.calls, modeIntegrity)
	return f.integrity, f.integrityErr
}

func (f *fakeStore) TableCounts(context.Context) (map[string]int64, error) {
	f.calls = append(f.calls, modeCounts)
	return f.counts, f.countsErr
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}
