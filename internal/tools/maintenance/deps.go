package maintenance

import (
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

// closableStore extends MaintenanceStore with a Close method for resource cleanup.
type closableStore interface {
	storage.MaintenanceStore
	Close() error
}
