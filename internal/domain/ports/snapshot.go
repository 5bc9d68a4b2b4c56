package ports

import (
	"context"

	"github.com/ersonp/lore-index/internal/domain/entities"
)

// SnapshotStore persists a built index so serving processes need not
// re-tokenize the corpus on start. The persisted form must round-trip
// exactly: a loaded snapshot reproduces identical search results.
type SnapshotStore interface {
	// Save persists the snapshot, replacing any previously saved one.
	Save(ctx context.Context, snap *entities.Snapshot) error

	// Load reads the most recently saved snapshot. It returns
	// entities.ErrSnapshotNotFound when nothing has been saved and
	// entities.ErrSnapshotCorrupt when the stored data fails validation.
	Load(ctx context.Context) (*entities.Snapshot, error)

	// Close releases the underlying storage.
	Close() error
}
