package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hrygo/lmchat/internal/profile"
	"github.com/hrygo/lmchat/store"
	"github.com/hrygo/lmchat/store/db"
)

// NewTestingStore returns a migrated store backed by a fresh SQLite file.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	s, _ := newTestingStoreWithDriver(ctx, t)
	return s
}

// newTestingStoreWithDriver also returns the driver, for tests that inspect the schema.
func newTestingStoreWithDriver(ctx context.Context, t *testing.T) (*store.Store, store.Driver) {
	t.Helper()

	profile := getTestingProfile(t)
	driver, err := db.NewDBDriver(profile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	s := store.New(driver, profile)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return s, driver
}

func getTestingProfile(t *testing.T) *profile.Profile {
	dir := t.TempDir()
	return &profile.Profile{
		Mode:   "dev",
		Port:   5000,
		Data:   dir,
		DSN:    filepath.Join(dir, profile.DatabaseFileName),
		Driver: "sqlite",
	}
}
