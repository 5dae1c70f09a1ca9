package sync

import (
	"context"
	"errors"
	"fmt"

	"matchsync/ingestion/internal/models"
	"matchsync/ingestion/internal/repository"
)

// FixtureReader reads fixture rows back out of the store.
// *repository.FixtureRepository satisfies it.
type FixtureReader interface {
	GetByFixtureID(ctx context.Context, fixtureID int64) (*models.Fixture, error)
}

// FixtureFetcher fetches a single fixture from the provider.
// *client.Client satisfies it.
type FixtureFetcher interface {
	FetchFixtureByID(ctx context.Context, fixtureID int64) (*models.FixtureInput, error)
}

// FixtureByID reads a fixture from the store, falling back to the
// provider on a miss. A fetched fixture is synced through the normal
// path so its league and teams land alongside it, then re-read so the
// caller sees the persisted row.
func (s *Syncer) FixtureByID(ctx context.Context, reader FixtureReader, fetcher FixtureFetcher, fixtureID int64) (*models.Fixture, error) {
	fixture, err := reader.GetByFixtureID(ctx, fixtureID)
	if err == nil {
		return fixture, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to read fixture %d: %w", fixtureID, err)
	}

	input, err := fetcher.FetchFixtureByID(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	if input == nil {
		return nil, fmt.Errorf("fixture %d: %w", fixtureID, repository.ErrNotFound)
	}

	if _, err := s.SyncFixtures(ctx, []models.FixtureInput{*input}); err != nil {
		return nil, err
	}

	return reader.GetByFixtureID(ctx, fixtureID)
}
