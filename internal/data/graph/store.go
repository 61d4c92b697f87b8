// Package graph holds the movie graph store contract and its backends.
//
// Every backend merges by natural key: nodes by (label, key), membership edges by
// (movie, entity, type), ACTED_IN by (person, movie, character, order) and CREW by
// (person, movie, job). Re-merging an identical batch creates nothing. Edges are only
// written when both endpoints exist.
//
// Callers pass validated input: trimmed names, distinct actor names, positive limits.
package graph

import (
	"context"

	"github.com/yungbote/moviegraph/internal/domain"
)

// Writer mutates the graph. MergeBatch applies a whole batch or nothing.
type Writer interface {
	EnsureSchema(ctx context.Context) error
	MergeBatch(ctx context.Context, batch *domain.Batch) (domain.MergeStats, error)
	LinkActor(ctx context.Context, link domain.ActingLink) (domain.LinkResult, error)
	UnlinkActor(ctx context.Context, person string, movieID int64) (domain.UnlinkResult, error)
}

// Reader answers the analytic queries. Movie lists are ordered by year descending,
// then title ascending.
type Reader interface {
	Counts(ctx context.Context) (domain.GraphCounts, error)
	MoviesByDirector(ctx context.Context, name string) ([]domain.MovieSummary, error)
	MoviesByActors(ctx context.Context, names []string) ([]domain.MovieSummary, error)
	MoviesByGenreSince(ctx context.Context, genre string, minYear int64) ([]domain.MovieSummary, error)
	MoviesByCountry(ctx context.Context, code string) ([]domain.MovieSummary, error)
	TopGenres(ctx context.Context, limit int) ([]domain.GenreCount, error)
	TopCollaborators(ctx context.Context, limit int) ([]domain.Collaboration, error)
	DirectorCameos(ctx context.Context) ([]domain.DirectorCameo, error)
}

type Store interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
