package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/moviegraph/internal/domain"
	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
)

// DefaultTopLimit applies when a ranking is asked for with limit <= 0.
const DefaultTopLimit = 10

func invalid(format string, args ...any) error {
	return fmt.Errorf("catalog: %w: %s", pkgerrors.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func required(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("%s is required", field)
	}
	return v, nil
}

// MoviesByDirector lists the movies name is credited as Director on, newest first.
func (c *Catalog) MoviesByDirector(ctx context.Context, name string) ([]domain.MovieSummary, error) {
	name, err := required("director", name)
	if err != nil {
		return nil, err
	}
	return observe(ctx, c, "movies_by_director", func(ctx context.Context) ([]domain.MovieSummary, error) {
		return c.store.MoviesByDirector(ctx, name)
	})
}

// MoviesByActors lists movies every one of names acted in.
func (c *Catalog) MoviesByActors(ctx context.Context, names []string) ([]domain.MovieSummary, error) {
	distinct := normalizeNames(names)
	if len(distinct) == 0 {
		return nil, invalid("at least one actor is required")
	}
	return observe(ctx, c, "movies_by_actors", func(ctx context.Context) ([]domain.MovieSummary, error) {
		return c.store.MoviesByActors(ctx, distinct)
	})
}

// normalizeNames trims, drops blanks and duplicates, and sorts.
func normalizeNames(names []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MoviesByGenreSince lists genre movies released strictly after minYear.
func (c *Catalog) MoviesByGenreSince(ctx context.Context, genre string, minYear int64) ([]domain.MovieSummary, error) {
	genre, err := required("genre", genre)
	if err != nil {
		return nil, err
	}
	return observe(ctx, c, "movies_by_genre", func(ctx context.Context) ([]domain.MovieSummary, error) {
		return c.store.MoviesByGenreSince(ctx, genre, minYear)
	})
}

// MoviesByCountry matches the ISO 3166-1 code case-insensitively.
func (c *Catalog) MoviesByCountry(ctx context.Context, code string) ([]domain.MovieSummary, error) {
	code, err := required("country code", code)
	if err != nil {
		return nil, err
	}
	code = strings.ToUpper(code)
	return observe(ctx, c, "movies_by_country", func(ctx context.Context) ([]domain.MovieSummary, error) {
		return c.store.MoviesByCountry(ctx, code)
	})
}

func (c *Catalog) TopGenres(ctx context.Context, limit int) ([]domain.GenreCount, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return observe(ctx, c, "top_genres", func(ctx context.Context) ([]domain.GenreCount, error) {
		return c.store.TopGenres(ctx, limit)
	})
}

// TopCollaborators ranks actor/director pairs by distinct shared movies. A person
// is never paired with themself.
func (c *Catalog) TopCollaborators(ctx context.Context, limit int) ([]domain.Collaboration, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return observe(ctx, c, "top_collaborators", func(ctx context.Context) ([]domain.Collaboration, error) {
		return c.store.TopCollaborators(ctx, limit)
	})
}

func (c *Catalog) DirectorCameos(ctx context.Context) ([]domain.DirectorCameo, error) {
	return observe(ctx, c, "director_cameos", func(ctx context.Context) ([]domain.DirectorCameo, error) {
		return c.store.DirectorCameos(ctx)
	})
}

// LinkActor adds an ACTED_IN edge, creating the person when needed. An unknown
// movie is reported through Linked=false rather than an error.
func (c *Catalog) LinkActor(ctx context.Context, link domain.ActingLink) (domain.LinkResult, error) {
	person, err := required("person", link.Person)
	if err != nil {
		return domain.LinkResult{}, err
	}
	if link.Order < 0 {
		return domain.LinkResult{}, invalid("order must be >= 0")
	}
	link.Person = person
	link.Character = strings.TrimSpace(link.Character)

	res, err := observe(ctx, c, "link_actor", func(ctx context.Context) (domain.LinkResult, error) {
		return c.store.LinkActor(ctx, link)
	})
	if err != nil {
		return res, err
	}
	if !res.Linked {
		c.log.Warn("link skipped: movie not found", "movie_id", link.MovieID, "person", link.Person)
	} else {
		c.log.Info("actor linked", "movie_id", link.MovieID, "person", link.Person, "created", res.Created)
	}
	return res, nil
}

// UnlinkActor removes every ACTED_IN edge from person to movieID.
func (c *Catalog) UnlinkActor(ctx context.Context, person string, movieID int64) (domain.UnlinkResult, error) {
	person, err := required("person", person)
	if err != nil {
		return domain.UnlinkResult{}, err
	}
	res, err := observe(ctx, c, "unlink_actor", func(ctx context.Context) (domain.UnlinkResult, error) {
		return c.store.UnlinkActor(ctx, person, movieID)
	})
	if err != nil {
		return res, err
	}
	c.log.Info("actor unlinked", "movie_id", movieID, "person", person, "removed", res.Removed)
	return res, nil
}
