package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yungbote/moviegraph/internal/domain"
)

type crewKey struct {
	person  string
	movieID int64
	job     string
}

type pairKey struct {
	actor    string
	director string
}

// MemoryStore is an in-process Store used by tests and dry runs. It honors the same
// merge identities as the Neo4j backend.
type MemoryStore struct {
	mu       sync.RWMutex
	movies   map[int64]domain.Movie
	people   map[string]domain.Person
	entities map[domain.EntityKind]map[string]domain.Entity
	members  map[domain.Membership]struct{}
	roles    map[domain.Role]struct{}
	crew     map[crewKey]string
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		movies:   map[int64]domain.Movie{},
		people:   map[string]domain.Person{},
		entities: map[domain.EntityKind]map[string]domain.Entity{},
		members:  map[domain.Membership]struct{}{},
		roles:    map[domain.Role]struct{}{},
		crew:     map[crewKey]string{},
	}
	for _, k := range domain.EntityKinds {
		s.entities[k] = map[string]domain.Entity{}
	}
	return s
}

func (s *MemoryStore) EnsureSchema(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// validate rejects a batch before any write so a failing batch leaves no trace.
func validate(batch *domain.Batch) error {
	for _, e := range batch.Entities {
		if !e.Kind.Valid() || e.Key == "" {
			return fmt.Errorf("graph: invalid entity %+v", e)
		}
	}
	for _, m := range batch.Memberships {
		if !m.Kind.Valid() || m.Key == "" {
			return fmt.Errorf("graph: invalid membership %+v", m)
		}
	}
	for _, p := range batch.People {
		if p.Name == "" {
			return fmt.Errorf("graph: person without name")
		}
	}
	return nil
}

func (s *MemoryStore) MergeBatch(ctx context.Context, batch *domain.Batch) (domain.MergeStats, error) {
	var stats domain.MergeStats
	if batch.Empty() {
		return stats, nil
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if err := validate(batch); err != nil {
		return stats, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range batch.Movies {
		if _, ok := s.movies[m.ID]; !ok {
			stats.NodesCreated++
		}
		s.movies[m.ID] = m
		stats.PropertiesSet += len(m.Props())
	}
	for _, e := range batch.Entities {
		if _, ok := s.entities[e.Kind][e.Key]; !ok {
			stats.NodesCreated++
		}
		s.entities[e.Kind][e.Key] = e
		stats.PropertiesSet += len(e.Props())
	}
	for _, p := range batch.People {
		old, ok := s.people[p.Name]
		if !ok {
			stats.NodesCreated++
		}
		if p.SourceID == 0 {
			p.SourceID = old.SourceID
		}
		if p.Gender == 0 {
			p.Gender = old.Gender
		}
		s.people[p.Name] = p
		stats.PropertiesSet += len(p.Props())
	}
	for _, m := range batch.Memberships {
		if _, ok := s.movies[m.MovieID]; !ok {
			continue
		}
		if _, ok := s.entities[m.Kind][m.Key]; !ok {
			continue
		}
		if _, ok := s.members[m]; !ok {
			s.members[m] = struct{}{}
			stats.RelationshipsCreated++
		}
	}
	for _, r := range batch.Roles {
		if !s.endpointsLocked(r.Person, r.MovieID) {
			continue
		}
		if _, ok := s.roles[r]; !ok {
			s.roles[r] = struct{}{}
			stats.RelationshipsCreated++
		}
	}
	for _, c := range batch.Crew {
		if !s.endpointsLocked(c.Person, c.MovieID) {
			continue
		}
		k := crewKey{person: c.Person, movieID: c.MovieID, job: c.Job}
		if _, ok := s.crew[k]; !ok {
			stats.RelationshipsCreated++
		}
		s.crew[k] = c.Department
		stats.PropertiesSet++
	}
	return stats, nil
}

func (s *MemoryStore) endpointsLocked(person string, movieID int64) bool {
	if _, ok := s.people[person]; !ok {
		return false
	}
	_, ok := s.movies[movieID]
	return ok
}

func (s *MemoryStore) LinkActor(ctx context.Context, link domain.ActingLink) (domain.LinkResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.LinkResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[link.MovieID]; !ok {
		return domain.LinkResult{}, nil
	}
	if _, ok := s.people[link.Person]; !ok {
		s.people[link.Person] = domain.Person{Name: link.Person}
	}
	r := domain.Role{Person: link.Person, MovieID: link.MovieID, Character: link.Character, Order: link.Order}
	if _, ok := s.roles[r]; ok {
		return domain.LinkResult{Linked: true}, nil
	}
	s.roles[r] = struct{}{}
	return domain.LinkResult{Linked: true, Created: true}, nil
}

func (s *MemoryStore) UnlinkActor(ctx context.Context, person string, movieID int64) (domain.UnlinkResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.UnlinkResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out domain.UnlinkResult
	for r := range s.roles {
		if r.Person == person && r.MovieID == movieID {
			delete(s.roles, r)
			out.Removed++
		}
	}
	return out, nil
}

func (s *MemoryStore) Counts(ctx context.Context) (domain.GraphCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := len(s.movies) + len(s.people)
	for _, byKey := range s.entities {
		nodes += len(byKey)
	}
	rels := len(s.members) + len(s.roles) + len(s.crew)
	return domain.GraphCounts{Nodes: int64(nodes), Relationships: int64(rels)}, ctx.Err()
}

func (s *MemoryStore) MoviesByDirector(ctx context.Context, name string) ([]domain.MovieSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := map[int64]struct{}{}
	for k := range s.crew {
		if k.person == name && k.job == domain.JobDirector {
			ids[k.movieID] = struct{}{}
		}
	}
	return s.summariesLocked(ids), ctx.Err()
}

func (s *MemoryStore) MoviesByActors(ctx context.Context, names []string) ([]domain.MovieSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(names) == 0 {
		return []domain.MovieSummary{}, ctx.Err()
	}
	wanted := map[string]struct{}{}
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	matched := map[int64]map[string]struct{}{}
	for r := range s.roles {
		if _, ok := wanted[r.Person]; !ok {
			continue
		}
		if matched[r.MovieID] == nil {
			matched[r.MovieID] = map[string]struct{}{}
		}
		matched[r.MovieID][r.Person] = struct{}{}
	}
	ids := map[int64]struct{}{}
	for id, who := range matched {
		if len(who) == len(wanted) {
			ids[id] = struct{}{}
		}
	}
	return s.summariesLocked(ids), ctx.Err()
}

func (s *MemoryStore) MoviesByGenreSince(ctx context.Context, genre string, minYear int64) ([]domain.MovieSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := map[int64]struct{}{}
	for m := range s.members {
		if m.Kind == domain.KindGenre && m.Key == genre && s.movies[m.MovieID].ReleaseYear > minYear {
			ids[m.MovieID] = struct{}{}
		}
	}
	return s.summariesLocked(ids), ctx.Err()
}

func (s *MemoryStore) MoviesByCountry(ctx context.Context, code string) ([]domain.MovieSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := map[int64]struct{}{}
	for m := range s.members {
		if m.Kind == domain.KindCountry && m.Key == code {
			ids[m.MovieID] = struct{}{}
		}
	}
	return s.summariesLocked(ids), ctx.Err()
}

func (s *MemoryStore) TopGenres(ctx context.Context, limit int) ([]domain.GenreCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[string]int64{}
	for m := range s.members {
		if m.Kind == domain.KindGenre {
			counts[m.Key]++
		}
	}
	out := make([]domain.GenreCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, domain.GenreCount{Genre: g, Movies: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Movies != out[j].Movies {
			return out[i].Movies > out[j].Movies
		}
		return out[i].Genre < out[j].Genre
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, ctx.Err()
}

func (s *MemoryStore) TopCollaborators(ctx context.Context, limit int) ([]domain.Collaboration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	directors := map[int64]map[string]struct{}{}
	for k := range s.crew {
		if k.job != domain.JobDirector {
			continue
		}
		if directors[k.movieID] == nil {
			directors[k.movieID] = map[string]struct{}{}
		}
		directors[k.movieID][k.person] = struct{}{}
	}
	shared := map[pairKey]map[int64]struct{}{}
	for r := range s.roles {
		for d := range directors[r.MovieID] {
			if d == r.Person {
				continue
			}
			p := pairKey{actor: r.Person, director: d}
			if shared[p] == nil {
				shared[p] = map[int64]struct{}{}
			}
			shared[p][r.MovieID] = struct{}{}
		}
	}
	out := make([]domain.Collaboration, 0, len(shared))
	for p, movies := range shared {
		out = append(out, domain.Collaboration{Actor: p.actor, Director: p.director, Collaborations: int64(len(movies))})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Collaborations != b.Collaborations {
			return a.Collaborations > b.Collaborations
		}
		if a.Actor != b.Actor {
			return a.Actor < b.Actor
		}
		return a.Director < b.Director
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, ctx.Err()
}

func (s *MemoryStore) DirectorCameos(ctx context.Context) ([]domain.DirectorCameo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[domain.DirectorCameo]struct{}{}
	out := []domain.DirectorCameo{}
	for r := range s.roles {
		if _, ok := s.crew[crewKey{person: r.Person, movieID: r.MovieID, job: domain.JobDirector}]; !ok {
			continue
		}
		m := s.movies[r.MovieID]
		c := domain.DirectorCameo{MovieID: m.ID, Title: m.Title, Year: m.ReleaseYear, Director: r.Person, Character: r.Character}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Director != b.Director {
			return a.Director < b.Director
		}
		return a.Character < b.Character
	})
	return out, ctx.Err()
}

func (s *MemoryStore) summariesLocked(ids map[int64]struct{}) []domain.MovieSummary {
	out := make([]domain.MovieSummary, 0, len(ids))
	for id := range ids {
		m, ok := s.movies[id]
		if !ok {
			continue
		}
		out = append(out, domain.MovieSummary{ID: m.ID, Title: m.Title, Year: m.ReleaseYear})
	}
	SortMovies(out)
	return out
}

// SortMovies orders by year descending, then title, then id.
func SortMovies(movies []domain.MovieSummary) {
	sort.Slice(movies, func(i, j int) bool {
		a, b := movies[i], movies[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}
