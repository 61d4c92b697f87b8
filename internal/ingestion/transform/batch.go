package transform

import "github.com/yungbote/moviegraph/internal/domain"

// BatchBuilder folds the results of many rows into one domain.Batch, keeping a
// single record per movie, person and entity.
type BatchBuilder struct {
	batch    domain.Batch
	movies   map[int64]int
	people   map[string]int
	entities map[entityKey]int
	members  map[domain.Membership]struct{}
}

func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		movies:   map[int64]int{},
		people:   map[string]int{},
		entities: map[entityKey]int{},
		members:  map[domain.Membership]struct{}{},
	}
}

// AddMovie adds a movie result. A later row for the same movie id replaces the
// earlier attributes; memberships accumulate.
func (b *BatchBuilder) AddMovie(r *MovieResult) {
	if r == nil {
		return
	}
	if i, ok := b.movies[r.Movie.ID]; ok {
		b.batch.Movies[i] = r.Movie
	} else {
		b.movies[r.Movie.ID] = len(b.batch.Movies)
		b.batch.Movies = append(b.batch.Movies, r.Movie)
	}
	for _, e := range r.Entities {
		k := entityKey{kind: e.Kind, key: e.Key}
		if i, ok := b.entities[k]; ok {
			if b.batch.Entities[i].SourceID == 0 {
				b.batch.Entities[i].SourceID = e.SourceID
			}
			continue
		}
		b.entities[k] = len(b.batch.Entities)
		b.batch.Entities = append(b.batch.Entities, e)
	}
	for _, m := range r.Memberships {
		if _, ok := b.members[m]; ok {
			continue
		}
		b.members[m] = struct{}{}
		b.batch.Memberships = append(b.batch.Memberships, m)
	}
}

func (b *BatchBuilder) AddCredit(r *CreditResult) {
	if r == nil {
		return
	}
	for _, p := range r.People {
		if i, ok := b.people[p.Name]; ok {
			cur := &b.batch.People[i]
			if cur.SourceID == 0 {
				cur.SourceID = p.SourceID
			}
			if cur.Gender == 0 {
				cur.Gender = p.Gender
			}
			continue
		}
		b.people[p.Name] = len(b.batch.People)
		b.batch.People = append(b.batch.People, p)
	}
	b.batch.Roles = append(b.batch.Roles, r.Roles...)
	b.batch.Crew = append(b.batch.Crew, r.Crew...)
}

// Batch returns the accumulated batch. The builder must not be reused afterwards.
func (b *BatchBuilder) Batch() *domain.Batch {
	out := b.batch
	return &out
}
