package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/moviegraph/internal/domain"
	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
	"github.com/yungbote/moviegraph/internal/platform/logger"
	"github.com/yungbote/moviegraph/internal/platform/neo4jdb"
)

type Neo4jStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jStore(client *neo4jdb.Client, log *logger.Logger) (*Neo4jStore, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("graph: %w: neo4j client required", pkgerrors.ErrInvalidArgument)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Neo4jStore{client: client, log: log.With("store", "Neo4jMovieGraph")}, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.client.Database,
	})
}

func schemaStatements() []string {
	stmts := []string{
		`CREATE CONSTRAINT movie_id_unique IF NOT EXISTS FOR (m:Movie) REQUIRE m.id IS UNIQUE`,
		`CREATE CONSTRAINT person_name_unique IF NOT EXISTS FOR (p:Person) REQUIRE p.name IS UNIQUE`,
	}
	for _, k := range domain.EntityKinds {
		stmts = append(stmts, fmt.Sprintf(
			`CREATE CONSTRAINT %s_%s_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE`,
			k, k.KeyProp(), k.Label(), k.KeyProp(),
		))
	}
	return append(stmts, `CREATE INDEX movie_release_year_idx IF NOT EXISTS FOR (m:Movie) ON (m.release_year)`)
}

// EnsureSchema installs one uniqueness constraint per natural key. Failure is returned,
// not logged: ingestion must not run without them.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range schemaStatements() {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("graph: schema setup: %w", err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("graph: schema setup: %w", err)
		}
	}
	s.log.Debug("neo4j schema ensured", "statements", len(schemaStatements()))
	return nil
}

type statement struct {
	query string
	rows  []map[string]any
}

func mergeStatements(batch *domain.Batch) []statement {
	var out []statement

	if len(batch.Movies) > 0 {
		rows := make([]map[string]any, 0, len(batch.Movies))
		for _, m := range batch.Movies {
			rows = append(rows, map[string]any{"id": m.ID, "props": m.Props()})
		}
		out = append(out, statement{query: `
UNWIND $rows AS row
MERGE (m:Movie {id: row.id})
SET m += row.props
`, rows: rows})
	}

	entities := map[domain.EntityKind][]map[string]any{}
	for _, e := range batch.Entities {
		entities[e.Kind] = append(entities[e.Kind], map[string]any{"key": e.Key, "props": e.Props()})
	}
	for _, k := range domain.EntityKinds {
		if len(entities[k]) == 0 {
			continue
		}
		out = append(out, statement{query: fmt.Sprintf(`
UNWIND $rows AS row
MERGE (e:%s {%s: row.key})
SET e += row.props
`, k.Label(), k.KeyProp()), rows: entities[k]})
	}

	if len(batch.People) > 0 {
		rows := make([]map[string]any, 0, len(batch.People))
		for _, p := range batch.People {
			rows = append(rows, map[string]any{"name": p.Name, "props": nonZero(p.Props())})
		}
		out = append(out, statement{query: `
UNWIND $rows AS row
MERGE (p:Person {name: row.name})
SET p += row.props
`, rows: rows})
	}

	members := map[domain.EntityKind][]map[string]any{}
	for _, m := range batch.Memberships {
		members[m.Kind] = append(members[m.Kind], map[string]any{"movie_id": m.MovieID, "key": m.Key})
	}
	for _, k := range domain.EntityKinds {
		if len(members[k]) == 0 {
			continue
		}
		out = append(out, statement{query: fmt.Sprintf(`
UNWIND $rows AS row
MATCH (m:Movie {id: row.movie_id})
MATCH (e:%s {%s: row.key})
MERGE (m)-[:%s]->(e)
`, k.Label(), k.KeyProp(), k.Relationship()), rows: members[k]})
	}

	if len(batch.Roles) > 0 {
		rows := make([]map[string]any, 0, len(batch.Roles))
		for _, r := range batch.Roles {
			rows = append(rows, map[string]any{
				"person":    r.Person,
				"movie_id":  r.MovieID,
				"character": r.Character,
				"order":     r.Order,
			})
		}
		out = append(out, statement{query: `
UNWIND $rows AS row
MATCH (p:Person {name: row.person})
MATCH (m:Movie {id: row.movie_id})
MERGE (p)-[:ACTED_IN {character: row.character, order: row.order}]->(m)
`, rows: rows})
	}

	if len(batch.Crew) > 0 {
		rows := make([]map[string]any, 0, len(batch.Crew))
		for _, c := range batch.Crew {
			rows = append(rows, map[string]any{
				"person":     c.Person,
				"movie_id":   c.MovieID,
				"job":        c.Job,
				"department": c.Department,
			})
		}
		out = append(out, statement{query: `
UNWIND $rows AS row
MATCH (p:Person {name: row.person})
MATCH (m:Movie {id: row.movie_id})
MERGE (p)-[r:CREW {job: row.job}]->(m)
SET r.department = row.department
`, rows: rows})
	}
	return out
}

// nonZero drops zero-valued attributes so a later sparse credit cannot erase an
// identifier learned earlier.
func nonZero(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch x := v.(type) {
		case int64:
			if x == 0 {
				continue
			}
		case string:
			if x == "" {
				continue
			}
		}
		out[k] = v
	}
	return out
}

func (s *Neo4jStore) MergeBatch(ctx context.Context, batch *domain.Batch) (domain.MergeStats, error) {
	if batch.Empty() {
		return domain.MergeStats{}, nil
	}
	if err := validate(batch); err != nil {
		return domain.MergeStats{}, err
	}
	stmts := mergeStatements(batch)

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var stats domain.MergeStats
		for _, st := range stmts {
			res, err := tx.Run(ctx, st.query, map[string]any{"rows": st.rows})
			if err != nil {
				return nil, err
			}
			sum, err := res.Consume(ctx)
			if err != nil {
				return nil, err
			}
			c := sum.Counters()
			stats.Add(domain.MergeStats{
				NodesCreated:         c.NodesCreated(),
				RelationshipsCreated: c.RelationshipsCreated(),
				PropertiesSet:        c.PropertiesSet(),
			})
		}
		return stats, nil
	})
	if err != nil {
		return domain.MergeStats{}, fmt.Errorf("graph: merge batch: %w", err)
	}
	return out.(domain.MergeStats), nil
}

func (s *Neo4jStore) LinkActor(ctx context.Context, link domain.ActingLink) (domain.LinkResult, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (m:Movie {id: $movie_id})
MERGE (p:Person {name: $person})
MERGE (p)-[:ACTED_IN {character: $character, order: $order}]->(m)
RETURN m.id AS id
`, map[string]any{
			"movie_id":  link.MovieID,
			"person":    link.Person,
			"character": link.Character,
			"order":     link.Order,
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		sum, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return domain.LinkResult{
			Linked:  len(records) > 0,
			Created: sum.Counters().RelationshipsCreated() > 0,
		}, nil
	})
	if err != nil {
		return domain.LinkResult{}, fmt.Errorf("graph: link actor: %w", err)
	}
	return out.(domain.LinkResult), nil
}

func (s *Neo4jStore) UnlinkActor(ctx context.Context, person string, movieID int64) (domain.UnlinkResult, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (:Person {name: $person})-[r:ACTED_IN]->(:Movie {id: $movie_id})
DELETE r
`, map[string]any{"person": person, "movie_id": movieID})
		if err != nil {
			return nil, err
		}
		sum, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return domain.UnlinkResult{Removed: int64(sum.Counters().RelationshipsDeleted())}, nil
	})
	if err != nil {
		return domain.UnlinkResult{}, fmt.Errorf("graph: unlink actor: %w", err)
	}
	return out.(domain.UnlinkResult), nil
}

func (s *Neo4jStore) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]*neo4j.Record), nil
}

func (s *Neo4jStore) Counts(ctx context.Context) (domain.GraphCounts, error) {
	var out domain.GraphCounts
	nodes, err := s.read(ctx, `MATCH (n) RETURN count(n) AS n`, nil)
	if err != nil {
		return out, fmt.Errorf("graph: count nodes: %w", err)
	}
	rels, err := s.read(ctx, `MATCH ()-[r]->() RETURN count(r) AS n`, nil)
	if err != nil {
		return out, fmt.Errorf("graph: count relationships: %w", err)
	}
	if out.Nodes, err = singleInt(nodes, "n"); err != nil {
		return out, err
	}
	if out.Relationships, err = singleInt(rels, "n"); err != nil {
		return out, err
	}
	return out, nil
}

func singleInt(records []*neo4j.Record, key string) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	v, _, err := neo4j.GetRecordValue[int64](records[0], key)
	return v, err
}

func (s *Neo4jStore) movies(ctx context.Context, op, query string, params map[string]any) ([]domain.MovieSummary, error) {
	records, err := s.read(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("graph: %s: %w", op, err)
	}
	out := make([]domain.MovieSummary, 0, len(records))
	for _, rec := range records {
		var m domain.MovieSummary
		if m.ID, _, err = neo4j.GetRecordValue[int64](rec, "id"); err != nil {
			return nil, fmt.Errorf("graph: %s: %w", op, err)
		}
		if m.Title, _, err = neo4j.GetRecordValue[string](rec, "title"); err != nil {
			return nil, fmt.Errorf("graph: %s: %w", op, err)
		}
		if m.Year, _, err = neo4j.GetRecordValue[int64](rec, "year"); err != nil {
			return nil, fmt.Errorf("graph: %s: %w", op, err)
		}
		out = append(out, m)
	}
	return out, nil
}

const movieColumns = `
RETURN DISTINCT m.id AS id, m.title AS title, m.release_year AS year
ORDER BY year DESC, title ASC, id ASC
`

func (s *Neo4jStore) MoviesByDirector(ctx context.Context, name string) ([]domain.MovieSummary, error) {
	return s.movies(ctx, "movies by director", `
MATCH (:Person {name: $name})-[:CREW {job: $job}]->(m:Movie)
`+movieColumns, map[string]any{"name": name, "job": domain.JobDirector})
}

func (s *Neo4jStore) MoviesByActors(ctx context.Context, names []string) ([]domain.MovieSummary, error) {
	if len(names) == 0 {
		return []domain.MovieSummary{}, nil
	}
	return s.movies(ctx, "movies by actors", `
MATCH (p:Person)-[:ACTED_IN]->(m:Movie)
WHERE p.name IN $names
WITH m, count(DISTINCT p) AS matched
WHERE matched = size($names)
`+movieColumns, map[string]any{"names": names})
}

func (s *Neo4jStore) MoviesByGenreSince(ctx context.Context, genre string, minYear int64) ([]domain.MovieSummary, error) {
	return s.movies(ctx, "movies by genre", `
MATCH (m:Movie)-[:HAS_GENRE]->(:Genre {name: $genre})
WHERE m.release_year > $min_year
`+movieColumns, map[string]any{"genre": genre, "min_year": minYear})
}

func (s *Neo4jStore) MoviesByCountry(ctx context.Context, code string) ([]domain.MovieSummary, error) {
	return s.movies(ctx, "movies by country", `
MATCH (m:Movie)-[:PRODUCED_IN]->(:Country {code: $code})
`+movieColumns, map[string]any{"code": code})
}

func limitClause(limit int, params map[string]any) string {
	if limit <= 0 {
		return ""
	}
	params["limit"] = int64(limit)
	return "LIMIT $limit"
}

func (s *Neo4jStore) TopGenres(ctx context.Context, limit int) ([]domain.GenreCount, error) {
	params := map[string]any{}
	records, err := s.read(ctx, `
MATCH (m:Movie)-[:HAS_GENRE]->(g:Genre)
WITH g.name AS genre, count(DISTINCT m) AS movies
RETURN genre, movies
ORDER BY movies DESC, genre ASC
`+limitClause(limit, params), params)
	if err != nil {
		return nil, fmt.Errorf("graph: top genres: %w", err)
	}
	out := make([]domain.GenreCount, 0, len(records))
	for _, rec := range records {
		var g domain.GenreCount
		if g.Genre, _, err = neo4j.GetRecordValue[string](rec, "genre"); err != nil {
			return nil, fmt.Errorf("graph: top genres: %w", err)
		}
		if g.Movies, _, err = neo4j.GetRecordValue[int64](rec, "movies"); err != nil {
			return nil, fmt.Errorf("graph: top genres: %w", err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Neo4jStore) TopCollaborators(ctx context.Context, limit int) ([]domain.Collaboration, error) {
	params := map[string]any{"job": domain.JobDirector}
	records, err := s.read(ctx, `
MATCH (a:Person)-[:ACTED_IN]->(m:Movie)<-[:CREW {job: $job}]-(d:Person)
WHERE a <> d
WITH a.name AS actor, d.name AS director, count(DISTINCT m) AS collaborations
RETURN actor, director, collaborations
ORDER BY collaborations DESC, actor ASC, director ASC
`+limitClause(limit, params), params)
	if err != nil {
		return nil, fmt.Errorf("graph: top collaborators: %w", err)
	}
	out := make([]domain.Collaboration, 0, len(records))
	for _, rec := range records {
		var c domain.Collaboration
		if c.Actor, _, err = neo4j.GetRecordValue[string](rec, "actor"); err != nil {
			return nil, fmt.Errorf("graph: top collaborators: %w", err)
		}
		if c.Director, _, err = neo4j.GetRecordValue[string](rec, "director"); err != nil {
			return nil, fmt.Errorf("graph: top collaborators: %w", err)
		}
		if c.Collaborations, _, err = neo4j.GetRecordValue[int64](rec, "collaborations"); err != nil {
			return nil, fmt.Errorf("graph: top collaborators: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Neo4jStore) DirectorCameos(ctx context.Context) ([]domain.DirectorCameo, error) {
	records, err := s.read(ctx, `
MATCH (p:Person)-[:CREW {job: $job}]->(m:Movie)<-[r:ACTED_IN]-(p)
RETURN DISTINCT m.id AS id, m.title AS title, m.release_year AS year, p.name AS director, r.character AS character
ORDER BY year DESC, title ASC, director ASC, character ASC
`, map[string]any{"job": domain.JobDirector})
	if err != nil {
		return nil, fmt.Errorf("graph: director cameos: %w", err)
	}
	out := make([]domain.DirectorCameo, 0, len(records))
	for _, rec := range records {
		var c domain.DirectorCameo
		if c.MovieID, _, err = neo4j.GetRecordValue[int64](rec, "id"); err != nil {
			return nil, fmt.Errorf("graph: director cameos: %w", err)
		}
		if c.Title, _, err = neo4j.GetRecordValue[string](rec, "title"); err != nil {
			return nil, fmt.Errorf("graph: director cameos: %w", err)
		}
		if c.Year, _, err = neo4j.GetRecordValue[int64](rec, "year"); err != nil {
			return nil, fmt.Errorf("graph: director cameos: %w", err)
		}
		if c.Director, _, err = neo4j.GetRecordValue[string](rec, "director"); err != nil {
			return nil, fmt.Errorf("graph: director cameos: %w", err)
		}
		if c.Character, _, err = neo4j.GetRecordValue[string](rec, "character"); err != nil {
			return nil, fmt.Errorf("graph: director cameos: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}
