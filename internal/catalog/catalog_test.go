package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/moviegraph/internal/data/graph"
	"github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/observability"
	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

func csvText(t *testing.T, rows [][]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return buf.String()
}

const (
	gbUS = `[{"iso_3166_1": "GB", "name": "United Kingdom"}, {"iso_3166_1": "US", "name": "United States of America"}]`
	us   = `[{"iso_3166_1": "US", "name": "United States of America"}]`
	en   = `[{"iso_639_1": "en", "name": "English"}]`
)

func moviesCSV(t *testing.T) string {
	return csvText(t, [][]string{
		{"id", "title", "release_date", "genres", "production_countries", "spoken_languages", "popularity"},
		{"27205", "Inception", "2010-07-14", `[{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]`, gbUS, en, "167.58"},
		{"157336", "Interstellar", "2014-11-05", `[{"id": 12, "name": "Adventure"}, {"id": 878, "name": "Science Fiction"}]`, gbUS, en, "724.24"},
		{"19995", "Avatar", "2009-12-10", `[{"id": 28, "name": "Action"}, {"id": 14, "name": "Fantasy"}]`, gbUS, en, "150.43"},
		{"58595", "Snow White and the Huntsman", "2012-05-30", `[{"id": 14, "name": "Fantasy"}]`, us, en, "77.6"},
		{"24428", "The Avengers", "2012-04-25", `[{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]`, us, en, "144.44"},
		{"680", "Pulp Fiction", "1994-09-10", `[{'id': 80, 'name': 'Crime'}]`, us, en, "121.46"},
	})
}

func creditsCSV(t *testing.T) string {
	director := func(name string) string {
		return `[{"department": "Directing", "job": "Director", "name": "` + name + `"}]`
	}
	return csvText(t, [][]string{
		{"movie_id", "title", "cast", "crew"},
		{"27205", "Inception", `[{"character": "Dom Cobb", "id": 6193, "name": "Leonardo DiCaprio", "order": 0}, {"character": "Miles", "name": "Michael Caine", "order": 5}]`, director("Christopher Nolan")},
		{"157336", "Interstellar", `[{"character": "Cooper", "name": "Matthew McConaughey", "order": 0}, {"character": "Professor Brand", "name": "Michael Caine", "order": 3}]`, director("Christopher Nolan")},
		{"19995", "Avatar", `[{"character": "Jake Sully", "name": "Sam Worthington", "order": 0}]`, director("James Cameron")},
		{"58595", "Snow White and the Huntsman", `[{"character": "The Huntsman", "name": "Chris Hemsworth", "order": 1}]`, director("Rupert Sanders")},
		{"24428", "The Avengers", `[{"character": "Steve Rogers", "name": "Chris Evans", "order": 1}, {"character": "Thor", "name": "Chris Hemsworth", "order": 2}]`, director("Joss Whedon")},
		{"680", "Pulp Fiction", `[{"character": "Vincent Vega", "name": "John Travolta", "order": 0}, {"character": "Jimmie", "name": "Quentin Tarantino", "order": 9}]`,
			`[{"job": "director", "name": "Quentin Tarantino", "department": "Directing"}, {"job": "Screenplay", "name": "Quentin Tarantino", "department": "Writing"}]`},
	})
}

func newCatalog(t *testing.T, store graph.Store, opts ...Option) *Catalog {
	t.Helper()
	c, err := New(store, logger.NewNop(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return c
}

func loaded(t *testing.T, opts IngestOptions) *Catalog {
	t.Helper()
	c := newCatalog(t, graph.NewMemoryStore())
	ctx := context.Background()
	if _, err := c.IngestMovies(ctx, strings.NewReader(moviesCSV(t)), opts); err != nil {
		t.Fatalf("IngestMovies: %v", err)
	}
	if _, err := c.IngestCredits(ctx, strings.NewReader(creditsCSV(t)), opts); err != nil {
		t.Fatalf("IngestCredits: %v", err)
	}
	return c
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(nil, logger.NewNop()); err == nil {
		t.Fatalf("expected error without store")
	}
	if _, err := New(graph.NewMemoryStore(), nil); err == nil {
		t.Fatalf("expected error without logger")
	}
}

func TestInceptionEndToEnd(t *testing.T) {
	ctx := context.Background()
	c := loaded(t, IngestOptions{})

	got, err := c.MoviesByDirector(ctx, " Christopher Nolan ")
	if err != nil {
		t.Fatalf("MoviesByDirector: %v", err)
	}
	want := []domain.MovieSummary{{ID: 157336, Title: "Interstellar", Year: 2014}, {ID: 27205, Title: "Inception", Year: 2010}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("director (-want +got):\n%s", diff)
	}

	got, _ = c.MoviesByActors(ctx, []string{"Leonardo DiCaprio"})
	if diff := cmp.Diff(want[1:], got); diff != "" {
		t.Fatalf("DiCaprio (-want +got):\n%s", diff)
	}
	got, _ = c.MoviesByCountry(ctx, "gb")
	if len(got) != 3 {
		t.Fatalf("GB movies: want=3 got=%+v", got)
	}
}

func TestWalkthroughQueries(t *testing.T) {
	ctx := context.Background()
	c := loaded(t, IngestOptions{ChunkSize: 4})

	got, err := c.MoviesByActors(ctx, []string{"Chris Evans", "Chris Hemsworth", "Chris Evans"})
	if err != nil {
		t.Fatalf("MoviesByActors: %v", err)
	}
	if diff := cmp.Diff([]domain.MovieSummary{{ID: 24428, Title: "The Avengers", Year: 2012}}, got); diff != "" {
		t.Fatalf("Evans+Hemsworth (-want +got):\n%s", diff)
	}

	got, _ = c.MoviesByGenreSince(ctx, "Fantasy", 2010)
	if diff := cmp.Diff([]domain.MovieSummary{{ID: 58595, Title: "Snow White and the Huntsman", Year: 2012}}, got); diff != "" {
		t.Fatalf("Fantasy after 2010 (-want +got):\n%s", diff)
	}

	genres, _ := c.TopGenres(ctx, 2)
	wantGenres := []domain.GenreCount{{Genre: "Action", Movies: 3}, {Genre: "Science Fiction", Movies: 3}}
	if diff := cmp.Diff(wantGenres, genres); diff != "" {
		t.Fatalf("top genres (-want +got):\n%s", diff)
	}

	collab, _ := c.TopCollaborators(ctx, 1)
	wantCollab := []domain.Collaboration{{Actor: "Michael Caine", Director: "Christopher Nolan", Collaborations: 2}}
	if diff := cmp.Diff(wantCollab, collab); diff != "" {
		t.Fatalf("top collaborator (-want +got):\n%s", diff)
	}
	all, _ := c.TopCollaborators(ctx, 0)
	for _, p := range all {
		if p.Actor == p.Director {
			t.Fatalf("self collaboration: %+v", p)
		}
	}

	cameos, _ := c.DirectorCameos(ctx)
	wantCameos := []domain.DirectorCameo{{MovieID: 680, Title: "Pulp Fiction", Year: 1994, Director: "Quentin Tarantino", Character: "Jimmie"}}
	if diff := cmp.Diff(wantCameos, cameos); diff != "" {
		t.Fatalf("cameos (-want +got):\n%s", diff)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := loaded(t, IngestOptions{})
	before, _ := c.Counts(ctx)

	rep, err := c.IngestMovies(ctx, strings.NewReader(moviesCSV(t)), IngestOptions{})
	if err != nil {
		t.Fatalf("IngestMovies: %v", err)
	}
	if rep.Stats.NodesCreated != 0 || rep.Stats.RelationshipsCreated != 0 {
		t.Fatalf("re-ingest created: %+v", rep.Stats)
	}
	if _, err := c.IngestCredits(ctx, strings.NewReader(creditsCSV(t)), IngestOptions{}); err != nil {
		t.Fatalf("IngestCredits: %v", err)
	}
	after, _ := c.Counts(ctx)
	if after != before {
		t.Fatalf("counts changed: before=%+v after=%+v", before, after)
	}
}

func TestChunkSizeDoesNotChangeResult(t *testing.T) {
	ctx := context.Background()
	want, _ := loaded(t, IngestOptions{}).Counts(ctx)
	if want.Nodes == 0 {
		t.Fatalf("empty reference graph")
	}
	for _, size := range []int{1, 2, 3, 5, 7} {
		got, _ := loaded(t, IngestOptions{ChunkSize: size}).Counts(ctx)
		if got != want {
			t.Fatalf("chunk size %d: want=%+v got=%+v", size, want, got)
		}
	}
}

func TestProgressReportsEveryChunk(t *testing.T) {
	c := newCatalog(t, graph.NewMemoryStore())
	var seen []Progress
	rep, err := c.IngestMovies(context.Background(), strings.NewReader(moviesCSV(t)), IngestOptions{
		ChunkSize: 4,
		TotalRows: 6,
		Progress:  func(p Progress) { seen = append(seen, p) },
	})
	if err != nil {
		t.Fatalf("IngestMovies: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("progress calls: want=2 got=%d", len(seen))
	}
	for i, p := range seen {
		if p.Chunk != i+1 || p.TotalChunks != 2 || p.Dataset != DatasetMovies {
			t.Fatalf("progress %d: got=%+v", i, p)
		}
	}
	if last := seen[len(seen)-1]; last.RowsProcessed != 6 {
		t.Fatalf("rows processed: want=6 got=%d", last.RowsProcessed)
	}
	if rep.Chunks != 2 || rep.RowsProcessed != 6 || rep.RowsSkipped != 0 {
		t.Fatalf("report: got=%+v", rep)
	}
}

func TestIngestLimit(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t, graph.NewMemoryStore())
	rep, err := c.IngestMovies(ctx, strings.NewReader(moviesCSV(t)), IngestOptions{Limit: 2, ChunkSize: 1})
	if err != nil {
		t.Fatalf("IngestMovies: %v", err)
	}
	if rep.RowsProcessed != 2 || rep.Chunks != 2 {
		t.Fatalf("report: got=%+v", rep)
	}
	got, _ := c.MoviesByCountry(ctx, "US")
	if len(got) != 2 {
		t.Fatalf("movies after limit: want=2 got=%+v", got)
	}
}

func TestMalformedRowsAreSkippedWithWarnings(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t, graph.NewMemoryStore())
	in := csvText(t, [][]string{
		{"id", "title", "release_date", "genres", "budget"},
		{"1", "Broken Genres", "2001-01-01", "[{oops", "100"},
		{"", "No Id", "2001-01-01", "[]", ""},
		{"3", "Bad Budget", "2003-03-03", `[{"id": 1, "name": "Drama"}]`, "lots"},
	})
	rep, err := c.IngestMovies(ctx, strings.NewReader(in), IngestOptions{})
	if err != nil {
		t.Fatalf("IngestMovies: %v", err)
	}
	if rep.RowsProcessed != 3 || rep.RowsSkipped != 1 {
		t.Fatalf("report: got=%+v", rep)
	}
	if rep.WarningCount != 3 || len(rep.Warnings) != 3 {
		t.Fatalf("warnings: got=%d %v", rep.WarningCount, rep.Warnings)
	}
	fields := map[string]bool{}
	for _, w := range rep.Warnings {
		fields[w.Field] = true
	}
	if !fields["genres"] || !fields["budget"] || !fields[""] {
		t.Fatalf("warning fields: got=%v", fields)
	}
	counts, _ := c.Counts(ctx)
	// two movies and the Drama genre
	if counts.Nodes != 3 {
		t.Fatalf("nodes: want=3 got=%d", counts.Nodes)
	}
}

type failingStore struct {
	*graph.MemoryStore
	failOn int
	calls  int
}

var errBoom = errors.New("boom")

func (s *failingStore) MergeBatch(ctx context.Context, b *domain.Batch) (domain.MergeStats, error) {
	s.calls++
	if s.calls == s.failOn {
		return domain.MergeStats{}, errBoom
	}
	return s.MemoryStore.MergeBatch(ctx, b)
}

func TestStoreFailureAbortsWithChunkIndex(t *testing.T) {
	store := &failingStore{MemoryStore: graph.NewMemoryStore(), failOn: 2}
	c := newCatalog(t, store)
	rep, err := c.IngestMovies(context.Background(), strings.NewReader(moviesCSV(t)), IngestOptions{ChunkSize: 2})
	if !errors.Is(err, errBoom) {
		t.Fatalf("want errBoom, got=%v", err)
	}
	if !strings.Contains(err.Error(), "chunk 2") {
		t.Fatalf("error lacks chunk index: %v", err)
	}
	if rep.Chunks != 1 || rep.RowsProcessed != 2 {
		t.Fatalf("report after failure: got=%+v", rep)
	}
	if store.calls != 2 {
		t.Fatalf("merges attempted: want=2 got=%d", store.calls)
	}
}

func TestMissingHeaderFails(t *testing.T) {
	c := newCatalog(t, graph.NewMemoryStore())
	if _, err := c.IngestCredits(context.Background(), strings.NewReader(""), IngestOptions{}); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := c.Ingest(context.Background(), Dataset("ratings"), strings.NewReader("id\n1\n"), IngestOptions{}); err == nil {
		t.Fatalf("expected error for unknown dataset")
	}
}

type limitSpy struct {
	*graph.MemoryStore
	limits []int
}

func (s *limitSpy) TopGenres(ctx context.Context, limit int) ([]domain.GenreCount, error) {
	s.limits = append(s.limits, limit)
	return s.MemoryStore.TopGenres(ctx, limit)
}

func (s *limitSpy) TopCollaborators(ctx context.Context, limit int) ([]domain.Collaboration, error) {
	s.limits = append(s.limits, limit)
	return s.MemoryStore.TopCollaborators(ctx, limit)
}

func TestQueryValidation(t *testing.T) {
	ctx := context.Background()
	spy := &limitSpy{MemoryStore: graph.NewMemoryStore()}
	c := newCatalog(t, spy)

	if _, err := c.MoviesByActors(ctx, []string{" ", ""}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("empty actors: want ErrInvalidArgument, got=%v", err)
	}
	if _, err := c.MoviesByDirector(ctx, ""); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("empty director: want ErrInvalidArgument, got=%v", err)
	}
	if _, err := c.MoviesByGenreSince(ctx, "  ", 2000); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("empty genre: want ErrInvalidArgument, got=%v", err)
	}
	if _, err := c.MoviesByCountry(ctx, ""); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("empty country: want ErrInvalidArgument, got=%v", err)
	}
	if _, err := c.LinkActor(ctx, domain.ActingLink{MovieID: 1}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("link without person: want ErrInvalidArgument, got=%v", err)
	}
	if _, err := c.UnlinkActor(ctx, "", 1); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("unlink without person: want ErrInvalidArgument, got=%v", err)
	}

	_, _ = c.TopGenres(ctx, 0)
	_, _ = c.TopCollaborators(ctx, -3)
	_, _ = c.TopGenres(ctx, 4)
	if diff := cmp.Diff([]int{10, 10, 4}, spy.limits); diff != "" {
		t.Fatalf("limits (-want +got):\n%s", diff)
	}
}

func TestNormalizeNames(t *testing.T) {
	got := normalizeNames([]string{" B ", "A", "", "B"})
	if diff := cmp.Diff([]string{"A", "B"}, got); diff != "" {
		t.Fatalf("normalizeNames (-want +got):\n%s", diff)
	}
}

func TestLinkAndUnlink(t *testing.T) {
	ctx := context.Background()
	c := loaded(t, IngestOptions{})
	base, _ := c.Counts(ctx)

	link := domain.ActingLink{Person: "Leonardo DiCaprio", MovieID: 19995, Character: "Cameo", Order: 99}
	res, err := c.LinkActor(ctx, link)
	if err != nil {
		t.Fatalf("LinkActor: %v", err)
	}
	if !res.Linked || !res.Created {
		t.Fatalf("link: got=%+v", res)
	}
	if res, _ := c.LinkActor(ctx, link); res.Created {
		t.Fatalf("second link created an edge")
	}
	got, _ := c.MoviesByActors(ctx, []string{"Leonardo DiCaprio"})
	if len(got) != 2 {
		t.Fatalf("after link: got=%+v", got)
	}

	un, err := c.UnlinkActor(ctx, "Leonardo DiCaprio", 19995)
	if err != nil {
		t.Fatalf("UnlinkActor: %v", err)
	}
	if un.Removed != 1 {
		t.Fatalf("removed: want=1 got=%d", un.Removed)
	}
	after, _ := c.Counts(ctx)
	if after != base {
		t.Fatalf("counts after round trip: want=%+v got=%+v", base, after)
	}

	res, err = c.LinkActor(ctx, domain.ActingLink{Person: "Leonardo DiCaprio", MovieID: 999999})
	if err != nil || res.Linked {
		t.Fatalf("unknown movie: res=%+v err=%v", res, err)
	}
}

func TestIsEmpty(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t, graph.NewMemoryStore())
	empty, err := c.IsEmpty(ctx)
	if err != nil || !empty {
		t.Fatalf("fresh catalog: empty=%v err=%v", empty, err)
	}
	if _, err := c.IngestMovies(ctx, strings.NewReader(moviesCSV(t)), IngestOptions{}); err != nil {
		t.Fatalf("IngestMovies: %v", err)
	}
	if empty, _ := c.IsEmpty(ctx); empty {
		t.Fatalf("catalog still empty after ingest")
	}
}

func TestQueriesRecordMetrics(t *testing.T) {
	m := observability.NewMetrics()
	c := newCatalog(t, graph.NewMemoryStore(), WithMetrics(m))
	_, _ = c.MoviesByDirector(context.Background(), "Christopher Nolan")
	_, _ = c.MoviesByDirector(context.Background(), "Christopher Nolan")
	if got := m.QueryCount("movies_by_director", "ok"); got != 2 {
		t.Fatalf("query count: want=2 got=%v", got)
	}
}
