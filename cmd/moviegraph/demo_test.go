package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/moviegraph/internal/app"
	"github.com/yungbote/moviegraph/internal/catalog"
	"github.com/yungbote/moviegraph/internal/data/graph"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

const (
	demoMovies = "id,title,release_date,genres,production_countries\n" +
		`27205,Inception,2010-07-14,"[{""id"": 28, ""name"": ""Action""}]","[{""iso_3166_1"": ""US"", ""name"": ""United States of America""}]"` + "\n" +
		`58595,Snow White and the Huntsman,2012-05-30,"[{""id"": 14, ""name"": ""Fantasy""}]","[{""iso_3166_1"": ""US"", ""name"": ""United States of America""}]"` + "\n" +
		`24428,The Avengers,2012-04-25,"[{""id"": 28, ""name"": ""Action""}]","[{""iso_3166_1"": ""US"", ""name"": ""United States of America""}]"` + "\n" +
		`19995,Avatar,2009-12-10,"[{""id"": 14, ""name"": ""Fantasy""}]","[{""iso_3166_1"": ""CA"", ""name"": ""Canada""}]"` + "\n" +
		`680,Pulp Fiction,1994-09-10,"[{""id"": 80, ""name"": ""Crime""}]","[{""iso_3166_1"": ""US"", ""name"": ""United States of America""}]"` + "\n"
	demoCredits = "movie_id,title,cast,crew\n" +
		`27205,Inception,"[{""character"": ""Cobb"", ""name"": ""Leonardo DiCaprio"", ""order"": 0}]","[{""job"": ""Director"", ""name"": ""Christopher Nolan""}]"` + "\n" +
		`24428,The Avengers,"[{""character"": ""Steve Rogers"", ""name"": ""Chris Evans"", ""order"": 1}, {""character"": ""Thor"", ""name"": ""Chris Hemsworth"", ""order"": 2}]","[{""job"": ""Director"", ""name"": ""Joss Whedon""}]"` + "\n" +
		`680,Pulp Fiction,"[{""character"": ""Jimmie"", ""name"": ""Quentin Tarantino"", ""order"": 9}]","[{""job"": ""Director"", ""name"": ""Quentin Tarantino""}]"` + "\n"
)

func newDemoApp(t *testing.T) *app.App {
	t.Helper()
	dir := t.TempDir()
	cfg := app.DefaultConfig()
	cfg.LedgerDSN = filepath.Join(dir, "ledger.db")
	cfg.Ingest.MoviesPath = filepath.Join(dir, "movies.csv")
	cfg.Ingest.CreditsPath = filepath.Join(dir, "credits.csv")
	for path, body := range map[string]string{
		cfg.Ingest.MoviesPath:  demoMovies,
		cfg.Ingest.CreditsPath: demoCredits,
	} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	a, err := app.New(context.Background(), cfg, logger.NewNop(), app.WithStore(graph.NewMemoryStore()))
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestRunDemoPopulatesEmptyGraph(t *testing.T) {
	a := newDemoApp(t)
	ctx := context.Background()
	var buf bytes.Buffer
	if err := runDemo(ctx, a, &buf, demoOptions{Limit: 100, ChunkSize: 2, LinkMovie: avatarID}); err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	got := buf.String()
	for _, want := range []string{
		"Populating catalog",
		"Movies directed by Christopher Nolan:",
		`"Inception"`,
		"Movies featuring Chris Evans, Chris Hemsworth:",
		`"The Avengers"`,
		"Movies in the Fantasy genre (after 2010):",
		`"Snow White and the Huntsman"`,
		"Movies produced in CA:",
		"Top genres by number of movies:",
		"Most frequent collaborators:",
		"Movies where the director also acted:",
		"by Quentin Tarantino",
		"Linked actor Leonardo DiCaprio to movie 19995.",
		"Unlinked actor Leonardo DiCaprio from movie 19995 (1 credits removed).",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in demo output:\n%s", want, got)
		}
	}

	runs, err := a.Services.Ingest.ListRuns(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ledger runs: want=2 got=%d", len(runs))
	}

	// A second demo leaves a populated graph alone.
	buf.Reset()
	if err := runDemo(ctx, a, &buf, demoOptions{Limit: 100, ChunkSize: 2, LinkMovie: avatarID}); err != nil {
		t.Fatalf("second runDemo: %v", err)
	}
	if strings.Contains(buf.String(), "Populating catalog") {
		t.Fatalf("populated graph was re-ingested:\n%s", buf.String())
	}
}

func TestWalkthroughUnknownLinkMovie(t *testing.T) {
	a := newDemoApp(t)
	var buf bytes.Buffer
	if err := walkthrough(context.Background(), a.Catalog, printer{w: &buf}, 1); err != nil {
		t.Fatalf("walkthrough: %v", err)
	}
	if !strings.Contains(buf.String(), "Failed to link actor Leonardo DiCaprio: movie 1 not found.") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "No movies directed by Christopher Nolan.") {
		t.Fatalf("empty graph should report no movies:\n%s", buf.String())
	}
}

func TestDatasetsArg(t *testing.T) {
	all, err := datasetsArg("")
	if err != nil || len(all) != 2 || all[0] != catalog.DatasetMovies {
		t.Fatalf("datasetsArg(\"\"): got=%v err=%v", all, err)
	}
	one, err := datasetsArg("Credits")
	if err != nil || len(one) != 1 || one[0] != catalog.DatasetCredits {
		t.Fatalf("datasetsArg(Credits): got=%v err=%v", one, err)
	}
	if _, err := datasetsArg("ratings"); err == nil {
		t.Fatalf("unknown dataset should fail")
	}
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	p := printer{w: &buf, json: true}
	if err := p.movies("movies", nil); err != nil {
		t.Fatalf("movies: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "null" {
		t.Fatalf("json output: got=%q", buf.String())
	}
}
