package transform

import (
	"strings"

	"github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/normalization"
)

// MovieRow holds the raw cells of one movies-dataset record.
type MovieRow struct {
	Line             int
	ID               string
	Title            string
	OriginalTitle    string
	ReleaseDate      string
	Year             string
	Overview         string
	Tagline          string
	Status           string
	Homepage         string
	OriginalLanguage string
	Popularity       string
	Revenue          string
	Budget           string
	Runtime          string
	VoteAverage      string
	VoteCount        string
	Genres           string
	Keywords         string
	Companies        string
	Countries        string
	Languages        string
}

// MovieRowFromFields maps dataset columns onto a MovieRow.
func MovieRowFromFields(line int, get func(col string) string) MovieRow {
	year := get("release_year")
	if year == "" {
		year = get("year")
	}
	return MovieRow{
		Line:             line,
		ID:               get("id"),
		Title:            get("title"),
		OriginalTitle:    get("original_title"),
		ReleaseDate:      get("release_date"),
		Year:             year,
		Overview:         get("overview"),
		Tagline:          get("tagline"),
		Status:           get("status"),
		Homepage:         get("homepage"),
		OriginalLanguage: get("original_language"),
		Popularity:       get("popularity"),
		Revenue:          get("revenue"),
		Budget:           get("budget"),
		Runtime:          get("runtime"),
		VoteAverage:      get("vote_average"),
		VoteCount:        get("vote_count"),
		Genres:           get("genres"),
		Keywords:         get("keywords"),
		Companies:        get("production_companies"),
		Countries:        get("production_countries"),
		Languages:        get("spoken_languages"),
	}
}

// MovieResult is one movie, its de-duplicated auxiliary entities, and its memberships.
type MovieResult struct {
	Movie       domain.Movie
	Entities    []domain.Entity
	Memberships []domain.Membership
}

// TransformMovie builds the canonical records for one row. Missing id, title or
// release year rejects the row; numeric noise and malformed nested cells only warn.
func TransformMovie(row MovieRow) (*MovieResult, []Warning, error) {
	var warns []Warning
	warn := func(field, msg string) {
		warns = append(warns, Warning{Line: row.Line, Field: field, Message: msg})
	}

	id, err := normalization.Int(row.ID)
	if err != nil || id <= 0 {
		return nil, warns, rejectf("line %d: missing or invalid id %q", row.Line, row.ID)
	}
	title := normalization.Text(row.Title)
	if title == "" {
		return nil, warns, rejectf("line %d: movie %d has no title", row.Line, id)
	}

	m := domain.Movie{
		ID:               id,
		Title:            title,
		OriginalTitle:    normalization.Text(row.OriginalTitle),
		Overview:         normalization.Text(row.Overview),
		Tagline:          normalization.Text(row.Tagline),
		Status:           normalization.Text(row.Status),
		Homepage:         normalization.Text(row.Homepage),
		OriginalLanguage: normalization.Text(row.OriginalLanguage),
	}

	if released, ok := normalization.ReleaseDate(row.ReleaseDate); ok {
		m.ReleaseDate = released.Format("2006-01-02")
		m.ReleaseYear = int64(released.Year())
	} else if y, ok := normalization.Year(row.Year); ok {
		m.ReleaseYear = y
	} else {
		return nil, warns, rejectf("line %d: movie %d (%s) has no usable release year", row.Line, id, title)
	}

	floatField := func(field, cell string) float64 {
		f, err := normalization.Float(cell)
		if err != nil {
			warn(field, err.Error()+"; defaulting to 0")
		}
		return f
	}
	intField := func(field, cell string) int64 {
		i, err := normalization.Int(cell)
		if err != nil {
			warn(field, err.Error()+"; defaulting to 0")
		}
		return i
	}
	m.Popularity = floatField("popularity", row.Popularity)
	m.Revenue = intField("revenue", row.Revenue)
	m.Budget = intField("budget", row.Budget)
	m.Runtime = intField("runtime", row.Runtime)
	m.VoteAverage = floatField("vote_average", row.VoteAverage)
	m.VoteCount = intField("vote_count", row.VoteCount)

	res := &MovieResult{Movie: m}
	set := newEntitySet(res, id)

	genres, err := normalization.DecodeList[normalization.Genre](row.Genres)
	if err != nil {
		warn("genres", err.Error())
	}
	for _, g := range genres {
		set.add(domain.KindGenre, normalization.Text(g.Name), g.Name, g.ID, warn)
	}

	keywords, err := normalization.DecodeList[normalization.Keyword](row.Keywords)
	if err != nil {
		warn("keywords", err.Error())
	}
	for _, k := range keywords {
		set.add(domain.KindKeyword, normalization.Text(k.Name), k.Name, k.ID, warn)
	}

	companies, err := normalization.DecodeList[normalization.Company](row.Companies)
	if err != nil {
		warn("production_companies", err.Error())
	}
	for _, c := range companies {
		set.add(domain.KindCompany, normalization.Text(c.Name), c.Name, c.ID, warn)
	}

	countries, err := normalization.DecodeList[normalization.Country](row.Countries)
	if err != nil {
		warn("production_countries", err.Error())
	}
	for _, c := range countries {
		set.add(domain.KindCountry, strings.ToUpper(normalization.Text(c.Code)), c.Name, 0, warn)
	}

	languages, err := normalization.DecodeList[normalization.Language](row.Languages)
	if err != nil {
		warn("spoken_languages", err.Error())
	}
	for _, l := range languages {
		set.add(domain.KindLanguage, strings.ToLower(normalization.Text(l.Code)), l.Name, 0, warn)
	}

	return res, warns, nil
}

type entityKey struct {
	kind domain.EntityKind
	key  string
}

// entitySet appends each distinct entity and membership of one movie exactly once.
type entitySet struct {
	res     *MovieResult
	movieID int64
	seen    map[entityKey]struct{}
}

func newEntitySet(res *MovieResult, movieID int64) *entitySet {
	return &entitySet{res: res, movieID: movieID, seen: map[entityKey]struct{}{}}
}

func (s *entitySet) add(kind domain.EntityKind, key, name string, sourceID int64, warn func(field, msg string)) {
	if key == "" {
		warn(string(kind), "entry without a key dropped")
		return
	}
	k := entityKey{kind: kind, key: key}
	if _, dup := s.seen[k]; dup {
		return
	}
	s.seen[k] = struct{}{}
	name = normalization.Text(name)
	if name == "" {
		name = key
	}
	s.res.Entities = append(s.res.Entities, domain.Entity{Kind: kind, Key: key, Name: name, SourceID: sourceID})
	s.res.Memberships = append(s.res.Memberships, domain.Membership{MovieID: s.movieID, Kind: kind, Key: key})
}
