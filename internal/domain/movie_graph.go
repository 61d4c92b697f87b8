package domain

// Relationship types written to the graph.
const (
	RelActedIn    = "ACTED_IN"
	RelCrew       = "CREW"
	RelHasGenre   = "HAS_GENRE"
	RelHasKeyword = "HAS_KEYWORD"
	RelProducedBy = "PRODUCED_BY"
	RelProducedIn = "PRODUCED_IN"
	RelSpokenIn   = "SPOKEN_IN"
)

// JobDirector is the canonical CREW job for directors.
const JobDirector = "Director"

// Node labels.
const (
	LabelMovie  = "Movie"
	LabelPerson = "Person"
)

// EntityKind identifies one of the auxiliary named entities a movie is a member of.
type EntityKind string

const (
	KindGenre    EntityKind = "genre"
	KindKeyword  EntityKind = "keyword"
	KindCompany  EntityKind = "company"
	KindCountry  EntityKind = "country"
	KindLanguage EntityKind = "language"
)

// EntityKinds lists every auxiliary kind in a stable order.
var EntityKinds = []EntityKind{KindGenre, KindKeyword, KindCompany, KindCountry, KindLanguage}

type entitySchema struct {
	label   string
	keyProp string
	rel     string
}

var entitySchemas = map[EntityKind]entitySchema{
	KindGenre:    {label: "Genre", keyProp: "name", rel: RelHasGenre},
	KindKeyword:  {label: "Keyword", keyProp: "name", rel: RelHasKeyword},
	KindCompany:  {label: "Company", keyProp: "name", rel: RelProducedBy},
	KindCountry:  {label: "Country", keyProp: "code", rel: RelProducedIn},
	KindLanguage: {label: "Language", keyProp: "code", rel: RelSpokenIn},
}

// Label is the node label used for the kind.
func (k EntityKind) Label() string { return entitySchemas[k].label }

// KeyProp is the node property holding the natural key.
func (k EntityKind) KeyProp() string { return entitySchemas[k].keyProp }

// Relationship is the Movie->Entity membership edge type.
func (k EntityKind) Relationship() string { return entitySchemas[k].rel }

func (k EntityKind) Valid() bool {
	_, ok := entitySchemas[k]
	return ok
}

// Movie is the canonical movie node. ID is the source movie id and never changes.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	ReleaseYear      int64   `json:"release_year"`
	Overview         string  `json:"overview,omitempty"`
	Tagline          string  `json:"tagline,omitempty"`
	Status           string  `json:"status,omitempty"`
	Homepage         string  `json:"homepage,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Popularity       float64 `json:"popularity"`
	Revenue          int64   `json:"revenue"`
	Budget           int64   `json:"budget"`
	Runtime          int64   `json:"runtime"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
}

// Props is the property map written on merge. The natural key is excluded.
func (m Movie) Props() map[string]any {
	return map[string]any{
		"title":             m.Title,
		"original_title":    m.OriginalTitle,
		"release_date":      m.ReleaseDate,
		"release_year":      m.ReleaseYear,
		"overview":          m.Overview,
		"tagline":           m.Tagline,
		"status":            m.Status,
		"homepage":          m.Homepage,
		"original_language": m.OriginalLanguage,
		"popularity":        m.Popularity,
		"revenue":           m.Revenue,
		"budget":            m.Budget,
		"runtime":           m.Runtime,
		"vote_average":      m.VoteAverage,
		"vote_count":        m.VoteCount,
	}
}

// Person is keyed by name; actor or crew is a property of the edge, not the node.
type Person struct {
	Name     string `json:"name"`
	SourceID int64  `json:"tmdb_id,omitempty"`
	Gender   int64  `json:"gender,omitempty"`
}

func (p Person) Props() map[string]any {
	return map[string]any{
		"tmdb_id": p.SourceID,
		"gender":  p.Gender,
	}
}

// Entity is a genre, keyword, company, country or language node.
type Entity struct {
	Kind     EntityKind `json:"kind"`
	Key      string     `json:"key"`
	Name     string     `json:"name"`
	SourceID int64      `json:"tmdb_id,omitempty"`
}

func (e Entity) Props() map[string]any {
	return map[string]any{
		"name":    e.Name,
		"tmdb_id": e.SourceID,
	}
}

// Membership is an unattributed Movie->Entity edge.
type Membership struct {
	MovieID int64      `json:"movie_id"`
	Kind    EntityKind `json:"kind"`
	Key     string     `json:"key"`
}

// Role is an ACTED_IN edge. Its identity includes Character and Order.
type Role struct {
	Person    string `json:"person"`
	MovieID   int64  `json:"movie_id"`
	Character string `json:"character"`
	Order     int64  `json:"order"`
}

// CrewCredit is a CREW edge, identified by (person, movie, job).
type CrewCredit struct {
	Person     string `json:"person"`
	MovieID    int64  `json:"movie_id"`
	Job        string `json:"job"`
	Department string `json:"department,omitempty"`
}

// Batch is the unit merged atomically by a store: one ingestion chunk.
type Batch struct {
	Movies      []Movie
	People      []Person
	Entities    []Entity
	Memberships []Membership
	Roles       []Role
	Crew        []CrewCredit
}

func (b *Batch) Empty() bool {
	return b == nil || (len(b.Movies) == 0 && len(b.People) == 0 && len(b.Entities) == 0 &&
		len(b.Memberships) == 0 && len(b.Roles) == 0 && len(b.Crew) == 0)
}

// MergeStats reports what a merge changed.
type MergeStats struct {
	NodesCreated         int `json:"nodes_created"`
	RelationshipsCreated int `json:"relationships_created"`
	PropertiesSet        int `json:"properties_set"`
}

func (s *MergeStats) Add(o MergeStats) {
	s.NodesCreated += o.NodesCreated
	s.RelationshipsCreated += o.RelationshipsCreated
	s.PropertiesSet += o.PropertiesSet
}

type GraphCounts struct {
	Nodes         int64 `json:"nodes"`
	Relationships int64 `json:"relationships"`
}

// MovieSummary is the row shape of every movie lookup.
type MovieSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Year  int64  `json:"year"`
}

type GenreCount struct {
	Genre  string `json:"genre"`
	Movies int64  `json:"movie_count"`
}

type Collaboration struct {
	Actor          string `json:"actor"`
	Director       string `json:"director"`
	Collaborations int64  `json:"collaborations"`
}

// DirectorCameo is a movie in which its director also holds an acting role.
type DirectorCameo struct {
	MovieID   int64  `json:"movie_id"`
	Title     string `json:"title"`
	Year      int64  `json:"year"`
	Director  string `json:"director"`
	Character string `json:"character"`
}

// ActingLink is the request for a single ACTED_IN edge edit.
type ActingLink struct {
	Person    string `json:"person"`
	MovieID   int64  `json:"movie_id"`
	Character string `json:"character"`
	Order     int64  `json:"order"`
}

// LinkResult: Linked is false when the movie does not exist; Created is false when
// the edge was already present.
type LinkResult struct {
	Linked  bool `json:"linked"`
	Created bool `json:"created"`
}

type UnlinkResult struct {
	Removed int64 `json:"removed"`
}
