package transform

import (
	"strconv"
	"strings"

	"github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/normalization"
)

// CreditRow holds the raw cells of one credits-dataset record.
type CreditRow struct {
	Line    int
	MovieID string
	Title   string
	Cast    string
	Crew    string
}

func CreditRowFromFields(line int, get func(col string) string) CreditRow {
	movieID := get("movie_id")
	if movieID == "" {
		movieID = get("id")
	}
	return CreditRow{
		Line:    line,
		MovieID: movieID,
		Title:   get("title"),
		Cast:    get("cast"),
		Crew:    get("crew"),
	}
}

// CreditResult carries the people of one movie and their ACTED_IN and CREW edges.
// Identical edges are not collapsed here; the store's merge suppresses them.
type CreditResult struct {
	MovieID int64
	People  []domain.Person
	Roles   []domain.Role
	Crew    []domain.CrewCredit
}

func TransformCredit(row CreditRow) (*CreditResult, []Warning, error) {
	var warns []Warning
	warn := func(field, msg string) {
		warns = append(warns, Warning{Line: row.Line, Field: field, Message: msg})
	}

	movieID, err := normalization.Int(row.MovieID)
	if err != nil || movieID <= 0 {
		return nil, warns, rejectf("line %d: missing or invalid movie_id %q", row.Line, row.MovieID)
	}

	res := &CreditResult{MovieID: movieID}
	people := map[string]int{}
	addPerson := func(name string, sourceID, gender int64) {
		if i, ok := people[name]; ok {
			p := &res.People[i]
			if p.SourceID == 0 {
				p.SourceID = sourceID
			}
			if p.Gender == 0 {
				p.Gender = gender
			}
			return
		}
		people[name] = len(res.People)
		res.People = append(res.People, domain.Person{Name: name, SourceID: sourceID, Gender: gender})
	}

	cast, err := normalization.DecodeList[normalization.CastMember](row.Cast)
	if err != nil {
		warn("cast", err.Error())
	}
	for i, c := range cast {
		name := normalization.Text(c.Name)
		if name == "" {
			warn("cast", "entry "+strconv.Itoa(i)+" has no name; skipped")
			continue
		}
		addPerson(name, c.ID, c.Gender)
		res.Roles = append(res.Roles, domain.Role{
			Person:    name,
			MovieID:   movieID,
			Character: normalization.Text(c.Character),
			Order:     c.Order,
		})
	}

	crew, err := normalization.DecodeList[normalization.CrewMember](row.Crew)
	if err != nil {
		warn("crew", err.Error())
	}
	for i, c := range crew {
		name := normalization.Text(c.Name)
		if name == "" {
			warn("crew", "entry "+strconv.Itoa(i)+" has no name; skipped")
			continue
		}
		job := CanonicalJob(c.Job)
		if job == "" {
			warn("crew", "entry "+strconv.Itoa(i)+" ("+name+") has no job; skipped")
			continue
		}
		addPerson(name, c.ID, c.Gender)
		res.Crew = append(res.Crew, domain.CrewCredit{
			Person:     name,
			MovieID:    movieID,
			Job:        job,
			Department: normalization.Text(c.Department),
		})
	}

	return res, warns, nil
}

// CanonicalJob trims a crew job and spells every case variant of "director" as
// domain.JobDirector so director queries match one value.
func CanonicalJob(job string) string {
	j := normalization.Text(job)
	if strings.EqualFold(j, domain.JobDirector) {
		return domain.JobDirector
	}
	return j
}
