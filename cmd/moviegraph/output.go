package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/yungbote/moviegraph/internal/domain"
)

// printer renders results either as indented JSON or as aligned text.
type printer struct {
	w    io.Writer
	json bool
}

func (p printer) emit(v any, text func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func (p printer) movies(heading string, movies []domain.MovieSummary) error {
	return p.emit(movies, func(w io.Writer) {
		if len(movies) == 0 {
			fmt.Fprintf(w, "No %s.\n", heading)
			return
		}
		fmt.Fprintf(w, "%s:\n", capitalize(heading))
		for _, m := range movies {
			fmt.Fprintf(w, " - %q\t(%d)\t#%d\n", m.Title, m.Year, m.ID)
		}
	})
}

func (p printer) genres(genres []domain.GenreCount) error {
	return p.emit(genres, func(w io.Writer) {
		if len(genres) == 0 {
			fmt.Fprintln(w, "No genres found.")
			return
		}
		fmt.Fprintln(w, "Top genres by number of movies:")
		for _, g := range genres {
			fmt.Fprintf(w, " - %s:\t%d movies\n", g.Genre, g.Movies)
		}
	})
}

func (p printer) collaborators(pairs []domain.Collaboration) error {
	return p.emit(pairs, func(w io.Writer) {
		if len(pairs) == 0 {
			fmt.Fprintln(w, "No collaborators found.")
			return
		}
		fmt.Fprintln(w, "Most frequent collaborators:")
		for _, c := range pairs {
			fmt.Fprintf(w, " - Actor: %s\tDirector: %s\tCollaborations: %d\n", c.Actor, c.Director, c.Collaborations)
		}
	})
}

func (p printer) cameos(cameos []domain.DirectorCameo) error {
	return p.emit(cameos, func(w io.Writer) {
		if len(cameos) == 0 {
			fmt.Fprintln(w, "No movies found where the director also acted.")
			return
		}
		fmt.Fprintln(w, "Movies where the director also acted:")
		for _, c := range cameos {
			role := c.Character
			if role == "" {
				role = "uncredited"
			}
			fmt.Fprintf(w, " - %q\t(%d)\tby %s\tas %s\n", c.Title, c.Year, c.Director, role)
		}
	})
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
