package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/http/response"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

// MovieCatalog is the query and edit surface the movie routes need.
type MovieCatalog interface {
	Counts(ctx context.Context) (domain.GraphCounts, error)
	MoviesByDirector(ctx context.Context, name string) ([]domain.MovieSummary, error)
	MoviesByActors(ctx context.Context, names []string) ([]domain.MovieSummary, error)
	MoviesByGenreSince(ctx context.Context, genre string, minYear int64) ([]domain.MovieSummary, error)
	MoviesByCountry(ctx context.Context, code string) ([]domain.MovieSummary, error)
	TopGenres(ctx context.Context, limit int) ([]domain.GenreCount, error)
	TopCollaborators(ctx context.Context, limit int) ([]domain.Collaboration, error)
	DirectorCameos(ctx context.Context) ([]domain.DirectorCameo, error)
	LinkActor(ctx context.Context, link domain.ActingLink) (domain.LinkResult, error)
	UnlinkActor(ctx context.Context, person string, movieID int64) (domain.UnlinkResult, error)
}

type MovieHandler struct {
	catalog MovieCatalog
	log     *logger.Logger
}

func NewMovieHandler(log *logger.Logger, catalog MovieCatalog) *MovieHandler {
	return &MovieHandler{catalog: catalog, log: log.With("handler", "MovieHandler")}
}

// GET /api/movies/by-director?name=
func (h *MovieHandler) ByDirector(c *gin.Context) {
	movies, err := h.catalog.MoviesByDirector(c.Request.Context(), c.Query("name"))
	if err != nil {
		response.RespondServiceError(c, "query_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"movies": movies})
}

// GET /api/movies/by-actors?actor=A&actor=B (or actors=A,B)
func (h *MovieHandler) ByActors(c *gin.Context) {
	names := c.QueryArray("actor")
	if raw := c.Query("actors"); raw != "" {
		names = append(names, strings.Split(raw, ",")...)
	}
	movies, err := h.catalog.MoviesByActors(c.Request.Context(), names)
	if err != nil {
		response.RespondServiceError(c, "query_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"movies": movies})
}

// GET /api/movies/by-genre?genre=&since=
func (h *MovieHandler) ByGenre(c *gin.Context) {
	since, err := int64Query(c, "since", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_since", err)
		return
	}
	movies, err := h.catalog.MoviesByGenreSince(c.Request.Context(), c.Query("genre"), since)
	if err != nil {
		response.RespondServiceError(c, "query_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"movies": movies})
}

// GET /api/movies/by-country?code=
func (h *MovieHandler) ByCountry(c *gin.Context) {
	movies, err := h.catalog.MoviesByCountry(c.Request.Context(), c.Query("code"))
	if err != nil {
		response.RespondServiceError(c, "query_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"movies": movies})
}

// GET /api/stats/top-genres?limit=
func (h *MovieHandler) TopGenres(c *gin.Context) {
	limit, err := int64Query(c, "limit", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	genres, err := h.catalog.TopGenres(c.Request.Context(), int(limit))
	if err != nil {
		response.RespondServiceError(c, "query_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"genres": genres})
}

// GET /api/stats/top-collaborators?limit=
func (h *MovieHandler) TopCollaborators(c *gin.Context) {
	limit, err := int64Query(c, "limit", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	pairs, err := h.catalog.TopCollaborators(c.Request.Context(), int(limit))
	if err != nil {
		response.RespondServiceError(c, "query_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"collaborations": pairs})
}

// GET /api/stats/director-cameos
func (h *MovieHandler) DirectorCameos(c *gin.Context) {
	cameos, err := h.catalog.DirectorCameos(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "query_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"cameos": cameos})
}

// GET /api/stats/counts
func (h *MovieHandler) Counts(c *gin.Context) {
	counts, err := h.catalog.Counts(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "query_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"counts": counts})
}

type linkActorRequest struct {
	Person    string `json:"person"`
	Character string `json:"character"`
	Order     int64  `json:"order"`
}

// POST /api/movies/:id/cast
func (h *MovieHandler) LinkActor(c *gin.Context) {
	movieID, err := movieIDParam(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_movie_id", err)
		return
	}
	var req linkActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.catalog.LinkActor(c.Request.Context(), domain.ActingLink{
		Person:    req.Person,
		MovieID:   movieID,
		Character: req.Character,
		Order:     req.Order,
	})
	if err != nil {
		response.RespondServiceError(c, "link_failed", err)
		return
	}
	if !res.Linked {
		response.RespondError(c, http.StatusNotFound, "movie_not_found", fmt.Errorf("movie %d not found", movieID))
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"result": res})
}

// DELETE /api/movies/:id/cast/:person
func (h *MovieHandler) UnlinkActor(c *gin.Context) {
	movieID, err := movieIDParam(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_movie_id", err)
		return
	}
	res, err := h.catalog.UnlinkActor(c.Request.Context(), c.Param("person"), movieID)
	if err != nil {
		response.RespondServiceError(c, "unlink_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

func movieIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("movie id must be a positive integer, got %q", c.Param("id"))
	}
	return id, nil
}

func int64Query(c *gin.Context, key string, def int64) (int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}
