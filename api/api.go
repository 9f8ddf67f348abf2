package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/CarolineNkan/safeher-sub001/ai"
	"github.com/CarolineNkan/safeher-sub001/api/validator"
	"github.com/CarolineNkan/safeher-sub001/directions"
	"github.com/CarolineNkan/safeher-sub001/safety"
)

// A DB provides a storage layer that persists stories and reactions.
type DB interface {
	ListStories(ctx context.Context, limit int, offset int, excludeStoryIDs ...string) ([]Story, error)
	ListGeotagged(ctx context.Context) ([]Story, error)
	InsertStory(ctx context.Context, story Story) (Story, error)
	UpdateStoryMessage(ctx context.Context, id, ownerRef, message string) (int64, error)
	DeleteStory(ctx context.Context, id, ownerRef string) (int64, error)
	UpsertReaction(ctx context.Context, reaction Reaction) (Reaction, bool, error)
	ReactionCounts(ctx context.Context, storyID string) (safety.ReactionCounts, error)
}

// A Cache provides a storage layer that caches recent stories. Mutations on
// the store must be mirrored here so cache-first listings stay consistent.
type Cache interface {
	ListStories(ctx context.Context) ([]Story, error)
	InsertStory(ctx context.Context, story Story) error
	UpdateMessage(ctx context.Context, storyID, message string) error
	Delete(ctx context.Context, storyID string) error
	BumpReaction(ctx context.Context, storyID, kind string) error
}

// An AIScorer produces a route safety score from the language-model service.
type AIScorer interface {
	ScoreRoute(ctx context.Context, in ai.RouteInput) (safety.RouteScore, error)
}

// A Directions service resolves a walking route between two points.
type Directions interface {
	Route(ctx context.Context, start, end safety.Coordinate) (directions.Route, error)
}

// API provides the REST endpoints for the application.
type API struct {
	Logger     *slog.Logger
	DB         DB
	Cache      Cache
	AI         AIScorer
	Directions Directions
	Val        *validator.Validator

	// Now is the clock used for time-of-day heuristics. Defaults to time.Now.
	Now func() time.Time

	once sync.Once
	mux  *http.ServeMux
}

// pageSize defines the default number of items displayed on a single page in pagination.
var pageSize = 10

// defaultStart is used when a safety-score request carries neither a GPS fix
// nor a home location.
var defaultStart = safety.Coordinate{Lat: 43.6532, Lng: -79.3832}

// walkingSpeedMps estimates duration when the directions service is down.
const walkingSpeedMps = 1.4

func (a *API) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /stories", a.listStories)
	mux.HandleFunc("POST /stories", a.createStory)
	mux.HandleFunc("POST /stories/{storyID}/update", a.updateStory)
	mux.HandleFunc("POST /stories/{storyID}/delete", a.deleteStory)
	mux.HandleFunc("POST /stories/{storyID}/react", a.reactToStory)
	mux.HandleFunc("POST /route-score", a.routeScore)
	mux.HandleFunc("POST /stories-safety-score", a.storiesSafetyScore)

	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	requestID := uuid.NewString()
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path, "request_id", requestID)
	defer func() {
		if rec := recover(); rec != nil {
			a.Logger.Error("Handler panicked", "panic", rec, "request_id", requestID)
			a.respond(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
	}()
	a.mux.ServeHTTP(w, r)
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	a.Logger.Error("Error", "error", err.Error())
	a.respond(w, status, response{Error: msg})
}

func (a *API) validateBody(w http.ResponseWriter, s interface{}) bool {
	errs := a.Val.ValidateStruct(s)
	type response struct {
		Errors []validator.ValidationError `json:"errors"`
	}

	if len(errs) > 0 {
		a.respond(w, http.StatusBadRequest, &response{
			Errors: errs,
		})
		return false
	}
	return true
}

// requireOwner rejects requests with no identity at all. Returns false when a
// response has already been written.
func (a *API) requireOwner(w http.ResponseWriter, o Owner) bool {
	if o.Empty() {
		a.respondError(w, http.StatusUnauthorized, fmt.Errorf("no owner reference supplied"), "A client_id or user_id is required")
		return false
	}
	return true
}

func (a *API) listStories(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Stories []Story `json:"stories"`
	}

	page := 1

	// Get recent stories from cache
	stories, err := a.Cache.ListStories(r.Context())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list stories")
		return
	}
	a.Logger.Info("Got stories from cache", "count", len(stories))

	// Get any remaining stories from DB
	storyIDs := make([]string, len(stories))
	for i, s := range stories {
		storyIDs[i] = s.ID
	}

	dbStories, err := a.DB.ListStories(r.Context(), pageSize, pageSize*(page-1), storyIDs...)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list stories")
		return
	}

	a.Logger.Info("Got remaining stories from DB", "count", len(dbStories))
	stories = append(stories, dbStories...)

	a.respond(w, http.StatusOK, response{Stories: stories})
}

func (a *API) createStory(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Message  string   `json:"message" validate:"required"`
		ClientID string   `json:"client_id"`
		UserID   string   `json:"user_id"`
		Lat      *float64 `json:"lat" validate:"omitempty,latitude"`
		Lng      *float64 `json:"lng" validate:"omitempty,longitude"`
	}

	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}
	defer r.Body.Close()

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	owner := Owner{ClientID: body.ClientID, UserID: body.UserID}
	if !a.requireOwner(w, owner) {
		return
	}

	if (body.Lat == nil) != (body.Lng == nil) {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("partial coordinates"), "lat and lng must be supplied together")
		return
	}

	story, err := a.DB.InsertStory(r.Context(), Story{
		Message:   body.Message,
		Owner:     owner,
		Lat:       body.Lat,
		Lng:       body.Lng,
		CreatedAt: time.Now(),
	})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not insert story")
		return
	}

	if err := a.Cache.InsertStory(r.Context(), story); err != nil {
		a.Logger.Error("Could not cache story", "error", err.Error())
	}

	a.respond(w, http.StatusCreated, story)
}

func (a *API) updateStory(w http.ResponseWriter, r *http.Request) {
	type (
		request struct {
			Message  string `json:"message" validate:"required"`
			ClientID string `json:"client_id"`
			UserID   string `json:"user_id"`
		}
		response struct {
			StoryID string `json:"story_id"`
			Message string `json:"message"`
		}
	)

	storyID := r.PathValue("storyID")
	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}
	defer r.Body.Close()

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	owner := Owner{ClientID: body.ClientID, UserID: body.UserID}
	if !a.requireOwner(w, owner) {
		return
	}

	affected, err := a.DB.UpdateStoryMessage(r.Context(), storyID, owner.Ref(), body.Message)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not update story")
		return
	}
	if affected == 0 {
		a.respondError(w, http.StatusForbidden, fmt.Errorf("story %s not found or not owned by %s", storyID, owner.Kind()), "Story not found or you do not own it")
		return
	}

	if err := a.Cache.UpdateMessage(r.Context(), storyID, body.Message); err != nil {
		a.Logger.Error("Could not update cached story", "error", err.Error())
	}

	a.respond(w, http.StatusOK, response{StoryID: storyID, Message: body.Message})
}

func (a *API) deleteStory(w http.ResponseWriter, r *http.Request) {
	type (
		request struct {
			ClientID string `json:"client_id"`
			UserID   string `json:"user_id"`
		}
		response struct {
			StoryID string `json:"story_id"`
			Deleted bool   `json:"deleted"`
		}
	)

	storyID := r.PathValue("storyID")
	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}
	defer r.Body.Close()

	owner := Owner{ClientID: body.ClientID, UserID: body.UserID}
	if !a.requireOwner(w, owner) {
		return
	}

	affected, err := a.DB.DeleteStory(r.Context(), storyID, owner.Ref())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not delete story")
		return
	}
	if affected == 0 {
		a.respondError(w, http.StatusForbidden, fmt.Errorf("story %s not found or not owned by %s", storyID, owner.Kind()), "Story not found or you do not own it")
		return
	}

	if err := a.Cache.Delete(r.Context(), storyID); err != nil {
		a.Logger.Error("Could not evict deleted story from cache", "error", err.Error())
	}

	a.respond(w, http.StatusOK, response{StoryID: storyID, Deleted: true})
}

func (a *API) reactToStory(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Kind     string `json:"kind" validate:"required,oneof=like helpful noted"`
		ClientID string `json:"client_id"`
		UserID   string `json:"user_id"`
	}

	storyID := r.PathValue("storyID")
	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}
	defer r.Body.Close()

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	owner := Owner{ClientID: body.ClientID, UserID: body.UserID}
	if !a.requireOwner(w, owner) {
		return
	}

	reaction, inserted, err := a.DB.UpsertReaction(r.Context(), Reaction{
		StoryID:   storyID,
		Kind:      body.Kind,
		Owner:     owner,
		CreatedAt: time.Now(),
	})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, fmt.Sprintf("could not record reaction for story with id %s", storyID))
		return
	}

	// Repeated reactions of the same kind are collapsed, so only a fresh
	// insert bumps the cached counts.
	if inserted {
		if err := a.Cache.BumpReaction(r.Context(), storyID, body.Kind); err != nil {
			a.Logger.Error("Could not bump cached reaction count", "error", err.Error())
		}
	}

	a.respond(w, http.StatusCreated, reaction)
}

func (a *API) routeScore(w http.ResponseWriter, r *http.Request) {
	type (
		storySummary struct {
			Message        string                `json:"message"`
			ReactionCounts safety.ReactionCounts `json:"reaction_counts"`
		}
		request struct {
			Start   *safety.Coordinate `json:"start" validate:"required"`
			End     *safety.Coordinate `json:"end" validate:"required"`
			Stories []storySummary     `json:"stories"`
		}
	)

	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}
	defer r.Body.Close()

	if valid := a.validateBody(w, &body); !valid {
		return
	}
	if !a.validCoordinate(w, *body.Start) || !a.validCoordinate(w, *body.End) {
		return
	}

	// Resolve the route. A directions outage degrades to a straight-line
	// estimate rather than failing the request.
	route, err := a.Directions.Route(r.Context(), *body.Start, *body.End)
	if err != nil {
		a.Logger.Error("Directions lookup failed, estimating route", "error", err.Error())
		route.DistanceMeters = safety.Distance(*body.Start, *body.End) * 1000
		route.DurationSeconds = route.DistanceMeters / walkingSpeedMps
	}

	in := ai.RouteInput{
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
	}
	for _, s := range body.Stories {
		in.Stories = append(in.Stories, ai.StorySummary{Message: s.Message, Counts: s.ReactionCounts})
	}

	if a.AI != nil {
		score, err := a.AI.ScoreRoute(r.Context(), in)
		if err == nil {
			a.respond(w, http.StatusOK, score)
			return
		}
		a.Logger.Error("AI scoring unavailable, using fallback", "error", err.Error())
	}

	a.respond(w, http.StatusOK, safety.FallbackScore(route.DistanceMeters, route.DurationSeconds))
}

func (a *API) storiesSafetyScore(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Destination string             `json:"destination" validate:"required"`
		GPSStart    *safety.Coordinate `json:"gps_start"`
		HomeStart   *safety.Coordinate `json:"home_start"`
	}

	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}
	defer r.Body.Close()

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	start := resolveStart(body.GPSStart, body.HomeStart)

	stories, err := a.DB.ListGeotagged(r.Context())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not load stories")
		return
	}

	// One aggregation call per story, in parallel; results re-join by index.
	signals := make([]safety.StorySignal, len(stories))
	g, ctx := errgroup.WithContext(r.Context())
	for i, story := range stories {
		i, story := i, story
		g.Go(func() error {
			counts, err := a.DB.ReactionCounts(ctx, story.ID)
			if err != nil {
				return fmt.Errorf("reaction counts for story %s: %w", story.ID, err)
			}
			signals[i] = safety.StorySignal{Coord: story.Coordinate(), Counts: counts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not aggregate community signals")
		return
	}

	sig := safety.AggregateSignals(start.Coordinate, signals)
	score, level := safety.CommunityScore(sig)

	explanation := "No community reports near your start, so the score reflects the neutral baseline."
	if sig.NearbyCount > 0 {
		reports := "reports"
		if sig.NearbyCount == 1 {
			reports = "report"
		}
		explanation = fmt.Sprintf("%d community %s within 1.2 km of your start lowered the score by %d points.",
			sig.NearbyCount, reports, sig.Penalty())
	}

	a.respond(w, http.StatusOK, SafetyContext{
		Destination: body.Destination,
		Start:       start,
		Score:       score,
		RiskLevel:   level,
		Signals:     safety.ContextSignals(a.now().Hour(), sig.NearbyCount),
		Explanation: explanation,
	})
}

func (a *API) validCoordinate(w http.ResponseWriter, c safety.Coordinate) bool {
	if errs := a.Val.Validate(c.Lat, "latitude"); len(errs) > 0 {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("latitude %v out of range", c.Lat), "Invalid latitude")
		return false
	}
	if errs := a.Val.Validate(c.Lng, "longitude"); len(errs) > 0 {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("longitude %v out of range", c.Lng), "Invalid longitude")
		return false
	}
	return true
}

func resolveStart(gps, home *safety.Coordinate) ResolvedStart {
	switch {
	case gps != nil:
		return ResolvedStart{Coordinate: *gps, Source: "gps"}
	case home != nil:
		return ResolvedStart{Coordinate: *home, Source: "home"}
	default:
		return ResolvedStart{Coordinate: defaultStart, Source: "default"}
	}
}
