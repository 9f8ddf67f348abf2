package api

import (
	"time"

	"github.com/CarolineNkan/safeher-sub001/safety"
)

// An Owner identifies who may mutate a story or who attributed a reaction:
// either an anonymous client-generated identifier or an authenticated user id.
// When both are supplied the authenticated identity wins.
type Owner struct {
	ClientID string `json:"client_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// Ref returns the identifier used for ownership checks.
func (o Owner) Ref() string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.ClientID
}

// Kind reports how the owner identified themselves.
func (o Owner) Kind() string {
	if o.UserID != "" {
		return "user"
	}
	return "anonymous"
}

// Empty reports whether no identity was supplied at all.
func (o Owner) Empty() bool {
	return o.ClientID == "" && o.UserID == ""
}

// A Story represents a persisted safety report. Lat and Lng are either both
// set or both nil.
type Story struct {
	ID             string                `json:"id"`
	Message        string                `json:"message"`
	Owner          Owner                 `json:"owner"`
	Lat            *float64              `json:"lat,omitempty"`
	Lng            *float64              `json:"lng,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	Reactions      []Reaction            `json:"reactions"`
	ReactionCounts safety.ReactionCounts `json:"reaction_counts"`
}

// Coordinate returns the story's location, or nil when it is not geotagged.
func (s Story) Coordinate() *safety.Coordinate {
	if s.Lat == nil || s.Lng == nil {
		return nil
	}
	return &safety.Coordinate{Lat: *s.Lat, Lng: *s.Lng}
}

// A Reaction is a typed endorsement attached to a story. At most one reaction
// per (story, owner, kind) is kept.
type Reaction struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"story_id"`
	Kind      string    `json:"kind"`
	Owner     Owner     `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// Reaction kinds accepted by the react endpoint.
const (
	ReactionLike    = "like"
	ReactionHelpful = "helpful"
	ReactionNoted   = "noted"
)

// A ResolvedStart is a start location tagged with where it came from.
type ResolvedStart struct {
	safety.Coordinate
	Source string `json:"source"` // "gps", "home" or "default"
}

// A SafetyContext is the response of the stories-safety-score endpoint.
type SafetyContext struct {
	Destination string                 `json:"destination"`
	Start       ResolvedStart          `json:"start"`
	Score       int                    `json:"score"`
	RiskLevel   string                 `json:"risk_level"`
	Signals     []safety.ContextSignal `json:"signals"`
	Explanation string                 `json:"explanation"`
}
