package redis

import (
	"time"

	"github.com/CarolineNkan/safeher-sub001/api"
	"github.com/CarolineNkan/safeher-sub001/safety"
)

// A story represents a cached safety report. The cache keeps reaction counts
// rather than individual reaction rows.
type story struct {
	ID        string  `redis:"id"`
	Message   string  `redis:"message"`
	OwnerRef  string  `redis:"owner_ref"`
	OwnerKind string  `redis:"owner_kind"`
	Geotagged bool    `redis:"geotagged"`
	Lat       float64 `redis:"lat"`
	Lng       float64 `redis:"lng"`
	// CreatedAt is stored as unix nanoseconds; hash field scanning does not
	// cover time.Time.
	CreatedAt int64 `redis:"created_at"`
	Like      int   `redis:"like"`
	Helpful   int   `redis:"helpful"`
	Noted     int   `redis:"noted"`
}

func fromAPI(s api.Story) *story {
	m := &story{
		ID:        s.ID,
		Message:   s.Message,
		OwnerRef:  s.Owner.Ref(),
		OwnerKind: s.Owner.Kind(),
		CreatedAt: s.CreatedAt.UnixNano(),
		Like:      s.ReactionCounts.Like,
		Helpful:   s.ReactionCounts.Helpful,
		Noted:     s.ReactionCounts.Noted,
	}
	if s.Lat != nil && s.Lng != nil {
		m.Geotagged = true
		m.Lat = *s.Lat
		m.Lng = *s.Lng
	}
	return m
}

func (s story) APIStory() api.Story {
	out := api.Story{
		ID:        s.ID,
		Message:   s.Message,
		CreatedAt: time.Unix(0, s.CreatedAt).UTC(),
		Reactions: []api.Reaction{},
		ReactionCounts: safety.ReactionCounts{
			Like:    s.Like,
			Helpful: s.Helpful,
			Noted:   s.Noted,
		},
	}
	if s.OwnerKind == "user" {
		out.Owner = api.Owner{UserID: s.OwnerRef}
	} else {
		out.Owner = api.Owner{ClientID: s.OwnerRef}
	}
	if s.Geotagged {
		lat, lng := s.Lat, s.Lng
		out.Lat = &lat
		out.Lng = &lng
	}
	return out
}
