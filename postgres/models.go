package postgres

import (
	"time"

	"github.com/CarolineNkan/safeher-sub001/api"
	"github.com/CarolineNkan/safeher-sub001/safety"
)

// A story represents a safety report in the database.
type story struct {
	ID        string     `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Message   string     `bun:"message,notnull"`
	OwnerRef  string     `bun:"owner_ref,notnull"`
	OwnerKind string     `bun:"owner_kind,notnull"`
	Lat       *float64   `bun:"lat"`
	Lng       *float64   `bun:"lng"`
	CreatedAt time.Time  `bun:",nullzero,default:now()"`
	Reactions []reaction `bun:"rel:has-many,join:id=story_id"`
}

type reaction struct {
	ID        string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	StoryID   string    `bun:",notnull"`
	OwnerRef  string    `bun:"owner_ref,notnull"`
	OwnerKind string    `bun:"owner_kind,notnull"`
	Kind      string    `bun:",notnull"`
	CreatedAt time.Time `bun:",nullzero,default:now()"`
}

func owner(ref, kind string) api.Owner {
	if kind == "user" {
		return api.Owner{UserID: ref}
	}
	return api.Owner{ClientID: ref}
}

func (s story) APIStory() api.Story {
	reactions := make([]api.Reaction, len(s.Reactions))
	var counts safety.ReactionCounts
	for i, r := range s.Reactions {
		reactions[i] = r.APIReaction()
		switch r.Kind {
		case api.ReactionLike:
			counts.Like++
		case api.ReactionHelpful:
			counts.Helpful++
		case api.ReactionNoted:
			counts.Noted++
		}
	}

	return api.Story{
		ID:             s.ID,
		Message:        s.Message,
		Owner:          owner(s.OwnerRef, s.OwnerKind),
		Lat:            s.Lat,
		Lng:            s.Lng,
		CreatedAt:      s.CreatedAt,
		Reactions:      reactions,
		ReactionCounts: counts,
	}
}

func (r reaction) APIReaction() api.Reaction {
	return api.Reaction{
		ID:        r.ID,
		StoryID:   r.StoryID,
		Kind:      r.Kind,
		Owner:     owner(r.OwnerRef, r.OwnerKind),
		CreatedAt: r.CreatedAt,
	}
}
