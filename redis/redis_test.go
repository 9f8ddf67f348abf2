package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/CarolineNkan/safeher-sub001/api"
	"github.com/CarolineNkan/safeher-sub001/safety"
)

func newTestCache(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	cli := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return &Redis{cli: cli}
}

func TestRedis_insertAndList(t *testing.T) {
	ctx := context.Background()
	r := newTestCache(t)

	lat, lng := 43.6532, -79.3832
	stories := []api.Story{
		{
			ID:        "story-1",
			Message:   "Poor lighting under the bridge",
			Owner:     api.Owner{ClientID: "client-a"},
			Lat:       &lat,
			Lng:       &lng,
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Reactions: []api.Reaction{},
		},
		{
			ID:             "story-2",
			Message:        "Well lit and busy",
			Owner:          api.Owner{UserID: "user-b"},
			CreatedAt:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Reactions:      []api.Reaction{},
			ReactionCounts: safety.ReactionCounts{Like: 3},
		},
	}
	for _, s := range stories {
		if err := r.InsertStory(ctx, s); err != nil {
			t.Fatalf("InsertStory(%s): %v", s.ID, err)
		}
	}

	got, err := r.ListStories(ctx)
	if err != nil {
		t.Fatalf("ListStories(): %v", err)
	}

	// Newest first.
	want := []api.Story{stories[1], stories[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListStories() mismatch (-want +got):\n%s", diff)
	}
}

func TestRedis_BumpReaction(t *testing.T) {
	ctx := context.Background()
	r := newTestCache(t)

	s := api.Story{
		ID:        "story-1",
		Message:   "hello",
		Owner:     api.Owner{ClientID: "client-a"},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Reactions: []api.Reaction{},
	}
	if err := r.InsertStory(ctx, s); err != nil {
		t.Fatal(err)
	}

	if err := r.BumpReaction(ctx, "story-1", api.ReactionHelpful); err != nil {
		t.Fatalf("BumpReaction(): %v", err)
	}
	if err := r.BumpReaction(ctx, "story-1", api.ReactionHelpful); err != nil {
		t.Fatalf("BumpReaction(): %v", err)
	}

	got, err := r.ListStories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ReactionCounts.Helpful != 2 {
		t.Errorf("Got stories %+v, want one story with 2 helpful reactions", got)
	}

	// Bumping an uncached story is a no-op, not an error.
	if err := r.BumpReaction(ctx, "missing", api.ReactionLike); err != nil {
		t.Errorf("BumpReaction on uncached story: %v", err)
	}
}

func TestRedis_UpdateMessage(t *testing.T) {
	ctx := context.Background()
	r := newTestCache(t)

	s := api.Story{
		ID:        "story-1",
		Message:   "original message",
		Owner:     api.Owner{ClientID: "client-a"},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Reactions: []api.Reaction{},
	}
	if err := r.InsertStory(ctx, s); err != nil {
		t.Fatal(err)
	}

	if err := r.UpdateMessage(ctx, "story-1", "edited message"); err != nil {
		t.Fatalf("UpdateMessage(): %v", err)
	}

	got, err := r.ListStories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Message != "edited message" {
		t.Errorf("Got stories %+v, want one story with the edited message", got)
	}

	// Updating an uncached story is a no-op and must not create a key.
	if err := r.UpdateMessage(ctx, "missing", "whatever"); err != nil {
		t.Errorf("UpdateMessage on uncached story: %v", err)
	}
	exists, err := r.cli.Exists(ctx, "stories:missing").Result()
	if err != nil {
		t.Fatal(err)
	}
	if exists != 0 {
		t.Error("UpdateMessage on uncached story created a key")
	}
}

func TestRedis_Delete(t *testing.T) {
	ctx := context.Background()
	r := newTestCache(t)

	for i := 1; i <= 2; i++ {
		s := api.Story{
			ID:        fmt.Sprintf("story-%d", i),
			Message:   "hello",
			Owner:     api.Owner{ClientID: "client-a"},
			CreatedAt: time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
			Reactions: []api.Reaction{},
		}
		if err := r.InsertStory(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.Delete(ctx, "story-1"); err != nil {
		t.Fatalf("Delete(): %v", err)
	}

	got, err := r.ListStories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "story-2" {
		t.Errorf("Got stories %+v, want only story-2", got)
	}

	// Deleting an uncached story is a no-op, not an error.
	if err := r.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete on uncached story: %v", err)
	}
}

func TestRedis_evictsOldest(t *testing.T) {
	ctx := context.Background()
	r := newTestCache(t)

	for i := 0; i < maxSize+3; i++ {
		s := api.Story{
			ID:        fmt.Sprintf("story-%d", i),
			Message:   "hello",
			Owner:     api.Owner{ClientID: "client-a"},
			CreatedAt: time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
			Reactions: []api.Reaction{},
		}
		if err := r.InsertStory(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	got, err := r.ListStories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != maxSize {
		t.Fatalf("Got %d cached stories, want %d", len(got), maxSize)
	}
	// The newest entry survives, the oldest were evicted.
	if got[0].ID != fmt.Sprintf("story-%d", maxSize+2) {
		t.Errorf("Got newest story %s, want story-%d", got[0].ID, maxSize+2)
	}
	for _, s := range got {
		if s.ID == "story-0" || s.ID == "story-1" || s.ID == "story-2" {
			t.Errorf("Story %s should have been evicted", s.ID)
		}
	}
}
