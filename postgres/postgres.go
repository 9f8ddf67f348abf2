package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/CarolineNkan/safeher-sub001/api"
	"github.com/CarolineNkan/safeher-sub001/safety"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and pings it to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// ListStories returns stories ordered by creation time descending, each with
// its reactions loaded.
func (pg *Postgres) ListStories(ctx context.Context, limit, offset int, excludeStoryIDs ...string) ([]api.Story, error) {
	var stories []story
	q := pg.bun.NewSelect().
		Model(&stories).
		Relation("Reactions").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)

	if len(excludeStoryIDs) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(excludeStoryIDs))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]api.Story, len(stories))
	for i, s := range stories {
		out[i] = s.APIStory()
	}

	return out, nil
}

// ListGeotagged returns every story that carries coordinates. Used by the
// community-signal aggregator, which ignores unlocated stories.
func (pg *Postgres) ListGeotagged(ctx context.Context) ([]api.Story, error) {
	var stories []story
	err := pg.bun.NewSelect().
		Model(&stories).
		Where("lat IS NOT NULL").
		Where("lng IS NOT NULL").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]api.Story, len(stories))
	for i, s := range stories {
		out[i] = s.APIStory()
	}
	return out, nil
}

// InsertStory inserts a story into the database. The returned story holds
// auto generated fields, such as the story id.
func (pg *Postgres) InsertStory(ctx context.Context, s api.Story) (api.Story, error) {
	m := &story{
		Message:   s.Message,
		OwnerRef:  s.Owner.Ref(),
		OwnerKind: s.Owner.Kind(),
		Lat:       s.Lat,
		Lng:       s.Lng,
	}
	if _, err := pg.bun.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
		return api.Story{}, fmt.Errorf("insert: %w", err)
	}
	return m.APIStory(), nil
}

// UpdateStoryMessage updates the message of a story owned by ownerRef and
// reports the number of rows affected. Zero means not found or not owned.
func (pg *Postgres) UpdateStoryMessage(ctx context.Context, id, ownerRef, message string) (int64, error) {
	res, err := pg.bun.NewUpdate().
		Model((*story)(nil)).
		Set("message = ?", message).
		Where("id = ?", id).
		Where("owner_ref = ?", ownerRef).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// DeleteStory deletes a story owned by ownerRef along with its reactions and
// reports the number of stories affected.
func (pg *Postgres) DeleteStory(ctx context.Context, id, ownerRef string) (int64, error) {
	var affected int64
	err := pg.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*story)(nil)).
			Where("id = ?", id).
			Where("owner_ref = ?", ownerRef).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete story: %w", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			// Nothing deleted, leave reactions untouched.
			return nil
		}
		if _, err := tx.NewDelete().
			Model((*reaction)(nil)).
			Where("story_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete reactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// UpsertReaction records a reaction, keeping at most one row per
// (story, owner, kind). The returned bool reports whether a new row was
// inserted; false means the reaction already existed.
func (pg *Postgres) UpsertReaction(ctx context.Context, r api.Reaction) (api.Reaction, bool, error) {
	m := &reaction{
		StoryID:   r.StoryID,
		OwnerRef:  r.Owner.Ref(),
		OwnerKind: r.Owner.Kind(),
		Kind:      r.Kind,
	}
	res, err := pg.bun.NewInsert().
		Model(m).
		On("CONFLICT (story_id, owner_ref, kind) DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return api.Reaction{}, false, fmt.Errorf("insert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return api.Reaction{}, false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Conflict: fetch the existing row so the response is complete.
		var existing reaction
		err := pg.bun.NewSelect().
			Model(&existing).
			Where("story_id = ?", m.StoryID).
			Where("owner_ref = ?", m.OwnerRef).
			Where("kind = ?", m.Kind).
			Scan(ctx)
		if err != nil {
			return api.Reaction{}, false, fmt.Errorf("select existing: %w", err)
		}
		return existing.APIReaction(), false, nil
	}
	return m.APIReaction(), true, nil
}

// ReactionCounts aggregates reactions on a story by kind on the store side.
func (pg *Postgres) ReactionCounts(ctx context.Context, storyID string) (safety.ReactionCounts, error) {
	var rows []struct {
		Kind  string `bun:"kind"`
		Count int    `bun:"count"`
	}
	err := pg.bun.NewSelect().
		Model((*reaction)(nil)).
		ColumnExpr("kind").
		ColumnExpr("count(*) AS count").
		Where("story_id = ?", storyID).
		Group("kind").
		Scan(ctx, &rows)
	if err != nil {
		return safety.ReactionCounts{}, fmt.Errorf("scan: %w", err)
	}

	var counts safety.ReactionCounts
	for _, row := range rows {
		switch row.Kind {
		case api.ReactionLike:
			counts.Like = row.Count
		case api.ReactionHelpful:
			counts.Helpful = row.Count
		case api.ReactionNoted:
			counts.Noted = row.Count
		}
	}
	return counts, nil
}
