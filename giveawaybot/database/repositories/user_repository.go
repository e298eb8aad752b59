package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	// Get returns the cached snapshot for a user, or a bare snapshot carrying
	// only the id when the user was never seen.
	Get(ctx context.Context, userID snowflake.ID) (models.CachedUser, error)
	Upsert(ctx context.Context, user models.CachedUser) error
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, userID snowflake.ID) (models.CachedUser, error) {
	var user models.CachedUser
	err := r.db.NewSelect().
		Model(&user).
		Where("id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CachedUser{ID: userID}, nil
	}
	if err != nil {
		return models.CachedUser{ID: userID}, fmt.Errorf("failed to get cached user: %w", err)
	}
	return user, nil
}

func (r *userRepository) Upsert(ctx context.Context, user models.CachedUser) error {
	user.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(&user).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("avatar = EXCLUDED.avatar").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert cached user: %w", err)
	}
	return nil
}
