package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	GetByID(ctx context.Context, messageID snowflake.ID) (*models.Giveaway, error)
	GetEndingBefore(ctx context.Context, t time.Time) ([]*models.Giveaway, error)
	GetActiveByGuild(ctx context.Context, guildID snowflake.ID) ([]*models.Giveaway, error)
	// DeleteReturning removes the giveaway from the active set and reports
	// whether this call was the one that removed it. The row count of the
	// delete is the claim: with overlapping sweeps only one caller sees true.
	DeleteReturning(ctx context.Context, messageID snowflake.ID) (bool, error)
	CountByGuild(ctx context.Context, guildID snowflake.ID) (int, error)
	CountByChannel(ctx context.Context, channelID snowflake.ID) (int, error)
	AddEntry(ctx context.Context, giveawayID snowflake.ID, userID snowflake.ID) (bool, error)
	GetEntries(ctx context.Context, giveawayID snowflake.ID) ([]models.CachedUser, error)
	CountEntries(ctx context.Context, giveawayID snowflake.ID) (int, error)
}

type giveawayRepository struct {
	db *bun.DB
}

func NewGiveawayRepository(db *bun.DB) GiveawayRepository {
	return &giveawayRepository{db: db}
}

func (r *giveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	giveaway.CreatedAt = time.Now()

	_, err := r.db.NewInsert().Model(giveaway).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create giveaway: %w", err)
	}
	return nil
}

func (r *giveawayRepository) GetByID(ctx context.Context, messageID snowflake.ID) (*models.Giveaway, error) {
	giveaway := new(models.Giveaway)
	err := r.db.NewSelect().
		Model(giveaway).
		Where("message_id = ?", messageID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	return giveaway, nil
}

func (r *giveawayRepository) GetEndingBefore(ctx context.Context, t time.Time) ([]*models.Giveaway, error) {
	var giveaways []*models.Giveaway
	err := r.db.NewSelect().
		Model(&giveaways).
		Where("end_time <= ?", t).
		Order("end_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired giveaways: %w", err)
	}
	return giveaways, nil
}

func (r *giveawayRepository) GetActiveByGuild(ctx context.Context, guildID snowflake.ID) ([]*models.Giveaway, error) {
	var giveaways []*models.Giveaway
	err := r.db.NewSelect().
		Model(&giveaways).
		Where("guild_id = ?", guildID).
		Order("end_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild giveaways: %w", err)
	}
	return giveaways, nil
}

func (r *giveawayRepository) DeleteReturning(ctx context.Context, messageID snowflake.ID) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*models.Giveaway)(nil)).
		Where("message_id = ?", messageID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete giveaway: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return rows > 0, nil
}

func (r *giveawayRepository) CountByGuild(ctx context.Context, guildID snowflake.ID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Giveaway)(nil)).
		Where("guild_id = ?", guildID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count guild giveaways: %w", err)
	}
	return count, nil
}

func (r *giveawayRepository) CountByChannel(ctx context.Context, channelID snowflake.ID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Giveaway)(nil)).
		Where("channel_id = ?", channelID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count channel giveaways: %w", err)
	}
	return count, nil
}

func (r *giveawayRepository) AddEntry(ctx context.Context, giveawayID snowflake.ID, userID snowflake.ID) (bool, error) {
	entry := &models.GiveawayEntry{
		GiveawayID: giveawayID,
		UserID:     userID,
		CreatedAt:  time.Now(),
	}
	res, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to add entry: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return rows > 0, nil
}

func (r *giveawayRepository) GetEntries(ctx context.Context, giveawayID snowflake.ID) ([]models.CachedUser, error) {
	var users []models.CachedUser
	err := r.db.NewSelect().
		Model(&users).
		Join("JOIN giveaway_entries AS ge ON ge.user_id = cached_user.id").
		Where("ge.giveaway_id = ?", giveawayID).
		Order("ge.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	return users, nil
}

func (r *giveawayRepository) CountEntries(ctx context.Context, giveawayID snowflake.ID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.GiveawayEntry)(nil)).
		Where("giveaway_id = ?", giveawayID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}
