package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

type SettingsRepository interface {
	// Get never fails a render over missing settings: unknown guilds get the
	// defaults.
	Get(ctx context.Context, guildID snowflake.ID) (models.GuildSettings, error)
	Set(ctx context.Context, settings models.GuildSettings) error
}

type settingsRepository struct {
	db *bun.DB
}

func NewSettingsRepository(db *bun.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, guildID snowflake.ID) (models.GuildSettings, error) {
	var settings models.GuildSettings
	err := r.db.NewSelect().
		Model(&settings).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultGuildSettings(guildID), nil
	}
	if err != nil {
		return models.DefaultGuildSettings(guildID), fmt.Errorf("failed to get guild settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepository) Set(ctx context.Context, settings models.GuildSettings) error {
	_, err := r.db.NewInsert().
		Model(&settings).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("color = EXCLUDED.color").
		Set("emoji_name = EXCLUDED.emoji_name").
		Set("emoji_id = EXCLUDED.emoji_id").
		Set("emoji_animated = EXCLUDED.emoji_animated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set guild settings: %w", err)
	}
	return nil
}
