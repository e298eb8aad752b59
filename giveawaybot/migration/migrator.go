package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultBatchSize = 500

// Migrator copies legacy giveaway data out of the old MongoDB database into
// Postgres. It is a one-shot tool run behind the -migrate flag; conflicting
// rows are skipped so reruns are safe.
type Migrator struct {
	pg        *bun.DB
	client    *mongo.Client
	db        *mongo.Database
	batchSize int
}

type legacyUser struct {
	ID       int64  `bson:"_id"`
	Username string `bson:"username"`
	Avatar   string `bson:"avatar"`
}

type legacyGiveaway struct {
	MessageID   int64   `bson:"_id"`
	ChannelID   int64   `bson:"channelId"`
	GuildID     int64   `bson:"guildId"`
	UserID      int64   `bson:"userId"`
	End         int64   `bson:"end"`
	Winners     int     `bson:"winners"`
	Prize       string  `bson:"prize"`
	Description string  `bson:"description"`
	Entries     []int64 `bson:"entries"`
}

type legacySettings struct {
	GuildID int64  `bson:"_id"`
	Color   int    `bson:"color"`
	Emoji   string `bson:"emoji"`
}

func NewMigrator(ctx context.Context, pg *bun.DB, uri string, database string) (*Migrator, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &Migrator{
		pg:        pg,
		client:    client,
		db:        client.Database(database),
		batchSize: defaultBatchSize,
	}, nil
}

func (m *Migrator) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Migrator) MigrateAll(ctx context.Context) error {
	start := time.Now()

	if err := m.migrateUsers(ctx); err != nil {
		return fmt.Errorf("user migration failed: %w", err)
	}
	if err := m.migrateSettings(ctx); err != nil {
		return fmt.Errorf("settings migration failed: %w", err)
	}
	if err := m.migrateGiveaways(ctx); err != nil {
		return fmt.Errorf("giveaway migration failed: %w", err)
	}

	slog.Info("Legacy migration finished",
		slog.String("type", "db"),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (m *Migrator) migrateUsers(ctx context.Context) error {
	cursor, err := m.db.Collection("users").Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var batch []models.CachedUser
	var total int
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := m.pg.NewInsert().
			Model(&batch).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		total += len(batch)
		batch = batch[:0]
		return err
	}

	for cursor.Next(ctx) {
		var legacy legacyUser
		if err := cursor.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy user", slog.Any("error", err))
			continue
		}
		batch = append(batch, models.CachedUser{
			ID:        snowflake.ID(legacy.ID),
			Username:  legacy.Username,
			Avatar:    legacy.Avatar,
			UpdatedAt: time.Now(),
		})
		if len(batch) >= m.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	slog.Info("Migrated legacy users", slog.String("type", "db"), slog.Int("count", total))
	return nil
}

func (m *Migrator) migrateSettings(ctx context.Context) error {
	cursor, err := m.db.Collection("settings").Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var total int
	for cursor.Next(ctx) {
		var legacy legacySettings
		if err := cursor.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy settings", slog.Any("error", err))
			continue
		}
		settings := models.GuildSettings{
			GuildID:   snowflake.ID(legacy.GuildID),
			Color:     legacy.Color,
			EmojiName: legacy.Emoji,
		}
		if settings.Color == 0 {
			settings.Color = models.DefaultColor
		}
		if settings.EmojiName == "" {
			settings.EmojiName = models.DefaultEmoji
		}
		if _, err := m.pg.NewInsert().
			Model(&settings).
			On("CONFLICT (guild_id) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
		total++
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	slog.Info("Migrated legacy guild settings", slog.String("type", "db"), slog.Int("count", total))
	return nil
}

func (m *Migrator) migrateGiveaways(ctx context.Context) error {
	cursor, err := m.db.Collection("giveaways").Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var giveaways, entries int
	for cursor.Next(ctx) {
		var legacy legacyGiveaway
		if err := cursor.Decode(&legacy); err != nil {
			slog.Warn("Skipping undecodable legacy giveaway", slog.Any("error", err))
			continue
		}

		giveaway := models.Giveaway{
			MessageID:   snowflake.ID(legacy.MessageID),
			GuildID:     snowflake.ID(legacy.GuildID),
			ChannelID:   snowflake.ID(legacy.ChannelID),
			HostID:      snowflake.ID(legacy.UserID),
			EndTime:     time.Unix(legacy.End, 0),
			NumWinners:  legacy.Winners,
			Prize:       legacy.Prize,
			Description: legacy.Description,
			CreatedAt:   time.Now(),
		}
		if _, err := m.pg.NewInsert().
			Model(&giveaway).
			On("CONFLICT (message_id) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
		giveaways++

		for i := 0; i < len(legacy.Entries); i += m.batchSize {
			end := min(i+m.batchSize, len(legacy.Entries))
			batch := make([]models.GiveawayEntry, 0, end-i)
			for _, userID := range legacy.Entries[i:end] {
				batch = append(batch, models.GiveawayEntry{
					GiveawayID: giveaway.MessageID,
					UserID:     snowflake.ID(userID),
					CreatedAt:  time.Now(),
				})
			}
			if _, err := m.pg.NewInsert().
				Model(&batch).
				On("CONFLICT DO NOTHING").
				Exec(ctx); err != nil {
				return err
			}
			entries += len(batch)
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	slog.Info("Migrated legacy giveaways",
		slog.String("type", "db"),
		slog.Int("giveaways", giveaways),
		slog.Int("entries", entries))
	return nil
}
