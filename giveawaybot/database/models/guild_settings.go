package models

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

const (
	DefaultColor = 0x58b9ff
	DefaultEmoji = "🎉"
)

// GuildSettings carries the per-guild giveaway appearance. The coordinator
// only ever reads these; they are written through /gsettings.
type GuildSettings struct {
	bun.BaseModel `bun:"table:guild_settings"`

	GuildID       snowflake.ID `bun:"guild_id,pk"`
	Color         int          `bun:"color,notnull"`
	EmojiName     string       `bun:"emoji_name"`
	EmojiID       snowflake.ID `bun:"emoji_id"`
	EmojiAnimated bool         `bun:"emoji_animated"`
}

// DefaultGuildSettings is what guilds get before they configure anything.
func DefaultGuildSettings(guildID snowflake.ID) GuildSettings {
	return GuildSettings{
		GuildID:   guildID,
		Color:     DefaultColor,
		EmojiName: DefaultEmoji,
	}
}
