package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// Giveaway is an active, time-boxed prize draw. Its primary key is the id of
// the Discord message carrying the giveaway embed, which means it has no
// identity until the message was successfully posted.
type Giveaway struct {
	bun.BaseModel `bun:"table:giveaways"`

	MessageID   snowflake.ID `bun:"message_id,pk"`
	GuildID     snowflake.ID `bun:"guild_id,notnull"`
	ChannelID   snowflake.ID `bun:"channel_id,notnull"`
	HostID      snowflake.ID `bun:"host_id,notnull"`
	EndTime     time.Time    `bun:"end_time,notnull"`
	NumWinners  int          `bun:"num_winners,notnull"`
	Prize       string       `bun:"prize,notnull"`
	Description string       `bun:"description"`
	CreatedAt   time.Time    `bun:"created_at,notnull,default:current_timestamp"`
}

// GiveawayEntry records that a user pressed the enter button on a giveaway.
type GiveawayEntry struct {
	bun.BaseModel `bun:"table:giveaway_entries"`

	GiveawayID snowflake.ID `bun:"giveaway_id,pk"`
	UserID     snowflake.ID `bun:"user_id,pk"`
	CreatedAt  time.Time    `bun:"created_at,notnull,default:current_timestamp"`
}
