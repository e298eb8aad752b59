package models

import (
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// CachedUser is a snapshot of a Discord user taken the last time they
// interacted with the bot. It is what ends up in summary artifacts, so the
// json tags define the public summary format.
type CachedUser struct {
	bun.BaseModel `bun:"table:cached_users" json:"-"`

	ID        snowflake.ID `bun:"id,pk" json:"id"`
	Username  string       `bun:"username,notnull" json:"username"`
	Avatar    string       `bun:"avatar" json:"avatar,omitempty"`
	UpdatedAt time.Time    `bun:"updated_at,notnull,default:current_timestamp" json:"-"`
}

func (u CachedUser) Mention() string {
	return "<@" + u.ID.String() + ">"
}

// NewCachedUser snapshots a Discord user for storage.
func NewCachedUser(user discord.User) CachedUser {
	var avatar string
	if user.Avatar != nil {
		avatar = *user.Avatar
	}
	return CachedUser{
		ID:       user.ID,
		Username: user.Username,
		Avatar:   avatar,
	}
}
