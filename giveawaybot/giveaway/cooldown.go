package giveaway

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
)

const (
	// FailureCooldown is how long a guild is blocked from creating giveaways
	// after a creation failure.
	FailureCooldown = 30 * time.Second

	// maxTrackedGuilds bounds cooldown memory. Evicting a guild early only
	// lifts its cooldown sooner, it can never extend one.
	maxTrackedGuilds = 1024
)

// CooldownTracker remembers the last creation failure per guild. It is safe
// for concurrent use from command and sweep goroutines.
type CooldownTracker struct {
	window time.Duration
	now    func() time.Time
	cache  *lru.Cache
}

func NewCooldownTracker(window time.Duration) *CooldownTracker {
	cache, _ := lru.New(maxTrackedGuilds)
	return &CooldownTracker{
		window: window,
		now:    time.Now,
		cache:  cache,
	}
}

// OnCooldown reports whether the guild failed a creation within the window.
func (t *CooldownTracker) OnCooldown(guildID snowflake.ID) bool {
	return t.Remaining(guildID) > 0
}

// Remaining returns how much cooldown is left for the guild, zero if none.
func (t *CooldownTracker) Remaining(guildID snowflake.ID) time.Duration {
	v, ok := t.cache.Get(guildID)
	if !ok {
		return 0
	}
	elapsed := t.now().Sub(v.(time.Time))
	if elapsed >= t.window {
		return 0
	}
	return t.window - elapsed
}

// RecordFailure marks the guild as having just failed a creation,
// overwriting any earlier failure.
func (t *CooldownTracker) RecordFailure(guildID snowflake.ID) {
	t.cache.Add(guildID, t.now())
}
