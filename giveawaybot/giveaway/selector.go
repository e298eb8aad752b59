package giveaway

import (
	"math/rand"

	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
)

// SelectWinners draws up to count distinct winners from entrants, uniformly
// at random without replacement. Fewer entrants than requested winners is
// fine, everyone just wins.
//
// It runs a partial Fisher-Yates shuffle: only the first count positions are
// settled, which keeps the draw O(count) swaps while still giving every
// k-subset the same probability. The input slice is not modified.
func SelectWinners(entrants []models.CachedUser, count int, rng *rand.Rand) []models.CachedUser {
	if count <= 0 || len(entrants) == 0 {
		return nil
	}

	pool := make([]models.CachedUser, len(entrants))
	copy(pool, entrants)

	if count > len(pool) {
		count = len(pool)
	}
	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}
