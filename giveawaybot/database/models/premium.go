package models

import "time"

// PremiumLevel bounds what a guild may create. It is an immutable policy
// bundle resolved by the caller (config or entitlement lookup) and handed to
// the giveaway manager per request.
type PremiumLevel struct {
	MaxGiveaways           int
	MaxWinners             int
	MaxTime                time.Duration
	PerChannelMaxGiveaways bool
}
