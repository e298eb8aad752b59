package giveaway

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func newTestTracker(base time.Time) (*CooldownTracker, *time.Time) {
	clock := base
	tracker := NewCooldownTracker(FailureCooldown)
	tracker.now = func() time.Time { return clock }
	return tracker, &clock
}

func TestCooldownTracker_NoFailure(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	if tracker.OnCooldown(snowflake.ID(100)) {
		t.Fatal("guild with no failures should not be on cooldown")
	}
	if got := tracker.Remaining(snowflake.ID(100)); got != 0 {
		t.Fatalf("Remaining = %s, want 0", got)
	}
}

func TestCooldownTracker_Window(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker, clock := newTestTracker(base)
	guildID := snowflake.ID(100)

	tracker.RecordFailure(guildID)

	tests := []struct {
		name          string
		at            time.Time
		wantCooldown  bool
		wantRemaining time.Duration
	}{
		{name: "immediately after", at: base, wantCooldown: true, wantRemaining: 30 * time.Second},
		{name: "mid window", at: base.Add(12 * time.Second), wantCooldown: true, wantRemaining: 18 * time.Second},
		{name: "last instant", at: base.Add(30*time.Second - time.Nanosecond), wantCooldown: true, wantRemaining: time.Nanosecond},
		{name: "exactly expired", at: base.Add(30 * time.Second), wantCooldown: false, wantRemaining: 0},
		{name: "long after", at: base.Add(time.Hour), wantCooldown: false, wantRemaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*clock = tt.at
			if got := tracker.OnCooldown(guildID); got != tt.wantCooldown {
				t.Errorf("OnCooldown = %v, want %v", got, tt.wantCooldown)
			}
			if got := tracker.Remaining(guildID); got != tt.wantRemaining {
				t.Errorf("Remaining = %s, want %s", got, tt.wantRemaining)
			}
		})
	}
}

func TestCooldownTracker_FailureResetsWindow(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker, clock := newTestTracker(base)
	guildID := snowflake.ID(100)

	tracker.RecordFailure(guildID)
	*clock = base.Add(20 * time.Second)
	tracker.RecordFailure(guildID)

	*clock = base.Add(40 * time.Second)
	if !tracker.OnCooldown(guildID) {
		t.Fatal("second failure should have restarted the window")
	}
	if got := tracker.Remaining(guildID); got != 10*time.Second {
		t.Fatalf("Remaining = %s, want 10s", got)
	}
}

func TestCooldownTracker_PerGuild(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	tracker.RecordFailure(snowflake.ID(100))
	if tracker.OnCooldown(snowflake.ID(200)) {
		t.Fatal("cooldown leaked across guilds")
	}
}
