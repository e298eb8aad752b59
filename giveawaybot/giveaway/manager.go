package giveaway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/repositories"
	"github.com/disgoorg/giveaway-bot/giveawaybot/utils"
	"github.com/disgoorg/snowflake/v2"
)

const (
	MinimumDuration = 10 * time.Second
	MaxPrizeLength  = 250
	MaxDescrLength  = 1000
	summaryFilename = "giveaway_summary.json"
)

// MessageClient is the slice of the Discord transport the manager needs.
// The production implementation wraps disgo's rest client; tests swap in a
// recorder.
type MessageClient interface {
	Post(ctx context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error)
	Edit(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, message discord.MessageUpdate) (*discord.Message, error)
}

// Uploader stores a summary artifact and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, body []byte, filename string) (string, error)
}

// Manager drives the giveaway lifecycle: the validation gate before
// creation, posting and persisting new giveaways, and finalizing expired
// ones off the sweeper.
type Manager struct {
	giveaways  repositories.GiveawayRepository
	users      repositories.UserRepository
	settings   repositories.SettingsRepository
	client     MessageClient
	uploader   Uploader
	cooldowns  *CooldownTracker
	summaryURL string

	now func() time.Time

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewManager(
	giveaways repositories.GiveawayRepository,
	users repositories.UserRepository,
	settings repositories.SettingsRepository,
	client MessageClient,
	uploader Uploader,
	summaryURL string,
) *Manager {
	return &Manager{
		giveaways:  giveaways,
		users:      users,
		settings:   settings,
		client:     client,
		uploader:   uploader,
		cooldowns:  NewCooldownTracker(FailureCooldown),
		summaryURL: summaryURL,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Cooldowns exposes the tracker for status commands.
func (m *Manager) Cooldowns() *CooldownTracker {
	return m.cooldowns
}

// CheckAvailability verifies the guild may create another giveaway right
// now. It has no side effects and can be called any number of times.
func (m *Manager) CheckAvailability(ctx context.Context, guildID snowflake.ID, channelID snowflake.ID, level models.PremiumLevel) error {
	if remaining := m.cooldowns.Remaining(guildID); remaining > 0 {
		return newError(CodeCooldownActive, remaining.Round(time.Second), FailureCooldown)
	}

	var (
		count int
		err   error
	)
	if level.PerChannelMaxGiveaways {
		count, err = m.giveaways.CountByChannel(ctx, channelID)
	} else {
		count, err = m.giveaways.CountByGuild(ctx, guildID)
	}
	if err != nil {
		return err
	}
	if count >= level.MaxGiveaways {
		return newError(CodeQuotaExceeded, count, level.MaxGiveaways)
	}
	return nil
}

// Construct validates raw command input and returns an unpersisted giveaway
// ending at now + the parsed duration. No side effects.
func (m *Manager) Construct(hostID snowflake.ID, timeText string, winnersText string, prize string, description string, level models.PremiumLevel) (*models.Giveaway, error) {
	duration, err := utils.ParseDuration(timeText)
	if err != nil {
		return nil, newError(CodeInvalidTimeFormat, timeText, nil)
	}
	if duration < MinimumDuration {
		return nil, newError(CodeTimeBelowMinimum, duration, MinimumDuration)
	}
	if duration > level.MaxTime {
		return nil, newError(CodeTimeAboveMaximum, duration, level.MaxTime)
	}

	numWinners, err := strconv.Atoi(strings.TrimSpace(winnersText))
	if err != nil {
		return nil, newError(CodeInvalidWinnersFormat, winnersText, nil)
	}
	if numWinners < 1 || numWinners > level.MaxWinners {
		return nil, newError(CodeWinnersOutOfRange, numWinners, level.MaxWinners)
	}

	if utf8.RuneCountInString(prize) > MaxPrizeLength {
		return nil, newError(CodePrizeTooLong, utf8.RuneCountInString(prize), MaxPrizeLength)
	}
	if utf8.RuneCountInString(description) > MaxDescrLength {
		return nil, newError(CodeDescriptionTooLong, utf8.RuneCountInString(description), MaxDescrLength)
	}

	return &models.Giveaway{
		HostID:      hostID,
		EndTime:     m.now().Add(duration),
		NumWinners:  numWinners,
		Prize:       prize,
		Description: description,
	}, nil
}

// Send posts the giveaway message and persists the giveaway under the new
// message id. This is the only path that makes a giveaway live. A transport
// failure puts the guild on cooldown before being surfaced.
func (m *Manager) Send(ctx context.Context, giveaway *models.Giveaway, guildID snowflake.ID, channelID snowflake.ID) (snowflake.ID, error) {
	giveaway.GuildID = guildID
	giveaway.ChannelID = channelID

	settings, err := m.settings.Get(ctx, guildID)
	if err != nil {
		slog.Warn("Falling back to default guild settings",
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err))
	}

	message := RenderMessage(giveaway, settings, RenderState{EntryCount: 0})
	posted, err := m.client.Post(ctx, channelID, message)
	if err != nil {
		m.cooldowns.RecordFailure(guildID)
		if errors.Is(err, ErrMissingPermissions) {
			return 0, newError(CodeBotLacksPermissions, nil, nil)
		}
		slog.Error("Failed to post giveaway message",
			slog.String("guild_id", guildID.String()),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
		return 0, newError(CodeCreationFailed, nil, nil)
	}

	giveaway.MessageID = posted.ID
	if err := m.giveaways.Create(ctx, giveaway); err != nil {
		m.cooldowns.RecordFailure(guildID)
		slog.Error("Failed to persist giveaway",
			slog.String("guild_id", guildID.String()),
			slog.String("message_id", posted.ID.String()),
			slog.Any("error", err))
		return 0, newError(CodeCreationFailed, nil, nil)
	}
	return giveaway.MessageID, nil
}

// End finalizes an expired giveaway: fetch entries, claim the row, draw
// winners, upload the summary, rewrite the original message and announce.
// It never returns an error because nothing upstream could handle one; the
// sweeper only logs the boolean outcome.
func (m *Manager) End(ctx context.Context, giveaway *models.Giveaway) bool {
	entries, err := m.giveaways.GetEntries(ctx, giveaway.MessageID)
	if err != nil {
		slog.Error("Failed to fetch giveaway entries",
			slog.String("message_id", giveaway.MessageID.String()),
			slog.Any("error", err))
		return false
	}

	claimed, err := m.giveaways.DeleteReturning(ctx, giveaway.MessageID)
	if err != nil {
		slog.Error("Failed to remove giveaway",
			slog.String("message_id", giveaway.MessageID.String()),
			slog.Any("error", err))
		return false
	}
	if !claimed {
		// Another sweep tick got here first.
		return true
	}

	winners := m.drawWinners(entries, giveaway.NumWinners)

	host, err := m.users.Get(ctx, giveaway.HostID)
	if err != nil {
		slog.Warn("Failed to fetch host snapshot",
			slog.String("message_id", giveaway.MessageID.String()),
			slog.Any("error", err))
	}

	summaryKey := m.uploadSummary(ctx, giveaway, host, entries, winners)

	settings, err := m.settings.Get(ctx, giveaway.GuildID)
	if err != nil {
		slog.Warn("Falling back to default guild settings",
			slog.String("guild_id", giveaway.GuildID.String()),
			slog.Any("error", err))
	}

	ok := true
	update := RenderUpdate(giveaway, settings, RenderState{
		EntryCount: len(entries),
		Ended:      true,
		Winners:    winners,
		SummaryKey: summaryKey,
		SummaryURL: m.summaryURL,
	})
	if _, err := m.client.Edit(ctx, giveaway.ChannelID, giveaway.MessageID, update); err != nil {
		slog.Error("Failed to edit giveaway message",
			slog.String("message_id", giveaway.MessageID.String()),
			slog.Any("error", err))
		ok = false
	}

	if _, err := m.client.Post(ctx, giveaway.ChannelID, RenderWinnerMessage(giveaway, winners)); err != nil {
		slog.Error("Failed to post winner announcement",
			slog.String("message_id", giveaway.MessageID.String()),
			slog.Any("error", err))
		ok = false
	}
	return ok
}

func (m *Manager) drawWinners(entries []models.CachedUser, count int) []models.CachedUser {
	m.randMu.Lock()
	defer m.randMu.Unlock()
	return SelectWinners(entries, count, m.rng)
}

// summary is the uploaded record of a concluded giveaway.
type summary struct {
	Giveaway summaryGiveaway     `json:"giveaway"`
	Winners  []models.CachedUser `json:"winners"`
	Entries  []models.CachedUser `json:"entries"`
}

type summaryGiveaway struct {
	ID         string            `json:"id"`
	Prize      string            `json:"prize"`
	NumWinners int               `json:"num_winners"`
	Host       models.CachedUser `json:"host"`
	End        time.Time         `json:"end"`
}

func (m *Manager) uploadSummary(ctx context.Context, giveaway *models.Giveaway, host models.CachedUser, entries []models.CachedUser, winners []models.CachedUser) string {
	if entries == nil {
		entries = []models.CachedUser{}
	}
	if winners == nil {
		winners = []models.CachedUser{}
	}
	body, err := json.Marshal(summary{
		Giveaway: summaryGiveaway{
			ID:         giveaway.MessageID.String(),
			Prize:      giveaway.Prize,
			NumWinners: giveaway.NumWinners,
			Host:       host,
			End:        giveaway.EndTime,
		},
		Winners: winners,
		Entries: entries,
	})
	if err != nil {
		slog.Error("Failed to marshal giveaway summary",
			slog.String("message_id", giveaway.MessageID.String()),
			slog.Any("error", err))
		return ""
	}

	url, err := m.uploader.Upload(ctx, body, summaryFilename)
	if err != nil {
		slog.Error("Failed to upload giveaway summary",
			slog.String("message_id", giveaway.MessageID.String()),
			slog.Any("error", err))
		return ""
	}
	return SummaryKey(url)
}

var summaryKeyPattern = regexp.MustCompile(`.*/(\d+/\d+)/.*`)

// SummaryKey derives the public summary reference from the upload location:
// the two numeric path segments in front of the filename. An empty key means
// the final message carries no summary link.
func SummaryKey(url string) string {
	match := summaryKeyPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}
