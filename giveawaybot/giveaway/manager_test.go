package giveaway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGiveawayRepo struct {
	mu sync.Mutex

	created      []*models.Giveaway
	createErr    error
	entries      []models.CachedUser
	entriesErr   error
	deleteCalls  int
	deleteClaim  bool
	deleteErr    error
	guildCount   int
	channelCount int
	due          []*models.Giveaway
}

func (r *fakeGiveawayRepo) Create(_ context.Context, giveaway *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, giveaway)
	return nil
}

func (r *fakeGiveawayRepo) GetByID(context.Context, snowflake.ID) (*models.Giveaway, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeGiveawayRepo) GetEndingBefore(context.Context, time.Time) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	due := r.due
	r.due = nil
	return due, nil
}

func (r *fakeGiveawayRepo) GetActiveByGuild(context.Context, snowflake.ID) ([]*models.Giveaway, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeGiveawayRepo) DeleteReturning(context.Context, snowflake.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	return r.deleteClaim, r.deleteErr
}

func (r *fakeGiveawayRepo) CountByGuild(context.Context, snowflake.ID) (int, error) {
	return r.guildCount, nil
}

func (r *fakeGiveawayRepo) CountByChannel(context.Context, snowflake.ID) (int, error) {
	return r.channelCount, nil
}

func (r *fakeGiveawayRepo) AddEntry(context.Context, snowflake.ID, snowflake.ID) (bool, error) {
	return false, errors.New("not implemented")
}

func (r *fakeGiveawayRepo) GetEntries(context.Context, snowflake.ID) ([]models.CachedUser, error) {
	return r.entries, r.entriesErr
}

func (r *fakeGiveawayRepo) CountEntries(context.Context, snowflake.ID) (int, error) {
	return len(r.entries), nil
}

type fakeUserRepo struct {
	users map[snowflake.ID]models.CachedUser
}

func (r *fakeUserRepo) Get(_ context.Context, userID snowflake.ID) (models.CachedUser, error) {
	if user, ok := r.users[userID]; ok {
		return user, nil
	}
	return models.CachedUser{ID: userID}, nil
}

func (r *fakeUserRepo) Upsert(context.Context, models.CachedUser) error {
	return nil
}

type fakeSettingsRepo struct{}

func (r *fakeSettingsRepo) Get(_ context.Context, guildID snowflake.ID) (models.GuildSettings, error) {
	return models.DefaultGuildSettings(guildID), nil
}

func (r *fakeSettingsRepo) Set(context.Context, models.GuildSettings) error {
	return nil
}

type postedMessage struct {
	channelID snowflake.ID
	message   discord.MessageCreate
}

type editedMessage struct {
	channelID snowflake.ID
	messageID snowflake.ID
	message   discord.MessageUpdate
}

type fakeMessageClient struct {
	nextID  snowflake.ID
	postErr error
	editErr error
	posted  []postedMessage
	edited  []editedMessage
}

func (c *fakeMessageClient) Post(_ context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error) {
	if c.postErr != nil {
		return nil, c.postErr
	}
	c.posted = append(c.posted, postedMessage{channelID: channelID, message: message})
	return &discord.Message{ID: c.nextID}, nil
}

func (c *fakeMessageClient) Edit(_ context.Context, channelID snowflake.ID, messageID snowflake.ID, message discord.MessageUpdate) (*discord.Message, error) {
	if c.editErr != nil {
		return nil, c.editErr
	}
	c.edited = append(c.edited, editedMessage{channelID: channelID, messageID: messageID, message: message})
	return &discord.Message{ID: messageID}, nil
}

type fakeUploader struct {
	url      string
	err      error
	uploaded [][]byte
}

func (u *fakeUploader) Upload(_ context.Context, body []byte, _ string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.uploaded = append(u.uploaded, body)
	return u.url, nil
}

type managerFixture struct {
	manager  *Manager
	repo     *fakeGiveawayRepo
	users    *fakeUserRepo
	client   *fakeMessageClient
	uploader *fakeUploader
	now      time.Time
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	repo := &fakeGiveawayRepo{deleteClaim: true}
	users := &fakeUserRepo{users: map[snowflake.ID]models.CachedUser{}}
	client := &fakeMessageClient{nextID: snowflake.ID(9000)}
	uploader := &fakeUploader{url: "https://bucket.nyc3.digitaloceanspaces.com/summaries/1717243200000/42/giveaway_summary.json"}

	m := NewManager(repo, users, &fakeSettingsRepo{}, client, uploader, "https://giveawaybot.party/summary")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	m.cooldowns.now = m.now
	m.rng = rand.New(rand.NewSource(1))

	return &managerFixture{manager: m, repo: repo, users: users, client: client, uploader: uploader, now: now}
}

func testLevel() models.PremiumLevel {
	return models.PremiumLevel{
		MaxGiveaways: 5,
		MaxWinners:   5,
		MaxTime:      14 * 24 * time.Hour,
	}
}

func TestManager_Construct(t *testing.T) {
	tests := []struct {
		name        string
		timeText    string
		winnersText string
		prize       string
		description string
		wantCode    Code
	}{
		{name: "valid", timeText: "30s", winnersText: "2", prize: "Nitro"},
		{name: "valid verbose duration", timeText: "1 hour and 30 minutes", winnersText: "1", prize: "Nitro"},
		{name: "unparseable time", timeText: "abc", winnersText: "1", prize: "Nitro", wantCode: CodeInvalidTimeFormat},
		{name: "below minimum", timeText: "5s", winnersText: "1", prize: "Nitro", wantCode: CodeTimeBelowMinimum},
		{name: "above level maximum", timeText: "15d", winnersText: "1", prize: "Nitro", wantCode: CodeTimeAboveMaximum},
		{name: "unparseable winners", timeText: "30s", winnersText: "two", prize: "Nitro", wantCode: CodeInvalidWinnersFormat},
		{name: "zero winners", timeText: "30s", winnersText: "0", prize: "Nitro", wantCode: CodeWinnersOutOfRange},
		{name: "too many winners", timeText: "30s", winnersText: "10", prize: "Nitro", wantCode: CodeWinnersOutOfRange},
		{name: "prize too long", timeText: "30s", winnersText: "1", prize: strings.Repeat("x", 251), wantCode: CodePrizeTooLong},
		{name: "prize at limit", timeText: "30s", winnersText: "1", prize: strings.Repeat("x", 250)},
		{name: "description too long", timeText: "30s", winnersText: "1", prize: "Nitro", description: strings.Repeat("x", 1001), wantCode: CodeDescriptionTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newManagerFixture(t)

			g, err := f.manager.Construct(snowflake.ID(444), tt.timeText, tt.winnersText, tt.prize, tt.description, testLevel())
			if tt.wantCode != "" {
				require.Error(t, err)
				gerr, ok := AsError(err)
				require.True(t, ok, "error should be a giveaway error, got %v", err)
				assert.Equal(t, tt.wantCode, gerr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, snowflake.ID(444), g.HostID)
			assert.Equal(t, tt.prize, g.Prize)
			assert.True(t, g.EndTime.After(f.now), "end time must be in the future")
		})
	}
}

func TestManager_Construct_EndTime(t *testing.T) {
	f := newManagerFixture(t)

	g, err := f.manager.Construct(snowflake.ID(444), "2h30m", "1", "Nitro", "", testLevel())
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(2*time.Hour+30*time.Minute), g.EndTime)
}

func TestManager_CheckAvailability(t *testing.T) {
	guildID := snowflake.ID(222)
	channelID := snowflake.ID(333)

	t.Run("available", func(t *testing.T) {
		f := newManagerFixture(t)
		f.repo.guildCount = 4

		require.NoError(t, f.manager.CheckAvailability(context.Background(), guildID, channelID, testLevel()))
	})

	t.Run("guild quota reached", func(t *testing.T) {
		f := newManagerFixture(t)
		f.repo.guildCount = 5

		err := f.manager.CheckAvailability(context.Background(), guildID, channelID, testLevel())
		gerr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeQuotaExceeded, gerr.Code)
	})

	t.Run("per channel quota", func(t *testing.T) {
		f := newManagerFixture(t)
		f.repo.guildCount = 10
		f.repo.channelCount = 2
		level := testLevel()
		level.PerChannelMaxGiveaways = true

		require.NoError(t, f.manager.CheckAvailability(context.Background(), guildID, channelID, level))
	})

	t.Run("cooldown blocks creation", func(t *testing.T) {
		f := newManagerFixture(t)
		f.manager.cooldowns.RecordFailure(guildID)

		err := f.manager.CheckAvailability(context.Background(), guildID, channelID, testLevel())
		gerr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeCooldownActive, gerr.Code)
		assert.Equal(t, 30*time.Second, gerr.Value)
	})
}

func TestManager_Send(t *testing.T) {
	guildID := snowflake.ID(222)
	channelID := snowflake.ID(333)

	t.Run("posts then persists", func(t *testing.T) {
		f := newManagerFixture(t)
		g, err := f.manager.Construct(snowflake.ID(444), "30s", "2", "Nitro", "", testLevel())
		require.NoError(t, err)

		messageID, err := f.manager.Send(context.Background(), g, guildID, channelID)
		require.NoError(t, err)
		assert.Equal(t, snowflake.ID(9000), messageID)
		assert.Equal(t, snowflake.ID(9000), g.MessageID)
		assert.Equal(t, guildID, g.GuildID)
		assert.Equal(t, channelID, g.ChannelID)

		require.Len(t, f.client.posted, 1)
		assert.Equal(t, channelID, f.client.posted[0].channelID)
		require.Len(t, f.repo.created, 1)
		assert.Same(t, g, f.repo.created[0])
		assert.False(t, f.manager.cooldowns.OnCooldown(guildID))
	})

	t.Run("missing permissions", func(t *testing.T) {
		f := newManagerFixture(t)
		f.client.postErr = fmt.Errorf("%w: Missing Permissions", ErrMissingPermissions)
		g, err := f.manager.Construct(snowflake.ID(444), "30s", "2", "Nitro", "", testLevel())
		require.NoError(t, err)

		_, err = f.manager.Send(context.Background(), g, guildID, channelID)
		gerr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeBotLacksPermissions, gerr.Code)
		assert.True(t, f.manager.cooldowns.OnCooldown(guildID), "transport failure must start the cooldown")
		assert.Empty(t, f.repo.created)
	})

	t.Run("transport failure", func(t *testing.T) {
		f := newManagerFixture(t)
		f.client.postErr = errors.New("connection reset")
		g, err := f.manager.Construct(snowflake.ID(444), "30s", "2", "Nitro", "", testLevel())
		require.NoError(t, err)

		_, err = f.manager.Send(context.Background(), g, guildID, channelID)
		gerr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeCreationFailed, gerr.Code)
		assert.True(t, f.manager.cooldowns.OnCooldown(guildID))
	})

	t.Run("persist failure", func(t *testing.T) {
		f := newManagerFixture(t)
		f.repo.createErr = errors.New("database down")
		g, err := f.manager.Construct(snowflake.ID(444), "30s", "2", "Nitro", "", testLevel())
		require.NoError(t, err)

		_, err = f.manager.Send(context.Background(), g, guildID, channelID)
		gerr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeCreationFailed, gerr.Code)
		assert.True(t, f.manager.cooldowns.OnCooldown(guildID))
	})
}

func endedGiveaway() *models.Giveaway {
	return &models.Giveaway{
		MessageID:  snowflake.ID(111),
		GuildID:    snowflake.ID(222),
		ChannelID:  snowflake.ID(333),
		HostID:     snowflake.ID(444),
		EndTime:    time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
		NumWinners: 2,
		Prize:      "Nitro",
	}
}

func TestManager_End(t *testing.T) {
	f := newManagerFixture(t)
	f.repo.entries = []models.CachedUser{
		{ID: snowflake.ID(1), Username: "alice"},
		{ID: snowflake.ID(2), Username: "bob"},
		{ID: snowflake.ID(3), Username: "carol"},
	}
	f.users.users[snowflake.ID(444)] = models.CachedUser{ID: snowflake.ID(444), Username: "host"}
	g := endedGiveaway()

	require.True(t, f.manager.End(context.Background(), g))
	assert.Equal(t, 1, f.repo.deleteCalls)

	// The uploaded summary lists every entrant and the drawn winners.
	require.Len(t, f.uploader.uploaded, 1)
	var uploaded struct {
		Giveaway struct {
			ID         string            `json:"id"`
			Prize      string            `json:"prize"`
			NumWinners int               `json:"num_winners"`
			Host       models.CachedUser `json:"host"`
		} `json:"giveaway"`
		Winners []models.CachedUser `json:"winners"`
		Entries []models.CachedUser `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(f.uploader.uploaded[0], &uploaded))
	assert.Equal(t, "111", uploaded.Giveaway.ID)
	assert.Equal(t, "Nitro", uploaded.Giveaway.Prize)
	assert.Equal(t, 2, uploaded.Giveaway.NumWinners)
	assert.Equal(t, "host", uploaded.Giveaway.Host.Username)
	assert.Len(t, uploaded.Entries, 3)
	require.Len(t, uploaded.Winners, 2)

	entrantIDs := map[snowflake.ID]bool{1: true, 2: true, 3: true}
	assert.True(t, entrantIDs[uploaded.Winners[0].ID])
	assert.True(t, entrantIDs[uploaded.Winners[1].ID])
	assert.NotEqual(t, uploaded.Winners[0].ID, uploaded.Winners[1].ID)

	// The original message is rewritten into the ended view with the
	// summary link.
	require.Len(t, f.client.edited, 1)
	edit := f.client.edited[0]
	assert.Equal(t, g.ChannelID, edit.channelID)
	assert.Equal(t, g.MessageID, edit.messageID)
	require.NotNil(t, edit.message.Embeds)
	assert.Equal(t, EndedColor, (*edit.message.Embeds)[0].Color)
	require.NotNil(t, edit.message.Components)
	require.Len(t, *edit.message.Components, 1)

	// The announcement mentions exactly the drawn winners.
	require.Len(t, f.client.posted, 1)
	announcement := f.client.posted[0].message
	for _, w := range uploaded.Winners {
		assert.Contains(t, announcement.Content, w.Mention())
	}
	require.NotNil(t, announcement.MessageReference)
	assert.Equal(t, g.MessageID, *announcement.MessageReference.MessageID)
}

func TestManager_End_AlreadyClaimed(t *testing.T) {
	f := newManagerFixture(t)
	f.repo.deleteClaim = false
	f.repo.entries = []models.CachedUser{{ID: snowflake.ID(1)}}

	require.True(t, f.manager.End(context.Background(), endedGiveaway()))
	assert.Empty(t, f.client.edited, "a lost claim must not touch the message")
	assert.Empty(t, f.client.posted)
	assert.Empty(t, f.uploader.uploaded)
}

func TestManager_End_NoEntries(t *testing.T) {
	f := newManagerFixture(t)

	require.True(t, f.manager.End(context.Background(), endedGiveaway()))

	require.Len(t, f.uploader.uploaded, 1)
	var uploaded struct {
		Winners []models.CachedUser `json:"winners"`
		Entries []models.CachedUser `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(f.uploader.uploaded[0], &uploaded))
	assert.NotNil(t, uploaded.Winners)
	assert.NotNil(t, uploaded.Entries)
	assert.Empty(t, uploaded.Winners)

	require.Len(t, f.client.posted, 1)
	assert.Equal(t, "No valid entries, a winner could not be determined!", f.client.posted[0].message.Content)
}

func TestManager_End_EntriesFetchFails(t *testing.T) {
	f := newManagerFixture(t)
	f.repo.entriesErr = errors.New("database down")

	require.False(t, f.manager.End(context.Background(), endedGiveaway()))
	assert.Zero(t, f.repo.deleteCalls, "the row must stay claimable for the next sweep")
}

func TestManager_End_EditFailureStillAnnounces(t *testing.T) {
	f := newManagerFixture(t)
	f.repo.entries = []models.CachedUser{{ID: snowflake.ID(1), Username: "alice"}}
	f.client.editErr = errors.New("message deleted")

	require.False(t, f.manager.End(context.Background(), endedGiveaway()))
	assert.Len(t, f.client.posted, 1, "the announcement still goes out when the edit fails")
}

func TestManager_End_FailedUploadDropsSummaryLink(t *testing.T) {
	f := newManagerFixture(t)
	f.repo.entries = []models.CachedUser{{ID: snowflake.ID(1), Username: "alice"}}
	f.uploader.err = errors.New("spaces unreachable")

	require.True(t, f.manager.End(context.Background(), endedGiveaway()))

	require.Len(t, f.client.edited, 1)
	require.NotNil(t, f.client.edited[0].message.Components)
	assert.Empty(t, *f.client.edited[0].message.Components, "no summary link without an upload")
}
