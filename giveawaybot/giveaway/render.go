package giveaway

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/giveaway-bot/giveawaybot/database/models"
)

const (
	// EnterButtonID routes enter-button presses to the component handler.
	EnterButtonID = "/enter-giveaway"

	// EndedColor is the fixed neutral accent used once a giveaway is over.
	EndedColor = 0x2F3136

	noEntriesNotice = "*No entries*"
)

// RenderState is everything about a giveaway that is not stored on the
// giveaway row itself: the live entry count and, once it ended, the draw
// outcome and the uploaded summary reference.
type RenderState struct {
	EntryCount int
	Ended      bool
	Winners    []models.CachedUser
	SummaryKey string
	SummaryURL string
}

// RenderGiveaway builds the embed and components for a giveaway message.
// The same function renders the pending and the ended view; the two only
// differ in wording, accent color and which single component is attached.
func RenderGiveaway(g *models.Giveaway, settings models.GuildSettings, state RenderState) (discord.Embed, []discord.ContainerComponent) {
	var body strings.Builder
	if g.Description != "" {
		body.WriteString(g.Description)
		body.WriteString("\n\n")
	}

	verb := "Ends"
	if state.Ended {
		verb = "Ended"
	}
	ts := g.EndTime.Unix()
	fmt.Fprintf(&body, "%s: <t:%d:R> (<t:%d:f>)", verb, ts, ts)
	fmt.Fprintf(&body, "\nHosted by: <@%s>", g.HostID)
	fmt.Fprintf(&body, "\nEntries: **%d**", state.EntryCount)
	switch {
	case !state.Ended:
		fmt.Fprintf(&body, "\nWinners: **%d**", g.NumWinners)
	case len(state.Winners) == 0:
		body.WriteString("\nWinners: " + noEntriesNotice)
	default:
		body.WriteString("\nWinners: " + RenderWinners(state.Winners))
	}

	color := settings.Color
	if state.Ended {
		color = EndedColor
	}

	embed := discord.Embed{
		Title:       g.Prize,
		Description: body.String(),
		Color:       color,
		Timestamp:   &g.EndTime,
	}

	var components []discord.ContainerComponent
	switch {
	case !state.Ended:
		components = append(components, discord.NewActionRow(
			discord.ButtonComponent{
				Style:    discord.ButtonStylePrimary,
				CustomID: EnterButtonID,
				Emoji: &discord.ComponentEmoji{
					ID:       settings.EmojiID,
					Name:     settings.EmojiName,
					Animated: settings.EmojiAnimated,
				},
			},
		))
	case state.SummaryKey != "":
		components = append(components, discord.NewActionRow(
			discord.NewLinkButton("Giveaway Summary", state.SummaryURL+"#giveaway="+state.SummaryKey),
		))
	}
	return embed, components
}

// RenderMessage renders the giveaway as a new message payload.
func RenderMessage(g *models.Giveaway, settings models.GuildSettings, state RenderState) discord.MessageCreate {
	embed, components := RenderGiveaway(g, settings, state)
	return discord.MessageCreate{
		Embeds:     []discord.Embed{embed},
		Components: components,
	}
}

// RenderUpdate renders the giveaway as an edit of the original message.
// Components are always set so a leftover enter button gets cleared even
// when no summary link replaces it.
func RenderUpdate(g *models.Giveaway, settings models.GuildSettings, state RenderState) discord.MessageUpdate {
	embed, components := RenderGiveaway(g, settings, state)
	if components == nil {
		components = []discord.ContainerComponent{}
	}
	return discord.MessageUpdate{
		Embeds:     &[]discord.Embed{embed},
		Components: &components,
	}
}

// RenderWinnerMessage builds the follow-up announcement posted under the
// giveaway once it ended. Mention scope is restricted to user mentions so a
// prize like "@everyone gets nothing" cannot ping the guild.
func RenderWinnerMessage(g *models.Giveaway, winners []models.CachedUser) discord.MessageCreate {
	var content string
	if len(winners) == 0 {
		content = "No valid entries, a winner could not be determined!"
	} else {
		content = fmt.Sprintf("Congratulations %s! You won the **%s**!", RenderWinners(winners), g.Prize)
	}
	return discord.MessageCreate{
		Content: content,
		MessageReference: &discord.MessageReference{
			MessageID: &g.MessageID,
		},
		AllowedMentions: &discord.AllowedMentions{
			Parse: []discord.AllowedMentionType{discord.AllowedMentionTypeUsers},
		},
	}
}

// RenderWinners joins winner mentions with commas.
func RenderWinners(winners []models.CachedUser) string {
	mentions := make([]string, len(winners))
	for i, w := range winners {
		mentions[i] = w.Mention()
	}
	return strings.Join(mentions, ", ")
}
