package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/giveaway-bot/giveawaybot/giveaway"
)

func replyError(e *handler.CommandEvent, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "⚠️ Error",
			Description: description,
			Color:       0xED4245,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

func replySuccess(e *handler.CommandEvent, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "🎉 Done",
			Description: description,
			Color:       0x57F287,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

// replyGiveawayError turns the typed manager errors into user-facing
// wording. Unknown errors get a generic line so internals never leak into
// chat.
func replyGiveawayError(e *handler.CommandEvent, err error) error {
	gerr, ok := giveaway.AsError(err)
	if !ok {
		return replyError(e, "Something went wrong, please try again later.")
	}

	switch gerr.Code {
	case giveaway.CodeCooldownActive:
		return replyError(e, fmt.Sprintf("Giveaway creation recently failed here, try again in **%v**.", gerr.Value))
	case giveaway.CodeQuotaExceeded:
		return replyError(e, fmt.Sprintf("There are already **%v** active giveaways here (maximum **%v**).", gerr.Value, gerr.Limit))
	case giveaway.CodeInvalidTimeFormat:
		return replyError(e, fmt.Sprintf("Could not parse `%v` as a length of time. Try something like `30m` or `2 days`.", gerr.Value))
	case giveaway.CodeTimeBelowMinimum:
		return replyError(e, fmt.Sprintf("Giveaways must run for at least **%v**.", gerr.Limit))
	case giveaway.CodeTimeAboveMaximum:
		return replyError(e, fmt.Sprintf("Giveaways can run for at most **%v**.", gerr.Limit))
	case giveaway.CodeInvalidWinnersFormat:
		return replyError(e, fmt.Sprintf("Could not parse `%v` as a number of winners.", gerr.Value))
	case giveaway.CodeWinnersOutOfRange:
		return replyError(e, fmt.Sprintf("The number of winners must be between **1** and **%v**.", gerr.Limit))
	case giveaway.CodePrizeTooLong:
		return replyError(e, fmt.Sprintf("Prizes can be at most **%v** characters.", gerr.Limit))
	case giveaway.CodeDescriptionTooLong:
		return replyError(e, fmt.Sprintf("Descriptions can be at most **%v** characters.", gerr.Limit))
	case giveaway.CodeBotLacksPermissions:
		return replyError(e, "The bot is missing permissions to post giveaways in this channel!")
	case giveaway.CodeCreationFailed:
		return replyError(e, "The giveaway could not be created, please try again later.")
	default:
		return replyError(e, "Something went wrong, please try again later.")
	}
}
