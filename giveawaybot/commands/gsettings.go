package commands

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	giveawaybot "github.com/disgoorg/giveaway-bot/giveawaybot"
	"github.com/disgoorg/snowflake/v2"
)

var GSettings = discord.SlashCommandCreate{
	Name:        "gsettings",
	Description: "🎨 Configure how giveaways look in this server",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "color",
			Description: "Embed accent color as hex, e.g. #58b9ff",
		},
		discord.ApplicationCommandOptionString{
			Name:        "emoji",
			Description: "Enter-button emoji, unicode or a custom one",
		},
	},
}

var customEmojiPattern = regexp.MustCompile(`^<(a?):([\w~]+):(\d+)>$`)

func GSettingsHandler(b *giveawaybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return replyError(e, "Settings only exist in servers.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		settings, err := b.SettingsRepo.Get(ctx, *e.GuildID())
		if err != nil {
			return replyError(e, "Failed to load the current settings.")
		}

		data := e.SlashCommandInteractionData()
		if colorText, ok := data.OptString("color"); ok {
			color, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(colorText), "#"), 16, 32)
			if err != nil || color < 0 || color > 0xFFFFFF {
				return replyError(e, "That is not a valid hex color.")
			}
			settings.Color = int(color)
		}
		if emojiText, ok := data.OptString("emoji"); ok {
			emojiText = strings.TrimSpace(emojiText)
			if match := customEmojiPattern.FindStringSubmatch(emojiText); match != nil {
				id, err := snowflake.Parse(match[3])
				if err != nil {
					return replyError(e, "That custom emoji id is not valid.")
				}
				settings.EmojiAnimated = match[1] == "a"
				settings.EmojiName = match[2]
				settings.EmojiID = id
			} else {
				settings.EmojiAnimated = false
				settings.EmojiName = emojiText
				settings.EmojiID = 0
			}
		}

		if err := b.SettingsRepo.Set(ctx, settings); err != nil {
			return replyError(e, "Failed to save the settings.")
		}
		return replySuccess(e, "Giveaway settings updated.")
	}
}
