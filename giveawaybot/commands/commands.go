package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	GStart,
	GEnd,
	GList,
	GSettings,
}
