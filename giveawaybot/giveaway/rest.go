package giveaway

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// Discord JSON error code for "Missing Permissions".
const jsonErrorMissingPermissions = 50013

// RestMessageClient implements MessageClient over disgo's rest client and
// normalizes the one transport failure the manager cares about into
// ErrMissingPermissions.
type RestMessageClient struct {
	rest rest.Rest
}

func NewRestMessageClient(r rest.Rest) *RestMessageClient {
	return &RestMessageClient{rest: r}
}

func (c *RestMessageClient) Post(ctx context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error) {
	msg, err := c.rest.CreateMessage(channelID, message, rest.WithCtx(ctx))
	if err != nil {
		return nil, wrapRestError(err)
	}
	return msg, nil
}

func (c *RestMessageClient) Edit(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, message discord.MessageUpdate) (*discord.Message, error) {
	msg, err := c.rest.UpdateMessage(channelID, messageID, message, rest.WithCtx(ctx))
	if err != nil {
		return nil, wrapRestError(err)
	}
	return msg, nil
}

func wrapRestError(err error) error {
	var restErr rest.Error
	if errors.As(err, &restErr) && int(restErr.Code) == jsonErrorMissingPermissions {
		return fmt.Errorf("%w: %s", ErrMissingPermissions, restErr.Message)
	}
	return err
}
