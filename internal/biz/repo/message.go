package repo

import (
	"context"

	"twobot/internal/biz/domain"
)

// ChannelRepo is the outbound chat capability.
type ChannelRepo interface {
	// SendText sends a text message to a channel. Best effort: callers log
	// failures but do not retry.
	SendText(ctx context.Context, channelID, text string) error

	// ChannelInfo returns channel metadata, or (nil, nil) when the platform
	// does not know the channel.
	ChannelInfo(ctx context.Context, channelID string) (*domain.Channel, error)
}

// ProfileRepo resolves platform-native user profiles.
type ProfileRepo interface {
	// ResolveProfile returns the profile for a platform user ID, or
	// (nil, nil) when the platform does not know the user.
	ResolveProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

// EventGateway is the inbound chat transport: it delivers parsed message
// events to a registered handler.
type EventGateway interface {
	// OnEvent registers the event handler. Must be called before Start.
	OnEvent(handler func(domain.Event))

	// Start connects to the platform and blocks, delivering events until
	// Stop is called.
	Start() error

	// Stop disconnects from the platform.
	Stop()
}
