package data

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/time/rate"

	"twobot/internal/biz/domain"
	"twobot/internal/biz/repo"
	"twobot/internal/infra/feishu"
)

// feishuRepo implements the outbound chat and profile capabilities on top
// of the Feishu client. Outbound calls go through token buckets so a burst
// of triggers cannot trip the platform's own rate limits.
type feishuRepo struct {
	client      *feishu.Client
	sendLimit   *rate.Limiter
	lookupLimit *rate.Limiter
}

// NewFeishuRepo creates the Feishu-backed channel and profile repository.
func NewFeishuRepo(client *feishu.Client, sendRPS, lookupRPS float64) (repo.ChannelRepo, repo.ProfileRepo) {
	if sendRPS <= 0 {
		sendRPS = 2
	}
	if lookupRPS <= 0 {
		lookupRPS = 5
	}
	r := &feishuRepo{
		client:      client,
		sendLimit:   rate.NewLimiter(rate.Limit(sendRPS), 5),
		lookupLimit: rate.NewLimiter(rate.Limit(lookupRPS), 10),
	}
	return r, r
}

// SendText sends a text message to a channel.
func (r *feishuRepo) SendText(ctx context.Context, channelID, text string) error {
	if err := r.sendLimit.Wait(ctx); err != nil {
		return fmt.Errorf("send throttle: %w", err)
	}
	return r.client.SendText(ctx, channelID, text)
}

// ChannelInfo returns channel metadata, or (nil, nil) for unknown channels.
func (r *feishuRepo) ChannelInfo(ctx context.Context, channelID string) (*domain.Channel, error) {
	info, err := r.client.GetChatInfo(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}
	return &domain.Channel{ID: info.ChatID, Name: info.Name}, nil
}

// ResolveProfile looks up a platform user, or returns (nil, nil) when the
// platform does not know the ID.
func (r *feishuRepo) ResolveProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if err := r.lookupLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("lookup throttle: %w", err)
	}
	info, err := r.client.GetUserInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}

	name := info.Nickname
	if name == "" {
		name = info.Name
	}
	return &domain.Profile{
		ID:       userID,
		Name:     name,
		RealName: info.Name,
		IsBot:    false,
	}, nil
}

// relayPrefix matches the "[nick] message" framing the IRC relay bot uses
// when reposting into the chat.
var relayPrefix = regexp.MustCompile(`^\[([^\]\s]+)\]\s+(.*)$`)

// feishuGateway adapts the Feishu client's message callback to the
// transport-agnostic event stream the dispatcher consumes.
type feishuGateway struct {
	client *feishu.Client
}

// NewFeishuGateway creates the inbound event gateway.
func NewFeishuGateway(client *feishu.Client) repo.EventGateway {
	return &feishuGateway{client: client}
}

// OnEvent registers the event handler.
func (g *feishuGateway) OnEvent(handler func(domain.Event)) {
	g.client.OnMessage(func(m *feishu.Message) {
		ev := domain.Event{
			Type:    domain.EventTypeMessage,
			Channel: m.ChatID,
			UserID:  m.SenderID,
			Text:    m.Text,
		}
		if m.SenderType == "app" {
			// Bot posts have no user profile behind them. Surface the bot
			// identity and, for relay-framed text, the origin nickname so
			// the dispatcher can apply the relay-bot remap.
			ev.Subtype = domain.SubtypeBotMessage
			ev.BotID = m.SenderID
			ev.UserID = ""
			if match := relayPrefix.FindStringSubmatch(m.Text); match != nil {
				ev.Username = match[1]
				ev.Text = match[2]
			}
		}
		handler(ev)
	})
}

// Start connects to the platform and blocks until Stop.
func (g *feishuGateway) Start() error {
	return g.client.Start()
}

// Stop disconnects from the platform.
func (g *feishuGateway) Stop() {
	g.client.Stop()
}
