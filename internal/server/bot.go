package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"twobot/internal/biz/domain"
	"twobot/internal/biz/repo"
	"twobot/internal/biz/usecase"
	"twobot/internal/metrics"
)

// BotConfig holds the dispatcher settings.
type BotConfig struct {
	Keyword       string
	CommandPrefix string
	// RelayBotID is the one bot identity whose posts are remapped to
	// bridged users instead of being dropped. Known-fragile: it couples
	// correctness to one external bot's identifier, which is why it lives
	// in configuration rather than code.
	RelayBotID string
}

// Bot classifies inbound chat events and routes them to the trigger engine
// and the command interpreter. Events are processed strictly one at a time:
// the gateway callback only enqueues, and a single consumer goroutine runs
// each event to completion (persistence included) before taking the next.
type Bot struct {
	gateway  repo.EventGateway
	channels repo.ChannelRepo
	profiles *usecase.ProfileUsecase
	trigger  *usecase.TriggerUsecase
	command  *usecase.CommandUsecase
	cfg      BotConfig

	events chan domain.Event
	done   chan struct{}
}

// NewBot creates the bot.
func NewBot(
	gateway repo.EventGateway,
	channels repo.ChannelRepo,
	profiles *usecase.ProfileUsecase,
	trigger *usecase.TriggerUsecase,
	command *usecase.CommandUsecase,
	cfg BotConfig,
) *Bot {
	return &Bot{
		gateway:  gateway,
		channels: channels,
		profiles: profiles,
		trigger:  trigger,
		command:  command,
		cfg:      cfg,
		events:   make(chan domain.Event, 64),
		done:     make(chan struct{}),
	}
}

// Start registers the event handler, starts the consumer loop, and blocks
// on the gateway connection.
func (b *Bot) Start() error {
	b.gateway.OnEvent(b.enqueue)
	go b.consume()
	return b.gateway.Start()
}

// enqueue hands an event to the consumer loop. Once Stop has been called the
// event is discarded instead, so the gateway's delivery goroutine can never
// block on a full queue during shutdown.
func (b *Bot) enqueue(ev domain.Event) {
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// Stop disconnects the gateway and stops the consumer loop.
func (b *Bot) Stop() {
	b.gateway.Stop()
	close(b.done)
}

func (b *Bot) consume() {
	for {
		select {
		case ev := <-b.events:
			b.Dispatch(context.Background(), ev)
		case <-b.done:
			return
		}
	}
}

// Dispatch classifies one event and routes it. An event can be both a
// command and a trigger; commands run first, then triggers, independently.
func (b *Bot) Dispatch(ctx context.Context, ev domain.Event) {
	if ev.Type != domain.EventTypeMessage {
		metrics.EventsDropped.WithLabelValues("not_message").Inc()
		return
	}

	channel, err := b.channels.ChannelInfo(ctx, ev.Channel)
	if err != nil || channel == nil {
		if err != nil {
			fmt.Printf("[Bot] Channel lookup failed for %s: %v\n", ev.Channel, err)
		}
		metrics.EventsDropped.WithLabelValues("unknown_channel").Inc()
		return
	}

	speaker, profile := b.resolveSpeaker(ctx, ev)
	if profile == nil {
		metrics.EventsDropped.WithLabelValues("unknown_speaker").Inc()
		return
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		metrics.EventsDropped.WithLabelValues("empty_text").Inc()
		return
	}

	fmt.Printf("[Bot] Message in %s, from %s: %s\n", channel.Name, profile.Name, text)

	if strings.HasPrefix(text, b.cfg.CommandPrefix) {
		if err := b.command.Handle(ctx, ev.Channel, text); err != nil {
			fmt.Printf("[Bot] Command failed: %v\n", err)
		}
	}
	if IsTrigger(text, b.cfg.Keyword) {
		if _, err := b.trigger.OnTrigger(ctx, speaker, ev.Channel, time.Now()); err != nil {
			fmt.Printf("[Bot] Trigger failed: %v\n", err)
		}
	}
}

// resolveSpeaker maps the event's sender to a canonical identifier and its
// profile. Unresolvable speakers drop the event, with one exception: posts
// by the configured relay bot are remapped to a synthetic bridged
// identifier built from the event's embedded username.
func (b *Bot) resolveSpeaker(ctx context.Context, ev domain.Event) (string, *domain.Profile) {
	if ev.UserID != "" {
		profile, err := b.profiles.Resolve(ctx, ev.UserID)
		if err != nil {
			fmt.Printf("[Bot] Profile lookup failed for %s: %v\n", ev.UserID, err)
		}
		if profile != nil {
			return ev.UserID, profile
		}
	}

	if ev.Subtype == domain.SubtypeBotMessage && b.cfg.RelayBotID != "" && ev.BotID == b.cfg.RelayBotID && ev.Username != "" {
		id := domain.BridgeID(ev.Username)
		profile, _ := b.profiles.Resolve(ctx, id)
		return id, profile
	}
	return "", nil
}

// IsTrigger reports whether trimmed message text is the keyword, either
// plain or emphasis-wrapped. Exact match only: substrings never count.
func IsTrigger(text, keyword string) bool {
	return text == keyword ||
		text == "_"+keyword+"_" ||
		text == "*"+keyword+"*"
}
