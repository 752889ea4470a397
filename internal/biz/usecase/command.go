package usecase

import (
	"context"
	"fmt"
	"strings"

	"twobot/internal/biz/domain"
	"twobot/internal/biz/repo"
	"twobot/internal/metrics"
)

// DefaultLeaderboardSize is how many entries the chat leaderboard shows.
const DefaultLeaderboardSize = 5

// CommandConfig holds the command interpreter settings.
type CommandConfig struct {
	Prefix          string
	LeaderboardSize int
}

// CommandUsecase parses explicit query commands typed in chat and sends the
// formatted replies. Commands never mutate counter state.
type CommandUsecase struct {
	counters repo.CounterRepo
	profiles *ProfileUsecase
	channels repo.ChannelRepo
	cfg      CommandConfig
}

// NewCommandUsecase creates the command interpreter.
func NewCommandUsecase(counters repo.CounterRepo, profiles *ProfileUsecase, channels repo.ChannelRepo, cfg CommandConfig) *CommandUsecase {
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = DefaultLeaderboardSize
	}
	return &CommandUsecase{
		counters: counters,
		profiles: profiles,
		channels: channels,
		cfg:      cfg,
	}
}

// Handle interprets one command line. Zero arguments asks for the
// leaderboard, one argument looks up a single user, anything more is
// malformed. All outcomes are reported back to the channel.
func (u *CommandUsecase) Handle(ctx context.Context, channelID, text string) error {
	parts := strings.Fields(text)
	switch len(parts) {
	case 1:
		metrics.Commands.WithLabelValues("leaderboard").Inc()
		return u.leaderboard(ctx, channelID)
	case 2:
		metrics.Commands.WithLabelValues("lookup").Inc()
		return u.lookup(ctx, channelID, parts[1])
	default:
		metrics.Commands.WithLabelValues("malformed").Inc()
		text := fmt.Sprintf("Malformed %s command, specify zero or one parameters where the optional parameter is a \"@mention\" for platform users or \"nick\" for IRC users", u.cfg.Prefix)
		return u.channels.SendText(ctx, channelID, text)
	}
}

func (u *CommandUsecase) leaderboard(ctx context.Context, channelID string) error {
	entries := u.counters.Leaderboard()
	if len(entries) > u.cfg.LeaderboardSize {
		entries = entries[:u.cfg.LeaderboardSize]
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s: %d", u.profiles.DisplayName(ctx, e.ID), e.Count))
	}
	return u.channels.SendText(ctx, channelID, "Leaderboard of shame: "+strings.Join(parts, ", "))
}

func (u *CommandUsecase) lookup(ctx context.Context, channelID, arg string) error {
	id, err := domain.ParseUserRef(arg)
	if err != nil {
		text := fmt.Sprintf("Malformed %s command, didn't recognise parameter", u.cfg.Prefix)
		return u.channels.SendText(ctx, channelID, text)
	}

	// A bridged user exists once it has triggered at least once; a platform
	// user exists when the platform resolves its profile, even with no
	// counter record yet.
	if domain.IsBridged(id) {
		if _, ok := u.counters.Get(id); !ok {
			return u.channels.SendText(ctx, channelID, fmt.Sprintf("No such user: %s", arg))
		}
	} else {
		profile, err := u.profiles.Resolve(ctx, id)
		if err != nil || profile == nil {
			return u.channels.SendText(ctx, channelID, fmt.Sprintf("No such user: %s", arg))
		}
	}

	record, _ := u.counters.Get(id)
	name := u.profiles.DisplayName(ctx, id)
	return u.channels.SendText(ctx, channelID, fmt.Sprintf("%s has a total of %d", name, record.Count))
}
