package domain

// EventTypeMessage is the only event type the bot acts on.
const EventTypeMessage = "message"

// SubtypeBotMessage marks events posted by an app/bot account rather than a
// platform user.
const SubtypeBotMessage = "bot_message"

// Event is one inbound chat event, already parsed by the transport adapter.
type Event struct {
	Type    string
	Channel string
	UserID  string // platform sender ID; empty when the sender is not a user
	Text    string

	// Bot-message fields. Username carries the origin nickname embedded by
	// relay bots and is what the relay-bot remap keys on.
	Subtype  string
	BotID    string
	Username string
}

// Channel is the slice of channel metadata the bot needs: enough to decide
// the channel exists and to log a readable name.
type Channel struct {
	ID   string
	Name string
}
