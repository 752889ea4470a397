package domain

// Profile describes a chat user as shown in replies and the query API.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	IsBot    bool   `json:"is_bot"`
}

// UnknownUserName is the display fallback when no profile can be resolved.
const UnknownUserName = "<Unknown User>"

// BridgedProfile synthesizes the profile for a bridged identifier. Bridged
// users have no platform account to look up: the name is the relayed
// nickname and IsBot is always true, since the relay posts through a single
// bot-like channel member.
func BridgedProfile(id string) *Profile {
	nick := BridgedNick(id)
	return &Profile{
		ID:       id,
		Name:     nick,
		RealName: nick + BridgeSuffix,
		IsBot:    true,
	}
}
