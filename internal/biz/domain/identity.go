package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Bridged identifiers name users who reach the chat through the IRC relay
// rather than through a platform account. They are synthesized from the
// relayed nickname and share one namespace with platform IDs.
const (
	BridgeMarker = "I-"
	BridgeSuffix = " (IRC)"
)

// BridgeID builds the canonical bridged identifier for a raw nickname.
func BridgeID(nick string) string {
	return BridgeMarker + strings.ToLower(nick) + BridgeSuffix
}

// Canonicalize normalizes a raw user reference into the single identifier
// used to key counters and profiles. Bridged references are lower-cased and
// re-suffixed so that display-case variations of the same nickname always
// collapse onto one entry; platform IDs are already canonical and pass
// through unchanged.
func Canonicalize(raw string) string {
	if !strings.HasPrefix(raw, BridgeMarker) {
		return raw
	}
	nick := strings.TrimPrefix(raw, BridgeMarker)
	nick = strings.TrimSuffix(nick, BridgeSuffix)
	return BridgeID(nick)
}

// IsBridged reports whether id names a relay-bridged user.
func IsBridged(id string) bool {
	return strings.HasPrefix(id, BridgeMarker)
}

// BridgedNick returns the nickname portion of a bridged identifier.
func BridgedNick(id string) string {
	nick := strings.TrimPrefix(id, BridgeMarker)
	return strings.TrimSuffix(nick, BridgeSuffix)
}

var (
	mentionPattern = regexp.MustCompile(`^<@([^>]+)>$`)
	nickPattern    = regexp.MustCompile(`^[^@<>\n ]+$`)
)

// ParseUserRef parses a command argument into a canonical identifier.
// Two forms are recognized: an explicit platform mention token ("<@ID>"),
// which yields the platform ID unchanged, and a bare nickname token, which
// yields a bridged identifier. Anything else is a parse failure.
func ParseUserRef(token string) (string, error) {
	if m := mentionPattern.FindStringSubmatch(token); m != nil {
		return m[1], nil
	}
	if nickPattern.MatchString(token) {
		return BridgeID(token), nil
	}
	return "", fmt.Errorf("unrecognized user reference: %q", token)
}
