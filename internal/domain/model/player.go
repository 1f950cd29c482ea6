package model

import (
	"strings"

	"github.com/google/uuid"
)

// PlayerID identifies a scoring entity (a player). Upstream providers send a
// mix of UUIDs and plain slugs; NormalizePlayerID folds both into one
// canonical form at the store boundary so nothing downstream ever has to
// care about the representation.
type PlayerID string

// Unknown reports whether the identifier is absent.
func (p PlayerID) Unknown() bool { return p == "" }

// NormalizePlayerID canonicalizes a raw provider identifier. UUID-shaped
// values are reduced to their canonical lowercase string form; everything
// else is trimmed and lowercased.
func NormalizePlayerID(raw string) PlayerID {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if id, err := uuid.Parse(s); err == nil {
		return PlayerID(id.String())
	}
	return PlayerID(s)
}

// NormalizePlayerIDs canonicalizes a list, dropping empty entries and
// preserving order (including repeats; scoring must not multiply on them).
func NormalizePlayerIDs(raw []string) []PlayerID {
	out := make([]PlayerID, 0, len(raw))
	for _, r := range raw {
		if id := NormalizePlayerID(r); !id.Unknown() {
			out = append(out, id)
		}
	}
	return out
}
