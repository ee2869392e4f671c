package treeskema

import "sort"

// Presence is the bit flag collected by ValidateWithMeta.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Key appeared in the input.
	PresenceWasNull                             // Key was present with a null value.
	PresenceDefaultApplied                      // Key was absent and its default was inserted.
	PresencePassthrough                         // Key was undeclared and copied through unvalidated.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries the normalized value along with presence metadata.
type Decoded struct {
	Value    Value
	Presence PresenceMap
}

// With returns the pointers carrying flag p, sorted.
func (pm PresenceMap) With(p Presence) []string {
	var out []string
	for k, v := range pm {
		if v&p != 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultsApplied lists the pointers filled from defaults.
func (d Decoded) DefaultsApplied() []string { return d.Presence.With(PresenceDefaultApplied) }
