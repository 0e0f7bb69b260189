// Package ratelimit implements 429 cooldown tracking and request gating.
// UniProt throttles heavy consumers with 429 responses that may carry a
// Retry-After header; the tracker records the advertised cooldown in Redis
// so every process sharing the cache backs off together.
package ratelimit

import (
	"time"
)

// Redis keys for cooldown state storage.
const (
	RedisKeyCooldownUntil = "uniprot:rate_limit:cooldown_until"
	RedisKeyLastUpdate    = "uniprot:rate_limit:last_update"
)

// DefaultCooldown is applied when a 429 response carries no usable
// Retry-After header.
const DefaultCooldown = 10 * time.Second

// State represents the shared cooldown state.
type State struct {
	// CooldownUntil is the instant until which requests are blocked.
	// Zero when no cooldown is active.
	CooldownUntil time.Time `json:"cooldown_until"`

	// LastUpdate is when this state was last written.
	LastUpdate time.Time `json:"last_update"`
}

// Active returns true while the cooldown deadline lies in the future.
func (s *State) Active() bool {
	return time.Now().Before(s.CooldownUntil)
}

// Remaining returns the time left on the cooldown.
// Returns 0 if the cooldown has already passed.
func (s *State) Remaining() time.Duration {
	remaining := time.Until(s.CooldownUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}
