package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// foldCaser folds player names for Unicode-correct case-insensitive
// matching — stricter than strings.EqualFold for non-ASCII names
// (spec.md §3 lifecycle rule: "matches on either name or uuid").
var foldCaser = cases.Fold()

// Player is one account seen in a status sample. Its Server
// back-reference is non-owning context only (spec.md §3).
type Player struct {
	Name string
	UUID string

	server *Server // weak back-reference, never serialized

	mu           sync.Mutex
	active       bool
	lastSeen     int64
	playTime     float64
	lastVerified int64
	premiumName  TriState
	premiumUUID  TriState
}

func newPlayer(server *Server, name, rawUUID string) *Player {
	return &Player{
		Name:   name,
		UUID:   canonicalUUID(rawUUID),
		server: server,
	}
}

// canonicalUUID normalizes a player UUID to its dashed, lowercase form
// so minor formatting differences across servers (undashed, uppercase)
// don't defeat identity matching. Unparseable values pass through
// unchanged — spec.md doesn't require rejecting a malformed sample.
func canonicalUUID(raw string) string {
	id, err := uuid.Parse(raw)
	if err != nil {
		return raw
	}
	return id.String()
}

// Server returns the Player's owning Server (context only, non-owning).
func (p *Player) Server() *Server { return p.server }

func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Player) LastSeen() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

func (p *Player) PlayTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playTime
}

func (p *Player) LastVerified() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastVerified
}

func (p *Player) PremiumName() TriState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.premiumName
}

func (p *Player) PremiumUUID() TriState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.premiumUUID
}

// matches reports whether this Player should be matched by the given
// name or uuid during get_or_add_player (spec.md §3 lifecycle rule:
// "matches on either name or uuid").
func (p *Player) matches(name, playerUUID string) bool {
	if name != "" && foldCaser.String(p.Name) == foldCaser.String(name) {
		return true
	}
	if playerUUID != "" && p.UUID == canonicalUUID(playerUUID) {
		return true
	}
	return false
}

// updateLastSeen writes play_time together with logOff (spec.md §4.3):
// if the player was already active, play_time advances by the elapsed
// wall time since last_seen, then last_seen is set to now.
func (p *Player) updateLastSeen(now int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		p.playTime += float64(now - p.lastSeen)
	}
	p.lastSeen = now
	p.active = true
}

// logOff marks the player inactive without touching last_seen, first
// advancing play_time by the elapsed wall time it was active (spec.md
// §4.3 "sample absent" path / merge-property #2).
func (p *Player) logOff(now int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		p.playTime += float64(now - p.lastSeen)
	}
	p.active = false
}

// RecordVerification stores the result of a successful verifier pass
// (internal/verify calls this after both Mojang probes return).
func (p *Player) RecordVerification(nameOK, uuidOK TriState, now int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if nameOK != Unknown {
		p.premiumName = nameOK
	}
	if uuidOK != Unknown {
		p.premiumUUID = uuidOK
	}
	p.lastVerified = now
}

// NeedsVerification reports whether LastVerified is older than ttl,
// i.e. whether the verifier should probe this player again now.
func (p *Player) NeedsVerification(now int64, ttl time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return now-p.lastVerified >= int64(ttl.Seconds())
}
