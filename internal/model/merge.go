package model

import (
	"go.uber.org/zap"

	"go.minekube.com/slpwatch/internal/slp"
)

// ParseStatus is the central mutation (spec.md §4.3). It is idempotent
// given the same input and preserves historical fields.
func (s *Server) ParseStatus(ps *slp.ParsedStatus) {
	now := nowFunc()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = true

	// version: overwrite protocol_version; overwrite server_version
	// only if name is present.
	if ps.ProtocolVersion != nil {
		v := *ps.ProtocolVersion
		s.protocolVersion = &v
	}
	if ps.ServerVersion != nil {
		v := *ps.ServerVersion
		s.serverVersion = &v
	}

	// players.online/max: overwrite.
	s.activePlayers = clampUint32(ps.PlayersOnline)
	s.maxPlayers = clampUint32(ps.PlayersMax)

	if ps.SampleProvided {
		for _, sample := range ps.Sample {
			p := s.getOrAddPlayer(sample.Name, sample.UUID)
			p.updateLastSeen(now)
		}
	} else {
		// Sample absent: mark every existing player inactive, do not
		// touch last_seen — vanilla servers only emit sample when
		// players are online, so absence means "everyone logged off".
		for _, p := range s.players {
			p.logOff(now)
		}
	}

	// mods: wholesale replace.
	mods := make([]Mod, 0, len(ps.Mods))
	for _, m := range ps.Mods {
		mods = append(mods, Mod{ID: m.ID, Version: m.Version})
	}
	s.mods = mods

	// favicon: parse data: URI; on malformed URI, leave the previous
	// favicon intact and log.
	if ps.Favicon != "" {
		if fav, err := ParseFaviconURI(ps.Favicon); err == nil {
			s.favicon = fav
		} else {
			zap.L().Warn("malformed favicon data URI, keeping previous favicon",
				zap.String("host", s.host.Address), zap.Uint16("port", s.Port), zap.Error(err))
		}
	}

	if ps.EnforcesSecureChat != nil {
		s.secureChat = FromBoolPtr(ps.EnforcesSecureChat)
	}
}

func clampUint32(v int32) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
