package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// The snapshot format is the JSON schema from spec.md §6, adopted as
// both the durable on-disk format and the convert_json human-readable
// export (see DESIGN.md Open Question: "Snapshot format").

type snapshotFile struct {
	Hosts []hostJSON `json:"hosts"`
}

type hostJSON struct {
	Address string       `json:"address"`
	Servers []serverJSON `json:"servers"`
}

type serverJSON struct {
	Port            uint16       `json:"port"`
	ServerVersion   *string      `json:"server_version"`
	ProtocolVersion *int32       `json:"protocol_version"`
	SecureChat      TriState     `json:"secure_chat"`
	Active          bool         `json:"active"`
	ActivePlayers   uint32       `json:"active_players"`
	MaxPlayers      uint32       `json:"max_players"`
	Tags            []string     `json:"tags"`
	Favicon         *faviconJSON `json:"favicon,omitempty"`
	Players         []playerJSON `json:"players"`
	Mods            []Mod        `json:"mods"`
}

type faviconJSON struct {
	Mimetype   string `json:"mimetype"`
	Size       int    `json:"size"`
	CRC32      uint32 `json:"crc32"`
	DataBase64 string `json:"data_base64"`
}

type playerJSON struct {
	Name         string   `json:"name"`
	UUID         string   `json:"uuid"`
	Active       bool     `json:"active"`
	LastSeen     int64    `json:"last_seen"`
	PlayTime     float64  `json:"play_time"`
	LastVerified int64    `json:"last_verified"`
	PremiumName  TriState `json:"premium_name"`
	PremiumUUID  TriState `json:"premium_uuid"`
}

// toSnapshotFile walks the graph top-down and produces its serializable
// form. Back-references are never followed (spec.md §9).
func (hl *HostList) toSnapshotFile() snapshotFile {
	var out snapshotFile
	for _, h := range hl.Hosts() {
		hj := hostJSON{Address: h.Address}
		for _, s := range h.Servers() {
			hj.Servers = append(hj.Servers, serverToJSON(s))
		}
		out.Hosts = append(out.Hosts, hj)
	}
	return out
}

func serverToJSON(s *Server) serverJSON {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sj := serverJSON{
		Port:            s.Port,
		ServerVersion:   s.serverVersion,
		ProtocolVersion: s.protocolVersion,
		SecureChat:      s.secureChat,
		Active:          s.active,
		ActivePlayers:   s.activePlayers,
		MaxPlayers:      s.maxPlayers,
		Tags:            make([]string, 0, len(s.tags)),
		Mods:            append([]Mod(nil), s.mods...),
	}
	for t := range s.tags {
		sj.Tags = append(sj.Tags, t)
	}
	if s.favicon != nil {
		sj.Favicon = &faviconJSON{
			Mimetype:   s.favicon.Mimetype,
			Size:       s.favicon.Size,
			CRC32:      s.favicon.CRC32,
			DataBase64: base64.StdEncoding.EncodeToString(s.favicon.RawBytes),
		}
	}
	for _, p := range s.players {
		p.mu.Lock()
		sj.Players = append(sj.Players, playerJSON{
			Name:         p.Name,
			UUID:         p.UUID,
			Active:       p.active,
			LastSeen:     p.lastSeen,
			PlayTime:     p.playTime,
			LastVerified: p.lastVerified,
			PremiumName:  p.premiumName,
			PremiumUUID:  p.premiumUUID,
		})
		p.mu.Unlock()
	}
	return sj
}

// fromSnapshotFile rebuilds a HostList from its serialized form.
func fromSnapshotFile(sf snapshotFile) (*HostList, error) {
	hl := NewHostList()
	for _, hj := range sf.Hosts {
		host := hl.UpsertHost(hj.Address)
		for _, sj := range hj.Servers {
			srv := host.UpsertServer(sj.Port)
			if err := srv.restoreFromJSON(sj); err != nil {
				return nil, fmt.Errorf("restoring %s:%d: %w", hj.Address, sj.Port, err)
			}
		}
	}
	return hl, nil
}

func (s *Server) restoreFromJSON(sj serverJSON) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.serverVersion = sj.ServerVersion
	s.protocolVersion = sj.ProtocolVersion
	s.secureChat = sj.SecureChat
	s.active = sj.Active
	s.activePlayers = sj.ActivePlayers
	s.maxPlayers = sj.MaxPlayers
	s.mods = append([]Mod(nil), sj.Mods...)

	s.tags = make(map[string]struct{}, len(sj.Tags))
	for _, t := range sj.Tags {
		s.tags[t] = struct{}{}
	}

	if sj.Favicon != nil {
		raw, err := base64.StdEncoding.DecodeString(sj.Favicon.DataBase64)
		if err != nil {
			return fmt.Errorf("decoding favicon: %w", err)
		}
		s.favicon = &Favicon{
			Mimetype: sj.Favicon.Mimetype,
			RawBytes: raw,
			Size:     sj.Favicon.Size,
			CRC32:    sj.Favicon.CRC32,
		}
	}

	for _, pj := range sj.Players {
		p := newPlayer(s, pj.Name, pj.UUID)
		p.active = pj.Active
		p.lastSeen = pj.LastSeen
		p.playTime = pj.PlayTime
		p.lastVerified = pj.LastVerified
		p.premiumName = pj.PremiumName
		p.premiumUUID = pj.PremiumUUID
		s.players = append(s.players, p)
	}
	return nil
}

// Save writes the HostList to path atomically: it writes to a temp
// file in the same directory, then renames over the target (spec.md
// §4.6). Implementations without atomic rename on their platform carry
// the documented risk of a torn write — this implementation relies on
// os.Rename, which is atomic on POSIX and on Windows when the target
// doesn't need replacing across volumes.
func (hl *HostList) Save(path string) error {
	data, err := json.MarshalIndent(hl.toSnapshotFile(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}

// Load reads a HostList snapshot previously written by Save.
func Load(path string) (*HostList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var sf snapshotFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return fromSnapshotFile(sf)
}

// ExportJSON renders the HostList as the pretty-printed human-readable
// schema described in spec.md §6 — the convert_json tool's output. It
// is the same shape as the durable snapshot since the two were unified
// (see DESIGN.md), so this is effectively the snapshot marshal step
// exposed as a standalone function for the `export` subcommand.
func (hl *HostList) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(hl.toSnapshotFile(), "", "  ")
}
