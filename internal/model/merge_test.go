package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/slpwatch/internal/slp"
)

func withFixedNow(t *testing.T, ts int64) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() int64 { return ts }
	t.Cleanup(func() { nowFunc = orig })
}

func protoPtr(v int32) *int32  { return &v }
func namePtr(v string) *string { return &v }
func boolPtr(v bool) *bool     { return &v }

func TestParseStatusSamplePresentMarksPlayersActive(t *testing.T) {
	withFixedNow(t, 1000)
	hl := NewHostList()
	srv := hl.UpsertServer("example.org", 25565)

	srv.ParseStatus(&slp.ParsedStatus{
		ProtocolVersion: protoPtr(763),
		ServerVersion:   namePtr("1.20.1"),
		PlayersOnline:   1,
		PlayersMax:      20,
		SampleProvided:  true,
		Sample:          []slp.SamplePlayer{{Name: "Alice", UUID: "uuid-1"}},
	})

	assert.True(t, srv.Active())
	require.Len(t, srv.Players(), 1)
	p := srv.Players()[0]
	assert.True(t, p.Active())
	assert.Equal(t, int64(1000), p.LastSeen())
}

func TestParseStatusSampleAbsentMarksInactiveAndAdvancesPlayTime(t *testing.T) {
	hl := NewHostList()
	srv := hl.UpsertServer("example.org", 25565)

	withFixedNow(t, 1000)
	srv.ParseStatus(&slp.ParsedStatus{
		PlayersOnline: 1, PlayersMax: 20,
		SampleProvided: true,
		Sample:         []slp.SamplePlayer{{Name: "Alice", UUID: "uuid-1"}},
	})

	withFixedNow(t, 1100)
	srv.ParseStatus(&slp.ParsedStatus{
		PlayersOnline: 0, PlayersMax: 20,
		SampleProvided: false,
	})

	require.Len(t, srv.Players(), 1)
	p := srv.Players()[0]
	assert.False(t, p.Active())
	// play_time must have advanced by the elapsed interval while active,
	// and last_seen must be untouched by the absent-sample path.
	assert.Equal(t, float64(100), p.PlayTime())
	assert.Equal(t, int64(1000), p.LastSeen())
}

func TestParseStatusIsIdempotentOnRepeat(t *testing.T) {
	withFixedNow(t, 1000)
	hl := NewHostList()
	srv := hl.UpsertServer("example.org", 25565)

	ps := &slp.ParsedStatus{
		ProtocolVersion: protoPtr(763), PlayersOnline: 1, PlayersMax: 20,
		SampleProvided: true,
		Sample:         []slp.SamplePlayer{{Name: "Alice", UUID: "uuid-1"}},
	}
	srv.ParseStatus(ps)
	srv.ParseStatus(ps)

	require.Len(t, srv.Players(), 1, "must match on repeat sighting, not duplicate")
	assert.Equal(t, uint32(1), srv.ActivePlayers())
}

func TestParseStatusFaviconCRC32(t *testing.T) {
	hl := NewHostList()
	srv := hl.UpsertServer("example.org", 25565)

	// 1x1 transparent PNG, base64-encoded.
	const png1x1 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII="
	srv.ParseStatus(&slp.ParsedStatus{
		Favicon: "data:image/png;base64," + png1x1,
	})

	fav := srv.Favicon()
	require.NotNil(t, fav)
	assert.Equal(t, "image/png", fav.Mimetype)
	assert.NotZero(t, fav.CRC32)
	assert.Equal(t, len(fav.RawBytes), fav.Size)
}

func TestParseStatusMalformedFaviconKeepsPrevious(t *testing.T) {
	hl := NewHostList()
	srv := hl.UpsertServer("example.org", 25565)

	const png1x1 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII="
	srv.ParseStatus(&slp.ParsedStatus{Favicon: "data:image/png;base64," + png1x1})
	first := srv.Favicon()
	require.NotNil(t, first)

	srv.ParseStatus(&slp.ParsedStatus{Favicon: "not-a-valid-uri"})
	assert.Equal(t, first, srv.Favicon())
}

func TestParseStatusModsWholesaleReplace(t *testing.T) {
	hl := NewHostList()
	srv := hl.UpsertServer("example.org", 25565)

	srv.ParseStatus(&slp.ParsedStatus{Mods: []slp.ParsedMod{{ID: "jei", Version: "1.0"}}})
	assert.Len(t, srv.Mods(), 1)

	srv.ParseStatus(&slp.ParsedStatus{Mods: nil})
	assert.Empty(t, srv.Mods())
}

func TestMarkInactivePreservesOtherFields(t *testing.T) {
	withFixedNow(t, 1000)
	hl := NewHostList()
	srv := hl.UpsertServer("example.org", 25565)

	srv.ParseStatus(&slp.ParsedStatus{
		ServerVersion: namePtr("1.20.1"), PlayersOnline: 1, PlayersMax: 20,
		SampleProvided: true,
		Sample:         []slp.SamplePlayer{{Name: "Alice", UUID: "uuid-1"}},
		Mods:           []slp.ParsedMod{{ID: "jei", Version: "1.0"}},
	})

	srv.MarkInactive()

	assert.False(t, srv.Active())
	assert.Equal(t, uint32(0), srv.ActivePlayers())
	require.NotNil(t, srv.ServerVersion())
	assert.Equal(t, "1.20.1", *srv.ServerVersion())
	assert.Len(t, srv.Players(), 1)
	assert.Len(t, srv.Mods(), 1)
}

func TestParseStatusSecureChatTriState(t *testing.T) {
	hl := NewHostList()
	srv := hl.UpsertServer("example.org", 25565)
	assert.Equal(t, Unknown, srv.SecureChat())

	srv.ParseStatus(&slp.ParsedStatus{EnforcesSecureChat: boolPtr(true)})
	assert.Equal(t, True, srv.SecureChat())

	srv.ParseStatus(&slp.ParsedStatus{EnforcesSecureChat: nil})
	assert.Equal(t, True, srv.SecureChat(), "absent field must not clobber the previous tri-state")
}
