package pipeline

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/slpwatch/internal/model"
	"go.minekube.com/slpwatch/internal/slp"
)

// serveOneStatus is a minimal SLP server stub shared in spirit with
// internal/slp's client tests: accept one connection, drain the two
// inbound frames, and reply with a canned status response.
func serveOneStatus(t *testing.T, ln net.Listener, statusJSON string) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	if _, _, err := slp.ReadFrame(conn); err != nil {
		return
	}
	if _, _, err := slp.ReadFrame(conn); err != nil {
		return
	}

	if statusJSON == "" {
		statusJSON = `{"players":{"max":20,"online":0}}`
	}

	var payload bytes.Buffer
	_ = slp.WriteVarInt(&payload, slp.PacketID)
	_ = slp.WriteVarInt(&payload, int32(len(statusJSON)))
	payload.WriteString(statusJSON)

	var framed bytes.Buffer
	_ = slp.WriteVarInt(&framed, int32(payload.Len()))
	framed.Write(payload.Bytes())
	conn.Write(framed.Bytes())
}

type stubVerifier struct{ calls int }

func (s *stubVerifier) VerifyIfStale(ctx context.Context, p *model.Player) { s.calls++ }

func TestPoolScannerModeUpsertsOnSuccess(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go serveOneStatus(t, ln, "")

	addr := ln.Addr().(*net.TCPAddr)
	hosts := model.NewHostList()
	state := NewAppState(hosts, DefaultCapacity)
	pool := NewPool(state, Config{Mode: ScannerMode, Workers: 1, Timeout: time.Second})

	require.True(t, state.Queue.TryPut(Item{Host: "127.0.0.1", Port: uint16(addr.Port)}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		state.Shutdown()
		cancel()
	}()
	_ = pool.Run(ctx)

	srv := hosts.Host("127.0.0.1")
	require.NotNil(t, srv, "scanner must upsert the host on a successful query")
}

func TestPoolTrackerModeMarksInactiveOnFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close() // nothing listening: query will fail

	hosts := model.NewHostList()
	srv := hosts.UpsertServer("127.0.0.1", uint16(addr.Port))

	state := NewAppState(hosts, DefaultCapacity)
	verifier := &stubVerifier{}
	pool := NewPool(state, Config{Mode: TrackerMode, Workers: 1, Timeout: 200 * time.Millisecond, Verifier: verifier})

	require.True(t, state.Queue.TryPut(Item{Server: srv}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		state.Shutdown()
		cancel()
	}()
	_ = pool.Run(ctx)

	assert.False(t, srv.Active())
	assert.Equal(t, 0, verifier.calls, "verifier must not run after a failed poll")
}
