package slp

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the default total per-query deadline covering
// connect + handshake + response (spec.md §4.2).
const DefaultTimeout = 5 * time.Second

// Query performs a single-shot SLP status query against host:port and
// returns either a parsed status or a typed Failure. It owns exactly
// one TCP connection for its entire lifetime and always closes it.
func Query(ctx context.Context, host string, port uint16, protocol int32, timeout time.Duration) (*ParsedStatus, *Failure) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classifyDialErr(ctx, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	_ = conn.SetDeadline(deadline)

	hs := &Handshake{
		Protocol:      protocol,
		ServerAddress: host,
		ServerPort:    port,
		NextState:     StateStatus,
	}
	if err := WritePacket(conn, hs); err != nil {
		return nil, wrapWriteErr(ctx, err)
	}
	if err := WritePacket(conn, StatusRequest{}); err != nil {
		return nil, wrapWriteErr(ctx, err)
	}

	id, payload, ferr := ReadFrame(conn)
	if ferr != nil {
		if ctx.Err() != nil {
			return nil, wrapFailure(Cancelled, "context cancelled during read", ctx.Err())
		}
		var netErr net.Error
		if errors.As(ferr.Err, &netErr) && netErr.Timeout() {
			return nil, wrapFailure(ReadTimeout, "reading status frame", ferr)
		}
		return nil, ferr
	}
	if id != PacketID {
		return nil, newFailure(ProtocolViolation, "unexpected status response packet id")
	}

	status, err := DecodeStatusResponse(payload)
	if err != nil {
		if f, ok := err.(*Failure); ok {
			return nil, f
		}
		zap.L().Debug("unexpected decode error", zap.Error(err))
		return nil, wrapFailure(InvalidJSON, "decoding status response", err)
	}
	return status, nil
}

func classifyDialErr(ctx context.Context, err error) *Failure {
	if ctx.Err() != nil {
		return wrapFailure(Cancelled, "context cancelled during dial", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return wrapFailure(ConnectTimeout, "dialing server", err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return wrapFailure(ConnectRefused, "dialing server", err)
	}
	return wrapFailure(ConnectRefused, "dialing server", err)
}

func wrapWriteErr(ctx context.Context, err error) *Failure {
	if ctx.Err() != nil {
		return wrapFailure(Cancelled, "context cancelled during write", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return wrapFailure(ReadTimeout, "writing request", err)
	}
	return wrapFailure(EOFDuringFrame, "writing request", err)
}
