package slp

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
)

// ProtocolAnyVersion is the "universal compatibility" protocol value
// this system always probes with; servers echo their own version
// regardless of what is sent here.
const ProtocolAnyVersion int32 = 47

// Next-state values for the handshake packet.
const (
	StateStatus int32 = 1
	StateLogin  int32 = 2
)

// PacketID is the packet id used by Handshake, StatusRequest and
// StatusResponse — all are id 0x00 within their respective states.
const PacketID int32 = 0x00

// maxStringBytes bounds decoded strings; sufficient for any SLP status
// payload (spec.md §4.1).
const maxStringBytes = 32768

// Handshake is the first packet sent to a server, id 0x00, clientbound
// to server, always sent with NextState = StateStatus by this system.
type Handshake struct {
	Protocol      int32
	ServerAddress string
	ServerPort    uint16
	NextState     int32
}

// Encode serializes the handshake payload (without the outer packet-id
// and length prefix — see WritePacket).
func (h *Handshake) Encode(buf *bytes.Buffer) error {
	if err := WriteVarInt(buf, h.Protocol); err != nil {
		return err
	}
	if err := writeString(buf, h.ServerAddress); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, h.ServerPort); err != nil {
		return err
	}
	return WriteVarInt(buf, h.NextState)
}

// StatusRequest is the empty-payload status-state request packet.
type StatusRequest struct{}

func (StatusRequest) Encode(buf *bytes.Buffer) error { return nil }

// encodablePacket is anything with an id-0x00 payload encoder.
type encodablePacket interface {
	Encode(buf *bytes.Buffer) error
}

// WritePacket frames p as VarInt(length) || VarInt(packetID) || payload
// and writes it to w.
func WritePacket(w io.Writer, p encodablePacket) error {
	var payload bytes.Buffer
	if err := WriteVarInt(&payload, PacketID); err != nil {
		return err
	}
	if err := p.Encode(&payload); err != nil {
		return err
	}

	var framed bytes.Buffer
	if err := WriteVarInt(&framed, int32(payload.Len())); err != nil {
		return err
	}
	if _, err := framed.Write(payload.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(framed.Bytes())
	return err
}

func writeString(buf *bytes.Buffer, s string) error {
	b := []byte(s)
	if err := WriteVarInt(buf, int32(len(b))); err != nil {
		return err
	}
	_, err := buf.Write(b)
	return err
}

// ReadFrame reads one length-prefixed packet body (VarInt(length) ||
// VarInt(packetID) || payload) from r, returning the packet id and the
// remaining payload bytes. It enforces that the declared length is
// fully available, failing with EOFDuringFrame otherwise.
func ReadFrame(r io.Reader) (packetID int32, payload []byte, err error) {
	br := byteReader(r)

	length, err := ReadVarInt(br)
	if err != nil {
		if f, ok := err.(*Failure); ok {
			return 0, nil, f
		}
		return 0, nil, wrapFailure(EOFDuringFrame, "reading frame length", err)
	}
	if length < 0 || length > maxStringBytes+16 {
		return 0, nil, newFailure(MalformedFrame, "declared frame length out of range")
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(asReader(br), body); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return 0, nil, wrapFailure(EOFDuringFrame, "frame body shorter than declared length", err)
		}
		return 0, nil, wrapFailure(ReadTimeout, "reading frame body", err)
	}

	bodyBuf := bytes.NewReader(body)
	id, err := ReadVarInt(bodyBuf)
	if err != nil {
		return 0, nil, wrapFailure(MalformedFrame, "reading packet id", err)
	}

	rest := make([]byte, bodyBuf.Len())
	_, _ = bodyBuf.Read(rest)
	return id, rest, nil
}

// asReader adapts an io.ByteReader back to io.Reader for io.ReadFull;
// byteReader never wraps a reader that doesn't already support both.
func asReader(br io.ByteReader) io.Reader {
	if r, ok := br.(io.Reader); ok {
		return r
	}
	panic("slp: byteReader did not preserve io.Reader")
}

// readString reads a VarInt-length-prefixed UTF-8 string from payload,
// starting at offset 0; payload must contain exactly the string.
func readString(payload []byte) (string, error) {
	buf := bytes.NewReader(payload)
	n, err := ReadVarInt(buf)
	if err != nil {
		return "", wrapFailure(MalformedFrame, "reading string length", err)
	}
	if n < 0 || int(n) > maxStringBytes {
		return "", newFailure(MalformedFrame, "string length out of bounds")
	}
	if buf.Len() < int(n) {
		return "", newFailure(EOFDuringFrame, "string body shorter than declared length")
	}
	b := make([]byte, n)
	_, _ = buf.Read(b)
	return string(b), nil
}

// DecodeStatusResponse parses a status-response frame's payload (the
// inner String) into a ParsedStatus.
func DecodeStatusResponse(payload []byte) (*ParsedStatus, error) {
	jsonStr, err := readString(payload)
	if err != nil {
		return nil, err
	}

	var raw rawStatus
	if jsonErr := json.Unmarshal([]byte(jsonStr), &raw); jsonErr != nil {
		return nil, wrapFailure(InvalidJSON, "decoding status JSON", jsonErr)
	}
	return raw.toParsedStatus(), nil
}

// rawStatus mirrors the JSON shape servers advertise; unknown keys are
// ignored by virtue of not being modeled.
type rawStatus struct {
	Version *struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
	Players *struct {
		Online int32 `json:"online"`
		Max    int32 `json:"max"`
		Sample []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"sample"`
	} `json:"players"`
	Favicon            string `json:"favicon"`
	EnforcesSecureChat *bool  `json:"enforcesSecureChat"`
	ForgeData          *struct {
		Mods []struct {
			ModID     string `json:"modId"`
			ModMarker string `json:"modmarker"`
		} `json:"mods"`
	} `json:"forgeData"`
	ModInfo *struct {
		ModList []struct {
			ModID   string `json:"modid"`
			Version string `json:"version"`
		} `json:"modList"`
	} `json:"modinfo"`
}

// ParsedStatus is the normalized projection of a status response,
// consumed by model.Server.ParseStatus.
type ParsedStatus struct {
	ProtocolVersion    *int32
	ServerVersion      *string
	PlayersOnline      int32
	PlayersMax         int32
	SampleProvided     bool
	Sample             []SamplePlayer
	Favicon            string
	EnforcesSecureChat *bool
	Mods               []ParsedMod
}

// SamplePlayer is one entry of the status response's players.sample.
type SamplePlayer struct {
	Name string
	UUID string
}

// ParsedMod is one normalized Forge/FML mod entry.
type ParsedMod struct {
	ID      string
	Version string
}

func (r *rawStatus) toParsedStatus() *ParsedStatus {
	ps := &ParsedStatus{}

	if r.Version != nil {
		proto := r.Version.Protocol
		ps.ProtocolVersion = &proto
		if r.Version.Name != "" {
			name := r.Version.Name
			ps.ServerVersion = &name
		}
	}

	if r.Players != nil {
		ps.PlayersOnline = r.Players.Online
		ps.PlayersMax = r.Players.Max
		if r.Players.Sample != nil {
			ps.SampleProvided = true
			for _, s := range r.Players.Sample {
				ps.Sample = append(ps.Sample, SamplePlayer{Name: s.Name, UUID: s.ID})
			}
		}
	}

	ps.Favicon = r.Favicon
	ps.EnforcesSecureChat = r.EnforcesSecureChat

	switch {
	case r.ForgeData != nil:
		for _, m := range r.ForgeData.Mods {
			ps.Mods = append(ps.Mods, ParsedMod{ID: m.ModID, Version: m.ModMarker})
		}
	case r.ModInfo != nil:
		for _, m := range r.ModInfo.ModList {
			ps.Mods = append(ps.Mods, ParsedMod{ID: m.ModID, Version: m.Version})
		}
	}

	return ps
}
