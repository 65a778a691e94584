package history

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// Version is the current container format version. It prefixes the file as a
// big-endian u32, outside the compressed block, so loaders can reject what
// they cannot read before touching the payload.
const Version uint32 = 2

// versionNoVars is the last format version without a variable snapshot.
// Containers of this version migrate forward to an empty snapshot.
const versionNoVars uint32 = 1

// headerLen is the length of the uncompressed version prefix.
const headerLen = 4

// errUnknownVersion marks a version the deserializer has no payload layout
// for; the loader turns it into LoadIncompatibleVersion.
var errUnknownVersion = errors.New("unknown format version")

// Wire layouts. Identifiers travel as canonical uuid strings and times as
// Unix nanoseconds; numbers travel as decimal strings (see NumberRecord).
type (
	wireEntry struct {
		ID        string        `msgpack:"id"`
		Time      int64         `msgpack:"time"`
		Input     string        `msgpack:"input"`
		Result    *NumberRecord `msgpack:"result"`
		Err       string        `msgpack:"err"`
		Rendition string        `msgpack:"rendition"`
	}
	wireSession struct {
		ID      string      `msgpack:"id"`
		Start   int64       `msgpack:"start"`
		Entries []wireEntry `msgpack:"entries"`
	}
	wirePayload struct {
		Vars     []VarRecord   `msgpack:"vars"`
		Sessions []wireSession `msgpack:"sessions"`
	}
	// wirePayloadV1 is the versionNoVars layout.
	wirePayloadV1 struct {
		Sessions []wireSession `msgpack:"sessions"`
	}
)

// encode serializes, compresses, and version-prefixes a container.
func encode(c *Container) ([]byte, error) {
	raw, err := msgpack.Marshal(toWire(c))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	var hdr [headerLen]byte
	binary.BigEndian.PutUint32(hdr[:], Version)
	buf.Write(hdr[:])
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// splitHeader separates the version prefix from the compressed block.
func splitHeader(data []byte) (version uint32, block []byte, err error) {
	if len(data) < headerLen {
		return 0, nil, errors.New("short file")
	}
	return binary.BigEndian.Uint32(data[:headerLen]), data[headerLen:], nil
}

// decompress expands the lz4 block into the serialized payload.
func decompress(block []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(block)))
}

// deserialize decodes a payload of the given version into a container,
// applying forward migrations for older versions.
func deserialize(version uint32, raw []byte) (*Container, error) {
	switch version {
	case Version:
		var p wirePayload
		if err := msgpack.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return fromWire(&p)
	case versionNoVars:
		var p wirePayloadV1
		if err := msgpack.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return fromWire(&wirePayload{Sessions: p.Sessions})
	default:
		return nil, errUnknownVersion
	}
}

func toWire(c *Container) *wirePayload {
	p := &wirePayload{
		Vars:     c.Vars,
		Sessions: make([]wireSession, 0, len(c.Sessions)),
	}
	for _, s := range c.Sessions {
		ws := wireSession{
			ID:      s.ID.String(),
			Start:   s.Start.UnixNano(),
			Entries: make([]wireEntry, 0, len(s.Entries)),
		}
		for _, e := range s.Entries {
			ws.Entries = append(ws.Entries, wireEntry{
				ID:        e.ID.String(),
				Time:      e.Time.UnixNano(),
				Input:     e.Input,
				Result:    e.Result,
				Err:       e.Err,
				Rendition: e.Rendition,
			})
		}
		p.Sessions = append(p.Sessions, ws)
	}
	return p
}

func fromWire(p *wirePayload) (*Container, error) {
	c := &Container{
		Vars:     p.Vars,
		Sessions: make([]*Session, 0, len(p.Sessions)),
	}
	for _, ws := range p.Sessions {
		id, err := uuid.Parse(ws.ID)
		if err != nil {
			return nil, err
		}
		s := &Session{
			ID:      id,
			Start:   time.Unix(0, ws.Start),
			Entries: make([]Entry, 0, len(ws.Entries)),
		}
		for _, we := range ws.Entries {
			eid, err := uuid.Parse(we.ID)
			if err != nil {
				return nil, err
			}
			s.Entries = append(s.Entries, Entry{
				ID:        eid,
				Time:      time.Unix(0, we.Time),
				Input:     we.Input,
				Result:    we.Result,
				Err:       we.Err,
				Rendition: we.Rendition,
			})
		}
		c.Sessions = append(c.Sessions, s)
	}
	c.sortSessions()
	return c, nil
}
