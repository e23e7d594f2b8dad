package radius

import (
	"encoding/binary"
	"fmt"
)

const (
	headerLen = 20
	// MaxPacketLen is the RFC 2865 upper bound for one RADIUS packet.
	MaxPacketLen = 4096
)

// Parse decodes a wire buffer into a Message. The buffer is retained on the
// message for authenticator verification and duplicate hashing.
func Parse(buf []byte) (*Message, error) {
	if len(buf) < headerLen {
		return nil, fmt.Errorf("radius: packet too short: %d bytes", len(buf))
	}
	length := int(binary.BigEndian.Uint16(buf[2:4]))
	if length < headerLen || length > MaxPacketLen || length > len(buf) {
		return nil, fmt.Errorf("radius: bad length field %d (buffer %d)", length, len(buf))
	}

	m := &Message{
		Code:       Code(buf[0]),
		Identifier: buf[1],
		raw:        append([]byte(nil), buf[:length]...),
	}
	copy(m.Authenticator[:], buf[4:20])

	// attributes are a flat TLV sequence: type(1) length(1, incl. header) value
	off := headerLen
	for off < length {
		if length-off < 2 {
			return nil, fmt.Errorf("radius: truncated attribute header at offset %d", off)
		}
		alen := int(buf[off+1])
		if alen < 2 || off+alen > length {
			return nil, fmt.Errorf("radius: bad attribute length %d at offset %d", alen, off)
		}
		m.Attributes = append(m.Attributes, Attribute{
			Type:  AttributeType(buf[off]),
			Value: append([]byte(nil), buf[off+2:off+alen]...),
		})
		off += alen
	}
	m.consumed = make([]bool, len(m.Attributes))
	return m, nil
}

// Encode serializes the message to wire form. The authenticator field is
// written as-is; callers sign responses via SignResponse afterwards.
func Encode(m *Message) ([]byte, error) {
	length := headerLen
	for i := range m.Attributes {
		alen := 2 + len(m.Attributes[i].Value)
		if alen > 255 {
			return nil, fmt.Errorf("radius: attribute %s value too long (%d bytes)",
				m.Attributes[i].Type, len(m.Attributes[i].Value))
		}
		length += alen
	}
	if length > MaxPacketLen {
		return nil, fmt.Errorf("radius: packet too long: %d bytes", length)
	}

	buf := make([]byte, length)
	buf[0] = byte(m.Code)
	buf[1] = m.Identifier
	binary.BigEndian.PutUint16(buf[2:4], uint16(length))
	copy(buf[4:20], m.Authenticator[:])

	off := headerLen
	for i := range m.Attributes {
		a := &m.Attributes[i]
		buf[off] = byte(a.Type)
		buf[off+1] = byte(2 + len(a.Value))
		copy(buf[off+2:], a.Value)
		off += 2 + len(a.Value)
	}
	return buf, nil
}
