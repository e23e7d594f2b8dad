package radius

import (
	"bytes"
	"testing"
)

func buildPacket(t *testing.T, code Code, id uint8, attrs []Attribute) []byte {
	t.Helper()
	m := New(code, id)
	for _, a := range attrs {
		m.AddAttribute(a.Type, a.Value)
	}
	buf, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf
}

func TestParseEncodeRoundTrip(t *testing.T) {
	buf := buildPacket(t, CodeAccessRequest, 42, []Attribute{
		{Type: AttrUserName, Value: []byte("alice")},
		{Type: AttrNASIdentifier, Value: []byte("nas-1")},
	})
	m, err := Parse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Code != CodeAccessRequest || m.Identifier != 42 {
		t.Fatalf("header: %v id=%d", m.Code, m.Identifier)
	}
	if len(m.Attributes) != 2 {
		t.Fatalf("attrs: %d", len(m.Attributes))
	}
	if ua := m.Lookup(AttrUserName); ua == nil || string(ua.Value) != "alice" {
		t.Fatalf("user-name attr missing")
	}
	out, err := Encode(m)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(out, buf) {
		t.Fatalf("round trip mismatch")
	}
}

func TestParseRejectsBadPackets(t *testing.T) {
	cases := map[string][]byte{
		"short":          make([]byte, 10),
		"length too big": {1, 1, 0xFF, 0xFF, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	for name, buf := range cases {
		if _, err := Parse(buf); err == nil {
			t.Fatalf("%s: want parse error", name)
		}
	}

	// truncated attribute
	buf := buildPacket(t, CodeAccessRequest, 1, []Attribute{{Type: AttrUserName, Value: []byte("x")}})
	buf[21] = 200 // attribute length beyond packet
	if _, err := Parse(buf); err == nil {
		t.Fatalf("want error for bad attribute length")
	}
}

func TestConsumptionTracking(t *testing.T) {
	buf := buildPacket(t, CodeAccessRequest, 7, []Attribute{
		{Type: AttrUserName, Value: []byte("a")},
		{Type: AttrNASPort, Value: []byte{0, 0, 0, 1}},
		{Type: AttrCallingStationID, Value: []byte("b")},
	})
	m, err := Parse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := len(m.Unconsumed()); got != 3 {
		t.Fatalf("want 3 unconsumed, got %d", got)
	}
	m.Consume(0)
	m.Consume(2)
	left := m.Unconsumed()
	if len(left) != 1 || left[0] != 1 {
		t.Fatalf("want index 1 left, got %v", left)
	}
	if m.Consumed(1) || !m.Consumed(0) {
		t.Fatalf("consumed flags wrong")
	}
}
