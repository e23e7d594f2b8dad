package plugins

import (
	"github.com/rzbill/radgw/internal/diameter"
	"github.com/rzbill/radgw/internal/radius"
)

// consumeChecked marks the attributes earlier pipeline stages already
// validated: origin identity, message integrity, and proxy bookkeeping.
// Proxy-State is not forwarded; it is echoed back verbatim when the answer
// is built.
func consumeChecked(m *radius.Message) {
	for i := range m.Attributes {
		switch m.Attributes[i].Type {
		case radius.AttrNASIdentifier, radius.AttrNASIPAddress,
			radius.AttrMessageAuthenticator, radius.AttrProxyState:
			m.Consume(i)
		}
	}
}

// echoProxyState copies the request's Proxy-State attributes into the answer
// in order, as RFC 2865 requires of anything that answers on a proxy path.
func echoProxyState(orig, out *radius.Message) {
	for i := range orig.Attributes {
		if orig.Attributes[i].Type == radius.AttrProxyState {
			out.AddAttribute(radius.AttrProxyState, orig.Attributes[i].Value)
		}
	}
}

// takeBaseAVPs removes the session and routing AVPs the gateway itself put
// on the request; their echoes in the answer carry no information for the
// client and must not trip the completeness audit.
func takeBaseAVPs(ans *diameter.Message) {
	for _, code := range []uint32{
		diameter.AVPSessionID,
		diameter.AVPOriginHost,
		diameter.AVPOriginRealm,
		diameter.AVPDestRealm,
		diameter.AVPAuthAppID,
	} {
		for ans.Take(code, 0) != nil {
		}
	}
}

// resultCode extracts and removes the Result-Code AVP, returning 0 when the
// answer carries none.
func resultCode(ans *diameter.Message) uint32 {
	a := ans.Take(diameter.AVPResultCode, 0)
	if a == nil || len(a.Data) < 4 {
		return 0
	}
	return uint32(a.Data[0])<<24 | uint32(a.Data[1])<<16 | uint32(a.Data[2])<<8 | uint32(a.Data[3])
}

// resultSuccess is the DIAMETER_SUCCESS Result-Code value.
const resultSuccess uint32 = 2001

func be32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
