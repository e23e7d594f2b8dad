package radius

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// VerifyRequest checks the integrity of an inbound request against the
// client's shared secret.
//
// Accounting-Request carries a Request Authenticator computed as
// MD5(Code|Id|Length|16 zero octets|Attributes|Secret) per RFC 2866.
// Any request may additionally carry a Message-Authenticator attribute
// (HMAC-MD5 over the packet with that attribute zeroed, RFC 2869). Requests
// with neither check pass; Access-Request authenticators are random by
// definition and only verifiable via Message-Authenticator.
func VerifyRequest(m *Message, secret []byte) error {
	raw := m.raw
	if raw == nil {
		return fmt.Errorf("radius: message has no wire buffer to verify")
	}

	if m.Code == CodeAccountingRequest || m.Code == CodeStatusServer {
		h := md5.New()
		h.Write(raw[0:4])
		h.Write(make([]byte, 16))
		h.Write(raw[20:])
		h.Write(secret)
		if subtle.ConstantTimeCompare(h.Sum(nil), m.Authenticator[:]) != 1 {
			return fmt.Errorf("radius: bad request authenticator for %s id=%d", m.Code, m.Identifier)
		}
	}

	if ma := m.Lookup(AttrMessageAuthenticator); ma != nil {
		if len(ma.Value) != 16 {
			return fmt.Errorf("radius: malformed Message-Authenticator (%d bytes)", len(ma.Value))
		}
		mac := hmac.New(md5.New, secret)
		mac.Write(zeroedMessageAuthenticator(raw))
		if subtle.ConstantTimeCompare(mac.Sum(nil), ma.Value) != 1 {
			return fmt.Errorf("radius: bad Message-Authenticator for %s id=%d", m.Code, m.Identifier)
		}
	}
	return nil
}

// SignResponse finalizes an answer: fills the Response Authenticator
// MD5(Code|Id|Length|RequestAuth|Attributes|Secret) using the request's
// authenticator, returning the signed wire form.
func SignResponse(resp *Message, requestAuth [16]byte, secret []byte) ([]byte, error) {
	resp.Authenticator = requestAuth
	buf, err := Encode(resp)
	if err != nil {
		return nil, err
	}
	h := md5.New()
	h.Write(buf[0:4])
	h.Write(requestAuth[:])
	h.Write(buf[20:])
	h.Write(secret)
	sum := h.Sum(nil)
	copy(buf[4:20], sum)
	copy(resp.Authenticator[:], sum)
	return buf, nil
}

// DuplicateKey derives the duplicate-detection key for a request: the peer
// has retransmitted iff source, identifier and authenticator all match.
func DuplicateKey(m *Message) []byte {
	k := make([]byte, 0, 2+16+2)
	k = append(k, byte(m.Code), m.Identifier)
	k = append(k, m.Authenticator[:]...)
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(len(m.Attributes)))
	return append(k, n[:]...)
}

// zeroedMessageAuthenticator returns a copy of the packet with the
// Message-Authenticator attribute value zeroed for HMAC computation.
func zeroedMessageAuthenticator(raw []byte) []byte {
	out := append([]byte(nil), raw...)
	off := headerLen
	for off+2 <= len(out) {
		alen := int(out[off+1])
		if alen < 2 || off+alen > len(out) {
			break
		}
		if AttributeType(out[off]) == AttrMessageAuthenticator && alen == 18 {
			for i := off + 2; i < off+18; i++ {
				out[i] = 0
			}
		}
		off += alen
	}
	return out
}
