package diameter

import "strconv"

// Command codes for the applications the gateway translates to.
const (
	CmdAA         uint32 = 265 // AA-Request / AA-Answer (NASREQ)
	CmdAccounting uint32 = 271 // Accounting-Request / Accounting-Answer
)

// Application ids.
const (
	AppNASREQ     uint32 = 1
	AppAccounting uint32 = 3
)

// Message is a target-protocol message: command header plus a tree of AVPs.
type Message struct {
	Command  uint32
	AppID    uint32
	Request  bool
	HopByHop uint32
	EndToEnd uint32
	AVPs     []*AVP
}

// NewRequest builds an empty request for the given command/application.
func NewRequest(command, appID uint32) *Message {
	return &Message{Command: command, AppID: appID, Request: true}
}

// NewAnswer builds an empty answer matching a request's identifiers.
func (m *Message) NewAnswer() *Message {
	return &Message{
		Command:  m.Command,
		AppID:    m.AppID,
		HopByHop: m.HopByHop,
		EndToEnd: m.EndToEnd,
	}
}

// Add appends a top-level AVP.
func (m *Message) Add(a *AVP) { m.AVPs = append(m.AVPs, a) }

// Lookup returns the first top-level AVP with the given code and vendor id,
// or nil.
func (m *Message) Lookup(code, vendorID uint32) *AVP {
	for _, a := range m.AVPs {
		if a.Code == code && a.VendorID == vendorID {
			return a
		}
	}
	return nil
}

// Take removes and returns the first top-level AVP with the given code and
// vendor id. Answer-side plugins call it as they translate AVPs back, so the
// mandatory audit only sees what nobody handled.
func (m *Message) Take(code, vendorID uint32) *AVP {
	for i, a := range m.AVPs {
		if a.Code == code && a.VendorID == vendorID {
			m.AVPs = append(m.AVPs[:i], m.AVPs[i+1:]...)
			return a
		}
	}
	return nil
}

// CommandName returns a diagnostic name for the command code.
func CommandName(command uint32) string {
	switch command {
	case CmdAA:
		return "AA"
	case CmdAccounting:
		return "Accounting"
	}
	return "Cmd-" + strconv.FormatUint(uint64(command), 10)
}
