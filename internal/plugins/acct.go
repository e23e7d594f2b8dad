package plugins

import (
	"encoding/binary"
	"fmt"

	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/diameter"
	"github.com/rzbill/radgw/internal/radius"
)

// AcctPlugin maps Accounting-Request attributes onto an Accounting-Request
// and a successful Accounting-Answer back onto an Accounting-Response. A
// failed answer produces no response at all; accounting has no negative
// acknowledgement and the client will retransmit.
type AcctPlugin struct{}

func NewAcctPlugin() *AcctPlugin { return &AcctPlugin{} }

func (*AcctPlugin) Name() string { return "acct" }

// Acct-Status-Type values (RFC 2866) to Accounting-Record-Type values
// (RFC 6733 section 9.8.1).
const (
	acctStatusStart         = 1
	acctStatusStop          = 2
	acctStatusInterimUpdate = 3
	acctStatusAccountingOn  = 7
	acctStatusAccountingOff = 8

	recordEvent   uint32 = 1
	recordStart   uint32 = 2
	recordInterim uint32 = 3
	recordStop    uint32 = 4
)

func recordType(status uint32) (uint32, error) {
	switch status {
	case acctStatusStart:
		return recordStart, nil
	case acctStatusStop:
		return recordStop, nil
	case acctStatusInterimUpdate:
		return recordInterim, nil
	case acctStatusAccountingOn, acctStatusAccountingOff:
		return recordEvent, nil
	}
	return 0, fmt.Errorf("plugins: unknown Acct-Status-Type %d", status)
}

func (*AcctPlugin) TranslateRequest(m *radius.Message, sess *diameter.Session, out *diameter.Message, cli *clients.Client) (bool, error) {
	if m.Code != radius.CodeAccountingRequest {
		return false, nil
	}
	consumeChecked(m)
	for i := range m.Attributes {
		if m.Consumed(i) {
			continue
		}
		a := &m.Attributes[i]
		switch a.Type {
		case radius.AttrAcctStatusType:
			if len(a.Value) != 4 {
				return false, fmt.Errorf("plugins: malformed Acct-Status-Type")
			}
			rt, err := recordType(binary.BigEndian.Uint32(a.Value))
			if err != nil {
				return false, err
			}
			out.Add(diameter.NewAVP(diameter.AVPAcctRecordType, diameter.FlagMandatory, 0, be32(rt)))
			// One record per message; the gateway holds no accounting state.
			out.Add(diameter.NewAVP(diameter.AVPAcctRecordNumber, diameter.FlagMandatory, 0, be32(0)))
		case radius.AttrUserName:
			out.Add(diameter.NewAVP(diameter.AVPUserName, diameter.FlagMandatory, 0, a.Value))
		case radius.AttrAcctSessionID:
			out.Add(diameter.NewAVP(diameter.AVPAcctSessionID, diameter.FlagMandatory, 0, a.Value))
		case radius.AttrEventTimestamp:
			out.Add(diameter.NewAVP(diameter.AVPEventTimestamp, diameter.FlagMandatory, 0, a.Value))
		case radius.AttrClass:
			out.Add(diameter.NewAVP(diameter.AVPClass, diameter.FlagMandatory, 0, a.Value))
		default:
			continue
		}
		m.Consume(i)
	}
	return false, nil
}

func (*AcctPlugin) TranslateAnswer(orig *radius.Message, sess *diameter.Session, ans *diameter.Message, out *radius.Message, cli *clients.Client) error {
	if orig.Code != radius.CodeAccountingRequest {
		return nil
	}
	takeBaseAVPs(ans)
	ans.Take(diameter.AVPAcctRecordType, 0)
	ans.Take(diameter.AVPAcctRecordNumber, 0)

	if resultCode(ans) != resultSuccess {
		// Leave out.Code zero: the answer is suppressed rather than turned
		// into a response the protocol does not have.
		return nil
	}
	out.Code = radius.CodeAccountingResponse
	echoProxyState(orig, out)
	return nil
}
