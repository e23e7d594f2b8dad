package plugins

import (
	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/diameter"
	"github.com/rzbill/radgw/internal/radius"
)

// AuthPlugin maps Access-Request attributes onto an AA-Request and the
// AA-Answer back onto an Access-Accept or Access-Reject.
type AuthPlugin struct{}

func NewAuthPlugin() *AuthPlugin { return &AuthPlugin{} }

func (*AuthPlugin) Name() string { return "auth" }

// requestMap lists the attributes carried over one-to-one. The AVP keeps the
// attribute's payload; all of them are mandatory on the NASREQ application.
var authRequestMap = map[radius.AttributeType]uint32{
	radius.AttrUserName:         diameter.AVPUserName,
	radius.AttrUserPassword:     diameter.AVPUserPassword,
	radius.AttrNASPort:          diameter.AVPNASPort,
	radius.AttrServiceType:      diameter.AVPServiceType,
	radius.AttrCallingStationID: diameter.AVPCallingStationID,
	radius.AttrClass:            diameter.AVPClass,
}

func (*AuthPlugin) TranslateRequest(m *radius.Message, sess *diameter.Session, out *diameter.Message, cli *clients.Client) (bool, error) {
	if m.Code != radius.CodeAccessRequest {
		return false, nil
	}
	consumeChecked(m)
	for i := range m.Attributes {
		if m.Consumed(i) {
			continue
		}
		code, ok := authRequestMap[m.Attributes[i].Type]
		if !ok {
			continue
		}
		out.Add(diameter.NewAVP(code, diameter.FlagMandatory, 0, m.Attributes[i].Value))
		m.Consume(i)
	}
	return false, nil
}

func (*AuthPlugin) TranslateAnswer(orig *radius.Message, sess *diameter.Session, ans *diameter.Message, out *radius.Message, cli *clients.Client) error {
	if orig.Code != radius.CodeAccessRequest {
		return nil
	}
	takeBaseAVPs(ans)

	if resultCode(ans) == resultSuccess {
		out.Code = radius.CodeAccessAccept
	} else {
		out.Code = radius.CodeAccessReject
	}

	if a := ans.Take(diameter.AVPReplyMessage, 0); a != nil {
		out.AddAttribute(radius.AttrReplyMessage, a.Data)
	}
	if a := ans.Take(diameter.AVPSessionTimeout, 0); a != nil {
		out.AddAttribute(radius.AttrSessionTimeout, a.Data)
	}
	for {
		a := ans.Take(diameter.AVPClass, 0)
		if a == nil {
			break
		}
		out.AddAttribute(radius.AttrClass, a.Data)
	}
	echoProxyState(orig, out)
	return nil
}
