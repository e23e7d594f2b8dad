package radius

import "strconv"

// Code is a RADIUS command code (RFC 2865/2866).
type Code uint8

const (
	CodeAccessRequest      Code = 1
	CodeAccessAccept       Code = 2
	CodeAccessReject       Code = 3
	CodeAccountingRequest  Code = 4
	CodeAccountingResponse Code = 5
	CodeAccessChallenge    Code = 11
	CodeStatusServer       Code = 12
	CodeStatusClient       Code = 13
)

var codeNames = map[Code]string{
	CodeAccessRequest:      "Access-Request",
	CodeAccessAccept:       "Access-Accept",
	CodeAccessReject:       "Access-Reject",
	CodeAccountingRequest:  "Accounting-Request",
	CodeAccountingResponse: "Accounting-Response",
	CodeAccessChallenge:    "Access-Challenge",
	CodeStatusServer:       "Status-Server",
	CodeStatusClient:       "Status-Client",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "Code-" + strconv.Itoa(int(c))
}

// AttributeType identifies a RADIUS attribute.
type AttributeType uint8

const (
	AttrUserName             AttributeType = 1
	AttrUserPassword         AttributeType = 2
	AttrCHAPPassword         AttributeType = 3
	AttrNASIPAddress         AttributeType = 4
	AttrNASPort              AttributeType = 5
	AttrServiceType          AttributeType = 6
	AttrFramedProtocol       AttributeType = 7
	AttrFramedIPAddress      AttributeType = 8
	AttrReplyMessage         AttributeType = 18
	AttrState                AttributeType = 24
	AttrClass                AttributeType = 25
	AttrVendorSpecific       AttributeType = 26
	AttrSessionTimeout       AttributeType = 27
	AttrCalledStationID      AttributeType = 30
	AttrCallingStationID     AttributeType = 31
	AttrNASIdentifier        AttributeType = 32
	AttrProxyState           AttributeType = 33
	AttrAcctStatusType       AttributeType = 40
	AttrAcctSessionID        AttributeType = 44
	AttrEventTimestamp       AttributeType = 55
	AttrMessageAuthenticator AttributeType = 80
)

var attrNames = map[AttributeType]string{
	AttrUserName:             "User-Name",
	AttrUserPassword:         "User-Password",
	AttrCHAPPassword:         "CHAP-Password",
	AttrNASIPAddress:         "NAS-IP-Address",
	AttrNASPort:              "NAS-Port",
	AttrServiceType:          "Service-Type",
	AttrFramedProtocol:       "Framed-Protocol",
	AttrFramedIPAddress:      "Framed-IP-Address",
	AttrReplyMessage:         "Reply-Message",
	AttrState:                "State",
	AttrClass:                "Class",
	AttrVendorSpecific:       "Vendor-Specific",
	AttrSessionTimeout:       "Session-Timeout",
	AttrCalledStationID:      "Called-Station-Id",
	AttrCallingStationID:     "Calling-Station-Id",
	AttrNASIdentifier:        "NAS-Identifier",
	AttrProxyState:           "Proxy-State",
	AttrAcctStatusType:       "Acct-Status-Type",
	AttrAcctSessionID:        "Acct-Session-Id",
	AttrEventTimestamp:       "Event-Timestamp",
	AttrMessageAuthenticator: "Message-Authenticator",
}

func (a AttributeType) String() string {
	if s, ok := attrNames[a]; ok {
		return s
	}
	return "Attribute-" + strconv.Itoa(int(a))
}
