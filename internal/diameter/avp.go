package diameter

import "strconv"

// Flags holds the AVP flag bits.
type Flags uint8

const (
	// FlagVendor marks a vendor-specific AVP (V bit).
	FlagVendor Flags = 0x80
	// FlagMandatory marks an AVP the receiver must understand (M bit).
	FlagMandatory Flags = 0x40
)

// Well-known AVP codes used by the gateway and its plugins.
const (
	AVPUserName         uint32 = 1
	AVPUserPassword     uint32 = 2
	AVPNASPort          uint32 = 5
	AVPServiceType      uint32 = 6
	AVPCallingStationID uint32 = 31
	AVPAuthAppID        uint32 = 258
	AVPAcctRecordType   uint32 = 480
	AVPAcctRecordNumber uint32 = 485
	AVPAcctSessionID    uint32 = 44
	AVPEventTimestamp   uint32 = 55
	AVPSessionID        uint32 = 263
	AVPOriginHost       uint32 = 264
	AVPOriginRealm      uint32 = 296
	AVPDestRealm        uint32 = 283
	AVPResultCode       uint32 = 268
	AVPRouteRecord      uint32 = 282
	AVPProxyInfo        uint32 = 284
	AVPReplyMessage     uint32 = 18
	AVPSessionTimeout   uint32 = 27
	AVPClass            uint32 = 25
)

// AVP is one node of the attribute tree of a Diameter message. Grouped AVPs
// carry children instead of data.
type AVP struct {
	Code     uint32
	Flags    Flags
	VendorID uint32
	Data     []byte
	Children []*AVP
}

// Mandatory reports whether the M bit is set.
func (a *AVP) Mandatory() bool { return a.Flags&FlagMandatory != 0 }

// Vendor reports whether the V bit is set.
func (a *AVP) Vendor() bool { return a.Flags&FlagVendor != 0 }

func (a *AVP) String() string {
	return "avp(" + strconv.FormatUint(uint64(a.Code), 10) + ")"
}

// NewAVP builds a data AVP.
func NewAVP(code uint32, flags Flags, vendorID uint32, data []byte) *AVP {
	return &AVP{Code: code, Flags: flags, VendorID: vendorID, Data: data}
}
