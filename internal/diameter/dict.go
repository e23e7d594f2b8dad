package diameter

import (
	"fmt"
	"strings"
)

// Rule constrains how often an AVP may occur at the top level of a command.
type Rule struct {
	Code     uint32
	VendorID uint32
	Min      int
	Max      int // 0 means unbounded
}

// Dictionary holds the per-command structural rules outbound messages must
// satisfy before dispatch.
type Dictionary struct {
	rules map[uint32][]Rule
}

// Default returns the dictionary for the commands the gateway emits.
func Default() *Dictionary {
	return &Dictionary{rules: map[uint32][]Rule{
		CmdAA: {
			{Code: AVPSessionID, Min: 1, Max: 1},
			{Code: AVPAuthAppID, Min: 1, Max: 1},
			{Code: AVPOriginHost, Min: 1, Max: 1},
			{Code: AVPOriginRealm, Min: 1, Max: 1},
			{Code: AVPDestRealm, Min: 1, Max: 1},
			{Code: AVPUserName, Min: 0, Max: 1},
			{Code: AVPUserPassword, Min: 0, Max: 1},
		},
		CmdAccounting: {
			{Code: AVPSessionID, Min: 1, Max: 1},
			{Code: AVPOriginHost, Min: 1, Max: 1},
			{Code: AVPOriginRealm, Min: 1, Max: 1},
			{Code: AVPDestRealm, Min: 1, Max: 1},
			{Code: AVPAcctRecordType, Min: 1, Max: 1},
			{Code: AVPAcctRecordNumber, Min: 1, Max: 1},
		},
	}}
}

// Validate checks a message against the command's rules. The returned error
// lists every violated rule so the caller can log a full diagnostic.
func (d *Dictionary) Validate(m *Message) error {
	if m == nil {
		return fmt.Errorf("diameter: nil message")
	}
	rules, ok := d.rules[m.Command]
	if !ok {
		return fmt.Errorf("diameter: no dictionary rules for command %s", CommandName(m.Command))
	}

	counts := make(map[[2]uint32]int, len(m.AVPs))
	for _, a := range m.AVPs {
		counts[[2]uint32{a.Code, a.VendorID}]++
	}

	var problems []string
	for _, r := range rules {
		n := counts[[2]uint32{r.Code, r.VendorID}]
		if n < r.Min {
			problems = append(problems, fmt.Sprintf("avp %d occurs %d time(s), minimum %d", r.Code, n, r.Min))
		}
		if r.Max > 0 && n > r.Max {
			problems = append(problems, fmt.Sprintf("avp %d occurs %d time(s), maximum %d", r.Code, n, r.Max))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("diameter: %s fails dictionary rules: %s",
			CommandName(m.Command), strings.Join(problems, "; "))
	}
	return nil
}
