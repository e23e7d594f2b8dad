package gateway

import (
	"time"

	"github.com/rzbill/radgw/internal/diameter"
)

// LoopbackDispatcher answers every dispatched request itself with a success
// Result-Code after an optional delay. It stands in for a real peer
// connection in tests and local runs; the callback fires on its own
// goroutine, like a real transport's receive loop would.
type LoopbackDispatcher struct {
	Delay time.Duration
}

func (d *LoopbackDispatcher) Dispatch(m *diameter.Message, cb AnswerCallback, rec *CorrelationRecord) error {
	go func() {
		if d.Delay > 0 {
			time.Sleep(d.Delay)
		}
		ans := m.NewAnswer()
		ans.Add(diameter.NewAVP(diameter.AVPResultCode, diameter.FlagMandatory, 0, []byte{0, 0, 0x07, 0xD1}))
		cb(rec, ans)
	}()
	return nil
}
