package screens

import (
	"fmt"
	"time"

	"github.com/omnissa-archive/captive-web-view/internal/bridge"
)

// Spinner is the poll demo screen. The page shows a spinner and polls
// getStatus until it decides to stop. Command handling is synchronous on
// the bridge, so the counters need no locking.
type Spinner struct {
	started time.Time
	polls   int
}

func (screen *Spinner) CommandResponse(command string, envelope bridge.Envelope) error {
	switch command {
	case "ready":
		screen.started = time.Now()
		screen.polls = 0
		envelope["status"] = "Ready."
		return nil
	case "getStatus":
		if screen.started.IsZero() {
			screen.started = time.Now()
		}
		screen.polls++
		envelope["status"] = fmt.Sprintf("Poll %d.", screen.polls)
		envelope["polls"] = screen.polls
		envelope["elapsed"] = time.Since(screen.started).Seconds()
		return nil
	}
	return fmt.Errorf("%q: %w", command, bridge.ErrUnknownCommand)
}
