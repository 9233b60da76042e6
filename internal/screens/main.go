package screens

import (
	"fmt"

	"github.com/omnissa-archive/captive-web-view/internal/bridge"
)

// Version identifies the harness in ready responses and logs.
const Version = "1.0.0"

// Main is the menu screen. Navigation to the demo screens goes through the
// built-in load command, so ready is its whole vocabulary.
type Main struct{}

func (screen *Main) CommandResponse(command string, envelope bridge.Envelope) error {
	if command != "ready" {
		return fmt.Errorf("%q: %w", command, bridge.ErrUnknownCommand)
	}
	envelope["harness"] = map[string]any{
		"name":    "captive-web-view",
		"version": Version,
	}
	return nil
}
