package bridge

import "fmt"

// close marks the envelope closed then ends the current screen. The screen
// handles no further commands after the host returns.
func (dispatcher *Dispatcher) close(envelope Envelope) error {
	envelope["closed"] = true
	if err := dispatcher.host().Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return nil
}

// focus requests input focus for the hosted view. The response reports
// whether focus was granted.
func (dispatcher *Dispatcher) focus(envelope Envelope) error {
	envelope["focussed"] = dispatcher.host().Focus()
	return nil
}

// load navigates to the screen registered for parameters.page. The page
// name comes back in the confirm field, confirming that navigation was
// initiated, not that it completed.
func (dispatcher *Dispatcher) load(envelope Envelope) error {
	page, err := envelope.StringParameter("page")
	if err != nil {
		return fmt.Errorf("load command: %w", err)
	}
	if dispatcher.Pages == nil || !dispatcher.Pages.Has(page) {
		return fmt.Errorf("load command: page %q isn't in the page registry", page)
	}
	if err := dispatcher.host().Navigate(page); err != nil {
		return fmt.Errorf("load command: navigation to %q failed: %w", page, err)
	}
	envelope[fieldConfirm] = page
	return nil
}
