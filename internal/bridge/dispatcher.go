package bridge

import (
	"errors"
	"fmt"
)

// Built-in command vocabulary. Command names are matched case-sensitively
// against the literal strings sent by the web layer.
const (
	CommandClose = "close"
	CommandFetch = "fetch"
	CommandFocus = "focus"
	CommandLoad  = "load"
	CommandWrite = "write"
)

// Host is the native side of the bridge. Page loads are deferred: the
// implementation queues them onto its single writer goroutine, because
// Handle may run anywhere.
type Host interface {
	// ShowPage queues a load of the named web asset into the hosted view.
	ShowPage(name string) error
	// Navigate switches the host to the screen registered for the page.
	Navigate(page string) error
	// Focus requests input focus for the hosted view and reports whether
	// focus was granted.
	Focus() bool
	// Close ends the current screen. No further commands reach the screen
	// after it returns.
	Close() error
}

// Responder is the application-specific hook. A screen mutates the envelope
// for commands it recognises and returns ErrUnknownCommand, possibly
// wrapped, for anything else, which drops the command through to the
// built-in handlers.
type Responder interface {
	CommandResponse(command string, envelope Envelope) error
}

// PageRegistry resolves page names for the load command. Populated once at
// startup, read-only afterwards.
type PageRegistry interface {
	Has(page string) bool
}

// Dispatcher handles one screen's command round trips.
type Dispatcher struct {
	// Screen names the handling screen in generic confirmation messages.
	Screen string
	Host   Host
	Pages  PageRegistry
	// Responder is consulted before the built-in handlers. Optional.
	Responder Responder
	// Storage is the sandboxed directory the write command targets.
	Storage string
	// Fetcher serves the fetch command. A zero Fetcher is used when nil.
	Fetcher *Fetcher
}

// Handle runs one command round trip. The envelope is mutated into the
// response. Handle never panics and never reports an error to its caller:
// any failure is flattened into the `failed` field, and every response
// carries exactly one of `confirm` and `failed`.
func (dispatcher *Dispatcher) Handle(envelope Envelope) (response Envelope) {
	response = envelope
	defer func() {
		if recovered := recover(); recovered != nil {
			response.fail(fmt.Errorf("command handler panic: %v", recovered))
		}
	}()

	if err := dispatcher.dispatch(envelope); err != nil {
		response.fail(err)
		return response
	}
	if response.Failed() {
		// A handler wrote the failure description itself.
		delete(response, fieldConfirm)
		return response
	}

	if page, ok := response.LoadPage(); ok {
		if err := dispatcher.host().ShowPage(page); err != nil {
			response.fail(fmt.Errorf("load of %q couldn't be scheduled: %w", page, err))
			return response
		}
		response[fieldConfirm] = fmt.Sprintf(
			"%s will load %q in the host view.", dispatcher.Screen, page)
	} else if !response.Confirmed() {
		response[fieldConfirm] = dispatcher.Screen + " bridge OK."
	}
	return response
}

// dispatch resolves the command, trying the screen responder first and the
// built-in handlers second. An envelope without a command passes through.
func (dispatcher *Dispatcher) dispatch(envelope Envelope) error {
	command, ok := envelope.Command()
	if !ok {
		return nil
	}

	if dispatcher.Responder != nil {
		err := dispatcher.Responder.CommandResponse(command, envelope)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrUnknownCommand) {
			return err
		}
	}

	switch command {
	case CommandClose:
		return dispatcher.close(envelope)
	case CommandFetch:
		return dispatcher.fetch(envelope)
	case CommandFocus:
		return dispatcher.focus(envelope)
	case CommandLoad:
		return dispatcher.load(envelope)
	case CommandWrite:
		return dispatcher.write(envelope)
	}
	return fmt.Errorf("unknown command %q", command)
}

func (envelope Envelope) fail(err error) {
	delete(envelope, fieldConfirm)
	envelope[fieldFailed] = FlattenCauses(err)
}

func (dispatcher *Dispatcher) host() Host {
	if dispatcher.Host == nil {
		return noHost{}
	}
	return dispatcher.Host
}

// noHost stands in when no host view is attached, for example a command
// posted before any web socket session is up. Page loads and closes succeed
// as no-ops; focus is never granted.
type noHost struct{}

func (noHost) ShowPage(string) error { return nil }
func (noHost) Navigate(string) error { return nil }
func (noHost) Focus() bool           { return false }
func (noHost) Close() error          { return nil }
