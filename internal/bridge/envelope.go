// Package bridge implements the JSON command protocol between a captive web
// view and its native host: the command envelope, the dispatcher with its
// built-in command handlers, and the flattening of error cause chains into
// the `failed` field of a response.
package bridge

import (
	"encoding/json"
	"fmt"
)

// Envelope is one command object received from the web layer, and the
// response object sent back. It is mutated in place while a command is
// handled. Every response carries exactly one of `confirm` or `failed`.
type Envelope map[string]any

// Field names with protocol meaning.
const (
	fieldCommand    = "command"
	fieldParameters = "parameters"
	fieldLoad       = "load"
	fieldConfirm    = "confirm"
	fieldFailed     = "failed"
)

// Parse decodes a JSON command object.
func Parse(data []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("envelope isn't a JSON object: %w", err)
	}
	if envelope == nil {
		// JSON null decodes without error but leaves the map nil.
		return nil, fmt.Errorf("envelope is null")
	}
	return envelope, nil
}

// Command returns the `command` field, if it is present and a string.
func (envelope Envelope) Command() (string, bool) {
	command, ok := envelope[fieldCommand].(string)
	return command, ok
}

// Parameters returns the `parameters` object, or nil if it is absent.
func (envelope Envelope) Parameters() map[string]any {
	parameters, _ := envelope[fieldParameters].(map[string]any)
	return parameters
}

// LoadPage returns the `load` field, the name of a page that the host view
// should show after the command has been handled. This is distinct from the
// `load` command.
func (envelope Envelope) LoadPage() (string, bool) {
	page, ok := envelope[fieldLoad].(string)
	return page, ok && page != ""
}

// StringParameter returns the named required parameter. It fails if the
// `parameters` object is missing, or the parameter is missing or isn't a
// string.
func (envelope Envelope) StringParameter(name string) (string, error) {
	parameters := envelope.Parameters()
	if parameters == nil {
		return "", fmt.Errorf(`command has no "parameters"`)
	}
	value, ok := parameters[name]
	if !ok {
		return "", fmt.Errorf("no parameter %q", name)
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q isn't a string", name)
	}
	return text, nil
}

// BoolParameter returns the named optional parameter, false if absent.
func (envelope Envelope) BoolParameter(name string) bool {
	parameters := envelope.Parameters()
	if parameters == nil {
		return false
	}
	value, _ := parameters[name].(bool)
	return value
}

// Confirmed reports whether a `confirm` field has been set already.
func (envelope Envelope) Confirmed() bool {
	_, ok := envelope[fieldConfirm]
	return ok
}

// Failed reports whether a `failed` field has been set already.
func (envelope Envelope) Failed() bool {
	_, ok := envelope[fieldFailed]
	return ok
}
