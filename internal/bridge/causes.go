package bridge

import (
	"errors"
	"strings"
)

// ErrUnknownCommand is the sentinel a screen responder returns for a command
// that isn't in its own vocabulary. The dispatcher reacts by trying the
// built-in handlers, so screens delegate by returning it, possibly wrapped.
var ErrUnknownCommand = errors.New("unknown command")

// Causes walks the cause chain of err and returns one human-readable
// description per level, outermost first. A wrapping error contributes its
// own text with the text of what it wraps trimmed off, so each level appears
// once.
func Causes(err error) []string {
	var causes []string
	for err != nil {
		description := err.Error()
		inner := errors.Unwrap(err)
		if inner != nil {
			trimmed := strings.TrimSuffix(description, inner.Error())
			trimmed = strings.TrimSuffix(trimmed, ": ")
			if trimmed != "" {
				description = trimmed
			}
		}
		causes = append(causes, description)
		err = inner
	}
	return causes
}

// FlattenCauses renders a cause chain as the value of a `failed` field: a
// single description stays a plain string, longer chains become an array.
func FlattenCauses(err error) any {
	causes := Causes(err)
	if len(causes) == 1 {
		return causes[0]
	}
	return causes
}
