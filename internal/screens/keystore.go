package screens

import (
	"fmt"

	"github.com/omnissa-archive/captive-web-view/internal/bridge"
	"github.com/omnissa-archive/captive-web-view/internal/keystore"
)

// KeyStore is the crypto demo screen. Domain results go under a `results`
// key; failures from the store come back as cause chains through the
// dispatcher boundary.
type KeyStore struct {
	Store *keystore.Store
}

func (screen *KeyStore) CommandResponse(command string, envelope bridge.Envelope) error {
	switch command {
	case "ready":
		summaries, err := screen.Store.Summarise()
		if err != nil {
			return fmt.Errorf("ready command failed: %w", err)
		}
		envelope["results"] = map[string]any{
			"capabilities": keystore.Capabilities(),
			"store":        summaries,
		}
		return nil

	case "capabilities":
		envelope["results"] = keystore.Capabilities()
		return nil

	case "summariseStore":
		summaries, err := screen.Store.Summarise()
		if err != nil {
			return fmt.Errorf("summariseStore command failed: %w", err)
		}
		envelope["results"] = summaries
		return nil

	case "deleteAll":
		deleted, err := screen.Store.DeleteAll()
		if err != nil {
			return fmt.Errorf("deleteAll command failed: %w", err)
		}
		envelope["results"] = map[string]any{"deleted": deleted}
		return nil

	case "generateKey":
		return screen.generate(envelope, screen.Store.GenerateKey)

	case "generatePair":
		return screen.generate(envelope, screen.Store.GeneratePair)

	case "encrypt":
		alias, err := envelope.StringParameter("alias")
		if err != nil {
			return fmt.Errorf("encrypt command: %w", err)
		}
		sentinel, err := envelope.StringParameter("sentinel")
		if err != nil {
			return fmt.Errorf("encrypt command: %w", err)
		}
		result, err := screen.Store.Encrypt(alias, sentinel)
		if err != nil {
			return fmt.Errorf("encrypt command failed: %w", err)
		}
		envelope["results"] = result
		return nil
	}
	return fmt.Errorf("%q: %w", command, bridge.ErrUnknownCommand)
}

func (screen *KeyStore) generate(
	envelope bridge.Envelope, generate func(string) (keystore.Attributes, error),
) error {
	command, _ := envelope.Command()
	alias, err := envelope.StringParameter("alias")
	if err != nil {
		return fmt.Errorf("%s command: %w", command, err)
	}
	attributes, err := generate(alias)
	if err != nil {
		return fmt.Errorf("%s command failed: %w", command, err)
	}
	envelope["results"] = attributes
	return nil
}
