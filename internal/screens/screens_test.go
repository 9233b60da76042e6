package screens

import (
	"errors"
	"testing"

	"github.com/omnissa-archive/captive-web-view/internal/bridge"
	"github.com/omnissa-archive/captive-web-view/internal/keystore"
)

func TestRegistryDefault(t *testing.T) {
	registry := Default(keystore.NewMemory())

	for _, page := range []string{PageMain, PageSpinner, PageKeyStore} {
		if !registry.Has(page) {
			t.Fatalf("page %q isn't registered", page)
		}
		if registry.New(page) == nil {
			t.Fatalf("page %q has no responder", page)
		}
	}
	// Page names are case-sensitive.
	if registry.Has("main") {
		t.Fatal(`page "main" shouldn't match "Main"`)
	}
	if registry.New("Missing") != nil {
		t.Fatal("unregistered page returned a responder")
	}
}

func TestSpinnerPolling(t *testing.T) {
	screen := &Spinner{}

	envelope := bridge.Envelope{"command": "ready"}
	if err := screen.CommandResponse("ready", envelope); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	if envelope["status"] != "Ready." {
		t.Fatalf("envelope %v: want ready status", envelope)
	}

	for want := 1; want <= 3; want++ {
		envelope := bridge.Envelope{"command": "getStatus"}
		if err := screen.CommandResponse("getStatus", envelope); err != nil {
			t.Fatalf("getStatus failed: %v", err)
		}
		if envelope["polls"] != want {
			t.Fatalf("envelope %v: want poll count %d", envelope, want)
		}
	}

	// ready starts the count over.
	if err := screen.CommandResponse("ready", bridge.Envelope{}); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	envelope = bridge.Envelope{"command": "getStatus"}
	if err := screen.CommandResponse("getStatus", envelope); err != nil {
		t.Fatalf("getStatus failed: %v", err)
	}
	if envelope["polls"] != 1 {
		t.Fatalf("envelope %v: want count reset", envelope)
	}
}

func TestSpinnerDelegatesUnknown(t *testing.T) {
	err := (&Spinner{}).CommandResponse("encrypt", bridge.Envelope{})
	if !errors.Is(err, bridge.ErrUnknownCommand) {
		t.Fatalf("err %v: want ErrUnknownCommand", err)
	}
}

func TestKeyStoreScreenCommands(t *testing.T) {
	screen := &KeyStore{Store: keystore.NewMemory()}

	run := func(command string, parameters map[string]any) bridge.Envelope {
		t.Helper()
		envelope := bridge.Envelope{"command": command}
		if parameters != nil {
			envelope["parameters"] = parameters
		}
		if err := screen.CommandResponse(command, envelope); err != nil {
			t.Fatalf("%s failed: %v", command, err)
		}
		if _, ok := envelope["results"]; !ok {
			t.Fatalf("%s response %v: want results key", command, envelope)
		}
		return envelope
	}

	run("capabilities", nil)
	run("generateKey", map[string]any{"alias": "demo"})
	run("generatePair", map[string]any{"alias": "pair"})

	envelope := run("summariseStore", nil)
	summaries, ok := envelope["results"].([]keystore.Attributes)
	if !ok || len(summaries) != 2 {
		t.Fatalf("results %v: want two summaries", envelope["results"])
	}

	envelope = run("encrypt", map[string]any{"alias": "demo", "sentinel": "sentinel"})
	result, ok := envelope["results"].(keystore.TestResult)
	if !ok || !result.Passed {
		t.Fatalf("results %v: want passing self-test", envelope["results"])
	}

	envelope = run("ready", nil)

	envelope = run("deleteAll", nil)
	deleted, ok := envelope["results"].(map[string]any)
	if !ok || deleted["deleted"] != 2 {
		t.Fatalf("results %v: want two deletions", envelope["results"])
	}
}

func TestKeyStoreScreenFailures(t *testing.T) {
	screen := &KeyStore{Store: keystore.NewMemory()}

	// Missing alias parameter.
	err := screen.CommandResponse("generateKey", bridge.Envelope{"command": "generateKey"})
	if err == nil || errors.Is(err, bridge.ErrUnknownCommand) {
		t.Fatalf("err %v: want a parameter failure", err)
	}

	// Encrypt with an entry that doesn't exist.
	err = screen.CommandResponse("encrypt", bridge.Envelope{
		"command":    "encrypt",
		"parameters": map[string]any{"alias": "nothing", "sentinel": "x"},
	})
	if err == nil || errors.Is(err, bridge.ErrUnknownCommand) {
		t.Fatalf("err %v: want a store failure", err)
	}

	// Command names are matched case-sensitively.
	err = screen.CommandResponse("GenerateKey", bridge.Envelope{"command": "GenerateKey"})
	if !errors.Is(err, bridge.ErrUnknownCommand) {
		t.Fatalf("err %v: want delegation for wrong case", err)
	}
}
