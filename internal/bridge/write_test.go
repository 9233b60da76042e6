package bridge

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteRoundTrip(t *testing.T) {
	dispatcher := newTestDispatcher(t, &fakeHost{})
	response := dispatcher.Handle(Envelope{
		"command": "write",
		"parameters": map[string]any{
			"filename": "a.txt",
			"text":     "hello",
		},
	})

	checkExactlyOne(t, response)
	wrote, ok := response["wrote"].(string)
	if !ok {
		t.Fatalf("response %v: want wrote path", response)
	}
	if !filepath.IsAbs(wrote) {
		t.Fatalf("wrote %q: want absolute path", wrote)
	}
	contents, err := os.ReadFile(wrote)
	if err != nil {
		t.Fatalf("reading %q: %v", wrote, err)
	}
	if string(contents) != "hello" {
		t.Fatalf("contents %q: want hello", contents)
	}
}

func TestWriteBase64Decode(t *testing.T) {
	raw := []byte{0, 1, 2}
	dispatcher := newTestDispatcher(t, &fakeHost{})
	response := dispatcher.Handle(Envelope{
		"command": "write",
		"parameters": map[string]any{
			"filename":     "raw.bin",
			"text":         base64.StdEncoding.EncodeToString(raw),
			"base64decode": true,
		},
	})

	checkExactlyOne(t, response)
	wrote, ok := response["wrote"].(string)
	if !ok {
		t.Fatalf("response %v: want wrote path", response)
	}
	contents, err := os.ReadFile(wrote)
	if err != nil {
		t.Fatalf("reading %q: %v", wrote, err)
	}
	if !bytes.Equal(contents, raw) {
		t.Fatalf("contents %v: want %v", contents, raw)
	}
}

func TestWriteMissingParameters(t *testing.T) {
	tests := []struct {
		name       string
		parameters map[string]any
	}{
		{name: "no parameters object", parameters: nil},
		{name: "no text", parameters: map[string]any{"filename": "a.txt"}},
		{name: "no filename", parameters: map[string]any{"text": "hello"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dispatcher := newTestDispatcher(t, &fakeHost{})
			envelope := Envelope{"command": "write"}
			if test.parameters != nil {
				envelope["parameters"] = test.parameters
			}
			response := dispatcher.Handle(envelope)
			checkExactlyOne(t, response)
			if !response.Failed() {
				t.Fatalf("response %v: want failed", response)
			}
		})
	}
}

func TestWriteRefusesEscapingFilename(t *testing.T) {
	dispatcher := newTestDispatcher(t, &fakeHost{})
	response := dispatcher.Handle(Envelope{
		"command": "write",
		"parameters": map[string]any{
			"filename": filepath.Join("..", "escaped.txt"),
			"text":     "nope",
		},
	})

	checkExactlyOne(t, response)
	if !response.Failed() {
		t.Fatalf("response %v: want failed for escaping filename", response)
	}
	if _, err := os.Stat(filepath.Join(dispatcher.Storage, "..", "escaped.txt")); err == nil {
		t.Fatal("file was written outside the storage directory")
	}
}
