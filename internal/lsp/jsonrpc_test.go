package lsp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"jsonrpc":"2.0","method":"initialize"}`)
	if err := writeMessage(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Content-Length: 39\r\n\r\n") {
		t.Fatalf("unexpected framing: %q", buf.String())
	}
	got, err := readMessage(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestReadMessageMissingLength(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("X-Other: 1\r\n\r\n{}"))
	if _, err := readMessage(r); err == nil {
		t.Fatalf("expected error for missing Content-Length")
	}
}
