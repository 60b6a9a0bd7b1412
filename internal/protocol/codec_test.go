package protocol

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	sent := Envelope{
		ID:        "env-1",
		Type:      MessageTypeChat,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Payload:   map[string]interface{}{"message": "hello"},
	}
	if err := NewEncoder(&buf).Encode(ctx, sent); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := NewDecoder(&buf, 0).Decode(ctx)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ID != sent.ID || got.Type != sent.Type {
		t.Fatalf("got %+v, want id=%s type=%s", got, sent.ID, sent.Type)
	}
	payload, ok := got.Payload.(map[string]interface{})
	if !ok || payload["message"] != "hello" {
		t.Fatalf("payload = %#v, want message=hello", got.Payload)
	}
}

func TestDecodeMultipleFramesInSequence(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	enc := NewEncoder(&buf)

	for _, id := range []string{"a", "b", "c"} {
		if err := enc.Encode(ctx, Envelope{ID: id, Type: MessageTypeNotice}); err != nil {
			t.Fatalf("Encode %s: %v", id, err)
		}
	}

	dec := NewDecoder(&buf, 0)
	for _, want := range []string{"a", "b", "c"} {
		env, err := dec.Decode(ctx)
		if err != nil {
			t.Fatalf("Decode %s: %v", want, err)
		}
		if env.ID != want {
			t.Fatalf("frame id = %q, want %q", env.ID, want)
		}
	}
	if _, err := dec.Decode(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("trailing Decode err = %v, want EOF", err)
	}
}

func TestDecodeRejectsOversizedFrame(t *testing.T) {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, 1024)

	dec := NewDecoder(bytes.NewReader(header), 512)
	if _, err := dec.Decode(context.Background()); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("Decode err = %v, want ErrFrameTooLarge", err)
	}
}

func TestDecodeRejectsZeroLengthFrame(t *testing.T) {
	dec := NewDecoder(bytes.NewReader(make([]byte, 4)), 0)
	if _, err := dec.Decode(context.Background()); err == nil {
		t.Fatal("Decode accepted a zero-length frame")
	}
}

func TestDecodeHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dec := NewDecoder(bytes.NewReader(nil), 0)
	if _, err := dec.Decode(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Decode err = %v, want context.Canceled", err)
	}
}
