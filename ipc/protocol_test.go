package ipc

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/primitive"
)

func TestEnvelopeFraming(t *testing.T) {
	var buf bytes.Buffer
	msg := PrimitivesMessage{
		Tick:       7,
		Play:       "halt",
		Primitives: []primitive.Primitive{primitive.NewStop(3)},
	}
	env, err := NewEnvelope(TypePrimitives, msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatalf("WriteEnvelope() error: %v", err)
	}
	if got := binary.LittleEndian.Uint32(buf.Bytes()[:4]); int(got) != buf.Len()-4 {
		t.Errorf("length prefix = %d, want %d", got, buf.Len()-4)
	}

	got, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatalf("ReadEnvelope() error: %v", err)
	}
	if got.Type != TypePrimitives {
		t.Errorf("Type = %q, want %q", got.Type, TypePrimitives)
	}
	var decoded PrimitivesMessage
	if err := json.Unmarshal(got.Data, &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(msg, decoded); diff != "" {
		t.Errorf("decoded message mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEnvelopeRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"zero length", []byte{0, 0, 0, 0}},
		{"oversized", []byte{0xff, 0xff, 0xff, 0x7f}},
		{"one past the limit", []byte{0x01, 0x00, 0x10, 0x00}},
		{"short payload", []byte{10, 0, 0, 0, '{', '}'}},
		{"not json", []byte{3, 0, 0, 0, 'a', 'b', 'c'}},
	}
	for _, tc := range tests {
		if _, err := ReadEnvelope(bytes.NewReader(tc.data)); err == nil {
			t.Errorf("%s: ReadEnvelope() returned nil error", tc.name)
		}
	}
}

type pipeConn struct {
	io.Reader
	io.Writer
	closed bool
}

func (p *pipeConn) Close() error {
	p.closed = true
	return nil
}

func TestConnectionServe(t *testing.T) {
	var in bytes.Buffer
	for _, typ := range []string{"unknown", TypeHello, TypeWorld} {
		env, _ := NewEnvelope(typ, HelloMessage{Team: "yellow"})
		if err := WriteEnvelope(&in, env); err != nil {
			t.Fatal(err)
		}
	}
	var out bytes.Buffer
	conn := &pipeConn{Reader: &in, Writer: &out}

	c := NewConnection(conn, nil)
	c.Handle(TypeHello, func(env Envelope) (*Envelope, error) {
		ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
		return &ack, err
	})
	c.Handle(TypeWorld, func(env Envelope) (*Envelope, error) {
		return nil, nil
	})
	c.Serve(context.Background())

	if !conn.closed {
		t.Error("Serve() did not close the connection")
	}
	resp, err := ReadEnvelope(&out)
	if err != nil {
		t.Fatalf("reading reply: %v", err)
	}
	if resp.Type != TypeAck {
		t.Errorf("reply type = %q, want %q", resp.Type, TypeAck)
	}
	if out.Len() != 0 {
		t.Errorf("%d unexpected bytes after the only reply", out.Len())
	}
}

func TestConnectionRepliesWithHandlerError(t *testing.T) {
	var in bytes.Buffer
	env, _ := NewEnvelope(TypeWorld, struct{}{})
	if err := WriteEnvelope(&in, env); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	c := NewConnection(&pipeConn{Reader: &in, Writer: &out}, map[string]Handler{
		TypeWorld: func(Envelope) (*Envelope, error) { return nil, errors.New("bad snapshot") },
	})
	c.Serve(context.Background())

	resp, err := ReadEnvelope(&out)
	if err != nil {
		t.Fatalf("reading reply: %v", err)
	}
	var msg ErrorMessage
	if err := json.Unmarshal(resp.Data, &msg); err != nil {
		t.Fatal(err)
	}
	if resp.Type != TypeError || msg != (ErrorMessage{Type: TypeWorld, Error: "bad snapshot"}) {
		t.Errorf("reply = %s %+v, want error for %s", resp.Type, msg, TypeWorld)
	}
}

func TestConnectionCountsOverruns(t *testing.T) {
	var in bytes.Buffer
	for i := 0; i < 2; i++ {
		env, _ := NewEnvelope(TypeWorld, struct{}{})
		if err := WriteEnvelope(&in, env); err != nil {
			t.Fatal(err)
		}
	}
	c := NewConnection(&pipeConn{Reader: &in, Writer: &bytes.Buffer{}}, nil)
	c.Budget = time.Millisecond
	slow := true
	c.Handle(TypeWorld, func(Envelope) (*Envelope, error) {
		if slow {
			time.Sleep(5 * time.Millisecond)
			slow = false
		}
		return nil, nil
	})
	c.Serve(context.Background())
	if got := c.Overruns(); got != 1 {
		t.Errorf("Overruns() = %d, want 1", got)
	}
}

func TestConnectionServeStopsOnCancel(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewConnection(server, nil).Serve(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestConnectionSend(t *testing.T) {
	var out bytes.Buffer
	c := NewConnection(&pipeConn{Reader: &bytes.Buffer{}, Writer: &out}, nil)
	if err := c.Send(TypeWorld, struct{ Ball geom.Point }{}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	env, err := ReadEnvelope(&out)
	if err != nil || env.Type != TypeWorld {
		t.Errorf("ReadEnvelope() = %+v, %v", env, err)
	}
}
