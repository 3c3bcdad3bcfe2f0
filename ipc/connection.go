package ipc

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Handler answers one envelope. A nil reply sends nothing back.
type Handler func(env Envelope) (*Envelope, error)

// Connection serves one world-state producer. Envelopes are handled strictly
// in arrival order, so every world snapshot is answered before the next one
// is read.
type Connection struct {
	rw       io.ReadWriteCloser
	handlers map[string]Handler
	Team     string
	// Budget is how long one envelope may take before it is reported as an
	// overrun. Zero disables the check.
	Budget time.Duration

	closeOnce sync.Once
	overruns  int
}

func NewConnection(rw io.ReadWriteCloser, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{rw: rw, handlers: handlers}
}

func (c *Connection) Handle(msgType string, h Handler) {
	c.handlers[msgType] = h
}

// Send pushes an unsolicited envelope to the producer.
func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return WriteEnvelope(c.rw, env)
}

// Overruns reports how many envelopes took longer than Budget.
func (c *Connection) Overruns() int { return c.overruns }

// Serve answers envelopes until the producer hangs up, a reply cannot be
// written, or ctx is done. It closes the connection before returning.
func (c *Connection) Serve(ctx context.Context) {
	stop := context.AfterFunc(ctx, c.close)
	defer stop()
	defer c.close()

	for {
		env, err := ReadEnvelope(c.rw)
		if err != nil {
			if ctx.Err() == nil {
				slog.Info("producer disconnected", "team", c.Team, "error", err)
			}
			return
		}
		if !c.dispatch(env) {
			return
		}
	}
}

// dispatch runs the handler for env and writes its reply. It returns false
// once the connection is no longer writable.
func (c *Connection) dispatch(env Envelope) bool {
	h, ok := c.handlers[env.Type]
	if !ok {
		slog.Warn("no handler for message type", "type", env.Type, "team", c.Team)
		return true
	}

	start := time.Now()
	resp, err := h(env)
	if elapsed := time.Since(start); c.Budget > 0 && elapsed > c.Budget {
		c.overruns++
		slog.Warn("envelope over tick budget", "type", env.Type, "team", c.Team, "elapsed", elapsed, "budget", c.Budget, "overruns", c.overruns)
	}
	if err != nil {
		slog.Error("handler failed", "type", env.Type, "team", c.Team, "error", err)
		errEnv, mErr := NewEnvelope(TypeError, ErrorMessage{Type: env.Type, Error: err.Error()})
		if mErr != nil {
			return true
		}
		resp = &errEnv
	}
	if resp == nil {
		return true
	}
	if err := WriteEnvelope(c.rw, *resp); err != nil {
		slog.Error("failed to send reply", "type", resp.Type, "team", c.Team, "error", err)
		return false
	}
	return true
}

func (c *Connection) close() {
	c.closeOnce.Do(func() { c.rw.Close() })
}
