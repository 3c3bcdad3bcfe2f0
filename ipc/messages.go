package ipc

import "github.com/nstehr/vimy/vimy-stp/primitive"

// These constants must stay in sync with the world-state producer.
const (
	TypeHello      = "hello"
	TypeAck        = "ack"
	TypeWorld      = "world"
	TypePrimitives = "primitives"
	TypeError      = "error"
)

type HelloMessage struct {
	Team string `json:"team"`
}

type AckMessage struct {
	Status string `json:"status"`
}

// PrimitivesMessage carries one primitive per matched robot for a tick.
type PrimitivesMessage struct {
	Tick       int                   `json:"tick"`
	Play       string                `json:"play"`
	Primitives []primitive.Primitive `json:"primitives"`
}

// ErrorMessage answers an envelope whose handler failed.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
