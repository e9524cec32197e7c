package network

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/san-kum/bounce/internal/input"
)

const (
	MsgHello   = "hello"
	MsgWelcome = "welcome"
	MsgInput   = "input"
	MsgFrame   = "frame"
)

const ProtocolVersion = 1

var (
	ErrEmptyType    = errors.New("network: envelope has no type")
	ErrEmptyMessage = errors.New("network: empty message")
	ErrEmptyPayload = errors.New("network: empty payload")
)

// Envelope wraps every message in both directions.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

// Hello is the first message a client sends.
type Hello struct {
	V    int    `json:"v"`
	Name string `json:"name,omitempty"`
}

// Welcome answers Hello with the arena a client is watching.
type Welcome struct {
	ClientID string  `json:"clientId"`
	TickMs   int64   `json:"tickMs"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Input is one key press. A nil Body addresses every body.
type Input struct {
	Body *int `json:"body,omitempty"`
	input.Signals
}

// Target returns the body id the press is latched for.
func (in Input) Target() int {
	if in.Body == nil {
		return input.All
	}
	return *in.Body
}

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, ErrEmptyType
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPayload, t)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	if e.T == "" {
		return Envelope{}, ErrEmptyType
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("%w: %s", ErrEmptyPayload, env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}
