package rpcmsg

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Encode wraps payload in a {"type": msgType, "payload": ...} envelope
// and stamps a request id onto it. The payload is marshaled once via
// encoding/json; sjson then splices it and the metadata fields into
// the envelope without a second struct round-trip.
func Encode(msgType string, requestID string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}

	env, err := sjson.SetBytes([]byte("{}"), "type", msgType)
	if err != nil {
		return nil, fmt.Errorf("set envelope type: %w", err)
	}
	env, err = sjson.SetBytes(env, "request_id", requestID)
	if err != nil {
		return nil, fmt.Errorf("set envelope request_id: %w", err)
	}
	env, err = sjson.SetRawBytes(env, "payload", body)
	if err != nil {
		return nil, fmt.Errorf("set envelope payload: %w", err)
	}
	return env, nil
}

// Envelope is the parsed header of an incoming message: enough to
// route it to the right handler before the payload is unmarshaled
// into a concrete type.
type Envelope struct {
	Type      string
	RequestID string
	Payload   gjson.Result
}

// Decode extracts the envelope header fields from data using gjson,
// leaving Payload as a lazily-addressable gjson.Result the caller
// unmarshals (via Payload.Raw) into the request/response type its
// handler expects.
func Decode(data []byte) (Envelope, error) {
	if !gjson.ValidBytes(data) {
		return Envelope{}, fmt.Errorf("rpcmsg: invalid JSON envelope")
	}
	parsed := gjson.ParseBytes(data)
	msgType := parsed.Get("type")
	if !msgType.Exists() {
		return Envelope{}, fmt.Errorf("rpcmsg: envelope missing \"type\"")
	}
	return Envelope{
		Type:      msgType.String(),
		RequestID: parsed.Get("request_id").String(),
		Payload:   parsed.Get("payload"),
	}, nil
}

// Unmarshal decodes the envelope's payload into v.
func (e Envelope) Unmarshal(v any) error {
	return json.Unmarshal([]byte(e.Payload.Raw), v)
}
