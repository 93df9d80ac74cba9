// Package wire implements the msgpack framing spoken on a conductor's
// admin and app WebSocket interfaces.
//
// Every frame is a msgpack map. Requests and responses are enveloped as
// {type, id, data} where data holds a second msgpack document of the form
// {type, value}: the call name and its arguments going out, the result
// name and its payload coming back.
package wire

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

// Envelope types.
const (
	TypeRequest      = "request"
	TypeResponse     = "response"
	TypeSignal       = "signal"
	TypeAuthenticate = "authenticate"
)

// ResultError is the result type a conductor uses for failed calls.
const ResultError = "error"

var handle = newHandle()

func newHandle() *codec.MsgpackHandle {
	// WriteExt keeps str and bin distinct in both directions, so schema-less
	// decoding yields string for text and []byte for hashes.
	h := &codec.MsgpackHandle{WriteExt: true}
	h.Raw = true
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return h
}

// Raw is an undecoded msgpack value.
type Raw = codec.Raw

// Envelope is the outer frame.
type Envelope struct {
	Type string `codec:"type"`
	ID   uint64 `codec:"id,omitempty"`
	Data []byte `codec:"data"`
}

// Call is the inner document of a request.
type Call struct {
	Type  string      `codec:"type"`
	Value interface{} `codec:"value"`
}

// Result is the inner document of a response. Value is left encoded so
// each caller can decode it into its own shape.
type Result struct {
	Type  string `codec:"type"`
	Value Raw    `codec:"value"`
}

// ErrorValue is the payload of a Result whose type is ResultError.
type ErrorValue struct {
	Type  string      `codec:"type"`
	Value interface{} `codec:"value"`
}

// Message renders the conductor's error payload as text.
func (e ErrorValue) Message() string {
	switch v := e.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// AuthenticatePayload is sent once, first, on an app interface.
type AuthenticatePayload struct {
	Token []byte `codec:"token"`
}

// Marshal encodes v as msgpack.
func Marshal(v interface{}) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, handle).Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal decodes msgpack data into v.
func Unmarshal(data []byte, v interface{}) error {
	return codec.NewDecoderBytes(data, handle).Decode(v)
}

// EncodeRequest frames a call with the given request id.
func EncodeRequest(id uint64, call string, args interface{}) ([]byte, error) {
	inner, err := Marshal(Call{Type: call, Value: args})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", call, err)
	}
	return Marshal(Envelope{Type: TypeRequest, ID: id, Data: inner})
}

// EncodeResponse frames a result for request id. Used by test conductors.
func EncodeResponse(id uint64, result string, value interface{}) ([]byte, error) {
	encoded, err := Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", result, err)
	}
	inner, err := Marshal(Result{Type: result, Value: encoded})
	if err != nil {
		return nil, err
	}
	return Marshal(Envelope{Type: TypeResponse, ID: id, Data: inner})
}

// EncodeAuthenticate frames an app interface authentication message.
func EncodeAuthenticate(token []byte) ([]byte, error) {
	inner, err := Marshal(AuthenticatePayload{Token: token})
	if err != nil {
		return nil, err
	}
	return Marshal(Envelope{Type: TypeAuthenticate, Data: inner})
}

// DecodeEnvelope decodes an outer frame.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// DecodeResult decodes the data of a response envelope.
func DecodeResult(data []byte) (Result, error) {
	var res Result
	if err := Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("decode result: %w", err)
	}
	return res, nil
}

// DecodeValue decodes a result payload into v. An absent payload leaves v
// untouched.
func DecodeValue(raw Raw, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return Unmarshal(raw, v)
}

// DecodeCall decodes the data of a request envelope. Used by test
// conductors; Value comes back schema-less.
func DecodeCall(data []byte) (Call, error) {
	var c Call
	if err := Unmarshal(data, &c); err != nil {
		return Call{}, fmt.Errorf("decode call: %w", err)
	}
	return c, nil
}
