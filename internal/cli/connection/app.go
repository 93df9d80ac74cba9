package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yndnr/hcstate-go/internal/cli/connection/wire"
	"github.com/yndnr/hcstate-go/internal/core/domain"
	"github.com/yndnr/hcstate-go/pkg/holohash"
)

// AppClient issues calls on a conductor's app interface.
type AppClient struct {
	conn *Conn
}

// NewAppClient wraps an app interface connection.
func NewAppClient(conn *Conn) *AppClient {
	return &AppClient{conn: conn}
}

// Conn returns the underlying connection.
func (a *AppClient) Conn() *Conn {
	return a.conn
}

// Authenticate presents an app token. Conductors answer nothing on
// success and drop the connection on failure, so the result only shows up
// on the next request.
func (a *AppClient) Authenticate(ctx context.Context, token []byte) error {
	frame, err := wire.EncodeAuthenticate(token)
	if err != nil {
		return domain.ErrAuthenticationFailed.Wrap(err)
	}
	return a.conn.Send(ctx, frame)
}

// AppInfo returns the installed app's info, or nil when the conductor
// knows no such app.
func (a *AppClient) AppInfo(ctx context.Context, installedAppID string) (*AppInfo, error) {
	args := map[string]interface{}{"installed_app_id": installedAppID}
	raw, err := a.conn.Request(ctx, "app_info", args, "app_info")
	if err != nil {
		return nil, err
	}
	var v interface{}
	if err := wire.DecodeValue(raw, &v); err != nil {
		return nil, domain.ErrUnexpectedResponse.Wrap(err)
	}
	if v == nil {
		return nil, nil
	}
	return parseAppInfo(v)
}

// ZomeCall is an unsigned zome function call.
type ZomeCall struct {
	CellID   holohash.CellID
	ZomeName string
	FnName   string
	// Payload is the function argument, already msgpack-encoded.
	Payload []byte
	// Provenance defaults to the cell's agent.
	Provenance *holohash.HoloHash
	CapSecret  []byte
}

// CallZome runs a zome function and returns its decoded result.
func (a *AppClient) CallZome(ctx context.Context, call ZomeCall) (interface{}, error) {
	provenance := call.CellID.AgentPubKey
	if call.Provenance != nil {
		provenance = *call.Provenance
	}
	payload := call.Payload
	if payload == nil {
		payload = []byte{0xc0} // msgpack nil
	}

	args := map[string]interface{}{
		"cell_id":    call.CellID.Wire(),
		"zome_name":  call.ZomeName,
		"fn_name":    call.FnName,
		"payload":    payload,
		"cap_secret": nil,
		"provenance": provenance.Bytes(),
	}
	if call.CapSecret != nil {
		args["cap_secret"] = call.CapSecret
	}

	raw, err := a.conn.Request(ctx, "call_zome", args, "zome_called")
	if err != nil {
		return nil, err
	}
	var extern []byte
	if err := wire.DecodeValue(raw, &extern); err != nil {
		return nil, domain.ErrUnexpectedResponse.Wrap(err)
	}
	if len(extern) == 0 {
		return nil, nil
	}

	var out interface{}
	if err := wire.Unmarshal(extern, &out); err != nil {
		return nil, domain.ErrUnexpectedResponse.WithDetails("zome result is not msgpack").WithCause(err)
	}
	return Presentable(out), nil
}

// EncodeJSONPayload converts a JSON argument to the msgpack bytes a zome
// function receives. Integral numbers stay integers. Strings that parse
// as HoloHashes are sent as raw hash bytes. Empty input encodes nil.
func EncodeJSONPayload(text string) ([]byte, error) {
	if len(bytes.TrimSpace([]byte(text))) == 0 {
		return wire.Marshal(nil)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, domain.ErrInvalidArgument.WithDetailsf("payload is not JSON: %v", err)
	}
	if dec.More() {
		return nil, domain.ErrInvalidArgument.WithDetails("payload has trailing data")
	}
	return wire.Marshal(fromJSON(v))
}

// JSONNumbers replaces the json.Number values left by a UseNumber
// decode with int64, or float64 when the number is not integral. Maps
// and slices are rewritten in place.
func JSONNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []interface{}:
		for i := range t {
			t[i] = JSONNumbers(t[i])
		}
		return t
	case map[string]interface{}:
		for k := range t {
			t[k] = JSONNumbers(t[k])
		}
		return t
	default:
		return v
	}
}

func fromJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		return JSONNumbers(t)
	case string:
		if h, err := holohash.Parse(t); err == nil {
			return h.Bytes()
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = fromJSON(t[i])
		}
		return t
	case map[string]interface{}:
		for k := range t {
			t[k] = fromJSON(t[k])
		}
		return t
	default:
		return v
	}
}

// Presentable rewrites a schema-less msgpack value for display: byte
// strings that are valid HoloHashes become their u-form text, and maps
// with non-string keys get string keys.
func Presentable(v interface{}) interface{} {
	switch t := v.(type) {
	case []byte:
		if h, err := holohash.FromBytes(t); err == nil {
			return h.String()
		}
		return t
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = Presentable(t[i])
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = Presentable(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Presentable(val)
		}
		return out
	default:
		return v
	}
}
