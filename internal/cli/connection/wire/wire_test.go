package wire

import (
	"bytes"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	frame, err := EncodeRequest(7, "dump_state", map[string]interface{}{
		"cell_id": [][]byte{{1, 2}, {3, 4}},
	})
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}

	env, err := DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	if env.Type != TypeRequest || env.ID != 7 {
		t.Fatalf("envelope = %+v, want request id 7", env)
	}

	call, err := DecodeCall(env.Data)
	if err != nil {
		t.Fatalf("DecodeCall() error = %v", err)
	}
	if call.Type != "dump_state" {
		t.Errorf("call.Type = %q, want dump_state", call.Type)
	}
	args, ok := call.Value.(map[string]interface{})
	if !ok {
		t.Fatalf("call.Value = %T, want map", call.Value)
	}
	cell, ok := args["cell_id"].([]interface{})
	if !ok || len(cell) != 2 {
		t.Fatalf("cell_id = %#v", args["cell_id"])
	}
	if b, ok := cell[0].([]byte); !ok || !bytes.Equal(b, []byte{1, 2}) {
		t.Errorf("cell_id[0] = %#v, want bin 0102", cell[0])
	}
}

func TestEncodeRequest_UnitCall(t *testing.T) {
	frame, err := EncodeRequest(1, "list_dnas", nil)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	env, err := DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	call, err := DecodeCall(env.Data)
	if err != nil {
		t.Fatalf("DecodeCall() error = %v", err)
	}
	if call.Type != "list_dnas" || call.Value != nil {
		t.Errorf("call = %+v, want list_dnas with nil value", call)
	}
}

func TestEncodeResponse_RoundTrip(t *testing.T) {
	frame, err := EncodeResponse(3, "dnas_listed", [][]byte{{9, 9, 9}})
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	env, err := DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	if env.Type != TypeResponse || env.ID != 3 {
		t.Fatalf("envelope = %+v", env)
	}

	res, err := DecodeResult(env.Data)
	if err != nil {
		t.Fatalf("DecodeResult() error = %v", err)
	}
	if res.Type != "dnas_listed" {
		t.Errorf("result type = %q", res.Type)
	}

	var dnas [][]byte
	if err := DecodeValue(res.Value, &dnas); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if len(dnas) != 1 || !bytes.Equal(dnas[0], []byte{9, 9, 9}) {
		t.Errorf("dnas = %v", dnas)
	}
}

func TestErrorValue_Message(t *testing.T) {
	frame, err := EncodeResponse(1, ResultError, ErrorValue{Type: "ribosome_error", Value: "no such fn"})
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}
	env, _ := DecodeEnvelope(frame)
	res, _ := DecodeResult(env.Data)

	var ev ErrorValue
	if err := DecodeValue(res.Value, &ev); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if ev.Type != "ribosome_error" || ev.Message() != "no such fn" {
		t.Errorf("error value = %+v", ev)
	}
}

func TestDecodeValue_Empty(t *testing.T) {
	s := "unchanged"
	if err := DecodeValue(nil, &s); err != nil {
		t.Fatalf("DecodeValue(nil) error = %v", err)
	}
	if s != "unchanged" {
		t.Errorf("DecodeValue(nil) modified target: %q", s)
	}
}

func TestEncodeAuthenticate(t *testing.T) {
	frame, err := EncodeAuthenticate([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("EncodeAuthenticate() error = %v", err)
	}
	env, err := DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	if env.Type != TypeAuthenticate || env.ID != 0 {
		t.Fatalf("envelope = %+v", env)
	}
	var p AuthenticatePayload
	if err := Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !bytes.Equal(p.Token, []byte{1, 2, 3}) {
		t.Errorf("token = %v", p.Token)
	}
}

func TestDecodeEnvelope_Garbage(t *testing.T) {
	if _, err := DecodeEnvelope([]byte{0xc1}); err == nil {
		t.Error("DecodeEnvelope() expected error for reserved byte")
	}
}
