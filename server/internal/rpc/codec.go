package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct converts a JSON-tagged Go value into a Struct message.
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	st := new(structpb.Struct)
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return st, nil
}

// fromStruct decodes st into v. With strict set, fields v does not declare
// are an error.
func fromStruct(st *structpb.Struct, v interface{}, strict bool) error {
	if st == nil {
		st = new(structpb.Struct)
	}
	b, err := protojson.Marshal(st)
	if err != nil {
		return fmt.Errorf("from struct: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
