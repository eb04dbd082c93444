package bytecode

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Marshal converts a Chunk into a JSON representation.
func Marshal(chunk *Chunk) ([]byte, error) {
	state, err := stateFromChunk(chunk)
	if err != nil {
		return nil, err
	}
	return json.Marshal(state)
}

// Unmarshal converts a JSON representation into a Chunk.
func Unmarshal(data []byte) (*Chunk, error) {
	var state chunkState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return chunkFromState(&state)
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalCBOR serializes a Chunk to canonical CBOR bytes.
func MarshalCBOR(chunk *Chunk) ([]byte, error) {
	state, err := stateFromChunk(chunk)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(state)
}

// UnmarshalCBOR deserializes a Chunk from CBOR bytes.
func UnmarshalCBOR(data []byte) (*Chunk, error) {
	var state chunkState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	return chunkFromState(&state)
}

// Serialization types

type constantDef struct {
	Type  string `json:"type" cbor:"type"`
	Value any    `json:"value" cbor:"value"`
}

type chunkState struct {
	Code      []byte        `json:"code" cbor:"code"`
	Lines     []int         `json:"lines" cbor:"lines"`
	Constants []constantDef `json:"constants" cbor:"constants"`
}

func stateFromChunk(chunk *Chunk) (*chunkState, error) {
	state := &chunkState{
		Code:      chunk.Code(),
		Lines:     make([]int, len(chunk.lines)),
		Constants: make([]constantDef, len(chunk.constants)),
	}
	copy(state.Lines, chunk.lines)
	for i, c := range chunk.constants {
		def, err := marshalConstant(c)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		state.Constants[i] = def
	}
	return state, nil
}

func chunkFromState(state *chunkState) (*Chunk, error) {
	if len(state.Code) != len(state.Lines) {
		return nil, fmt.Errorf("invalid chunk: %d code bytes but %d lines",
			len(state.Code), len(state.Lines))
	}
	if len(state.Constants) > MaxConstants {
		return nil, fmt.Errorf("invalid chunk: %d constants: %w",
			len(state.Constants), ErrTooManyConstants)
	}
	chunk := NewChunk()
	for i, b := range state.Code {
		chunk.Write(b, state.Lines[i])
	}
	for i, def := range state.Constants {
		value, err := unmarshalConstant(def)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		if _, err := chunk.AddConstant(value); err != nil {
			return nil, err
		}
	}
	return chunk, nil
}

func marshalConstant(value any) (constantDef, error) {
	switch v := value.(type) {
	case nil:
		return constantDef{Type: "nil"}, nil
	case bool:
		return constantDef{Type: "bool", Value: v}, nil
	case float64:
		return constantDef{Type: "float", Value: v}, nil
	case int64:
		return constantDef{Type: "int", Value: v}, nil
	case string:
		return constantDef{Type: "string", Value: v}, nil
	default:
		return constantDef{}, fmt.Errorf("unsupported constant type: %T", value)
	}
}

func unmarshalConstant(def constantDef) (any, error) {
	switch def.Type {
	case "nil":
		return nil, nil
	case "bool":
		v, ok := def.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("invalid bool constant: %v", def.Value)
		}
		return v, nil
	case "float":
		return toFloat(def.Value)
	case "int":
		switch v := def.Value.(type) {
		case int64:
			return v, nil
		case uint64:
			return int64(v), nil
		case float64:
			return int64(v), nil
		default:
			return nil, fmt.Errorf("invalid int constant: %v", def.Value)
		}
	case "string":
		v, ok := def.Value.(string)
		if !ok {
			return nil, fmt.Errorf("invalid string constant: %v", def.Value)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown constant type: %q", def.Type)
	}
}

// toFloat accepts the numeric types produced by the JSON and CBOR decoders.
func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("invalid numeric constant: %v", value)
	}
}
