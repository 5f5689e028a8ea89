package gvars

import (
	"fmt"
	"strconv"
)

// EncodedValue is the workspace representation of a Value.
type EncodedValue struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	Prec  uint           `json:"prec,omitempty"`
	Items []EncodedValue `json:"items,omitempty"`
}

// EncodeValue converts v to its workspace representation. Only builtin
// procedures can be encoded.
func EncodeValue(v Value) (EncodedValue, error) {
	switch v := v.(type) {
	case Number:
		return EncodedValue{Type: "number", Text: v.f.Text('g', -1), Prec: v.f.Prec()}, nil
	case Boolean:
		return EncodedValue{Type: "boolean", Text: strconv.FormatBool(bool(v))}, nil
	case String:
		return EncodedValue{Type: "string", Text: string(v)}, nil
	case Symbol:
		return EncodedValue{Type: "symbol", Text: string(v)}, nil
	case Vector:
		items := make([]EncodedValue, len(v))
		for i, e := range v {
			item, err := EncodeValue(e)
			if err != nil {
				return EncodedValue{}, err
			}
			items[i] = item
		}
		return EncodedValue{Type: "vector", Items: items}, nil
	case *Builtin:
		return EncodedValue{Type: "builtin", Text: v.Name}, nil
	case nil:
		return EncodedValue{Type: "unbound"}, nil
	default:
		return EncodedValue{}, fmt.Errorf("cannot encode %s", EncodeToString(v))
	}
}

// decodeValue converts an encoded value back to a Value. The caller must hold
// g.mu.
func (g *Globals) decodeValue(e EncodedValue) (Value, error) {
	switch e.Type {
	case "number":
		if e.Prec == 0 {
			return ParseNumber(e.Text)
		}
		return parseNumber(e.Text, e.Prec)
	case "boolean":
		b, err := strconv.ParseBool(e.Text)
		if err != nil {
			return nil, err
		}
		return Boolean(b), nil
	case "string":
		return String(e.Text), nil
	case "symbol":
		return Symbol(e.Text), nil
	case "vector":
		v := make(Vector, len(e.Items))
		for i, item := range e.Items {
			x, err := g.decodeValue(item)
			if err != nil {
				return nil, err
			}
			v[i] = x
		}
		return v, nil
	case "builtin":
		b, ok := g.builtins[e.Text]
		if !ok {
			return nil, fmt.Errorf("unknown builtin %q", e.Text)
		}
		return b, nil
	case "unbound":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown value type %q", e.Type)
	}
}
