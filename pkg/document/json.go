package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/usestring/json2gql/pkg/typesystem"
)

// DecodeJSON decodes one JSON document keeping object key order. Numbers
// outside the float64 range decode to infinities.
func DecodeJSON(data []byte) (typesystem.Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return typesystem.Value{}, errors.New("empty JSON document")
	}
	// jsonparser does not validate; report syntax errors with their offset.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return typesystem.Value{}, fmt.Errorf("invalid JSON: %w", err)
	}

	value, dataType, _, err := jsonparser.Get(data)
	if err == nil {
		var v typesystem.Value
		if v, err = decodeJSONValue(value, dataType); err == nil {
			return v, nil
		}
	}
	// jsonparser rejects some escapes encoding/json accepts, such as lone
	// surrogates, which decode to U+FFFD.
	v, tokErr := decodeJSONTokens(data)
	if tokErr != nil {
		return typesystem.Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

// decodeJSONTokens decodes data with encoding/json's token stream, which
// keeps object key order.
func decodeJSONTokens(data []byte) (typesystem.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return typesystem.Value{}, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (typesystem.Value, error) {
	switch t := tok.(type) {
	case nil:
		return typesystem.Null(), nil
	case bool:
		return typesystem.Bool(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return typesystem.Value{}, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return typesystem.Number(f), nil
	case string:
		return typesystem.String(t), nil
	case json.Delim:
		if t == '[' {
			elems := []typesystem.Value{}
			for dec.More() {
				v, err := decodeNextJSONToken(dec)
				if err != nil {
					return typesystem.Value{}, err
				}
				elems = append(elems, v)
			}
			_, err := dec.Token()
			return typesystem.Array(elems...), err
		}
		obj := typesystem.NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return typesystem.Value{}, err
			}
			key, _ := keyTok.(string)
			v, err := decodeNextJSONToken(dec)
			if err != nil {
				return typesystem.Value{}, fmt.Errorf("%s: %w", key, err)
			}
			obj.Set(key, v)
		}
		_, err := dec.Token()
		return obj, err
	default:
		return typesystem.Value{}, fmt.Errorf("unexpected JSON token %v", tok)
	}
}

func decodeNextJSONToken(dec *json.Decoder) (typesystem.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return typesystem.Value{}, err
	}
	return decodeJSONToken(dec, tok)
}

// DecodeNDJSON decodes newline-delimited JSON into an array with one element
// per non-blank line.
func DecodeNDJSON(data []byte) (typesystem.Value, error) {
	var elems []typesystem.Value
	lineNo := 0
	for line := range bytes.Lines(data) {
		lineNo++
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		v, err := DecodeJSON(line)
		if err != nil {
			return typesystem.Value{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		elems = append(elems, v)
	}
	return typesystem.Array(elems...), nil
}

func decodeJSONValue(value []byte, dataType jsonparser.ValueType) (typesystem.Value, error) {
	switch dataType {
	case jsonparser.Null:
		return typesystem.Null(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return typesystem.Value{}, err
		}
		return typesystem.Bool(b), nil
	case jsonparser.Number:
		f, err := strconv.ParseFloat(string(value), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return typesystem.Value{}, fmt.Errorf("invalid number %q: %w", value, err)
		}
		return typesystem.Number(f), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return typesystem.Value{}, err
		}
		return typesystem.String(s), nil
	case jsonparser.Array:
		return decodeJSONArray(value)
	case jsonparser.Object:
		return decodeJSONObject(value)
	default:
		return typesystem.Value{}, fmt.Errorf("unexpected JSON value %q", value)
	}
}

func decodeJSONArray(data []byte) (typesystem.Value, error) {
	elems := []typesystem.Value{}
	var firstErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		v, err := decodeJSONValue(value, dataType)
		if err != nil {
			firstErr = err
			return
		}
		elems = append(elems, v)
	})
	if err != nil {
		return typesystem.Value{}, err
	}
	if firstErr != nil {
		return typesystem.Value{}, firstErr
	}
	return typesystem.Array(elems...), nil
}

func decodeJSONObject(data []byte) (typesystem.Value, error) {
	obj := typesystem.NewObject()
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		v, err := decodeJSONValue(value, dataType)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		obj.Set(string(key), v)
		return nil
	})
	if err != nil {
		return typesystem.Value{}, err
	}
	return obj, nil
}
