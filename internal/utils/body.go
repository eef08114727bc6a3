package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// BodyError collects the problems found while decoding a request body that
// still parsed as a JSON object.
type BodyError struct {
	fields  map[string]string
	unknown []string
}

func (b *BodyError) field(name string) (string, bool) {
	if b == nil {
		return "", false
	}
	msg, ok := b.fields[name]
	return msg, ok
}

func (b *BodyError) unknownKeys() []string {
	if b == nil {
		return nil
	}
	return b.unknown
}

func (b *BodyError) empty() bool {
	return b == nil || (len(b.fields) == 0 && len(b.unknown) == 0)
}

// DecodeBody reads a JSON object into out, which must point to a struct.
// Keys without a matching json field and values of the wrong JSON type are
// returned as a *BodyError instead of failing the decode. A body that is not
// a JSON object returns a *ValidationError. An empty body decodes as {}.
func DecodeBody(body []byte, out any) (*BodyError, error) {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("decode body: want pointer to struct, got %T", out)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	fields := jsonFields(rv.Elem())
	be := &BodyError{fields: make(map[string]string)}

	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, NewValidationError(InvalidBody)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, NewValidationError(InvalidBody)
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, NewValidationError(InvalidBody)
		}

		fv, ok := fields[key]
		if !ok {
			be.unknown = append(be.unknown, fmt.Sprintf("%q is not allowed", key))
			continue
		}
		if string(raw) == "null" || json.Unmarshal(raw, fv.Addr().Interface()) != nil {
			be.fields[key] = fmt.Sprintf("%q must be a %s", key, jsonKind(fv.Kind()))
			continue
		}
		delete(be.fields, key)
	}
	if _, err := dec.Token(); err != nil {
		return nil, NewValidationError(InvalidBody)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewValidationError(InvalidBody)
	}

	if be.empty() {
		return nil, nil
	}
	return be, nil
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" {
		return f.Name
	}
	return name
}

// jsonNames lists the json names of t's exported fields in declaration order.
func jsonNames(t reflect.Type) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name := jsonName(f); name != "-" {
			names = append(names, name)
		}
	}
	return names
}

func jsonFields(v reflect.Value) map[string]reflect.Value {
	t := v.Type()
	out := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name := jsonName(f); name != "-" {
			out[name] = v.Field(i)
		}
	}
	return out
}

func jsonKind(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
