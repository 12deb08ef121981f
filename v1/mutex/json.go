package mutex

import (
	"bytes"
	"errors"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	jsonv1 "github.com/go-json-experiment/json/v1"

	warperrors "github.com/mirkobrombin/go-lockbox/v1/errors"
	"github.com/mirkobrombin/go-lockbox/v1/metrics"
)

var (
	_ jsonv2.MarshalerTo     = (*Mutex[struct{}])(nil)
	_ jsonv2.UnmarshalerFrom = (*Mutex[struct{}])(nil)
)

// MarshalJSONTo implements [jsonv2.MarshalerTo].
func (m Mutex[T]) MarshalJSONTo(enc *jsontext.Encoder) (err error) {
	defer func() { metrics.ObserveEncode(formatJSON, err) }()
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	if err := enc.WriteToken(jsontext.String(fieldInner)); err != nil {
		return err
	}
	if err := m.withInner(func(v *T) error {
		return jsonv2.MarshalEncode(enc, v)
	}); err != nil {
		return err
	}
	return enc.WriteToken(jsontext.EndObject)
}

// UnmarshalJSONFrom implements [jsonv2.UnmarshalerFrom].
func (m *Mutex[T]) UnmarshalJSONFrom(dec *jsontext.Decoder) (err error) {
	defer func() { metrics.ObserveDecode(formatJSON, err) }()
	switch k := dec.PeekKind(); k {
	case '{':
	case 'n':
		_, err := dec.ReadToken() // read null
		return err
	case 0:
		_, err := dec.ReadToken() // surface the syntax error
		return err
	default:
		return warperrors.InvalidType(jsonKindName(k), expecting)
	}
	if _, err := dec.ReadToken(); err != nil { // parse '{'
		return err
	}
	rejectUnknown, _ := jsonv2.GetOption(dec.Options(), jsonv2.RejectUnknownMembers)

	var (
		inner T
		seen  bool
	)
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			// A strict decoder rejects repeated names itself.
			if isDuplicateInner(err) {
				return warperrors.DuplicateField(recordName, fieldInner)
			}
			return err
		}
		switch name.String() {
		case fieldInner:
			if seen {
				return warperrors.DuplicateField(recordName, fieldInner)
			}
			if err := jsonv2.UnmarshalDecode(dec, &inner); err != nil {
				return err
			}
			seen = true
		default:
			if rejectUnknown {
				return warperrors.UnknownField(recordName, name.String())
			}
			if err := dec.SkipValue(); err != nil {
				return err
			}
		}
	}
	if _, err := dec.ReadToken(); err != nil { // parse '}'
		return err
	}
	if !seen {
		return warperrors.MissingField(recordName, fieldInner)
	}
	m.replace(inner)
	return nil
}

// isDuplicateInner reports whether err is the tokenizer rejecting a
// repeated "inner" member of the record being decoded.
func isDuplicateInner(err error) bool {
	var se *jsontext.SyntacticError
	if !errors.As(err, &se) || !errors.Is(err, jsontext.ErrDuplicateName) {
		return false
	}
	return se.JSONPointer.LastToken() == fieldInner
}

// MarshalJSON implements [json.Marshaler]. The inner value is encoded with
// encoding/json semantics, so it matches what encoding/json produces for
// it on its own.
func (m Mutex[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsonv1.DefaultOptionsV1())
	if err := m.MarshalJSONTo(enc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON implements [json.Unmarshaler] with encoding/json semantics:
// repeated names reach the record's own duplicate check and names of the
// inner value match case insensitively.
func (m *Mutex[T]) UnmarshalJSON(b []byte) error {
	dec := jsontext.NewDecoder(bytes.NewReader(b), jsonv1.DefaultOptionsV1())
	return m.UnmarshalJSONFrom(dec)
}

func jsonKindName(k jsontext.Kind) string {
	switch k {
	case 'f', 't':
		return "boolean"
	case '"':
		return "string"
	case '0':
		return "number"
	case '[':
		return "array"
	default:
		return k.String()
	}
}
