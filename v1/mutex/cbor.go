package mutex

import (
	"encoding/binary"
	"io"

	"github.com/fxamacker/cbor/v2"

	warperrors "github.com/mirkobrombin/go-lockbox/v1/errors"
	"github.com/mirkobrombin/go-lockbox/v1/metrics"
)

var (
	_ cbor.Marshaler   = Mutex[struct{}]{}
	_ cbor.Unmarshaler = (*Mutex[struct{}])(nil)
)

type cborEnvelope struct {
	Inner cbor.RawMessage `cbor:"inner"`
}

// MarshalCBOR implements [cbor.Marshaler].
func (m Mutex[T]) MarshalCBOR() (out []byte, err error) {
	defer func() { metrics.ObserveEncode(formatCBOR, err) }()
	var raw []byte
	if err := m.withInner(func(v *T) error {
		var err error
		raw, err = cbor.Marshal(v)
		return err
	}); err != nil {
		return nil, err
	}
	return cbor.Marshal(cborEnvelope{Inner: raw})
}

// UnmarshalCBOR implements [cbor.Unmarshaler].
func (m *Mutex[T]) UnmarshalCBOR(data []byte) (err error) {
	defer func() { metrics.ObserveDecode(formatCBOR, err) }()
	if len(data) == 0 {
		return io.ErrUnexpectedEOF
	}
	if data[0] == 0xf6 || data[0] == 0xf7 { // null, undefined
		return nil
	}
	if major := data[0] >> 5; major != 5 {
		return warperrors.InvalidType(cborMajorName(major), expecting)
	}

	raw, err := cborInner(data)
	if err != nil {
		return err
	}
	var inner T
	if err := cbor.Unmarshal(raw, &inner); err != nil {
		return err
	}
	m.replace(inner)
	return nil
}

func cborMajorName(major byte) string {
	switch major {
	case 0, 1:
		return "integer"
	case 2:
		return "byte string"
	case 3:
		return "text string"
	case 4:
		return "array"
	case 6:
		return "tag"
	default:
		return "simple value"
	}
}

// cborInner walks the pairs of the CBOR map in data and returns the encoded
// value of its "inner" entry. Entries with other keys, of any type and
// possibly repeated, are skipped.
func cborInner(data []byte) (cbor.RawMessage, error) {
	n, rest, indefinite, err := cborMapHeader(data)
	if err != nil {
		return nil, err
	}
	var raw cbor.RawMessage
	for i := uint64(0); indefinite || i < n; i++ {
		if len(rest) == 0 {
			return nil, io.ErrUnexpectedEOF
		}
		if indefinite && rest[0] == 0xff { // break
			break
		}
		var key, val cbor.RawMessage
		if rest, err = cbor.UnmarshalFirst(rest, &key); err != nil {
			return nil, err
		}
		if rest, err = cbor.UnmarshalFirst(rest, &val); err != nil {
			return nil, err
		}
		if key[0]>>5 != 3 {
			continue
		}
		var name string
		if err := cbor.Unmarshal(key, &name); err != nil || name != fieldInner {
			continue
		}
		if raw != nil {
			return nil, warperrors.DuplicateField(recordName, fieldInner)
		}
		raw = val
	}
	if raw == nil {
		return nil, warperrors.MissingField(recordName, fieldInner)
	}
	return raw, nil
}

// cborMapHeader decodes the head of a map item, returning its pair count
// and the bytes following the head.
func cborMapHeader(data []byte) (n uint64, rest []byte, indefinite bool, err error) {
	info := data[0] & 0x1f
	rest = data[1:]
	switch {
	case info < 24:
		return uint64(info), rest, false, nil
	case info == 31:
		return 0, rest, true, nil
	case info > 27:
		return 0, nil, false, warperrors.InvalidType("malformed map", expecting)
	}
	size := 1 << (info - 24)
	if len(rest) < size {
		return 0, nil, false, io.ErrUnexpectedEOF
	}
	switch size {
	case 1:
		n = uint64(rest[0])
	case 2:
		n = uint64(binary.BigEndian.Uint16(rest))
	case 4:
		n = uint64(binary.BigEndian.Uint32(rest))
	default:
		n = binary.BigEndian.Uint64(rest)
	}
	return n, rest[size:], false, nil
}
