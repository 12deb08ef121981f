package mutex

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"

	warperrors "github.com/mirkobrombin/go-lockbox/v1/errors"
)

func mustCBOR(t *testing.T, v any) []byte {
	t.Helper()
	b, err := cbor.Marshal(v)
	if err != nil {
		t.Fatalf("cbor marshal: %v", err)
	}
	return b
}

// cborMap builds a definite-length map from already encoded key/value pairs.
func cborMap(pairs ...[]byte) []byte {
	out := []byte{0xa0 | byte(len(pairs)/2)}
	for _, p := range pairs {
		out = append(out, p...)
	}
	return out
}

func TestCBOREncoding(t *testing.T) {
	v := dummy{Inner: "abc123"}
	data, err := cbor.Marshal(New(v))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]cbor.RawMessage
	if err := cbor.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("expected one field, got %d", len(fields))
	}
	var got dummy
	if err := cbor.Unmarshal(fields["inner"], &got); err != nil {
		t.Fatalf("unmarshal inner: %v", err)
	}
	if got != v {
		t.Fatalf("expected %+v, got %+v", v, got)
	}
}

func TestCBORDuplicateField(t *testing.T) {
	key := mustCBOR(t, "inner")
	in := cborMap(key, mustCBOR(t, dummy{Inner: "x"}), key, mustCBOR(t, dummy{Inner: "y"}))
	var m Mutex[dummy]
	err := cbor.Unmarshal(in, &m)
	requireFieldError(t, err, warperrors.ErrDuplicateField, "inner")
	if m.Value != nil {
		t.Fatal("failed decode modified the receiver")
	}
}

func TestCBORMissingField(t *testing.T) {
	for _, in := range [][]byte{
		cborMap(),
		cborMap(mustCBOR(t, "other"), mustCBOR(t, 1)),
	} {
		var m Mutex[dummy]
		err := cbor.Unmarshal(in, &m)
		requireFieldError(t, err, warperrors.ErrMissingField, "inner")
	}
}

func TestCBORUnknownFieldsIgnored(t *testing.T) {
	in := cborMap(
		mustCBOR(t, "extra"), mustCBOR(t, []int{1, 2}),
		mustCBOR(t, "inner"), mustCBOR(t, dummy{Inner: "ok"}),
	)
	var m Mutex[dummy]
	if err := cbor.Unmarshal(in, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v := m.Load(); v.Inner != "ok" {
		t.Fatalf("expected ok, got %q", v.Inner)
	}
}

func TestCBORInvalidType(t *testing.T) {
	for _, v := range []any{[]int{1}, "inner", 7} {
		var m Mutex[dummy]
		err := cbor.Unmarshal(mustCBOR(t, v), &m)
		if !errors.Is(err, warperrors.ErrInvalidType) {
			t.Fatalf("%v: expected ErrInvalidType, got %v", v, err)
		}
	}
}

func TestCBORUnknownKeysOfAnyShape(t *testing.T) {
	for _, in := range [][]byte{
		cborMap(mustCBOR(t, 1), mustCBOR(t, 2), mustCBOR(t, "inner"), mustCBOR(t, dummy{Inner: "ok"})),
		cborMap(
			mustCBOR(t, "x"), mustCBOR(t, 1),
			mustCBOR(t, "x"), mustCBOR(t, 2),
			mustCBOR(t, "inner"), mustCBOR(t, dummy{Inner: "ok"}),
		),
		cborMap(mustCBOR(t, []byte("inner")), mustCBOR(t, 3), mustCBOR(t, "inner"), mustCBOR(t, dummy{Inner: "ok"})),
	} {
		var m Mutex[dummy]
		if err := cbor.Unmarshal(in, &m); err != nil {
			t.Fatalf("unmarshal % x: %v", in, err)
		}
		if v := m.Load(); v.Inner != "ok" {
			t.Fatalf("expected ok, got %q", v.Inner)
		}
	}
}

func TestCBORIndefiniteLengthMap(t *testing.T) {
	in := []byte{0xbf}
	in = append(in, mustCBOR(t, "inner")...)
	in = append(in, mustCBOR(t, 9)...)
	in = append(in, 0xff)
	var m Mutex[int]
	if err := cbor.Unmarshal(in, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v := m.Load(); v != 9 {
		t.Fatalf("expected 9, got %d", v)
	}

	dup := []byte{0xbf}
	for i := 0; i < 2; i++ {
		dup = append(dup, mustCBOR(t, "inner")...)
		dup = append(dup, mustCBOR(t, i)...)
	}
	dup = append(dup, 0xff)
	var d Mutex[int]
	requireFieldError(t, cbor.Unmarshal(dup, &d), warperrors.ErrDuplicateField, "inner")
}
