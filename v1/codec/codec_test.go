package codec

import (
	"errors"
	"reflect"
	"testing"

	warperrors "github.com/mirkobrombin/go-lockbox/v1/errors"
)

type sample struct {
	Name string   `json:"name" yaml:"name"`
	Tags []string `json:"tags" yaml:"tags"`
}

func TestCodecsRoundTrip(t *testing.T) {
	in := sample{Name: "alice", Tags: []string{"go", "redis"}}
	for _, c := range []Codec{JSONCodec{}, JSONv2Codec{}, YAMLCodec{}, CBORCodec{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			var out sample
			if err := c.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(in, out) {
				t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for name, want := range map[string]string{
		"json":   "json",
		"":       "json",
		"JSONv2": "jsonv2",
		"yml":    "yaml",
		"cbor":   "cbor",
	} {
		c, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if c.Name() != want {
			t.Fatalf("ByName(%q) = %s, want %s", name, c.Name(), want)
		}
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("gob")
	if !errors.Is(err, warperrors.ErrUnknownCodec) {
		t.Fatalf("expected ErrUnknownCodec, got %v", err)
	}
}
