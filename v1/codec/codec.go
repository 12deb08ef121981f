// Package codec provides the byte-level encoders used to move values,
// including mutex.Mutex, in and out of storage.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	jsonv2 "github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	warperrors "github.com/mirkobrombin/go-lockbox/v1/errors"
)

// Codec defines methods for encoding and decoding values.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// JSONCodec implements Codec using encoding/json.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string                       { return "json" }

// JSONv2Codec implements Codec using github.com/go-json-experiment/json.
// Options are applied to every call.
type JSONv2Codec struct {
	Options []jsonv2.Options
}

func (c JSONv2Codec) Marshal(v any) ([]byte, error) { return jsonv2.Marshal(v, c.Options...) }
func (c JSONv2Codec) Unmarshal(data []byte, v any) error {
	return jsonv2.Unmarshal(data, v, c.Options...)
}
func (JSONv2Codec) Name() string { return "jsonv2" }

// YAMLCodec implements Codec using gopkg.in/yaml.v3.
type YAMLCodec struct{}

func (YAMLCodec) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (YAMLCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }
func (YAMLCodec) Name() string                       { return "yaml" }

// CBORCodec implements Codec using github.com/fxamacker/cbor/v2.
type CBORCodec struct{}

func (CBORCodec) Marshal(v any) ([]byte, error)      { return cbor.Marshal(v) }
func (CBORCodec) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }
func (CBORCodec) Name() string                       { return "cbor" }

// ByName returns the codec registered under name. Matching ignores case.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json", "":
		return JSONCodec{}, nil
	case "jsonv2":
		return JSONv2Codec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "cbor":
		return CBORCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %q", warperrors.ErrUnknownCodec, name)
}
