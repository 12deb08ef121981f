// Package mutex provides Mutex, a lock that knows how to encode and decode
// the value it protects.
//
// A Mutex[T] serializes as a record with exactly one field named "inner":
//
//	{"inner": <T>}
//
// Encoding holds the lock only while the inner value is written and releases
// it on every path. Decoding validates the record shape, reporting
// errors.ErrDuplicateField when "inner" repeats and errors.ErrMissingField
// when it is absent, and then installs a fresh, unlocked primitive holding
// the decoded value. Fields other than "inner" are skipped unless the JSON
// decoder was configured with json.RejectUnknownMembers.
//
// Supported formats are JSON (both encoding/json and
// github.com/go-json-experiment/json), YAML (gopkg.in/yaml.v3) and CBOR
// (github.com/fxamacker/cbor/v2). Errors from the inner value are returned
// as-is.
package mutex
