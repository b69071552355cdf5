// Package codec serializes topology and checkpoint values. It wraps CBOR
// (fxamacker/cbor/v2) rather than encoding/json: the spec calls out CBOR as
// the recommended value format for cross-language determinism, and a
// single leading version byte lets the schema evolve without an encoding
// rewrite (spec §6).
package codec

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/digitaiam/wh-ledger/pkg/wherr"
)

// version1 is the only schema version this build writes or reads. A second
// byte value would mean a breaking change to a stored struct's shape; the
// engine would branch on it before decoding.
const version1 byte = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	opts.TimeTag = cbor.EncTagRequired
	encMode, err = opts.EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Encode serializes v with a leading schema-version byte.
func Encode(v interface{}) ([]byte, error) {
	body, err := encMode.Marshal(v)
	if err != nil {
		return nil, wherr.Wrap(wherr.Encoding, "cbor marshal failed", err)
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, version1)
	out = append(out, body...)
	return out, nil
}

// Decode deserializes a value previously written by Encode into v.
func Decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return wherr.New(wherr.Encoding, "empty value")
	}
	switch data[0] {
	case version1:
		if err := decMode.Unmarshal(data[1:], v); err != nil {
			return wherr.Wrap(wherr.Encoding, "cbor unmarshal failed", err)
		}
		return nil
	default:
		return wherr.New(wherr.Encoding, "unknown value schema version")
	}
}
