package plist

import (
	"reflect"

	"howett.net/plist/cf"
)

// RawPlistValue holds an already-parsed plist value, untouched by the
// struct/map/slice unmarshaling rules. Decoding into a RawPlistValue (or a
// struct field of that type) defers the decision of what Go type a value
// belongs in; Decoder.DecodeElement later finishes the job against a
// concrete destination, and Encoder.EncodeElement produces one to stash
// away for later re-encoding.
type RawPlistValue struct {
	value cf.Value
}

var rawPlistValueType = reflect.TypeOf(RawPlistValue{})
