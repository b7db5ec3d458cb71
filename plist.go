package plist

import "reflect"

// Format identifies which on-disk property list representation an Encoder
// writes or a Decoder has sniffed.
const (
	// AutomaticFormat instructs NewEncoderForFormat's relatives to pick a
	// format on the caller's behalf; it is never reported by a Decoder.
	AutomaticFormat int = iota
	XMLFormat
	BinaryFormat
	OpenStepFormat
	GNUStepFormat
)

// UID is the "keyed archiver" object-reference primitive, CF$UID on the
// wire. It is distinct from a plain integer so round-tripping a decoded
// NSKeyedArchiver graph back through Marshal preserves the distinction.
type UID uint64

// Marshaler is implemented by types that know how to turn themselves into
// a plist-representable value (anything marshal() already accepts) rather
// than being reflected over field-by-field.
type Marshaler interface {
	MarshalPlist() (interface{}, error)
}

// Unmarshaler is implemented by types that want to take over decoding
// their own plist representation. unmarshal is called with a function
// that decodes the plist value for this object into whatever is passed
// to it.
type Unmarshaler interface {
	UnmarshalPlist(unmarshal func(interface{}) error) error
}

// UnknownTypeError is returned by Marshal when asked to encode a value of
// a type with no plist representation: a channel, function, or complex
// number, or a map with non-string keys.
type UnknownTypeError struct {
	Type reflect.Type
}

func (u *UnknownTypeError) Error() string {
	return "plist: unknown type " + u.Type.String()
}
