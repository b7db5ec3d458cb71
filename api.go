package plist

import (
	"bytes"
	"io"
)

// Marshal returns the plist encoding of v in the given format. AutomaticFormat
// resolves to XMLFormat. Options (Indent, GNUStepUseBase64Data, Format) are
// applied in order, so a later Format(...) option overrides the format
// argument.
func Marshal(v interface{}, format int, opts ...Option) ([]byte, error) {
	if format == AutomaticFormat {
		format = XMLFormat
	}
	buf := &bytes.Buffer{}
	enc := NewEncoderForFormat(buf, format)
	for _, opt := range opts {
		opt(enc)
	}
	err := enc.Encode(v)
	return buf.Bytes(), err
}

// MarshalIndent is like Marshal but additionally indents every nested plist
// element with a copy of indent.
func MarshalIndent(v interface{}, format int, indent string) ([]byte, error) {
	return Marshal(v, format, Indent(indent))
}

// Unmarshal parses plist-encoded data and stores the result in the value
// pointed to by v. It returns the format of the data that was read.
func Unmarshal(data []byte, v interface{}) (format int, err error) {
	r := bytes.NewReader(data)
	d := NewDecoder(r)
	err = d.Decode(v)
	return d.format, err
}

// NewBinaryEncoder returns an Encoder that writes bplist00-format plists to w.
func NewBinaryEncoder(w io.Writer) *Encoder {
	return NewEncoderForFormat(w, BinaryFormat)
}
