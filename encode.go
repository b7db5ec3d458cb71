package plist

import (
	"errors"
	"io"
	"reflect"
	"runtime"

	"howett.net/plist/cf"
)

type plistValueEncoder interface {
	generateDocument(cf.Value)
}

// An Encoder writes a property list to an output stream.
type Encoder struct {
	writer io.Writer
	format int
	indent string

	useGNUStepBase64 bool

	valueEncoder plistValueEncoder
}

// Encode writes the property list encoding of v to the connection.
//
// Encode traverses the value v recursively.
// Any nil values encountered, other than the root, will be silently discarded as
// the property list format bears no representation for nil values.
//
// Strings, integers of varying size, floats and booleans are encoded unchanged.
//
// Slice and Array values are encoded as property list arrays, except for
// []byte values, which are encoded as data.
//
// Map values encode as dictionaries. The map's key type must be string; there is no provision for encoding non-string dictionary keys.
//
// Struct values are encoded as dictionaries, with only exported fields being serialized. Struct field encoding may be influenced with the use of tags.
// The tag format is:
//
//     `plist:"<key>[,flags...]"`
//
// The following flags are supported:
//
//     omitempty    Only include the field if it is not set to the zero value for its type.
//
// If the key is "-", the field is ignored.
//
// Anonymous struct fields are encoded as if their exported fields were exposed via the outer struct.
//
// Pointer values encode as the value pointed to.
//
// Channel, complex and function values cannot be encoded. Any attempt to do so causes Encode to return an error.
func (p *Encoder) Encode(v interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
		}
	}()

	pval := p.marshal(reflect.ValueOf(v))
	if pval == nil {
		panic(errors.New("no root element to encode"))
	}

	p.ensureValueEncoder()
	p.valueEncoder.generateDocument(pval)
	return
}

// EncodeElement encodes v as a single plist value and wraps it in a
// RawPlistValue, suitable for storing away and later feeding to
// Decoder.DecodeElement.
func (p *Encoder) EncodeElement(v interface{}) (raw *RawPlistValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
		}
	}()
	pval := p.marshal(reflect.ValueOf(v))
	return &RawPlistValue{value: pval}, nil
}

// Indent instructs the Encoder to generate indented output where the
// target format supports it (XML and text; binary ignores it entirely).
func (p *Encoder) Indent(i string) {
	p.indent = i
	p.ensureValueEncoder()
	switch e := p.valueEncoder.(type) {
	case *xmlPlistGenerator:
		e.Indent(i, 0)
	case *textPlistGenerator:
		e.Indent(i)
	}
}

func (p *Encoder) ensureValueEncoder() {
	if p.valueEncoder != nil {
		return
	}
	switch p.format {
	case BinaryFormat:
		p.valueEncoder = newBplistValueEncoder(&countedWriter{Writer: p.writer})
	case OpenStepFormat:
		g := newTextPlistGenerator(p.writer, OpenStepFormat)
		g.useGNUStepBase64 = p.useGNUStepBase64
		p.valueEncoder = g
	case GNUStepFormat:
		g := newTextPlistGenerator(p.writer, GNUStepFormat)
		g.useGNUStepBase64 = p.useGNUStepBase64
		p.valueEncoder = g
	default:
		p.valueEncoder = newXMLPlistGenerator(p.writer)
	}
	if p.indent != "" {
		p.Indent(p.indent)
	}
}

func (p *Encoder) unmarshalerSetLax(b bool) (bool, error) {
	return false, optionInvalidError
}

func (p *Encoder) decoderSetMutability(m MutabilityOption) (bool, error) {
	return false, optionInvalidError
}

func (p *Encoder) generatorSetGNUStepBase64(b bool) (bool, error) {
	p.useGNUStepBase64 = b
	if g, ok := p.valueEncoder.(*textPlistGenerator); ok {
		g.useGNUStepBase64 = b
	}
	return true, nil
}

func (p *Encoder) generatorSetIndent(i string) (bool, error) {
	p.Indent(i)
	return true, nil
}

func (p *Encoder) encoderSetFormat(f int) (bool, error) {
	p.format = f
	p.valueEncoder = nil
	p.ensureValueEncoder()
	return true, nil
}

// NewEncoder returns an Encoder that writes an XML property list to w.
func NewEncoder(w io.Writer) *Encoder {
	return NewEncoderForFormat(w, XMLFormat)
}

// NewEncoderForFormat returns an Encoder that writes a property list to w
// in the given format. AutomaticFormat is treated as XMLFormat; binary
// and GNUStep/OpenStep text writers are also available.
func NewEncoderForFormat(w io.Writer, format int) *Encoder {
	if format == AutomaticFormat {
		format = XMLFormat
	}
	p := &Encoder{writer: w, format: format}
	p.ensureValueEncoder()
	return p
}

// newEncoderWithOptions builds an XML-format Encoder and applies opts, which
// may change the format (Format wins last) or adjust generator behavior.
func newEncoderWithOptions(w io.Writer, opts ...Option) *Encoder {
	p := NewEncoderForFormat(w, XMLFormat)
	for _, opt := range opts {
		opt(p)
	}
	return p
}
