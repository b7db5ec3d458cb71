package plist

import (
	"bytes"
	"io"
	"io/ioutil"
	"reflect"
	"runtime"

	"howett.net/plist/cf"
)

type plistValueDecoder interface {
	parseDocument() (cf.Value, error)
}

// A Decoder reads a property list from an input stream.
type Decoder struct {
	valueDecoder plistValueDecoder
	lax          bool
	format       int
}

// Decode parses a property list document and stores the result in the value pointed to by v.
//
// Decode uses the inverse of the encodings that Encode uses, allocating heap-borne types as necessary.
//
// When given a nil pointer, Decode allocates a new value for it to point to.
//
// To decode property list values into an interface value, Decode decodes the property list into the concrete value contained
// in the interface value. If the interface value is nil, Decode stores one of the following in the interface value:
//
//     string, bool
//     uint64 or int64, for unsigned or signed plist integers
//     float64 or float32, for 64-bit or 32-bit plist reals
//     time.Time, for plist dates
//     UID, for keyed-archiver UIDs
//     []byte, for plist data
//     []interface{}, for plist arrays
//     map[string]interface{}, for plist dictionaries
//
// If a property list value is not appropriate for a given value type, Decode aborts immediately and returns an error.
func (p *Decoder) Decode(v interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
		}
	}()

	pval, err := p.valueDecoder.parseDocument()
	if err != nil {
		return err
	}
	if td, ok := p.valueDecoder.(textPlistValueDecoder); ok {
		// The text parser only learns GNUStep vs. OpenStep while parsing.
		p.format = td.parser.format
		if p.format == OpenStepFormat {
			// OpenStep text stores every scalar as a string, so numbers,
			// booleans and dates can only be recovered by lax conversion.
			p.lax = true
		}
	}
	p.unmarshal(pval, reflect.ValueOf(v))
	return
}

// DecodeElement decodes a single already-parsed value (typically one
// stashed away earlier via RawPlistValue) into v, using the same
// unmarshaling rules as Decode.
func (p *Decoder) DecodeElement(v interface{}, raw *RawPlistValue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
		}
	}()
	p.unmarshal(raw.value, reflect.ValueOf(v))
	return
}

// LookupKey looks up key in the top-level dictionary of a binary property
// list without decoding any sibling key or value, returning the same shapes
// Decode would produce for that value's type. It reports false if the
// document was not decoded from binary format, its root is not a
// dictionary, or key is absent.
func (p *Decoder) LookupKey(key string) (interface{}, bool) {
	bd, ok := p.valueDecoder.(*bplistValueDecoder)
	if !ok {
		return nil, false
	}
	v, ok := bd.lookupKey(key)
	if !ok {
		return nil, false
	}
	return p.valueInterface(v), true
}

// LookupIndex is the array/set analogue of LookupKey: it returns element
// index of a binary property list's top-level array or set without
// decoding any other element.
func (p *Decoder) LookupIndex(index int) (interface{}, bool) {
	bd, ok := p.valueDecoder.(*bplistValueDecoder)
	if !ok {
		return nil, false
	}
	v, ok := bd.lookupIndex(index)
	if !ok {
		return nil, false
	}
	return p.valueInterface(v), true
}

type noopDecoder struct{ err error }

func (p *noopDecoder) parseDocument() (cf.Value, error) {
	return nil, p.err
}

// NewDecoder returns a Decoder that reads a property list from r.
// NewDecoder reads the whole of r up front to sniff the format (binary,
// XML, or old-style OpenStep/GNUStep text) and, for the binary format, to
// validate the trailer/offset table before any value is materialized.
func NewDecoder(r io.ReadSeeker) *Decoder {
	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return &Decoder{valueDecoder: &noopDecoder{err}}
	}

	var decoder plistValueDecoder
	format := XMLFormat

	switch {
	case bytes.HasPrefix(buf, bplistHeader[:6]):
		format = BinaryFormat
		d, err := newBplistValueDecoder(buf)
		if err != nil {
			decoder = &noopDecoder{err}
		} else {
			decoder = d
		}
	case bytes.Contains(buf[:min(len(buf), 64)], []byte("<")):
		decoder = newXMLPlistValueDecoder(bytes.NewReader(buf))
	default:
		format = OpenStepFormat
		decoder = newTextPlistValueDecoder(bytes.NewReader(buf))
	}
	return &Decoder{valueDecoder: decoder, format: format}
}

// NewDecoderWithOptions is like NewDecoder but applies opts (LaxDecoding and
// Mutability are the options that apply to a Decoder) before returning.
func NewDecoderWithOptions(r io.ReadSeeker, opts ...Option) *Decoder {
	d := NewDecoder(r)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (p *Decoder) unmarshalerSetLax(b bool) (bool, error) {
	p.lax = b
	return true, nil
}

func (p *Decoder) generatorSetGNUStepBase64(b bool) (bool, error) {
	return false, optionInvalidError
}

func (p *Decoder) generatorSetIndent(i string) (bool, error) {
	return false, optionInvalidError
}

func (p *Decoder) encoderSetFormat(f int) (bool, error) {
	return false, optionInvalidError
}

// decoderSetMutability applies m to the underlying binary decoder, if any;
// XML and old-style text decoders never memoize, so the option is rejected
// for them the same way format/indent options are rejected for a Decoder.
func (p *Decoder) decoderSetMutability(m MutabilityOption) (bool, error) {
	bd, ok := p.valueDecoder.(*bplistValueDecoder)
	if !ok {
		return false, optionInvalidError
	}
	bd.mutability = m
	return true, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

type xmlPlistValueDecoder struct{ parser *xmlPlistParser }

func (d xmlPlistValueDecoder) parseDocument() (cf.Value, error) { return d.parser.parseDocument() }

func newXMLPlistValueDecoder(r io.Reader) plistValueDecoder {
	return xmlPlistValueDecoder{newXMLPlistParser(r)}
}

type textPlistValueDecoder struct{ parser *textPlistParser }

func (d textPlistValueDecoder) parseDocument() (cf.Value, error) { return d.parser.parseDocument() }

func newTextPlistValueDecoder(r io.Reader) plistValueDecoder {
	return textPlistValueDecoder{newTextPlistParser(r)}
}
