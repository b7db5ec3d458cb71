package plist

import "errors"

type optionReceiver interface {
	unmarshalerSetLax(bool) (bool, error)
	generatorSetGNUStepBase64(bool) (bool, error)
	generatorSetIndent(string) (bool, error)
	encoderSetFormat(int) (bool, error)
	decoderSetMutability(MutabilityOption) (bool, error)
}

type Option func(optionReceiver) (bool, error)

var optionInvalidError = errors.New("this option is unsupported for this format")

func GNUStepUseBase64Data() Option {
	return Option(func(o optionReceiver) (bool, error) {
		return o.generatorSetGNUStepBase64(true)
	})
}

func Indent(i string) Option {
	return Option(func(o optionReceiver) (bool, error) {
		return o.generatorSetIndent(i)
	})
}

func Format(f int) Option {
	return Option(func(o optionReceiver) (bool, error) {
		return o.encoderSetFormat(f)
	})
}

// Mutability controls how a binary-format Decoder shares memoized values
// between the decoded tree and its internal object cache (see
// MutabilityOption in bplist_decode.go). It has no effect on XML or
// old-style text decoding, which never memoize.
func Mutability(m MutabilityOption) Option {
	return Option(func(o optionReceiver) (bool, error) {
		return o.decoderSetMutability(m)
	})
}

// LaxDecoding instructs a Decoder to tolerate certain plist/Go type
// mismatches (e.g. a string plist value decoding into a numeric Go field)
// by attempting a best-effort conversion instead of failing outright.
func LaxDecoding(b bool) Option {
	return Option(func(o optionReceiver) (bool, error) {
		return o.unmarshalerSetLax(b)
	})
}
