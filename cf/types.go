// Package cf implements the tagged value model ("ObjectModel") shared by every
// plist encoding: a small closed set of primitive and container cases with
// value-equality hashing for the primitives the binary encoder uniques.
package cf

import (
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Value is any plist value: a primitive (String, Number, Real, Boolean, UID,
// Data, Date, Int128, Null) or a container (Array, Set, Dictionary).
type Value interface {
	TypeName() string

	// Hash buckets a value for uniquing. Two values that are Equal must
	// produce the same Hash; the converse need not hold. Containers hash
	// by identity (they are never uniqued) and exist only to satisfy the
	// interface.
	Hash() uint64

	// Equal reports whether two values of the same dynamic type are
	// value-equal. It is only ever called by the flattener on values of
	// the primitive kinds that are uniqued (String, Number, Real, Date,
	// Data); containers and Booleans do not need a meaningful Equal.
	Equal(Value) bool
}

func identityHash(p interface{}) uint64 {
	return uint64(reflect.ValueOf(p).Pointer())
}

// Null is the singleton absence-of-value case. The binary format writes it
// as marker 0x00 and reads it back; the XML and text writers emit it as the
// string "$null". It exists for parity with hosts (e.g. JSON) that do have
// an explicit null and round-trip through an interface{} value.
type Null struct{}

func (Null) TypeName() string   { return "null" }
func (Null) Hash() uint64       { return 0x9e3779b97f4a7c15 }
func (Null) Equal(v Value) bool { _, ok := v.(Null); return ok }

type Dictionary struct {
	Keys   []string
	Values []Value
}

func (*Dictionary) TypeName() string { return "dictionary" }

// Hash/Equal are never consulted for identity: dictionaries are not uniqued
// by the flattener (§4.D).
func (p *Dictionary) Hash() uint64       { return identityHash(p) }
func (p *Dictionary) Equal(v Value) bool { o, ok := v.(*Dictionary); return ok && o == p }

func (p *Dictionary) Len() int { return len(p.Keys) }

func (p *Dictionary) Less(i, j int) bool { return p.Keys[i] < p.Keys[j] }

func (p *Dictionary) Swap(i, j int) {
	p.Keys[i], p.Keys[j] = p.Keys[j], p.Keys[i]
	p.Values[i], p.Values[j] = p.Values[j], p.Values[i]
}

// Sort orders the dictionary's entries by key. Binary encoding does not
// require sorted keys, but the XML and text generators walk dictionaries in
// a stable order for deterministic output.
func (p *Dictionary) Sort() { sort.Sort(p) }

// Range calls r once per entry, in key-sorted order.
func (p *Dictionary) Range(r func(i int, key string, val Value)) {
	p.Sort()
	for i, k := range p.Keys {
		r(i, k, p.Values[i])
	}
}

// Get returns the value for key and whether it was present, without sorting.
func (p *Dictionary) Get(key string) (Value, bool) {
	for i, k := range p.Keys {
		if k == key {
			return p.Values[i], true
		}
	}
	return nil, false
}

type Array struct {
	Values []Value
}

func (*Array) TypeName() string { return "array" }

func (p *Array) Hash() uint64       { return identityHash(p) }
func (p *Array) Equal(v Value) bool { o, ok := v.(*Array); return ok && o == p }

func (p *Array) Len() int { return len(p.Values) }

// Range calls r once per element, in order.
func (p *Array) Range(r func(i int, val Value)) {
	for i, v := range p.Values {
		r(i, v)
	}
}

// Set is an unordered collection; it only ever appears on the decode path
// (the encoder has no Go source type that maps onto it).
type Set struct {
	Values []Value
}

func (*Set) TypeName() string { return "set" }

func (p *Set) Hash() uint64       { return identityHash(p) }
func (p *Set) Equal(v Value) bool { o, ok := v.(*Set); return ok && o == p }

func (p *Set) Range(r func(i int, val Value)) {
	for i, v := range p.Values {
		r(i, v)
	}
}

type String string

func (String) TypeName() string { return "string" }

func (p String) Hash() uint64 {
	return xxhash.Sum64String("s:" + string(p))
}

func (p String) Equal(v Value) bool {
	o, ok := v.(String)
	return ok && o == p
}

// Number is a signed or unsigned 64-bit integer. The wire format does not
// distinguish the two except by the reader's choice of how to interpret
// the stored bits; Signed records which reading this value was built with.
type Number struct {
	Signed bool
	Value  uint64
}

func (*Number) TypeName() string { return "integer" }

func (p *Number) Hash() uint64 {
	var buf [9]byte
	buf[0] = 'n'
	if p.Signed {
		buf[0] = 'N'
	}
	putUint64BE(buf[1:], p.Value)
	return xxhash.Sum64(buf[:])
}

func (p *Number) Equal(v Value) bool {
	o, ok := v.(*Number)
	return ok && o.Signed == p.Signed && o.Value == p.Value
}

// Int128 is a 128-bit integer, high half signed and low half unsigned,
// exactly as materialized from a 16-byte integer object body. No Go value
// marshals onto it; the binary encoder writes one back as an 8-byte integer
// when High is only the sign extension of Low, and as a 16-byte body
// otherwise.
type Int128 struct {
	High int64
	Low  uint64
}

func (*Int128) TypeName() string { return "integer128" }

func (p *Int128) Hash() uint64 {
	if p.High == signExtension(p.Low) {
		// Fits in a plain int64; hash identically to the Number that
		// would represent the same value so the two compare equal
		// after a decode -> re-encode -> decode round trip.
		return (&Number{Signed: true, Value: p.Low}).Hash()
	}
	var buf [16]byte
	putUint64BE(buf[:8], uint64(p.High))
	putUint64BE(buf[8:], p.Low)
	return xxhash.Sum64(buf[:])
}

func (p *Int128) Equal(v Value) bool {
	switch o := v.(type) {
	case *Int128:
		return o.High == p.High && o.Low == p.Low
	case *Number:
		return p.High == signExtension(p.Low) && o.Signed && o.Value == p.Low
	}
	return false
}

func signExtension(low uint64) int64 {
	if low&(1<<63) != 0 {
		return -1
	}
	return 0
}

func putUint64BE(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> uint(56-8*i))
	}
}

type Real struct {
	Wide  bool
	Value float64
}

func (*Real) TypeName() string { return "real" }

func (p *Real) Hash() uint64 {
	var buf [9]byte
	buf[0] = 'r'
	if p.Wide {
		buf[0] = 'R'
	}
	putUint64BE(buf[1:], math.Float64bits(p.Value))
	return xxhash.Sum64(buf[:])
}

func (p *Real) Equal(v Value) bool {
	o, ok := v.(*Real)
	return ok && o.Wide == p.Wide && o.Value == p.Value
}

type Boolean bool

func (Boolean) TypeName() string { return "boolean" }

// Booleans are singletons on the wire (marker 0x08/0x09) and are never
// uniqued by the flattener, so Hash/Equal are never consulted for them in
// practice, but are defined for interface completeness.
func (p Boolean) Hash() uint64 {
	if p {
		return 1
	}
	return 0
}

func (p Boolean) Equal(v Value) bool {
	o, ok := v.(Boolean)
	return ok && o == p
}

// UID is the "keyed archiver" object-reference primitive (CF$UID), a plain
// unsigned integer with its own wire marker distinct from Number.
type UID uint64

func (UID) TypeName() string { return "UID" }

func (p UID) Hash() uint64 {
	var buf [9]byte
	buf[0] = 'u'
	putUint64BE(buf[1:], uint64(p))
	return xxhash.Sum64(buf[:])
}

func (p UID) Equal(v Value) bool {
	o, ok := v.(UID)
	return ok && o == p
}

type Data []byte

func (Data) TypeName() string { return "data" }

func (p Data) Hash() uint64 {
	return xxhash.Sum64(append([]byte{'d'}, []byte(p)...))
}

func (p Data) Equal(v Value) bool {
	o, ok := v.(Data)
	if !ok || len(o) != len(p) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

type Date time.Time

func (Date) TypeName() string { return "date" }

func (p Date) Hash() uint64 {
	var buf [9]byte
	buf[0] = 't'
	putUint64BE(buf[1:], math.Float64bits(float64(time.Time(p).UnixNano())))
	return xxhash.Sum64(buf[:])
}

func (p Date) Equal(v Value) bool {
	o, ok := v.(Date)
	return ok && time.Time(o).Equal(time.Time(p))
}
