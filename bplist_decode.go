package plist

import (
	"bytes"
	"errors"
	"math"
	"runtime"
	"time"
	"unicode/utf16"

	"howett.net/plist/cf"
)

var (
	errOutOfRangeRef    = errors.New("object reference out of range")
	errCycleDetected    = errors.New("cyclic container graph detected")
	errNonStringDictKey = errors.New("dictionary key is not a string")
	errUnknownObjectTag = errors.New("unknown object tag")
)

// MutabilityOption controls how containers and leaves are shared between
// the decoded tree and the decoder's internal memo table (§4.F.2).
type MutabilityOption int

const (
	// Immutable shares memoized values freely; the caller must not mutate
	// anything reachable from the decoded root.
	Immutable MutabilityOption = iota
	// MutableContainers gives every dictionary/array/set its own backing
	// storage but still shares leaf values (strings, numbers, data, ...).
	MutableContainers
	// MutableContainersAndLeaves copies everything, containers and
	// leaves alike; nothing is memoized, so no two decodes of the same
	// object index can alias.
	MutableContainersAndLeaves
)

// bplistValueDecoder parses a single bplist00 document already validated by
// inspectTopLevel.
type bplistValueDecoder struct {
	buf           []byte
	trailer       bplistTrailer
	offsetTable   []uint64
	mutability    MutabilityOption
	memo          map[uint64]cf.Value
	visitedOffset map[uint64]bool // lazily allocated once depth > cycleGuardDepth
}

func newBplistValueDecoder(buf []byte) (*bplistValueDecoder, error) {
	d := &bplistValueDecoder{buf: buf}
	if err := d.inspectTopLevel(); err != nil {
		return nil, err
	}
	return d, nil
}

// inspectTopLevel validates the header and trailer and loads the offset
// table, rejecting every malformation enumerated in §4.F.1/§8 before any
// object is materialized: truncated header/trailer, zero-width fields,
// an offset table or object count that overflows the buffer, and an
// out-of-range top object index.
func (d *bplistValueDecoder) inspectTopLevel() error {
	if len(d.buf) < 8+trailerSize {
		return &invalidPlistError{"binary", errors.New("file too short")}
	}
	if !bytes.Equal(d.buf[:7], bplistHeader[:7]) {
		return &invalidPlistError{"binary", errors.New("incorrect header")}
	}

	t := d.buf[len(d.buf)-trailerSize:]
	tr := bplistTrailer{
		SortVersion:   t[5],
		OffsetIntSize: t[6],
		ObjectRefSize: t[7],
	}
	var ok bool
	tr.NumObjects, ok = readSizedIntFromBytes(t[8:16], 8)
	if !ok {
		return &invalidPlistError{"binary", errors.New("invalid trailer")}
	}
	tr.TopObject, _ = readSizedIntFromBytes(t[16:24], 8)
	tr.OffsetTableOffset, _ = readSizedIntFromBytes(t[24:32], 8)

	if tr.OffsetIntSize == 0 || tr.ObjectRefSize == 0 {
		return &invalidPlistError{"binary", errors.New("illegal integer size in trailer")}
	}
	if tr.TopObject >= tr.NumObjects {
		return &invalidPlistError{"binary", errors.New("top object out of range")}
	}
	if widthInsufficient(tr.ObjectRefSize, tr.NumObjects) {
		return &invalidPlistError{"binary", errors.New("object ref size too small for object count")}
	}
	if widthInsufficient(tr.OffsetIntSize, tr.OffsetTableOffset) {
		return &invalidPlistError{"binary", errors.New("offset int size too small for offset table offset")}
	}

	offsetTableSize, overflow := checkedMul(tr.NumObjects, uint64(tr.OffsetIntSize))
	if overflow {
		return &invalidPlistError{"binary", errors.New("offset table size overflows")}
	}
	offsetTableEnd, overflow := checkedAdd(tr.OffsetTableOffset, offsetTableSize)
	if overflow || offsetTableEnd > uint64(len(d.buf)-trailerSize) {
		return &invalidPlistError{"binary", errors.New("offset table overruns buffer")}
	}
	if offsetTableEnd != uint64(len(d.buf)-trailerSize) {
		return &invalidPlistError{"binary", errors.New("buffer length does not match trailer")}
	}
	if tr.OffsetTableOffset < 9 {
		return &invalidPlistError{"binary", errors.New("offset table overlaps header")}
	}

	d.trailer = tr
	d.offsetTable = make([]uint64, tr.NumObjects)
	base := d.buf[tr.OffsetTableOffset:]
	width := int(tr.OffsetIntSize)
	for i := uint64(0); i < tr.NumObjects; i++ {
		start := i * uint64(width)
		v, ok := readSizedIntFromBytes(base[start:start+uint64(width)], width)
		if !ok || v < 8 || v >= tr.OffsetTableOffset {
			return &invalidPlistError{"binary", errors.New("object offset out of range")}
		}
		d.offsetTable[i] = v
	}
	return nil
}

func (d *bplistValueDecoder) parseDocument() (root cf.Value, parseError error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			if pe, ok := r.(plistParseError); ok {
				parseError = pe
			} else if ip, ok := r.(invalidPlistError); ok {
				parseError = ip
			} else if err, ok := r.(error); ok {
				parseError = plistParseError{"binary", err}
			} else {
				panic(r)
			}
		}
	}()

	if d.mutability != MutableContainersAndLeaves {
		d.memo = make(map[uint64]cf.Value)
	}
	root = d.materialize(d.trailer.TopObject, 0)
	return root, nil
}

// materialize decodes the object at index idx, sharing an already-decoded
// value from memo when the mutability policy allows it. depth tracks
// container nesting; once it exceeds cycleGuardDepth the decoder starts
// recording visited offsets to detect a self-referential graph instead of
// recursing forever (§4.F.2, §9) — a cost paid only by pathologically deep
// or cyclic input, never by the common shallow tree.
func (d *bplistValueDecoder) materialize(idx uint64, depth int) cf.Value {
	if idx >= uint64(len(d.offsetTable)) {
		panic(plistParseError{"binary", errOutOfRangeRef})
	}

	offset := d.offsetTable[idx]

	if d.memo != nil {
		if v, ok := d.memo[idx]; ok {
			if d.mutability == MutableContainers && isContainerMarker(d.byteAt(offset)) {
				// Fall through and re-decode: each reference to a
				// container gets its own backing storage under this
				// policy, even though leaves are still shared.
			} else {
				return v
			}
		}
	}

	if depth > cycleGuardDepth {
		if d.visitedOffset == nil {
			d.visitedOffset = make(map[uint64]bool)
		}
		if d.visitedOffset[offset] {
			panic(plistParseError{"binary", errCycleDetected})
		}
		d.visitedOffset[offset] = true
		defer delete(d.visitedOffset, offset)
	}

	v := d.decodeAt(offset, depth)

	if d.memo != nil && !(d.mutability == MutableContainers && isContainerMarker(d.byteAt(offset))) {
		d.memo[idx] = v
	}
	return v
}

// isContainerMarker reports whether a marker byte encodes an array, set, or
// dictionary, the three kinds MutableContainers gives fresh storage to on
// every reference instead of sharing via the memo table.
func isContainerMarker(marker byte) bool {
	switch marker & bpTagMask {
	case bpTagArray, bpTagSet, bpTagDict:
		return true
	}
	return false
}

func (d *bplistValueDecoder) byteAt(offset uint64) byte {
	if offset >= uint64(len(d.buf)) {
		panic(plistParseError{"binary", errOutOfRangeRef})
	}
	return d.buf[offset]
}

// readCount decodes the marker's inline/escaped count, returning the count
// and the offset of the first byte following the count encoding.
func (d *bplistValueDecoder) readCount(marker byte, offset uint64) (uint64, uint64) {
	low := marker & bpCountMask
	if low != bpCountEsc {
		return uint64(low), offset + 1
	}
	intMarker := d.byteAt(offset + 1)
	width := 1 << (intMarker & 0x0F)
	body := d.sliceAt(offset+2, uint64(width))
	n, ok := readSizedIntFromBytes(body, width)
	if !ok {
		panic(plistParseError{"binary", errOutOfRangeRef})
	}
	return n, offset + 2 + uint64(width)
}

func (d *bplistValueDecoder) sliceAt(offset, length uint64) []byte {
	end, overflow := checkedAdd(offset, length)
	if overflow || end > uint64(len(d.buf)) {
		panic(plistParseError{"binary", errOutOfRangeRef})
	}
	return d.buf[offset:end]
}

func (d *bplistValueDecoder) readRefs(offset uint64, count uint64) ([]uint64, uint64) {
	width := int(d.trailer.ObjectRefSize)
	refs := make([]uint64, count)
	for i := uint64(0); i < count; i++ {
		body := d.sliceAt(offset+i*uint64(width), uint64(width))
		v, _ := readSizedIntFromBytes(body, width)
		refs[i] = v
	}
	return refs, offset + count*uint64(width)
}

func (d *bplistValueDecoder) decodeAt(offset uint64, depth int) cf.Value {
	marker := d.byteAt(offset)
	tag := marker & bpTagMask

	switch {
	case marker == bpTagNull:
		return cf.Null{}
	case marker == bpTagBoolFalse:
		return cf.Boolean(false)
	case marker == bpTagBoolTrue:
		return cf.Boolean(true)
	case tag == bpTagInt:
		width := 1 << (marker & 0x0F)
		if width > 16 {
			panic(plistParseError{"binary", errors.New("integer wider than 16 bytes")})
		}
		body := d.sliceAt(offset+1, uint64(width))
		v, ok := readSizedIntFromBytes(body, width)
		if !ok {
			panic(plistParseError{"binary", errOutOfRangeRef})
		}
		if width == 16 {
			high, _ := readSizedIntFromBytes(body[:8], 8)
			low, _ := readSizedIntFromBytes(body[8:], 8)
			n := &cf.Int128{High: int64(high), Low: low}
			if (n.High == 0 && n.Low>>63 == 0) || (n.High == -1 && n.Low>>63 == 1) {
				return foldInt128(n)
			}
			return n
		}
		if width == 8 {
			return &cf.Number{Signed: true, Value: v}
		}
		return &cf.Number{Signed: false, Value: v}
	case tag == bpTagReal:
		width := 1 << (marker & 0x0F)
		if width != 4 && width != 8 {
			panic(plistParseError{"binary", errors.New("unsupported real width")})
		}
		body := d.sliceAt(offset+1, uint64(width))
		bits, ok := readSizedIntFromBytes(body, width)
		if !ok {
			panic(plistParseError{"binary", errOutOfRangeRef})
		}
		if width == 4 {
			return &cf.Real{Wide: false, Value: float64(math.Float32frombits(uint32(bits)))}
		}
		return &cf.Real{Wide: true, Value: math.Float64frombits(bits)}
	case marker == bpTagDate:
		body := d.sliceAt(offset+1, 8)
		bits, _ := readSizedIntFromBytes(body, 8)
		secs := math.Float64frombits(bits)
		t := appleEpoch.Add(time.Duration(secs * float64(time.Second)))
		return cf.Date(t)
	case tag == bpTagData:
		count, next := d.readCount(marker, offset)
		body := d.sliceAt(next, count)
		out := make([]byte, len(body))
		copy(out, body)
		return cf.Data(out)
	case tag == bpTagASCIIStr:
		count, next := d.readCount(marker, offset)
		body := d.sliceAt(next, count)
		out := make([]byte, len(body))
		copy(out, body)
		return cf.String(out)
	case tag == bpTagUTF16Str:
		count, next := d.readCount(marker, offset)
		body := d.sliceAt(next, count*2)
		units := make([]uint16, count)
		for i := range units {
			units[i] = uint16(body[2*i])<<8 | uint16(body[2*i+1])
		}
		return cf.String(string(utf16.Decode(units)))
	case tag == bpTagUID:
		width := int(marker&0x0F) + 1
		if width > 8 {
			panic(plistParseError{"binary", errors.New("UID width greater than 8 bytes is not supported")})
		}
		body := d.sliceAt(offset+1, uint64(width))
		v, ok := readSizedIntFromBytes(body, width)
		if !ok {
			panic(plistParseError{"binary", errOutOfRangeRef})
		}
		return cf.UID(v)
	case tag == bpTagArray:
		count, next := d.readCount(marker, offset)
		refs, _ := d.readRefs(next, count)
		values := make([]cf.Value, count)
		for i, r := range refs {
			values[i] = d.materialize(r, depth+1)
		}
		if d.mutability == MutableContainersAndLeaves {
			values = append([]cf.Value(nil), values...)
		}
		return &cf.Array{Values: values}
	case tag == bpTagSet:
		count, next := d.readCount(marker, offset)
		refs, _ := d.readRefs(next, count)
		values := make([]cf.Value, count)
		for i, r := range refs {
			values[i] = d.materialize(r, depth+1)
		}
		return &cf.Set{Values: values}
	case tag == bpTagDict:
		count, next := d.readCount(marker, offset)
		keyRefs, afterKeys := d.readRefs(next, count)
		valRefs, _ := d.readRefs(afterKeys, count)
		keys := make([]string, count)
		values := make([]cf.Value, count)
		for i := uint64(0); i < count; i++ {
			kv := d.materialize(keyRefs[i], depth+1)
			ks, ok := kv.(cf.String)
			if !ok {
				panic(plistParseError{"binary", errNonStringDictKey})
			}
			keys[i] = string(ks)
			values[i] = d.materialize(valRefs[i], depth+1)
		}
		return &cf.Dictionary{Keys: keys, Values: values}
	default:
		panic(plistParseError{"binary", errUnknownObjectTag})
	}
}

// foldInt128 collapses a 128-bit integer whose high half is a pure sign
// extension of the low half into the ordinary 64-bit Number it is
// equivalent to, so small integers that merely happened to be archived as
// 16-byte bodies behave identically to ones archived as 8-byte bodies.
func foldInt128(n *cf.Int128) cf.Value {
	return &cf.Number{Signed: true, Value: n.Low}
}

// offsetOfValueForKey locates key within the dictionary at dictOffset and
// returns the file offsets of the matching key object and its value,
// without materializing any sibling key or value. Short ASCII keys (the
// overwhelming majority in practice) are compared directly against the raw
// string bytes on the wire; anything else falls back to fully decoding each
// candidate key for a domain-equality comparison.
func (d *bplistValueDecoder) offsetOfValueForKey(dictOffset uint64, key string) (keyOffset, valOffset uint64, found bool) {
	marker := d.byteAt(dictOffset)
	if marker&bpTagMask != bpTagDict {
		return 0, 0, false
	}

	count, keysBase := d.readCount(marker, dictOffset)
	width := int(d.trailer.ObjectRefSize)
	valuesBase := keysBase + count*uint64(width)

	shortASCII := len(key) < 15
	keyBytes := []byte(key)

	for i := uint64(0); i < count; i++ {
		refBody := d.sliceAt(keysBase+i*uint64(width), uint64(width))
		ref, _ := readSizedIntFromBytes(refBody, width)
		if ref >= uint64(len(d.offsetTable)) {
			panic(plistParseError{"binary", errOutOfRangeRef})
		}
		koffset := d.offsetTable[ref]
		kmarker := d.byteAt(koffset)

		var match bool
		if shortASCII && kmarker&bpTagMask == bpTagASCIIStr {
			klen, kdata := d.readCount(kmarker, koffset)
			if int(klen) == len(key) {
				match = bytes.Equal(d.sliceAt(kdata, klen), keyBytes)
			}
		} else {
			kv := d.materialize(ref, 0)
			if ks, ok := kv.(cf.String); ok {
				match = string(ks) == key
			}
		}

		if match {
			valRefBody := d.sliceAt(valuesBase+i*uint64(width), uint64(width))
			vref, _ := readSizedIntFromBytes(valRefBody, width)
			if vref >= uint64(len(d.offsetTable)) {
				panic(plistParseError{"binary", errOutOfRangeRef})
			}
			return koffset, d.offsetTable[vref], true
		}
	}
	return 0, 0, false
}

// offsetOfValueAtIndex locates the value at index within the array or set
// starting at containerOffset and returns its file offset, without
// materializing any other element.
func (d *bplistValueDecoder) offsetOfValueAtIndex(containerOffset uint64, index int) (valOffset uint64, found bool) {
	marker := d.byteAt(containerOffset)
	tag := marker & bpTagMask
	if tag != bpTagArray && tag != bpTagSet {
		return 0, false
	}
	if index < 0 {
		return 0, false
	}

	count, base := d.readCount(marker, containerOffset)
	if uint64(index) >= count {
		return 0, false
	}

	width := int(d.trailer.ObjectRefSize)
	refBody := d.sliceAt(base+uint64(index)*uint64(width), uint64(width))
	ref, _ := readSizedIntFromBytes(refBody, width)
	if ref >= uint64(len(d.offsetTable)) {
		return 0, false
	}
	return d.offsetTable[ref], true
}

// lookupKey is the top-level entry point for the key fast path: it resolves
// the document's root dictionary and, if key is present, decodes only the
// matching value (never its siblings). A malformed document is reported as
// "not found" rather than propagating a panic, since callers use this path
// for best-effort probing.
func (d *bplistValueDecoder) lookupKey(key string) (v cf.Value, found bool) {
	defer func() {
		if r := recover(); r != nil {
			v, found = nil, false
		}
	}()

	rootOffset := d.offsetTable[d.trailer.TopObject]
	_, valOffset, ok := d.offsetOfValueForKey(rootOffset, key)
	if !ok {
		return nil, false
	}
	return d.decodeAt(valOffset, 0), true
}

// lookupIndex is the array analogue of lookupKey: it resolves the
// document's root array or set and, if index is in range, decodes only the
// element at that index.
func (d *bplistValueDecoder) lookupIndex(index int) (v cf.Value, found bool) {
	defer func() {
		if r := recover(); r != nil {
			v, found = nil, false
		}
	}()

	rootOffset := d.offsetTable[d.trailer.TopObject]
	valOffset, ok := d.offsetOfValueAtIndex(rootOffset, index)
	if !ok {
		return nil, false
	}
	return d.decodeAt(valOffset, 0), true
}
