package plist

import (
	"math"
	"time"
	"unicode/utf16"

	"howett.net/plist/cf"
)

// appleEpoch is the bplist Date reference point, 2001-01-01T00:00:00Z
// (§4.E table, "Date"); wire dates are a big-endian float64 of seconds
// relative to it, never a Unix timestamp.
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// bplistValueEncoder writes the flattened object list of a single document
// in bplist00 wire format (§4.E, §6.1).
type bplistValueEncoder struct {
	w       *countedWriter
	objects []*flattenedObject
	offsets []int
}

func newBplistValueEncoder(w *countedWriter) *bplistValueEncoder {
	return &bplistValueEncoder{w: w}
}

func (e *bplistValueEncoder) generateDocument(root cf.Value) {
	e.objects = flatten(root)
	e.offsets = make([]int, len(e.objects))

	e.w.Write(bplistHeader[:])

	for i, obj := range e.objects {
		e.offsets[i] = e.w.bytesEmitted()
		e.writeObject(obj)
	}
	e.w.flush()

	offsetTableOffset := e.w.bytesEmitted()
	objectRefSize := minimumSizeForInt(uint64(len(e.objects)))
	offsetIntSize := minimumSizeForInt(uint64(offsetTableOffset))

	for _, off := range e.offsets {
		writeSizedInt(e.w, uint64(off), offsetIntSize)
	}
	e.w.flush()

	var trailer [trailerSize]byte
	trailer[6] = byte(offsetIntSize)
	trailer[7] = byte(objectRefSize)
	putTrailerUint64(trailer[8:16], uint64(len(e.objects)))
	putTrailerUint64(trailer[16:24], 0) // top object is always index 0
	putTrailerUint64(trailer[24:32], uint64(offsetTableOffset))
	e.w.Write(trailer[:])
	e.w.flush()
}

func putTrailerUint64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> uint(56-8*i))
	}
}

// writeRefs emits a list of object refs using this document's ref width.
func (e *bplistValueEncoder) writeRefs(refs []int) {
	width := minimumSizeForInt(uint64(len(e.objects)))
	for _, r := range refs {
		writeSizedInt(e.w, uint64(r), width)
	}
}

// writeMarker emits a tag's high nibble plus an inline or escaped count,
// per the "fill object" scheme: counts 0-14 inline, 15 meaning "read the
// next object, an integer, for the real count" (§4.E, §6.1).
func (e *bplistValueEncoder) writeMarker(tag byte, count int) {
	if count < 0x0F {
		e.w.WriteByte(tag | byte(count))
		return
	}
	e.w.WriteByte(tag | bpCountEsc)
	e.writeIntBody(uint64(count), false)
}

// writeIntBody emits an integer object's marker and big-endian body. Widths
// of 1/2/4 bytes are emitted unsigned; an 8-byte body is always emitted for
// values that do not fit in the smaller widths, and is read back sign-
// extended by the decoder regardless of the `signed` hint (§4.B.1, §6.1) —
// so a negative value must go out as a full 8-byte two's-complement body.
func (e *bplistValueEncoder) writeIntBody(v uint64, negative bool) {
	width := minimumSizeForInt(v)
	if negative {
		width = 8
	}
	logWidth := 0
	switch width {
	case 1:
		logWidth = 0
	case 2:
		logWidth = 1
	case 4:
		logWidth = 2
	case 8:
		logWidth = 3
	}
	e.w.WriteByte(bpTagInt | byte(logWidth))
	writeSizedInt(e.w, v, width)
}

// writeInt128Body emits the 16-byte int marker (logWidth 4, §4.E table) and
// the two's-complement high/low 64-bit halves, big-endian, matching how
// bplist_decode.go's decodeAt reads an int body of width 16 back apart.
func (e *bplistValueEncoder) writeInt128Body(n *cf.Int128) {
	e.w.WriteByte(bpTagInt | 4)
	writeSizedInt(e.w, uint64(n.High), 8)
	writeSizedInt(e.w, n.Low, 8)
}

func (e *bplistValueEncoder) writeObject(obj *flattenedObject) {
	switch v := obj.value.(type) {
	case cf.Null:
		e.w.WriteByte(bpTagNull)
	case cf.Boolean:
		if v {
			e.w.WriteByte(bpTagBoolTrue)
		} else {
			e.w.WriteByte(bpTagBoolFalse)
		}
	case *cf.Number:
		if v.Signed && int64(v.Value) < 0 {
			e.writeIntBody(v.Value, true)
		} else {
			e.writeIntBody(v.Value, false)
		}
	case *cf.Int128:
		// A document decoded with a genuine 16-byte integer holds onto
		// it as *cf.Int128; re-encode the full 16-byte body unless High
		// is truly nothing but the sign extension of Low's bit 63, in
		// which case the narrower 8-byte int marker round-trips the
		// same value.
		switch {
		case v.High == 0 && v.Low>>63 == 0:
			e.writeIntBody(v.Low, false)
		case v.High == -1 && v.Low>>63 == 1:
			e.writeIntBody(v.Low, true)
		default:
			e.writeInt128Body(v)
		}
	case *cf.Real:
		if v.Wide {
			e.w.WriteByte(bpTagReal | 3)
			writeSizedInt(e.w, math.Float64bits(v.Value), 8)
		} else {
			e.w.WriteByte(bpTagReal | 2)
			writeSizedInt(e.w, uint64(math.Float32bits(float32(v.Value))), 4)
		}
	case cf.Date:
		e.w.WriteByte(bpTagDate)
		secs := time.Time(v).Sub(appleEpoch).Seconds()
		writeSizedInt(e.w, math.Float64bits(secs), 8)
	case cf.Data:
		e.writeMarker(bpTagData, len(v))
		e.w.Write(v)
	case cf.String:
		e.writeString(string(v))
	case cf.UID:
		width := minimumSizeForUID(uint64(v))
		e.w.WriteByte(bpTagUID | byte(width-1))
		writeSizedInt(e.w, uint64(v), width)
	case *cf.Array:
		e.writeMarker(bpTagArray, len(obj.valRefs))
		e.writeRefs(obj.valRefs)
	case *cf.Set:
		e.writeMarker(bpTagSet, len(obj.valRefs))
		e.writeRefs(obj.valRefs)
	case *cf.Dictionary:
		e.writeMarker(bpTagDict, len(obj.keyRefs))
		e.writeRefs(obj.keyRefs)
		e.writeRefs(obj.valRefs)
	default:
		panic(&UnsupportedValueError{Value: v, Description: v.TypeName()})
	}
}

// writeString picks the ASCII marker when every rune fits in 7 bits (the
// common case), falling back to UTF-16BE otherwise (§4.E table, "String").
func (e *bplistValueEncoder) writeString(s string) {
	if isASCII(s) {
		e.writeMarker(bpTagASCIIStr, len(s))
		e.w.Write([]byte(s))
		return
	}

	u16 := utf16.Encode([]rune(s))
	e.writeMarker(bpTagUTF16Str, len(u16))
	for _, c := range u16 {
		writeSizedInt(e.w, uint64(c), 2)
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}
