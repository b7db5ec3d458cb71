package plist

// Object marker high nibbles (§4.E, §6.1). Low nibbles carry either a small
// inline count (0-14) or 0xf to mean "read a marker-int for the count".
const (
	bpTagNull       = 0x00
	bpTagBoolFalse  = 0x08
	bpTagBoolTrue   = 0x09
	bpTagFill       = 0x0F
	bpTagInt        = 0x10
	bpTagReal       = 0x20
	bpTagDate       = 0x33
	bpTagData       = 0x40
	bpTagASCIIStr   = 0x50
	bpTagUTF16Str   = 0x60
	bpTagUID        = 0x80
	bpTagArray      = 0xA0
	bpTagSet        = 0xC0
	bpTagDict       = 0xD0

	bpTagMask   = 0xF0
	bpCountMask = 0x0F
	bpCountEsc  = 0x0F
)

// trailerSize is the fixed footer size (§6.1): 5 reserved + sortVersion +
// offsetIntSize + objectRefSize + numObjects + topObject + offsetTableOffset.
const trailerSize = 5 + 1 + 1 + 1 + 8 + 8 + 8

// bplistTrailer is the 32-byte footer, decoded to host byte order.
type bplistTrailer struct {
	SortVersion       uint8
	OffsetIntSize     uint8
	ObjectRefSize     uint8
	NumObjects        uint64
	TopObject         uint64
	OffsetTableOffset uint64
}

// cycleGuardDepth is the container-nesting depth past which the decoder
// starts tracking visited offsets to guard against cycles (§4.F.2, §9);
// named after CFBinaryPList.c's kCFBinaryPlistMaxObjectDepth so shallow
// trees (the overwhelming majority of real plists) pay no bookkeeping cost.
const cycleGuardDepth = 15

var bplistHeader = [8]byte{'b', 'p', 'l', 'i', 's', 't', '0', '0'}
