// Package plist implements encoding and decoding of Apple's "property list" format.
// Property lists come in four sorts: binary (bplist00), XML, and the old-style
// OpenStep and GNUStep plain-text formats.
// The mapping between property list and Go objects is described in the documentation for the Encode and Decode functions.
package plist
