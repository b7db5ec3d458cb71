package plist

import "io"

// mustWriter wraps an io.Writer, panicking (to be caught at the public API
// boundary by recover) instead of returning a write error from every call
// site. Mirrors how the teacher's generators treat writes as infallible in
// the common case and let the Encode/Decode boundary translate a failure
// into a returned error.
type mustWriter struct {
	io.Writer
}

func (w mustWriter) Write(p []byte) (int, error) {
	n, err := w.Writer.Write(p)
	if err != nil {
		panic(err)
	}
	return n, nil
}

// countedWriter tracks the number of bytes written so far, giving the
// encoder bytesEmitted() without a second pass over the output.
//
// byteIOStagingSize mirrors the staging buffer size CFBinaryPList.c keeps between the
// caller's buffer and the underlying sink (8192 bytes, minus its own
// bookkeeping overhead); small object bodies are coalesced into it and
// flushed in one underlying Write rather than issuing a syscall/append per
// marker byte.
const byteIOStagingSize = 8192 - 32

type countedWriter struct {
	io.Writer
	written int
	staging [byteIOStagingSize]byte
	staged  int
}

// bytesEmitted returns the number of bytes that have left Write, including
// anything still sitting in the staging buffer — i.e. the offset the next
// write will land at, which is exactly what the encoder records as an
// object's position before emitting its body.
func (w *countedWriter) bytesEmitted() int {
	return w.written + w.staged
}

func (w *countedWriter) flush() {
	if w.staged == 0 {
		return
	}
	n, err := w.Writer.Write(w.staging[:w.staged])
	w.written += n
	w.staged = 0
	if err != nil {
		panic(err)
	}
}

func (w *countedWriter) Write(p []byte) (int, error) {
	if w.staged+len(p) > len(w.staging) {
		w.flush()
		if len(p) > len(w.staging) {
			n, err := w.Writer.Write(p)
			w.written += n
			if err != nil {
				panic(err)
			}
			return n, nil
		}
	}
	copy(w.staging[w.staged:], p)
	w.staged += len(p)
	return len(p), nil
}

func (w *countedWriter) WriteByte(b byte) error {
	_, err := w.Write([]byte{b})
	return err
}
