// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

// Package capture records raw link traffic to a file for offline replay.
//
// A capture is a CBOR sequence of Records, one per transport read or write.
// Records carry the raw bytes exactly as they crossed the wire, so a replay
// exercises the same decoder path as a live session.
package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Direction tells whether bytes were received from or sent to the panel.
type Direction uint8

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Record is one transport read or write.
type Record struct {
	Session   uuid.UUID `cbor:"1,keyasint"`
	Time      time.Time `cbor:"2,keyasint"`
	Direction Direction `cbor:"3,keyasint"`
	Data      []byte    `cbor:"4,keyasint"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Writer appends records to a capture stream. Safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	enc     *cbor.Encoder
	session uuid.UUID
	now     func() time.Time
}

// NewWriter starts a capture session on w
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		enc:     encMode.NewEncoder(w),
		session: uuid.New(),
		now:     time.Now,
	}
}

// Session returns the identifier stamped on every record of this writer
func (w *Writer) Session() uuid.UUID {
	return w.session
}

// Write records data as crossing the link in direction dir
func (w *Writer) Write(dir Direction, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec := Record{
		Session:   w.session,
		Time:      w.now(),
		Direction: dir,
		Data:      data,
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("write capture record: %w", err)
	}
	return nil
}

// Reader iterates over the records of a capture stream.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader reads a capture stream from r
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, io.EOF at the end of the stream
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("read capture record: %w", err)
	}
	return rec, nil
}
