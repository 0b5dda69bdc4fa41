// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package binder

import (
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
)

// TypePtr tags a buffer object inside a parcel (BINDER_TYPE_PTR)
const TypePtr uint32 = 0x70742a85

var (
	// ErrShortParcel is returned when a read runs past the end of the payload
	ErrShortParcel = errors.New("parcel: short read")

	// ErrBadObject is returned when a buffer object header is malformed
	ErrBadObject = errors.New("parcel: malformed object")
)

func pad4(n int) int {
	return (n + 3) &^ 3
}

// Writer builds a little-endian, 4-byte aligned transaction payload
type Writer struct {
	buf []byte
}

// NewWriter returns an empty payload writer
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) writePadded(b []byte) {
	w.buf = append(w.buf, b...)
	for i := len(b); i < pad4(len(b)); i++ {
		w.buf = append(w.buf, 0)
	}
}

// WriteParcelable writes a stable parcelable: a non-null marker, the
// size of the body including the size word, then the body. A nil value
// is written as a null marker.
func (w *Writer) WriteParcelable(p encoding.BinaryMarshaler) error {
	if p == nil {
		w.WriteInt32(0)
		return nil
	}

	body, err := p.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal parcelable: %w", err)
	}

	w.WriteInt32(1)
	w.WriteInt32(int32(len(body) + 4))
	w.writePadded(body)
	return nil
}

// WriteBuffer writes an embedded buffer object
func (w *Writer) WriteBuffer(b []byte) {
	w.WriteUint32(TypePtr)
	w.WriteUint32(uint32(len(b)))
	w.writePadded(b)
}

// WriteInt32Vector writes a vector of int32 as a buffer object whose body
// is the element count, the element size, then the elements.
func (w *Writer) WriteInt32Vector(v []int32) {
	body := make([]byte, 0, 8+4*len(v))
	body = binary.LittleEndian.AppendUint32(body, uint32(len(v)))
	body = binary.LittleEndian.AppendUint32(body, 4)
	for _, x := range v {
		body = binary.LittleEndian.AppendUint32(body, uint32(x))
	}
	w.WriteBuffer(body)
}

// Bytes returns the encoded payload
func (w *Writer) Bytes() []byte {
	if w == nil {
		return nil
	}
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

// Reader decodes a payload produced by Writer
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortParcel, n, r.pos, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) nextPadded(n int) ([]byte, error) {
	b, err := r.next(n)
	if err != nil {
		return nil, err
	}
	if skip := pad4(n) - n; skip > 0 {
		if _, err := r.next(skip); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadParcelable decodes a parcelable into u. It reports false when the
// payload carried a null marker.
func (r *Reader) ReadParcelable(u encoding.BinaryUnmarshaler) (bool, error) {
	marker, err := r.ReadInt32()
	if err != nil {
		return false, err
	}
	if marker == 0 {
		return false, nil
	}

	size, err := r.ReadInt32()
	if err != nil {
		return false, err
	}
	if size < 4 {
		return false, fmt.Errorf("%w: parcelable size %d", ErrBadObject, size)
	}

	body, err := r.nextPadded(int(size) - 4)
	if err != nil {
		return false, err
	}
	if err := u.UnmarshalBinary(body); err != nil {
		return false, err
	}
	return true, nil
}

// ReadBuffer decodes an embedded buffer object and returns its body
func (r *Reader) ReadBuffer() ([]byte, error) {
	tag, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if tag != TypePtr {
		return nil, fmt.Errorf("%w: object type 0x%08x", ErrBadObject, tag)
	}

	length, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int64(length) > int64(r.Remaining()) {
		return nil, fmt.Errorf("%w: buffer of %d bytes, have %d", ErrShortParcel, length, r.Remaining())
	}
	return r.nextPadded(int(length))
}

// ReadInt32Vector decodes a vector written by WriteInt32Vector
func (r *Reader) ReadInt32Vector() ([]int32, error) {
	body, err := r.ReadBuffer()
	if err != nil {
		return nil, err
	}

	vr := NewReader(body)
	count, err := vr.ReadUint32()
	if err != nil {
		return nil, err
	}
	elemSize, err := vr.ReadUint32()
	if err != nil {
		return nil, err
	}
	if elemSize != 4 {
		return nil, fmt.Errorf("%w: vector element size %d", ErrBadObject, elemSize)
	}
	if int64(count)*4 > int64(vr.Remaining()) {
		return nil, fmt.Errorf("%w: vector of %d elements, have %d bytes", ErrShortParcel, count, vr.Remaining())
	}

	out := make([]int32, count)
	for i := range out {
		out[i], _ = vr.ReadInt32()
	}
	return out, nil
}
