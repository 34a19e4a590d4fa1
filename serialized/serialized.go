// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package serialized decodes the trailer-indexed, per-mesh zlib-compressed
// binary mesh container (spec.md §4.6). Every mesh block is addressed by
// index into the file's trailing offset table; a Decoder opens the file
// once and serves any number of per-index decodes against that one handle.
package serialized

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/scenekit/mitsuba-go/scene"
)

// Flag bits of the u32 flags field at the start of a mesh block's
// decompressed payload (spec.md §4.6).
const (
	flagHasNormals     uint32 = 0x0001
	flagHasTexcoords   uint32 = 0x0002
	flagHasTangents    uint32 = 0x0004
	flagHasColors      uint32 = 0x0008
	flagFaceNormal     uint32 = 0x0010
	flagSinglePrecison uint32 = 0x1000
	flagDoublePrecison uint32 = 0x2000
)

// idFile is the only file-version discriminator this decoder accepts
// (spec.md §4.6/§6 "id_file == 4 is required").
const idFile = 4

// Mesh is one decoded mesh block. Every floating-point field is stored as
// float64 regardless of the block's precision flag: the original decoder
// this format came from unconditionally widened f64 positions down to
// f32, which spec.md §9 flags as likely unintentional precision loss. This
// decoder preserves the source precision instead and lets the consumer
// narrow if it wants to (a float32-sourced value round-trips through
// float64 exactly, so nothing is lost either way).
type Mesh struct {
	Name       string
	FaceNormal bool // flagFaceNormal: consumers should ignore Normals
	Positions  [][3]float64
	Normals    [][3]float64 // nil when has-normals is clear
	Texcoords  [][2]float64 // nil when has-texcoords is clear
	Colors     [][3]float64 // nil when has-colors is clear
	Indices    [][3]uint64  // width in the file is u32 or u64 per nb_triangles, widened to uint64 here
}

// Decoder owns one open .serialized file and its trailer, decoding mesh
// blocks on demand by shape index. File handles are scoped: Close
// releases the handle deterministically, matching spec.md §5's ownership
// model for the main XML, each include target, and each serialized file.
type Decoder struct {
	f       *os.File
	offsets []uint64 // offsets[k] is the absolute start of mesh block k
	tableAt uint64   // P, the absolute position of the offset table
}

// Open reads path's trailer and returns a Decoder ready to serve
// per-index decodes. The caller must Close it.
func Open(path string) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scene.Wrap(scene.Io, path, err)
	}
	d, derr := newDecoder(f, path)
	if derr != nil {
		f.Close()
		return nil, derr
	}
	return d, nil
}

// Close releases the underlying file handle.
func (d *Decoder) Close() error {
	return d.f.Close()
}

// NumMeshes returns the number of meshes indexed by the trailer.
func (d *Decoder) NumMeshes() int {
	return len(d.offsets)
}

func newDecoder(f *os.File, path string) (*Decoder, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, scene.Wrap(scene.Io, path, err)
	}
	size := info.Size()
	if size < 4 {
		return nil, scene.Errf(scene.MalformedBinary, "%s: file too small for a trailer", path)
	}

	var n uint32
	if _, err := f.Seek(size-4, io.SeekStart); err != nil {
		return nil, scene.Wrap(scene.Io, path, err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, scene.Wrap(scene.Io, path, err)
	}

	tableBytes := int64(8) * int64(n)
	tableAt := size - 4 - tableBytes
	if n > 0 && tableAt < 0 {
		return nil, scene.Errf(scene.MalformedBinary, "%s: offset table (%d meshes) does not fit in file", path, n)
	}

	offsets := make([]uint64, n)
	if n > 0 {
		if _, err := f.Seek(tableAt, io.SeekStart); err != nil {
			return nil, scene.Wrap(scene.Io, path, err)
		}
		if err := binary.Read(f, binary.LittleEndian, &offsets); err != nil {
			return nil, scene.Wrap(scene.Io, path, err)
		}
	}

	return &Decoder{f: f, offsets: offsets, tableAt: uint64(tableAt)}, nil
}

// Mesh decodes the mesh block at shapeIndex (spec.md §4.6). shapeIndex
// must be within [0, NumMeshes()).
func (d *Decoder) Mesh(shapeIndex int) (*Mesh, error) {
	if shapeIndex < 0 || shapeIndex >= len(d.offsets) {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh index %d out of range [0,%d)", shapeIndex, len(d.offsets))
	}

	start := d.offsets[shapeIndex]
	var end uint64
	if shapeIndex < len(d.offsets)-1 {
		end = d.offsets[shapeIndex+1]
	} else {
		end = d.tableAt
	}
	if end < start {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d has a negative-size block", shapeIndex)
	}
	blockSize := end - start

	if blockSize < 4 {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d block too small for its header", shapeIndex)
	}

	if _, err := d.f.Seek(int64(start), io.SeekStart); err != nil {
		return nil, scene.Wrap(scene.Io, "serialized", err)
	}

	var header struct {
		IDFormat uint16
		IDFile   uint16
	}
	if err := binary.Read(d.f, binary.LittleEndian, &header); err != nil {
		return nil, scene.Wrap(scene.Io, "serialized", err)
	}
	if header.IDFile != idFile {
		return nil, scene.Errf(scene.ChecksumOrFormat, "serialized mesh %d has id_file=%d, want %d", shapeIndex, header.IDFile, idFile)
	}

	compressed := make([]byte, blockSize-4)
	if _, err := io.ReadFull(d.f, compressed); err != nil {
		return nil, scene.Wrap(scene.Io, "serialized", err)
	}

	zr, zerr := zlib.NewReader(bytes.NewReader(compressed))
	if zerr != nil {
		return nil, scene.Wrap(scene.ChecksumOrFormat, "serialized", zerr)
	}
	defer zr.Close()

	payload, perr := io.ReadAll(zr)
	if perr != nil {
		return nil, scene.Wrap(scene.ChecksumOrFormat, "serialized", perr)
	}

	return decodePayload(payload, shapeIndex)
}

// payloadReader is a cursor over one mesh block's decompressed bytes, used
// only by decodePayload; it never touches the Decoder's file handle.
type payloadReader struct {
	b   []byte
	pos int
}

func (r *payloadReader) remaining() int { return len(r.b) - r.pos }

func (r *payloadReader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *payloadReader) u64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(r.b[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *payloadReader) f32() (float64, error) {
	if r.remaining() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return float64(math.Float32frombits(bits)), nil
}

func (r *payloadReader) f64() (float64, error) {
	if r.remaining() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint64(r.b[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

// cString reads a NUL-terminated UTF-8 string (the mesh name, spec.md
// §4.6).
func (r *payloadReader) cString() (string, error) {
	nul := bytes.IndexByte(r.b[r.pos:], 0)
	if nul < 0 {
		return "", io.ErrUnexpectedEOF
	}
	s := string(r.b[r.pos : r.pos+nul])
	r.pos += nul + 1
	return s, nil
}

func decodePayload(payload []byte, shapeIndex int) (*Mesh, error) {
	r := &payloadReader{b: payload}

	flags, err := r.u32()
	if err != nil {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: %v", shapeIndex, err)
	}

	single := flags&flagSinglePrecison != 0
	double := flags&flagDoublePrecison != 0
	if single == double {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: flags=%#x must set exactly one precision bit", shapeIndex, flags)
	}
	readFloat := r.f64
	if single {
		readFloat = r.f32
	}

	name, err := r.cString()
	if err != nil {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: %v", shapeIndex, err)
	}

	nbVertices, err := r.u64()
	if err != nil {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: %v", shapeIndex, err)
	}
	nbTriangles, err := r.u64()
	if err != nil {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: %v", shapeIndex, err)
	}

	m := &Mesh{
		Name:       name,
		FaceNormal: flags&flagFaceNormal != 0,
	}

	m.Positions, err = readVec3s(readFloat, nbVertices)
	if err != nil {
		return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: positions: %v", shapeIndex, err)
	}

	if flags&flagHasNormals != 0 {
		m.Normals, err = readVec3s(readFloat, nbVertices)
		if err != nil {
			return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: normals: %v", shapeIndex, err)
		}
	}

	if flags&flagHasTexcoords != 0 {
		m.Texcoords, err = readVec2s(readFloat, nbVertices)
		if err != nil {
			return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: texcoords: %v", shapeIndex, err)
		}
	}

	if flags&flagHasColors != 0 {
		m.Colors, err = readVec3s(readFloat, nbVertices)
		if err != nil {
			return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: colors: %v", shapeIndex, err)
		}
	}

	// Index width is governed by triangle count, not vertex count
	// (spec.md §4.6): nb_triangles == 2^32 is the boundary where it
	// switches from u32 to u64.
	wide := nbTriangles > 0xFFFFFFFF
	m.Indices = make([][3]uint64, nbTriangles)
	for i := range m.Indices {
		for k := 0; k < 3; k++ {
			if wide {
				v, ierr := r.u64()
				if ierr != nil {
					return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: indices: %v", shapeIndex, ierr)
				}
				m.Indices[i][k] = v
			} else {
				v, ierr := r.u32()
				if ierr != nil {
					return nil, scene.Errf(scene.MalformedBinary, "serialized mesh %d: indices: %v", shapeIndex, ierr)
				}
				m.Indices[i][k] = uint64(v)
			}
		}
	}

	return m, nil
}

func readVec3s(readFloat func() (float64, error), n uint64) ([][3]float64, error) {
	out := make([][3]float64, n)
	for i := range out {
		for k := 0; k < 3; k++ {
			v, err := readFloat()
			if err != nil {
				return nil, err
			}
			out[i][k] = v
		}
	}
	return out, nil
}

func readVec2s(readFloat func() (float64, error), n uint64) ([][2]float64, error) {
	out := make([][2]float64, n)
	for i := range out {
		for k := 0; k < 2; k++ {
			v, err := readFloat()
			if err != nil {
				return nil, err
			}
			out[i][k] = v
		}
	}
	return out, nil
}
