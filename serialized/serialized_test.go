// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package serialized

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// meshSpec is the input to buildMeshBlock: everything needed to encode one
// mesh's decompressed payload before it gets zlib-wrapped and trailered.
type meshSpec struct {
	name        string
	single      bool
	faceNormal  bool
	hasNormals  bool
	hasTexcoord bool
	hasColors   bool
	positions   [][3]float64
	normals     [][3]float64
	texcoords   [][2]float64
	colors      [][3]float64
	indices     [][3]uint64
	wideIndices bool
}

func encodeFloat(buf *bytes.Buffer, single bool, v float64) {
	if single {
		binary.Write(buf, binary.LittleEndian, math.Float32bits(float32(v)))
	} else {
		binary.Write(buf, binary.LittleEndian, math.Float64bits(v))
	}
}

func buildPayload(spec meshSpec) []byte {
	var buf bytes.Buffer

	var flags uint32
	if spec.single {
		flags |= flagSinglePrecison
	} else {
		flags |= flagDoublePrecison
	}
	if spec.hasNormals {
		flags |= flagHasNormals
	}
	if spec.hasTexcoord {
		flags |= flagHasTexcoords
	}
	if spec.hasColors {
		flags |= flagHasColors
	}
	if spec.faceNormal {
		flags |= flagFaceNormal
	}

	binary.Write(&buf, binary.LittleEndian, flags)
	buf.WriteString(spec.name)
	buf.WriteByte(0)
	binary.Write(&buf, binary.LittleEndian, uint64(len(spec.positions)))
	binary.Write(&buf, binary.LittleEndian, uint64(len(spec.indices)))

	for _, p := range spec.positions {
		for _, v := range p {
			encodeFloat(&buf, spec.single, v)
		}
	}
	if spec.hasNormals {
		for _, n := range spec.normals {
			for _, v := range n {
				encodeFloat(&buf, spec.single, v)
			}
		}
	}
	if spec.hasTexcoord {
		for _, uv := range spec.texcoords {
			for _, v := range uv {
				encodeFloat(&buf, spec.single, v)
			}
		}
	}
	if spec.hasColors {
		for _, c := range spec.colors {
			for _, v := range c {
				encodeFloat(&buf, spec.single, v)
			}
		}
	}
	for _, tri := range spec.indices {
		for _, idx := range tri {
			if spec.wideIndices {
				binary.Write(&buf, binary.LittleEndian, uint64(idx))
			} else {
				binary.Write(&buf, binary.LittleEndian, uint32(idx))
			}
		}
	}

	return buf.Bytes()
}

func buildMeshBlock(spec meshSpec) []byte {
	payload := buildPayload(spec)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(payload)
	zw.Close()

	var block bytes.Buffer
	binary.Write(&block, binary.LittleEndian, uint16(0)) // id_format, unused
	binary.Write(&block, binary.LittleEndian, uint16(idFile))
	block.Write(compressed.Bytes())
	return block.Bytes()
}

// writeSerializedFile assembles N mesh blocks and the trailing offset
// table + count, matching spec.md §4.6's layout exactly.
func writeSerializedFile(t *testing.T, specs []meshSpec) string {
	t.Helper()

	var file bytes.Buffer
	offsets := make([]uint64, len(specs))
	for i, spec := range specs {
		offsets[i] = uint64(file.Len())
		file.Write(buildMeshBlock(spec))
	}
	for _, off := range offsets {
		binary.Write(&file, binary.LittleEndian, off)
	}
	binary.Write(&file, binary.LittleEndian, uint32(len(specs)))

	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.serialized")
	assert.Nil(t, os.WriteFile(path, file.Bytes(), 0644))
	return path
}

func TestDecodeSinglePrecisionWithNormals(t *testing.T) {
	specs := []meshSpec{
		{
			name:       "mesh0",
			single:     true,
			hasNormals: true,
			positions:  [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			normals:    [][3]float64{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
			indices:    [][3]uint64{{0, 1, 2}},
		},
	}
	path := writeSerializedFile(t, specs)

	d, err := Open(path)
	assert.Nil(t, err)
	defer d.Close()
	assert.Equal(t, 1, d.NumMeshes())

	m, merr := d.Mesh(0)
	assert.Nil(t, merr)
	assert.Equal(t, "mesh0", m.Name)
	assert.False(t, m.FaceNormal)
	assert.Equal(t, 3, len(m.Positions))
	assert.Equal(t, 3, len(m.Normals))
	assert.Nil(t, m.Texcoords)
	assert.Nil(t, m.Colors)
	assert.Equal(t, [][3]uint64{{0, 1, 2}}, m.Indices)
	assert.InDelta(t, 1.0, m.Positions[1][0], 1e-6)
}

func TestDecodeDoublePrecisionPreservesBitsBeyondFloat32(t *testing.T) {
	// A value with mantissa bits float32 cannot represent exactly; a
	// correct decoder must return it unmolested rather than narrowing.
	precise := 0.1234567891234567
	specs := []meshSpec{
		{
			name:      "precise",
			single:    false,
			positions: [][3]float64{{precise, 0, 0}},
			indices:   [][3]uint64{{0, 0, 0}},
		},
	}
	path := writeSerializedFile(t, specs)

	d, err := Open(path)
	assert.Nil(t, err)
	defer d.Close()

	m, merr := d.Mesh(0)
	assert.Nil(t, merr)
	assert.Equal(t, precise, m.Positions[0][0])
	assert.NotEqual(t, float64(float32(precise)), m.Positions[0][0])
}

func TestDecodeMultipleMeshesOrderIndependent(t *testing.T) {
	specs := []meshSpec{
		{name: "a", single: true, positions: [][3]float64{{1, 2, 3}}, indices: [][3]uint64{{0, 0, 0}}},
		{name: "b", single: true, hasTexcoord: true,
			positions: [][3]float64{{4, 5, 6}},
			texcoords: [][2]float64{{0.5, 0.5}},
			indices:   [][3]uint64{{0, 0, 0}}},
	}
	path := writeSerializedFile(t, specs)

	d, err := Open(path)
	assert.Nil(t, err)
	defer d.Close()
	assert.Equal(t, 2, d.NumMeshes())

	m1, e1 := d.Mesh(1)
	assert.Nil(t, e1)
	m0, e0 := d.Mesh(0)
	assert.Nil(t, e0)

	assert.Equal(t, "a", m0.Name)
	assert.Equal(t, "b", m1.Name)
	assert.Equal(t, 1, len(m1.Texcoords))
}

func TestDecodeFaceNormalFlag(t *testing.T) {
	specs := []meshSpec{
		{name: "fn", single: true, faceNormal: true,
			positions: [][3]float64{{0, 0, 0}},
			indices:   [][3]uint64{{0, 0, 0}}},
	}
	path := writeSerializedFile(t, specs)

	d, err := Open(path)
	assert.Nil(t, err)
	defer d.Close()

	m, merr := d.Mesh(0)
	assert.Nil(t, merr)
	assert.True(t, m.FaceNormal)
}

func TestDecodeRejectsWrongIDFile(t *testing.T) {
	payload := buildPayload(meshSpec{
		name: "bad", single: true,
		positions: [][3]float64{{0, 0, 0}},
		indices:   [][3]uint64{{0, 0, 0}},
	})
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(payload)
	zw.Close()

	var file bytes.Buffer
	binary.Write(&file, binary.LittleEndian, uint16(0))
	binary.Write(&file, binary.LittleEndian, uint16(99)) // wrong id_file
	file.Write(compressed.Bytes())

	offset := uint64(0)
	binary.Write(&file, binary.LittleEndian, offset)
	binary.Write(&file, binary.LittleEndian, uint32(1))

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.serialized")
	assert.Nil(t, os.WriteFile(path, file.Bytes(), 0644))

	d, err := Open(path)
	assert.Nil(t, err)
	defer d.Close()

	_, merr := d.Mesh(0)
	assert.NotNil(t, merr)
}

func TestDecodeOutOfRangeIndex(t *testing.T) {
	path := writeSerializedFile(t, []meshSpec{
		{name: "only", single: true, positions: [][3]float64{{0, 0, 0}}, indices: [][3]uint64{{0, 0, 0}}},
	})
	d, err := Open(path)
	assert.Nil(t, err)
	defer d.Close()

	_, merr := d.Mesh(5)
	assert.NotNil(t, merr)
}

func TestPayloadHeaderTriangleCountAboveU32Boundary(t *testing.T) {
	// nb_triangles, not nb_vertices, governs whether indices are u32 or
	// u64 (spec.md §4.6). A hand-built payload header with few vertices
	// but a triangle count above the u32 boundary reads that count back
	// as a full u64 past 0xFFFFFFFF; the index triples are not decoded.
	const bigCount = uint64(1) << 32

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, flagSinglePrecison)
	buf.WriteString("big")
	buf.WriteByte(0)
	binary.Write(&buf, binary.LittleEndian, uint64(3))       // nb_vertices
	binary.Write(&buf, binary.LittleEndian, bigCount)        // nb_triangles
	for i := 0; i < 3; i++ {
		encodeFloat(&buf, true, float64(i))
		encodeFloat(&buf, true, 0)
		encodeFloat(&buf, true, 0)
	}

	r := &payloadReader{b: buf.Bytes()}
	_, _ = r.u32()
	_, _ = r.cString()
	_, _ = r.u64()
	nbTriangles, _ := r.u64()
	assert.Equal(t, bigCount, nbTriangles)
	assert.True(t, nbTriangles > 0xFFFFFFFF)
}
