// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package objexport

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scenekit/mitsuba-go/scene"
)

// writeTriangleSerialized writes a minimal one-mesh .serialized fixture:
// a unit triangle, single precision, no normals/uvs/colors.
func writeTriangleSerialized(t *testing.T, dir, filename string) {
	t.Helper()

	var payload bytes.Buffer
	binary.Write(&payload, binary.LittleEndian, uint32(0x1000)) // single precision only
	payload.WriteString("tri")
	payload.WriteByte(0)
	binary.Write(&payload, binary.LittleEndian, uint64(3)) // nb_vertices
	binary.Write(&payload, binary.LittleEndian, uint64(1)) // nb_triangles
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for _, p := range positions {
		for _, v := range p {
			binary.Write(&payload, binary.LittleEndian, v)
		}
	}
	for _, idx := range []uint32{0, 1, 2} {
		binary.Write(&payload, binary.LittleEndian, idx)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(payload.Bytes())
	zw.Close()

	var file bytes.Buffer
	binary.Write(&file, binary.LittleEndian, uint16(0))
	binary.Write(&file, binary.LittleEndian, uint16(4))
	file.Write(compressed.Bytes())
	binary.Write(&file, binary.LittleEndian, uint64(0)) // offsets[0]
	binary.Write(&file, binary.LittleEndian, uint32(1)) // N

	assert.Nil(t, os.WriteFile(filepath.Join(dir, filename), file.Bytes(), 0644))
}

func TestExportWritesNamedShapeBeforeAnonymous(t *testing.T) {
	dir := t.TempDir()
	writeTriangleSerialized(t, dir, "mesh.serialized")

	s := scene.New()
	named := &scene.Shape{
		Kind:       scene.ShapeSerialized,
		Serialized: &scene.SerializedShape{Filename: "mesh.serialized", ShapeIndex: 0},
	}
	s.InsertNamedShape("namedTri", named)

	anon := &scene.Shape{
		Kind:       scene.ShapeSerialized,
		Serialized: &scene.SerializedShape{Filename: "mesh.serialized", ShapeIndex: 0},
	}
	s.AddAnonymousShape(anon)

	var obj, mtl bytes.Buffer
	w := NewWriter(&obj, &mtl, dir)
	assert.Nil(t, w.Export(s))

	objText := obj.String()
	namedIdx := strings.Index(objText, "o namedTri")
	anonIdx := strings.Index(objText, "o Unnamed_1")
	assert.True(t, namedIdx >= 0)
	assert.True(t, anonIdx >= 0)
	assert.True(t, namedIdx < anonIdx)
	assert.Equal(t, 2, strings.Count(objText, "v 0 0 0"))
	assert.Contains(t, objText, "f 1 2 3")
}

func TestExportAreaEmitterGetsEmissionMaterial(t *testing.T) {
	dir := t.TempDir()
	writeTriangleSerialized(t, dir, "mesh.serialized")

	s := scene.New()
	sh := &scene.Shape{
		Kind:       scene.ShapeSerialized,
		Serialized: &scene.SerializedShape{Filename: "mesh.serialized", ShapeIndex: 0},
		Option: scene.ShapeOption{
			Emitter: &scene.AreaEmitter{Radiance: scene.NewSpectrum("1,2,3")},
		},
	}
	s.AddAnonymousShape(sh)

	var obj, mtl bytes.Buffer
	w := NewWriter(&obj, &mtl, dir)
	assert.Nil(t, w.Export(s))

	assert.Contains(t, obj.String(), "usemtl light_0")
	assert.Contains(t, mtl.String(), "newmtl light_0")
	assert.Contains(t, mtl.String(), "illum 7")
}

func TestExportSkipsShapeWithNoTriangleData(t *testing.T) {
	s := scene.New()
	s.AddAnonymousShape(&scene.Shape{Kind: scene.ShapeSphere, Sphere: &scene.SphereShape{Radius: 1}})

	var obj, mtl bytes.Buffer
	w := NewWriter(&obj, &mtl, t.TempDir())
	assert.Nil(t, w.Export(s))
	assert.NotContains(t, obj.String(), "o Unnamed_0\nv")
}
