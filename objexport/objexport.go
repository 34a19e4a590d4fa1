// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package objexport writes a parsed Scene out as Wavefront OBJ/MTL
// (spec.md §6 "OBJ/MTL output (exporter, external)"). It is deliberately
// thin: the core guarantees only a deterministic traversal order (named
// shapes in insertion order, then anonymous shapes in appearance order);
// everything downstream of that - actual renderability, full material
// fidelity - is this package's business, not the parser's.
package objexport

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/scenekit/mitsuba-go/math32"
	"github.com/scenekit/mitsuba-go/scene"
	"github.com/scenekit/mitsuba-go/serialized"
	"github.com/scenekit/mitsuba-go/util/logger"
)

// Writer exports a Scene's shapes as triangle meshes to an OBJ stream and
// a companion MTL stream. It never mutates the Scene.
type Writer struct {
	obj *bufio.Writer
	mtl *bufio.Writer
	log *logger.Logger

	baseDir string // directory serialized/obj/ply Filename fields resolve against

	vertexOffset, normalOffset, uvOffset int
	nextLight                            int
	nextMaterial                         int

	// materialNames assigns each distinct BSDF pointer a stable MTL name
	// the first time it is referenced. The Scene model does not carry a
	// BSDF's declaring id onto the BSDF value itself (only the Scene's id
	// map does), so identity is the only handle this package has.
	materialNames map[*scene.BSDF]string
}

// NewWriter returns a Writer that writes obj/mtl relative filenames
// against baseDir (the directory containing the scene XML the Shapes'
// Filename fields were resolved relative to).
func NewWriter(obj, mtl io.Writer, baseDir string) *Writer {
	return &Writer{
		obj:           bufio.NewWriter(obj),
		mtl:           bufio.NewWriter(mtl),
		log:           logger.Default,
		baseDir:       baseDir,
		vertexOffset:  1,
		normalOffset:  1,
		uvOffset:      1,
		materialNames: make(map[*scene.BSDF]string),
	}
}

// SetLogger redirects the non-fatal diagnostics this Writer emits
// (an unsupported shape kind, a serialized file that failed to decode).
func (w *Writer) SetLogger(l *logger.Logger) { w.log = l }

// Export walks s in spec.md §6's deterministic order and writes every
// triangle-mesh-backed shape. Procedural shapes (cube/sphere/cylinder/
// rectangle/disk), shape groups, and instances have no triangle data in
// the Scene model and are logged, not exported - a full tessellator is
// outside this package's scope.
func (w *Writer) Export(s *scene.Scene) error {
	w.writeDefaultMaterial()

	index := 0
	for _, id := range s.OrderedNamedShapeIDs() {
		sh, ok := s.NamedShapes[id]
		if !ok {
			continue
		}
		if err := w.exportShape(sh, id, index); err != nil {
			return err
		}
		index++
	}
	for _, sh := range s.AnonymousShapes {
		if err := w.exportShape(sh, fmt.Sprintf("Unnamed_%d", index), index); err != nil {
			return err
		}
		index++
	}

	if err := w.obj.Flush(); err != nil {
		return scene.Wrap(scene.Io, "obj output", err)
	}
	if err := w.mtl.Flush(); err != nil {
		return scene.Wrap(scene.Io, "mtl output", err)
	}
	return nil
}

func (w *Writer) writeDefaultMaterial() {
	fmt.Fprintln(w.mtl, "newmtl export_default")
	fmt.Fprintln(w.mtl, "Ns 1.0")
	fmt.Fprintln(w.mtl, "Ka 1.000000 1.000000 1.000000")
	fmt.Fprintln(w.mtl, "Kd 0.8 0.8 0.8")
	fmt.Fprintln(w.mtl, "Ke 0.000000 0.000000 0.000000")
	fmt.Fprintln(w.mtl, "Ni 1.000000")
	fmt.Fprintln(w.mtl, "d 1.000000")
	fmt.Fprintln(w.mtl, "illum 1")
	fmt.Fprintln(w.mtl)
}

func (w *Writer) exportShape(sh *scene.Shape, name string, index int) error {
	verts, norms, uvs, tris, ok := w.meshOf(sh)
	if !ok {
		w.log.Info("objexport: shape %q (%s) has no triangle data, skipping", name, sh.Kind)
		return nil
	}

	if sh.Option.Transform != nil {
		transformPositions(verts, sh.Option.Transform)
		transformDirections(norms, sh.Option.Transform)
	}

	fmt.Fprintf(w.obj, "o %s\n", name)
	for _, v := range verts {
		fmt.Fprintf(w.obj, "v %g %g %g\n", v[0], v[1], v[2])
	}
	w.obj.WriteByte('\n')

	channels := 1
	if len(uvs) > 0 {
		channels++
		for _, t := range uvs {
			fmt.Fprintf(w.obj, "vt %g %g\n", t[0], t[1])
		}
		w.obj.WriteByte('\n')
	}
	if len(norms) > 0 {
		channels++
		for _, n := range norms {
			fmt.Fprintf(w.obj, "vn %g %g %g\n", n[0], n[1], n[2])
		}
		w.obj.WriteByte('\n')
	}

	w.writeMaterialRef(sh, name)

	for _, tri := range tris {
		w.writeFace(tri, channels, len(uvs) > 0)
	}
	w.obj.WriteByte('\n')

	w.vertexOffset += len(verts)
	if len(uvs) > 0 {
		w.uvOffset += len(uvs)
	}
	if len(norms) > 0 {
		w.normalOffset += len(norms)
	}
	return nil
}

func (w *Writer) writeFace(tri [3]uint64, channels int, hasUV bool) {
	v := func(idx uint64) int { return int(idx) + w.vertexOffset }
	vt := func(idx uint64) int { return int(idx) + w.uvOffset }
	vn := func(idx uint64) int { return int(idx) + w.normalOffset }

	switch channels {
	case 1:
		fmt.Fprintf(w.obj, "f %d %d %d\n", v(tri[0]), v(tri[1]), v(tri[2]))
	case 2:
		if !hasUV {
			fmt.Fprintf(w.obj, "f %d//%d %d//%d %d//%d\n",
				v(tri[0]), vn(tri[0]), v(tri[1]), vn(tri[1]), v(tri[2]), vn(tri[2]))
			return
		}
		fmt.Fprintf(w.obj, "f %d/%d %d/%d %d/%d\n",
			v(tri[0]), vt(tri[0]), v(tri[1]), vt(tri[1]), v(tri[2]), vt(tri[2]))
	case 3:
		fmt.Fprintf(w.obj, "f %d/%d/%d %d/%d/%d %d/%d/%d\n",
			v(tri[0]), vt(tri[0]), vn(tri[0]),
			v(tri[1]), vt(tri[1]), vn(tri[1]),
			v(tri[2]), vt(tri[2]), vn(tri[2]))
	}
}

// writeMaterialRef emits a usemtl line for sh: a fresh emission material
// when sh carries an area emitter (the original exporter's "a light
// overwrites its material" convention), otherwise the synthetic "matN"
// material ensureMaterial assigns to its bound BSDF, or the default
// material when it has none. BSDF ids are not used as material names.
func (w *Writer) writeMaterialRef(sh *scene.Shape, name string) {
	if sh.Option.Emitter != nil {
		w.writeEmissionMaterial(sh.Option.Emitter, name)
		return
	}
	if sh.Option.BSDF != nil {
		fmt.Fprintf(w.obj, "usemtl %s\n", w.ensureMaterial(sh.Option.BSDF))
		return
	}
	fmt.Fprintln(w.obj, "usemtl export_default")
}

func (w *Writer) writeEmissionMaterial(e *scene.AreaEmitter, shapeName string) {
	rgb, err := e.Radiance.ToRGB()
	if err != nil {
		w.log.Warn("objexport: shape %q emitter radiance: %v, using black", shapeName, err)
	}
	name := fmt.Sprintf("light_%d", w.nextLight)
	w.nextLight++

	fmt.Fprintf(w.obj, "usemtl %s\n", name)
	fmt.Fprintf(w.mtl, "newmtl %s\n", name)
	fmt.Fprintln(w.mtl, "Ns 0.0")
	fmt.Fprintln(w.mtl, "Ka 0.000000 0.000000 0.000000")
	fmt.Fprintln(w.mtl, "Kd 0.0 0.0 0.0")
	fmt.Fprintf(w.mtl, "Ke %g %g %g\n", rgb.R, rgb.G, rgb.B)
	fmt.Fprintln(w.mtl, "Ni 0.000000")
	fmt.Fprintln(w.mtl, "d 1.000000")
	fmt.Fprintln(w.mtl, "illum 7")
	w.mtl.WriteByte('\n')
}

func (w *Writer) ensureMaterial(b *scene.BSDF) string {
	if name, ok := w.materialNames[b]; ok {
		return name
	}
	name := fmt.Sprintf("mat%d", w.nextMaterial)
	w.nextMaterial++
	w.materialNames[b] = name

	fmt.Fprintf(w.mtl, "newmtl %s\n", name)
	fmt.Fprintln(w.mtl, "illum 4")
	kd := diffuseRGB(b)
	fmt.Fprintf(w.mtl, "Kd %g %g %g\n", kd.R, kd.G, kd.B)
	fmt.Fprintln(w.mtl, "Ka 0.0 0.0 0.0")
	fmt.Fprintln(w.mtl, "Ks 0.0 0.0 0.0")
	w.mtl.WriteByte('\n')
	return name
}

// diffuseRGB best-effort extracts a representative albedo for the MTL
// Kd line. A textured reflectance has no single color to report here
// (full texture evaluation is out of scope); it falls back to a neutral
// gray in that case.
func diffuseRGB(b *scene.BSDF) math32.Color {
	fallback := math32.Color{R: 0.8, G: 0.8, B: 0.8}

	var col scene.BSDFColor[scene.Spectrum]
	switch b.Kind {
	case scene.BSDFDiffuse:
		col = b.Diffuse.Reflectance
	case scene.BSDFRoughdiffuse:
		col = b.Roughdiffuse.Reflectance
	case scene.BSDFPlastic:
		col = b.Plastic.DiffuseReflectance
	case scene.BSDFPhong:
		col = b.Phong.DiffuseReflectance
	case scene.BSDFWard:
		col = b.Ward.DiffuseReflectance
	default:
		return fallback
	}
	if col.IsTexture {
		return fallback
	}
	rgb, err := col.Constant.ToRGB()
	if err != nil {
		return fallback
	}
	return rgb
}

// meshOf returns sh's triangle data in the layout exportShape needs, and
// false when sh carries no triangle mesh (procedural primitives, groups,
// instances - spec.md's Non-goals exclude tessellating those).
func (w *Writer) meshOf(sh *scene.Shape) (verts [][3]float32, norms [][3]float32, uvs [][2]float32, tris [][3]uint64, ok bool) {
	switch sh.Kind {
	case scene.ShapeSerialized:
		return w.meshFromSerialized(sh.Serialized)
	default:
		return nil, nil, nil, nil, false
	}
}

func (w *Writer) meshFromSerialized(s *scene.SerializedShape) ([][3]float32, [][3]float32, [][2]float32, [][3]uint64, bool) {
	path := s.Filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.baseDir, path)
	}

	d, err := serialized.Open(path)
	if err != nil {
		w.log.Warn("objexport: opening %q: %v", path, err)
		return nil, nil, nil, nil, false
	}
	defer d.Close()

	m, merr := d.Mesh(s.ShapeIndex)
	if merr != nil {
		w.log.Warn("objexport: decoding %q mesh %d: %v", path, s.ShapeIndex, merr)
		return nil, nil, nil, nil, false
	}

	verts := narrowVec3s(m.Positions)
	var norms [][3]float32
	if !m.FaceNormal {
		norms = narrowVec3s(m.Normals)
	}
	uvs := narrowVec2s(m.Texcoords)
	return verts, norms, uvs, m.Indices, true
}

func narrowVec3s(in [][3]float64) [][3]float32 {
	if len(in) == 0 {
		return nil
	}
	out := make([][3]float32, len(in))
	for i, v := range in {
		out[i] = [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	}
	return out
}

func narrowVec2s(in [][2]float64) [][2]float32 {
	if len(in) == 0 {
		return nil
	}
	out := make([][2]float32, len(in))
	for i, v := range in {
		out[i] = [2]float32{float32(v[0]), float32(v[1])}
	}
	return out
}

func transformPositions(verts [][3]float32, t *scene.Transform) {
	for i := range verts {
		v := math32.Vector3{X: verts[i][0], Y: verts[i][1], Z: verts[i][2]}
		v.ApplyMatrix4(t)
		verts[i] = [3]float32{v.X, v.Y, v.Z}
	}
}

// transformDirections applies only the linear (rotation/scale) part of t,
// the convention the original exporter used for normals: translation
// must not displace a direction vector.
func transformDirections(dirs [][3]float32, t *scene.Transform) {
	if len(dirs) == 0 {
		return
	}
	linear := *t
	linear[12], linear[13], linear[14] = 0, 0, 0
	for i := range dirs {
		v := math32.Vector3{X: dirs[i][0], Y: dirs[i][1], Z: dirs[i][2]}
		v.ApplyMatrix4(&linear)
		dirs[i] = [3]float32{v.X, v.Y, v.Z}
	}
}
