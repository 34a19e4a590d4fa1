package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scenekit/mitsuba-go/scene"
)

func mustParseString(t *testing.T, doc string) *scene.Scene {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.xml")
	assert.Nil(t, os.WriteFile(path, []byte(doc), 0644))
	sc, err := ParseFile(path, false)
	assert.Nil(t, err)
	return sc
}

func TestParseFileBSDFAndShape(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="diffuse" id="white">
			<rgb name="reflectance" value="0.8,0.8,0.8"/>
		</bsdf>
		<shape type="serialized" id="floor">
			<string name="filename" value="floor.serialized"/>
			<integer name="shapeIndex" value="0"/>
			<ref id="white"/>
		</shape>
	</scene>`
	sc := mustParseString(t, doc)

	bsdf, ok := sc.LookupBSDF("white")
	assert.True(t, ok)
	assert.Equal(t, scene.BSDFDiffuse, bsdf.Kind)

	sh, ok := sc.LookupShape("floor")
	assert.True(t, ok)
	assert.Equal(t, scene.ShapeSerialized, sh.Kind)
	assert.Equal(t, "floor.serialized", sh.Serialized.Filename)
	assert.Equal(t, 0, sh.Serialized.ShapeIndex)
	assert.Same(t, bsdf, sh.Option.BSDF)
}

func TestParseFileAnonymousShapeOrderPreserved(t *testing.T) {
	doc := `<scene version="2.1.0">
		<shape type="cube"/>
		<shape type="sphere"><float name="radius" value="2"/></shape>
	</scene>`
	sc := mustParseString(t, doc)

	assert.Equal(t, 2, len(sc.AnonymousShapes))
	assert.Equal(t, scene.ShapeCube, sc.AnonymousShapes[0].Kind)
	assert.Equal(t, scene.ShapeSphere, sc.AnonymousShapes[1].Kind)
	assert.Equal(t, 2.0, sc.AnonymousShapes[1].Sphere.Radius)
}

func TestParseFileDefaultSubstitution(t *testing.T) {
	doc := `<scene version="2.1.0">
		<default name="spp" value="64"/>
		<sensor type="perspective">
			<float name="fov" value="$spp"/>
		</sensor>
	</scene>`
	sc := mustParseString(t, doc)
	assert.Equal(t, 1, len(sc.Sensors))
	assert.Equal(t, 64.0, sc.Sensors[0].FOV)
}

func TestParseFileIncludeSharesDefaultsWithParent(t *testing.T) {
	dir := t.TempDir()
	included := filepath.Join(dir, "common.xml")
	assert.Nil(t, os.WriteFile(included, []byte(`<scene version="2.1.0">
		<default name="spp" value="128"/>
	</scene>`), 0644))

	main := filepath.Join(dir, "main.xml")
	assert.Nil(t, os.WriteFile(main, []byte(`<scene version="2.1.0">
		<include filename="common.xml"/>
		<sensor type="perspective">
			<float name="fov" value="$spp"/>
		</sensor>
	</scene>`), 0644))

	sc, err := ParseFile(main, false)
	assert.Nil(t, err)
	assert.Equal(t, 128.0, sc.Sensors[0].FOV)
}

func TestParseFileIncludeCycleIsFatal(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.xml")
	b := filepath.Join(dir, "b.xml")
	assert.Nil(t, os.WriteFile(a, []byte(`<scene version="2.1.0"><include filename="b.xml"/></scene>`), 0644))
	assert.Nil(t, os.WriteFile(b, []byte(`<scene version="2.1.0"><include filename="a.xml"/></scene>`), 0644))

	_, err := ParseFile(a, false)
	assert.NotNil(t, err)
	serr, ok := err.(*scene.Error)
	assert.True(t, ok)
	assert.Equal(t, scene.Io, serr.Kind)
}

func TestParseFileUnresolvedRefIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.xml")
	doc := `<scene version="2.1.0">
		<shape type="cube">
			<ref id="nosuchbsdf"/>
		</shape>
	</scene>`
	assert.Nil(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := ParseFile(path, false)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "UnresolvedReference"))
}

func TestParseFileUnknownTopLevelElementIsNonFatal(t *testing.T) {
	doc := `<scene version="2.1.0">
		<frobnicator type="whatever"/>
		<shape type="cube"/>
	</scene>`
	sc := mustParseString(t, doc)
	assert.Equal(t, 1, len(sc.AnonymousShapes))
}

func TestParseFileIdlessBSDFIsSkippedNotRegistered(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="diffuse"/>
	</scene>`
	sc := mustParseString(t, doc)
	assert.Equal(t, 0, len(sc.BSDFs))
}

func TestParseFileEmitterAndMedium(t *testing.T) {
	doc := `<scene version="2.1.0">
		<emitter type="point">
			<point name="position" x="0" y="1" z="0"/>
			<rgb name="intensity" value="10,10,10"/>
		</emitter>
		<medium type="homogeneous" id="fog">
			<phase type="hg"><float name="g" value="0.3"/></phase>
		</medium>
	</scene>`
	sc := mustParseString(t, doc)

	assert.Equal(t, 1, len(sc.Emitters))
	assert.Equal(t, scene.EmitterPoint, sc.Emitters[0].Kind)
	assert.Equal(t, [3]float64{0, 1, 0}, sc.Emitters[0].Point.Position)

	medium, ok := sc.LookupMedium("fog")
	assert.True(t, ok)
	assert.Equal(t, scene.PhaseHenyeyGreenstein, medium.Phase.Kind)
	assert.InDelta(t, 0.3, medium.Phase.G, 1e-9)
}

func TestParseFileShapeGroupAndInstance(t *testing.T) {
	doc := `<scene version="2.1.0">
		<shape type="shapegroup" id="group1">
			<shape type="cube"/>
		</shape>
		<shape type="instance">
			<ref id="group1"/>
			<transform name="toWorld">
				<translate x="1" y="0" z="0"/>
			</transform>
		</shape>
	</scene>`
	sc := mustParseString(t, doc)

	group, ok := sc.LookupShape("group1")
	assert.True(t, ok)
	assert.Equal(t, scene.ShapeGroup, group.Kind)
	assert.Equal(t, 1, len(group.GroupChildren))

	assert.Equal(t, 1, len(sc.AnonymousShapes))
	inst := sc.AnonymousShapes[0]
	assert.Equal(t, scene.ShapeInstance, inst.Kind)
	assert.Equal(t, "group1", inst.Instance.TargetID)
}
