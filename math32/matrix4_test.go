package math32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix4_MakeTranslation(t *testing.T) {
	m := NewMatrix4().MakeTranslation(1, 2, 3)
	v := NewVector3(0, 0, 0).ApplyMatrix4(m)
	assert.Equal(t, NewVector3(1, 2, 3), v)
}

func TestMatrix4_MakeScale(t *testing.T) {
	m := NewMatrix4().MakeScale(2, 3, 4)
	v := NewVector3(1, 1, 1).ApplyMatrix4(m)
	assert.Equal(t, NewVector3(2, 3, 4), v)
}

func TestMatrix4_MakeRotationAxis(t *testing.T) {
	m := NewMatrix4().MakeRotationAxis(NewVector3(0, 0, 1), Pi/2)
	v := NewVector3(1, 0, 0).ApplyMatrix4(m)
	assert.InDelta(t, 0, v.X, 1e-6)
	assert.InDelta(t, 1, v.Y, 1e-6)
	assert.InDelta(t, 0, v.Z, 1e-6)
}

func TestMatrix4_Multiply(t *testing.T) {
	translate := NewMatrix4().MakeTranslation(1, 0, 0)
	scale := NewMatrix4().MakeScale(2, 2, 2)

	tests := []struct {
		combined *Matrix4
		input    *Vector3
		expected *Vector3
	}{
		// scale first, then translate: (1,1,1) -> (2,2,2) -> (3,2,2)
		{translate.Clone().Multiply(scale), NewVector3(1, 1, 1), NewVector3(3, 2, 2)},
	}

	for i, test := range tests {
		actual := test.input.Clone().ApplyMatrix4(test.combined)
		assert.Equalf(t, test.expected, actual, "Failed test %v", i)
	}
}

func TestMatrix4_Identity(t *testing.T) {
	m := NewMatrix4().MakeTranslation(5, 6, 7).Identity()
	v := NewVector3(1, 2, 3).ApplyMatrix4(m)
	assert.Equal(t, NewVector3(1, 2, 3), v)
}

func TestMatrix4_Set(t *testing.T) {
	m := NewMatrix4().Set(
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	)
	v := NewVector3(4, 5, 6).ApplyMatrix4(m)
	assert.Equal(t, NewVector3(4, 5, 6), v)
}
