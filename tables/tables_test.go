package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIOR(t *testing.T) {
	tests := []struct {
		name    string
		want    float64
		wantOk  bool
	}{
		{name: "air", want: 1.000277, wantOk: true},
		{name: "AIR", want: 1.000277, wantOk: true},
		{name: "bk7", want: 1.5046, wantOk: true},
		{name: "unobtainium", want: 0, wantOk: false},
	}
	for _, tt := range tests {
		got, ok := IOR(tt.name)
		assert.Equal(t, tt.wantOk, ok, tt.name)
		if tt.wantOk {
			assert.InDelta(t, tt.want, got, 1e-9, tt.name)
		}
	}
}

func TestConductorByName(t *testing.T) {
	au, ok := ConductorByName("Au")
	assert.True(t, ok)
	assert.InDelta(t, 0.143552, au.Eta.R, 1e-9)
	assert.InDelta(t, 0.377438, au.Eta.G, 1e-9)
	assert.InDelta(t, 1.43825, au.Eta.B, 1e-9)
	assert.InDelta(t, 3.98397, au.K.R, 1e-9)
	assert.InDelta(t, 2.38495, au.K.G, 1e-9)
	assert.InDelta(t, 1.60434, au.K.B, 1e-9)

	_, ok = ConductorByName("Unobtainium")
	assert.False(t, ok)
}
