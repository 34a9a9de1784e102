package param

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := NewStore()
	s.Register("vortexRadius", Float(9.4), false)
	s.Register("vortexParticleCount", Int(9), false)
	s.Register("notifications", Bool(true), false)
	s.Register("vortexParticleAsset", String("core"), true)
	return s
}

func TestStoreNamesAreCaseInsensitive(t *testing.T) {
	s := newTestStore()
	assert.Equal(t, float32(9.4), s.Float("VORTEXRADIUS"))
	assert.Equal(t, 9, s.Int("vortexparticlecount"))
	assert.True(t, s.Bool("Notifications"))
}

func TestStoreMissingReadsAsZero(t *testing.T) {
	s := newTestStore()
	assert.Equal(t, 0, s.Int("nope"))
	assert.Equal(t, float32(0), s.Float("nope"))
	assert.False(t, s.Bool("nope"))
	assert.Equal(t, "", s.String("nope"))
	// wrong kind also reads as zero
	assert.Equal(t, 0, s.Int("vortexRadius"))
}

func TestStoreSetErrors(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.SetFloat("vortexRadius", 12))
	assert.Equal(t, float32(12), s.Float("vortexRadius"))

	assert.ErrorIs(t, s.SetInt("missing", 1), ErrNotFound)
	assert.ErrorIs(t, s.SetString("vortexParticleAsset", "x"), ErrReadOnly)
	assert.ErrorIs(t, s.SetBool("vortexRadius", true), ErrWrongKind)
	assert.Equal(t, "core", s.String("vortexParticleAsset"))
}

func TestStoreParse(t *testing.T) {
	tests := []struct {
		name    string
		varName string
		raw     string
		wantErr error
		check   func(*Store) bool
	}{
		{"int", "vortexParticleCount", "12", nil, func(s *Store) bool { return s.Int("vortexParticleCount") == 12 }},
		{"float", "vortexRadius", "3.5", nil, func(s *Store) bool { return s.Float("vortexRadius") == 3.5 }},
		{"bool", "notifications", "false", nil, func(s *Store) bool { return !s.Bool("notifications") }},
		{"bad int", "vortexParticleCount", "many", ErrBadValue, nil},
		{"bad bool", "notifications", "maybe", ErrBadValue, nil},
		{"missing", "ghost", "1", ErrNotFound, nil},
		{"read-only", "vortexParticleAsset", "scr", ErrReadOnly, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			err := s.Parse(tt.varName, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.check(s))
		})
	}
}

func TestStoreResetAndEach(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.SetInt("vortexParticleCount", 40))
	require.NoError(t, s.Reset("VortexParticleCount"))
	assert.Equal(t, 9, s.Int("vortexParticleCount"))
	assert.ErrorIs(t, s.Reset("ghost"), ErrNotFound)

	var names []string
	s.Each(func(v *Var) { names = append(names, v.Name) })
	assert.Equal(t, []string{"notifications", "vortexParticleAsset", "vortexParticleCount", "vortexRadius"}, names)
	assert.Equal(t, 4, s.Len())
}

func TestStoreRejectsNonFiniteFloats(t *testing.T) {
	s := newTestStore()

	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+inf", "1e40"} {
		t.Run(raw, func(t *testing.T) {
			assert.ErrorIs(t, s.Parse("vortexRadius", raw), ErrBadValue)
		})
	}
	assert.ErrorIs(t, s.SetFloat("vortexRadius", float32(math.NaN())), ErrBadValue)
	assert.ErrorIs(t, s.SetFloat("vortexRadius", float32(math.Inf(1))), ErrBadValue)
	assert.Equal(t, float32(9.4), s.Float("vortexRadius"))
}
