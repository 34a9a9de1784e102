package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDist2DIgnoresHeight(t *testing.T) {
	assert.InDelta(t, 5.0, Dist2D(Vec3{0, 0, 0}, Vec3{3, 4, 100}), 1e-5)
}

func TestMoveTowards(t *testing.T) {
	got := MoveTowards(Vec3{0, 0, 0}, Vec3{10, 0, 0}, 2)
	assert.Equal(t, Vec3{2, 0, 0}, got)

	// never overshoots
	got = MoveTowards(Vec3{0, 0, 0}, Vec3{1, 0, 0}, 2)
	assert.Equal(t, Vec3{1, 0, 0}, got)
}

func TestLerpClamps(t *testing.T) {
	a, b := Vec3{0, 0, 0}, Vec3{10, 10, 10}
	assert.Equal(t, Vec3{5, 5, 5}, Lerp(a, b, 0.5))
	assert.Equal(t, b, Lerp(a, b, 3))
	assert.Equal(t, a, Lerp(a, b, -1))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(Vec3{1, 2, 3}))
	assert.False(t, IsFinite(Vec3{float32(math.NaN()), 0, 0}))
	assert.False(t, IsFinite(Vec3{0, float32(math.Inf(1)), 0}))
}

func TestParseWeather(t *testing.T) {
	w, ok := ParseWeather("thunder")
	assert.True(t, ok)
	assert.Equal(t, WeatherThunderStorm, w)
	_, ok = ParseWeather("hail")
	assert.False(t, ok)
}

func TestGridCandidates(t *testing.T) {
	g := NewGrid(10)
	g.Add(1, Vec3{1, 1, 0})
	g.Add(2, Vec3{-5, 3, 0})
	g.Add(3, Vec3{55, 0, 0})

	assert.Equal(t, []Handle{1, 2}, g.Candidates(Vec3{0, 0, 0}, 8))
	assert.Equal(t, []Handle{1, 2, 3}, g.Candidates(Vec3{0, 0, 0}, 60))

	g.Move(3, Vec3{55, 0, 0}, Vec3{2, 2, 0})
	assert.Equal(t, []Handle{1, 2, 3}, g.Candidates(Vec3{0, 0, 0}, 8))

	g.Remove(1, Vec3{1, 1, 0})
	assert.Equal(t, []Handle{2, 3}, g.Candidates(Vec3{0, 0, 0}, 8))
}
