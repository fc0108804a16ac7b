package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFollowerConfig = AgentConfig{HalfWidth: 0.3, HalfHeight: 0.3, MoveSpeed: 0.05}

func TestNewAgentValidatesExtents(t *testing.T) {
	_, err := NewAgent("big", KindFollower, 0.5, 0.5, AgentConfig{HalfWidth: 0.5, HalfHeight: 0.3, MoveSpeed: 0.05})
	assert.ErrorIs(t, err, ErrBoxTooLarge)

	a, err := NewAgent("ok", KindFollower, 0.5, 0.5, testFollowerConfig)
	require.NoError(t, err)
	assert.Equal(t, Idle, a.State())
	assert.Equal(t, Position{0, 0}, a.Tile())
}

func TestAgentSetRoute(t *testing.T) {
	a, err := NewAgent("f", KindFollower, 0.5, 0.5, testFollowerConfig)
	require.NoError(t, err)

	a.SetRoute([]Position{{1, 0}, {2, 0}, {3, 0}})
	assert.Equal(t, Seeking, a.State())
	assert.Equal(t, 3, a.RemainingRoute())

	a.Update()
	wp, ok := a.Waypoint()
	require.True(t, ok)
	assert.Equal(t, Position{1, 0}, wp, "first waypoint pops in traversal order")
	assert.Equal(t, Approaching, a.State())

	a.SetRoute(nil)
	assert.Equal(t, Idle, a.State())
	_, ok = a.Waypoint()
	assert.False(t, ok)
	assert.False(t, a.Arrived())
}

func TestAgentVelocityMagnitude(t *testing.T) {
	a, err := NewAgent("f", KindFollower, 0.5, 0.5, testFollowerConfig)
	require.NoError(t, err)
	a.SetRoute([]Position{{3, 2}})

	vx, vy := a.Update()
	assert.InDelta(t, a.MoveSpeed, math.Hypot(vx, vy), 1e-12)
	assert.Greater(t, vx, 0.0)
	assert.Greater(t, vy, 0.0)
}

func TestAgentFollowsCorridor(t *testing.T) {
	g, err := ParseGrid([]string{
		"#####",
		".....",
		"#####",
	})
	require.NoError(t, err)
	a, err := NewAgent("f", KindFollower, 0.5, 1.5, testFollowerConfig)
	require.NoError(t, err)

	path := FindPath(g.IsObstructed, Position{0, 1}, Position{4, 1})
	require.Len(t, path, 5)
	a.SetRoute(path[1:])

	ticks := 0
	for ; ticks < 1000 && a.State() != Idle; ticks++ {
		vx, vy := a.Update()
		a.Integrate(g, vx, vy)
		require.False(t, a.Box.OverlapsWall(g), "tick %d: follower overlaps a wall", ticks)
	}

	assert.Equal(t, Idle, a.State())
	assert.True(t, a.Arrived())
	assert.Equal(t, Position{4, 1}, a.Tile())
	assert.Less(t, ticks, 200)

	vx, vy := a.Update()
	assert.Zero(t, vx)
	assert.Zero(t, vy)
}

func TestAgentTurnsCorners(t *testing.T) {
	g, err := ParseGrid([]string{
		"...#",
		"##.#",
		"#...",
	})
	require.NoError(t, err)
	a, err := NewAgent("f", KindFollower, 0.5, 0.5, AgentConfig{HalfWidth: 0.45, HalfHeight: 0.45, MoveSpeed: 0.1})
	require.NoError(t, err)

	path := FindPath(g.IsObstructed, Position{0, 0}, Position{3, 2})
	require.Equal(t, 5, PathLength(path))
	a.SetRoute(path[1:])

	for i := 0; i < 2000 && a.State() != Idle; i++ {
		vx, vy := a.Update()
		a.Integrate(g, vx, vy)
	}
	assert.True(t, a.Arrived())
	assert.Equal(t, Position{3, 2}, a.Tile())
}

func TestIntentFromInput(t *testing.T) {
	tests := []struct {
		in     Input
		dx, dy float64
	}{
		{Input{}, 0, 0},
		{Input{Right: true}, 0.05, 0},
		{Input{Left: true, Up: true}, -0.05, -0.05},
		{Input{Left: true, Right: true, Down: true}, 0, 0.05},
	}
	for _, tt := range tests {
		dx, dy := intentFromInput(tt.in, 0.05)
		assert.Equal(t, tt.dx, dx, "input %+v", tt.in)
		assert.Equal(t, tt.dy, dy, "input %+v", tt.in)
	}
}
