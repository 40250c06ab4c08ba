package room

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/wfunc/fishduel/models"
)

func TestRoomCodeShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := NewGenerator(rand.NewSource(rapid.Int64().Draw(t, "seed")))
		code := g.RoomCode()
		if len(code) != 6 {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		if !IsRoomCode(code) {
			t.Fatalf("code %q is not uppercase alphanumeric", code)
		}
	})
}

func TestIsRoomCode(t *testing.T) {
	assert.True(t, IsRoomCode("AB12Z9"))
	assert.False(t, IsRoomCode("ab12z9"))
	assert.False(t, IsRoomCode("AB12Z"))
	assert.False(t, IsRoomCode("AB12Z9X"))
	assert.False(t, IsRoomCode("AB-2Z9"))
}

func TestFishGeneration(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := NewGenerator(rand.NewSource(rapid.Int64().Draw(t, "seed")))
		f := g.Fish()
		if f.Position < 0 || f.Position >= 100 {
			t.Fatalf("position %v outside [0,100)", f.Position)
		}
		if f.Points != f.Type.Points() || f.Points == 0 {
			t.Fatalf("fish %+v has mismatched points", f)
		}
	})
}

func TestFishesCountAndTypes(t *testing.T) {
	g := NewGenerator(rand.NewSource(7))
	assert.Len(t, g.Fishes(5), 5)

	seen := map[models.FishType]bool{}
	for _, f := range g.Fishes(300) {
		seen[f.Type] = true
	}
	assert.Len(t, seen, 3, "every fish type shows up")
}

func TestDurationWindow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := NewGenerator(rand.NewSource(rapid.Int64().Draw(t, "seed")))
		d := g.Duration(2*time.Second, 5*time.Second)
		if d < 2*time.Second || d >= 5*time.Second {
			t.Fatalf("duration %v outside [2s,5s)", d)
		}
	})
}
