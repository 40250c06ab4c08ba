package room

import (
	"math/rand"
	"time"

	"github.com/wfunc/fishduel/models"
)

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CodeLength   = 6
)

// Generator produces room codes, fish and fishing delays. It is not safe for
// concurrent use; the Manager only calls it with its lock held.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// RoomCode returns six characters from the uppercase base-36 alphabet.
func (g *Generator) RoomCode() string {
	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = codeAlphabet[g.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// Fish returns a fish at a uniform position in [0,100) with a uniform type.
func (g *Generator) Fish() models.Fish {
	t := models.FishTypes[g.rng.Intn(len(models.FishTypes))]
	return models.Fish{
		Position: g.rng.Float64() * 100,
		Type:     t,
		Points:   t.Points(),
	}
}

// Fishes returns n independent fish.
func (g *Generator) Fishes(n int) []models.Fish {
	fishes := make([]models.Fish, 0, n)
	for i := 0; i < n; i++ {
		fishes = append(fishes, g.Fish())
	}
	return fishes
}

// Duration samples uniformly from [min, max).
func (g *Generator) Duration(min, max time.Duration) time.Duration {
	return min + time.Duration(g.rng.Int63n(int64(max-min)))
}

// IsRoomCode reports whether s has the shape of a generated room code.
func IsRoomCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
