package bonk

import "math"

// XPToLevel converts total experience to a fractional level.
func XPToLevel(xp int) float64 {
	return math.Sqrt(float64(xp))/10 + 1
}

// LevelToXP converts a whole level to the experience required to reach it.
func LevelToXP(level int) int {
	d := (level - 1) * 10
	return d * d
}
