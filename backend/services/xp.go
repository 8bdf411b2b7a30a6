package services

import (
	"math"
	"strconv"
	"strings"
)

// maxLessonXP bounds a single award; larger stored values are treated as unusable.
const maxLessonXP = math.MaxInt32

// ParseLessonXP converts a lesson's stored nominal XP ("450.00") into the amount
// to award. The value is truncated, never rounded, and negatives clamp to 0.
// ok is false when the value is absent or cannot be used; the amount is then 0.
func ParseLessonXP(raw *string) (xp int, ok bool) {
	if raw == nil {
		return 0, false
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > maxLessonXP {
		return 0, false
	}
	if f < 0 {
		return 0, true
	}
	return int(math.Trunc(f)), true
}
