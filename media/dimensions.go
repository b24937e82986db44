package media

import "math"

// Target is the computed output size for one image.
type Target struct {
	Role   Role
	Width  int
	Height int
}

// Resolve caps the width at ceiling (the role default when ceiling is zero),
// never enlarges, and keeps the aspect ratio with the height rounded to the
// nearest pixel. srcW and srcH must be positive.
func Resolve(role Role, ceiling, srcW, srcH int) Target {
	if ceiling <= 0 {
		ceiling = role.DefaultCeiling()
	}

	w := srcW
	if w > ceiling {
		w = ceiling
	}

	h := int(math.Round(float64(w) * float64(srcH) / float64(srcW)))
	if h < 1 {
		h = 1
	}

	return Target{Role: role, Width: w, Height: h}
}
