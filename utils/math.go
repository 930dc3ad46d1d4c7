package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds returns the axis aligned box around points.
// Both corners are zero for an empty slice.
func Bounds(points []mgl32.Vec3) (min, max mgl32.Vec3) {
	if len(points) == 0 {
		return
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			min[i] = float32(math.Min(float64(min[i]), float64(p[i])))
			max[i] = float32(math.Max(float64(max[i]), float64(p[i])))
		}
	}
	return min, max
}

// UnpackNormal expands a byte packed normal, each component mapped from [0,255] to [-1,1].
func UnpackNormal(packed [4]uint8) mgl32.Vec3 {
	n := mgl32.Vec3{
		float32(packed[0])/255.0*2 - 1,
		float32(packed[1])/255.0*2 - 1,
		float32(packed[2])/255.0*2 - 1,
	}
	if n.Len() > 0.5 {
		n = n.Normalize()
	}
	return n
}
