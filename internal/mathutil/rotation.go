package mathutil

import "math"

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}

// ToLocal rotates a screen-space delta by -deg so it is expressed along the
// object's own axes.
//
//	dx' = dx·cosθ + dy·sinθ
//	dy' = dy·cosθ − dx·sinθ
func ToLocal(d Vec2, deg float64) Vec2 {
	if deg == 0 {
		return d
	}
	c, s := math.Cos(Deg2Rad(deg)), math.Sin(Deg2Rad(deg))
	return Vec2{d.X*c + d.Y*s, d.Y*c - d.X*s}
}

// ToWorld is the inverse of ToLocal.
func ToWorld(d Vec2, deg float64) Vec2 {
	if deg == 0 {
		return d
	}
	c, s := math.Cos(Deg2Rad(deg)), math.Sin(Deg2Rad(deg))
	return Vec2{d.X*c - d.Y*s, d.X*s + d.Y*c}
}

// AngleDeg returns atan2(p - center) in degrees, in (-180, 180].
func AngleDeg(p, center Vec2) float64 {
	return Rad2Deg(math.Atan2(p.Y-center.Y, p.X-center.X))
}

// AngleDelta returns b - a folded into (-180, 180], so a sweep across the
// atan2 seam is seen as the short way round.
func AngleDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}
