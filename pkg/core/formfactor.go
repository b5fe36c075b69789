package core

import "math"

// planeEpsilon snaps vertices this close to the clip plane onto it
const planeEpsilon = 1e-6

// ClipAbovePlane clips a convex polygon against the half-space in front of
// the plane through p with normal n and appends the visible vertices to dst.
// Clipping a triangle yields at most four vertices, a quad at most five.
func ClipAbovePlane(dst []Vec3, p, n Vec3, poly []Vec3) []Vec3 {
	c := n.Dot(p)
	count := len(poly)
	var sd [8]float64
	for i, v := range poly {
		d := n.Dot(v) - c
		if math.Abs(d) < planeEpsilon {
			d = 0
		}
		sd[i] = d
	}

	for i := 0; i < count; i++ {
		j := (i + 1) % count
		a, b := poly[i], poly[j]
		da, db := sd[i], sd[j]
		if da >= 0 {
			dst = append(dst, a)
		}
		if (da > 0 && db < 0) || (da < 0 && db > 0) {
			t := da / (da - db)
			dst = append(dst, a.Add(b.Subtract(a).Multiply(t)))
		}
	}
	return dst
}

// PolygonFormFactor returns the differential-area-to-polygon form factor
// seen from point p with normal n: the cosine-weighted fraction of the
// hemisphere covered by the polygon. It uses the closed-form contour
// integral (sum over edges of the edge angle times the cosine between n and
// the edge plane normal). The polygon should already be clipped to the
// hemisphere; the result is independent of winding.
func PolygonFormFactor(p, n Vec3, poly []Vec3) float64 {
	count := len(poly)
	if count < 3 {
		return 0
	}

	var dirs [8]Vec3
	for i, v := range poly {
		dirs[i] = v.Subtract(p).Normalize()
	}

	sum := 0.0
	for i := 0; i < count; i++ {
		a := dirs[i]
		b := dirs[(i+1)%count]
		g := b.Cross(a).Normalize()
		angle := math.Acos(max(-1, min(1, a.Dot(b))))
		sum += angle * n.Dot(g)
	}

	return math.Abs(sum) * 0.5 / math.Pi
}

// VisibleFormFactor clips poly to the hemisphere above (p, n) and returns
// its form factor.
func VisibleFormFactor(p, n Vec3, poly []Vec3) float64 {
	var buf [8]Vec3
	clipped := ClipAbovePlane(buf[:0], p, n, poly)
	return PolygonFormFactor(p, n, clipped)
}
