package renderer

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

// CameraConfig places a pinhole camera
type CameraConfig struct {
	Center core.Vec3 // Eye position
	LookAt core.Vec3 // Point the camera looks at
	Up     core.Vec3 // Up direction, need not be perpendicular to the view
	VFov   float64   // Vertical field of view in degrees
}

// Camera generates primary rays for a frame
type Camera struct {
	origin          core.Vec3
	forward         core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	width, height   int
}

// NewCamera creates a camera for a width x height frame
func NewCamera(config CameraConfig, width, height int) *Camera {
	aspectRatio := float64(width) / float64(height)
	viewportHeight := 2 * math.Tan(config.VFov*math.Pi/360)
	viewportWidth := aspectRatio * viewportHeight

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		origin:          config.Center,
		forward:         w.Negate(),
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
		width:           width,
		height:          height,
	}
}

// Origin returns the eye position
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 {
	return c.forward
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1
// and t grows upwards
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction.Normalize())
}

// PixelRay generates the ray through offset (dx, dy) of pixel x, y. Row 0
// is the top of the frame.
func (c *Camera) PixelRay(x, y int, dx, dy float64) core.Ray {
	s := (float64(x) + dx) / float64(c.width)
	t := 1 - (float64(y)+dy)/float64(c.height)
	return c.GetRay(s, t)
}

// InView reports whether p projects into the frame. margin widens the frame
// by that fraction of its size on every side.
func (c *Camera) InView(p core.Vec3, margin float64) bool {
	d := p.Subtract(c.origin)
	depth := d.Dot(c.forward)
	if depth <= 0 {
		return false
	}
	q := d.Multiply(1 / depth)
	s := q.Dot(c.horizontal)/c.horizontal.Dot(c.horizontal) + 0.5
	t := q.Dot(c.vertical)/c.vertical.Dot(c.vertical) + 0.5
	return s >= -margin && s <= 1+margin && t >= -margin && t <= 1+margin
}
