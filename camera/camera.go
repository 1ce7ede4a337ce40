// Package camera provides the perspective orbit camera used to view a scene.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/pthm-cable/grotto/config"
)

// Vec3 is a float32 vector in world space.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

func (v Vec3) norm() Vec3 {
	l := math32.Sqrt(v.dot(v))
	if l == 0 {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Camera holds the projection parameters and orbit state.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3

	// FovY is the vertical field of view in degrees.
	FovY      float32
	Aspect    float32
	Near, Far float32

	ViewportW, ViewportH float32

	// Orbit speed in radians per second around Target (0 = fixed).
	OrbitSpeed float32

	orbitRadius float32
	orbitAngle  float32
	orbitHeight float32
}

// New creates a camera looking from position at target.
func New(viewportW, viewportH, fovY, near, far float32, position, target Vec3) *Camera {
	c := &Camera{
		Position:  position,
		Target:    target,
		Up:        Vec3{Y: 1},
		FovY:      fovY,
		Near:      near,
		Far:       far,
		ViewportW: 1,
		ViewportH: 1,
		Aspect:    1,
	}
	c.Resize(viewportW, viewportH)

	off := position.sub(target)
	c.orbitRadius = math32.Hypot(off.X, off.Z)
	c.orbitAngle = math32.Atan2(off.X, off.Z)
	c.orbitHeight = off.Y
	return c
}

// FromConfig creates a camera from the camera section for a viewport.
func FromConfig(cc config.CameraConfig, viewportW, viewportH int) *Camera {
	c := New(
		float32(viewportW), float32(viewportH),
		float32(cc.FovY), float32(cc.Near), float32(cc.Far),
		Vec3{float32(cc.Position.X), float32(cc.Position.Y), float32(cc.Position.Z)},
		Vec3{float32(cc.Target.X), float32(cc.Target.Y), float32(cc.Target.Z)},
	)
	c.OrbitSpeed = float32(cc.Orbit)
	return c
}

// Resize updates viewport dimensions and the aspect ratio.
// Non-positive sizes (minimised windows) are ignored.
func (c *Camera) Resize(viewportW, viewportH float32) bool {
	if viewportW <= 0 || viewportH <= 0 {
		return false
	}
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return false
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.Aspect = viewportW / viewportH
	return true
}

// Orbit places the camera on its orbit at time t (seconds).
// The radius and height come from the initial position.
func (c *Camera) Orbit(t float32) {
	if c.OrbitSpeed == 0 {
		return
	}
	a := c.orbitAngle + t*c.OrbitSpeed
	c.Position = Vec3{
		X: c.Target.X + math32.Sin(a)*c.orbitRadius,
		Y: c.Target.Y + c.orbitHeight,
		Z: c.Target.Z + math32.Cos(a)*c.orbitRadius,
	}
}

// Projection returns the column-major perspective matrix.
func (c *Camera) Projection() [16]float32 {
	f := 1 / math32.Tan(c.FovY*math32.Pi/360)
	nf := 1 / (c.Near - c.Far)
	return [16]float32{
		f / c.Aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (c.Far + c.Near) * nf, -1,
		0, 0, 2 * c.Far * c.Near * nf, 0,
	}
}

// View returns the column-major look-at matrix.
func (c *Camera) View() [16]float32 {
	fwd := c.Target.sub(c.Position).norm()
	right := fwd.cross(c.Up).norm()
	up := right.cross(fwd)
	return [16]float32{
		right.X, up.X, -fwd.X, 0,
		right.Y, up.Y, -fwd.Y, 0,
		right.Z, up.Z, -fwd.Z, 0,
		-right.dot(c.Position), -up.dot(c.Position), fwd.dot(c.Position), 1,
	}
}

// WorldToScreen projects a world point to screen pixels.
// ok is false for points behind the camera or outside the depth range.
func (c *Camera) WorldToScreen(p Vec3) (sx, sy float32, ok bool) {
	v := mul(c.View(), p, 1)
	clip := mul(c.Projection(), Vec3{v[0], v[1], v[2]}, v[3])
	if clip[3] <= 0 {
		return 0, 0, false
	}
	nx, ny, nz := clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
	if nz < -1 || nz > 1 {
		return 0, 0, false
	}
	sx = (nx + 1) / 2 * c.ViewportW
	sy = (1 - ny) / 2 * c.ViewportH
	return sx, sy, true
}

// IsVisible reports whether a sphere could be on screen.
// The test is conservative: it checks the near/far planes and the
// angular distance from the view axis against the wider half-angle.
func (c *Camera) IsVisible(p Vec3, radius float32) bool {
	fwd := c.Target.sub(c.Position).norm()
	d := p.sub(c.Position)
	depth := d.dot(fwd)
	if depth+radius < c.Near || depth-radius > c.Far {
		return false
	}
	halfY := c.FovY * math32.Pi / 360
	halfX := math32.Atan(math32.Tan(halfY) * c.Aspect)
	half := math32.Max(halfX, halfY)
	// Points within radius of the eye are always visible.
	dist := math32.Sqrt(d.dot(d))
	if dist <= radius {
		return true
	}
	angle := math32.Acos(clamp(depth/dist, -1, 1))
	return angle-math32.Asin(clamp(radius/dist, 0, 1)) <= half
}

func mul(m [16]float32, v Vec3, w float32) [4]float32 {
	return [4]float32{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*w,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*w,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*w,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*w,
	}
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
