// Package geom reconstructs the bending circle of a continuum robot from
// three tracked landmark positions expressed in a common frame.
package geom

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// ErrCollinear is returned when the three input points do not define a unique
// circle (collinear or coincident points).
var ErrCollinear = errors.New("geom: points are collinear, no unique circle")

// collinearTol is the relative cross-product magnitude below which the three
// points are treated as collinear. Scaled by the leg lengths so the test is
// independent of the robot's physical size.
const collinearTol = 1e-9

// DefaultSamples is the number of points used to discretize a circle when the
// caller has no preference.
const DefaultSamples = 100

// Circle is the unique circle through three non-collinear points, together
// with an orthonormal in-plane basis used for sampling.
type Circle struct {
	Center r3.Vector
	Radius float64
	Normal r3.Vector // unit normal of the plane containing the circle

	u, v r3.Vector // in-plane basis
}

// CircleThroughPoints computes the circle passing through p0, p1 and p2.
// The circumcenter is found by solving the 2D equidistance system in the
// plane's local basis and mapping the solution back to 3D.
func CircleThroughPoints(p0, p1, p2 r3.Vector) (Circle, error) {
	a := p1.Sub(p0)
	b := p2.Sub(p0)

	n := a.Cross(b)
	scale := a.Norm() * b.Norm()
	if scale == 0 || n.Norm() <= collinearTol*scale {
		return Circle{}, ErrCollinear
	}

	u := a.Normalize()
	w := n.Normalize()
	v := w.Cross(u)

	// Local plane coordinates: p0 at the origin, p1 on the u axis.
	x1 := a.Norm()
	x2 := b.Dot(u)
	y2 := b.Dot(v)

	// Circumcenter (cx, cy): equidistant from (0,0), (x1,0) and (x2,y2).
	lhs := mat.NewDense(2, 2, []float64{
		2 * x1, 0,
		2 * x2, 2 * y2,
	})
	rhs := mat.NewVecDense(2, []float64{
		x1 * x1,
		x2*x2 + y2*y2,
	})

	var sol mat.VecDense
	if err := sol.SolveVec(lhs, rhs); err != nil {
		return Circle{}, ErrCollinear
	}
	cx, cy := sol.AtVec(0), sol.AtVec(1)

	center := p0.Add(u.Mul(cx)).Add(v.Mul(cy))
	return Circle{
		Center: center,
		Radius: center.Sub(p0).Norm(),
		Normal: w,
		u:      u,
		v:      v,
	}, nil
}

// Points samples n evenly spaced points over the full circle, ordered by
// angle within the circle's plane. n values below 3 fall back to
// DefaultSamples.
func (c Circle) Points(n int) []r3.Vector {
	if n < 3 {
		n = DefaultSamples
	}
	pts := make([]r3.Vector, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		offset := c.u.Mul(c.Radius * math.Cos(theta)).Add(c.v.Mul(c.Radius * math.Sin(theta)))
		pts[i] = c.Center.Add(offset)
	}
	return pts
}

// ArcThroughPoints is a convenience wrapper that reconstructs the circle and
// samples it in one call. It returns no points for degenerate input.
func ArcThroughPoints(p0, p1, p2 r3.Vector, samples int) ([]r3.Vector, error) {
	circle, err := CircleThroughPoints(p0, p1, p2)
	if err != nil {
		return nil, err
	}
	return circle.Points(samples), nil
}
