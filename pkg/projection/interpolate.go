package projection

import "math"

// Interpolated blends two projections in pixel space: at fraction T a point lands at
// (1-T)*From(p) + T*To(p). The blend is a straight-line morph of projected pixels,
// not an interpolation of geographic coordinates.
type Interpolated struct {
	From, To Projector
	T        float64
}

// Blend returns an interpolation between from and to starting at T=0.
func Blend(from, to Projector) *Interpolated {
	return &Interpolated{From: from, To: to}
}

func (i *Interpolated) Project(lon, lat float64) (float64, float64, bool) {
	x0, y0, v0 := i.From.Project(lon, lat)
	x1, y1, v1 := i.To.Project(lon, lat)
	t := i.T
	return (1-t)*x0 + t*x1, (1-t)*y0 + t*y1, v0 || v1
}

// Outliner is implemented by projectors that can trace the edge of the sphere.
type Outliner interface {
	Outline() [][2]float64
}

const outlineSamples = 360

// Outline blends the outlines of both ends. Each outline is resampled by arc length
// so that the two rings can be mixed point by point.
func (i *Interpolated) Outline() [][2]float64 {
	from, ok0 := i.From.(Outliner)
	to, ok1 := i.To.(Outliner)
	if !ok0 || !ok1 {
		return nil
	}
	a := resample(from.Outline(), outlineSamples)
	b := resample(to.Outline(), outlineSamples)
	if a == nil || b == nil {
		return nil
	}
	t := i.T
	out := make([][2]float64, len(a))
	for k := range a {
		out[k] = [2]float64{(1-t)*a[k][0] + t*b[k][0], (1-t)*a[k][1] + t*b[k][1]}
	}
	return out
}

func resample(ring [][2]float64, n int) [][2]float64 {
	if len(ring) < 2 {
		return nil
	}
	cum := make([]float64, len(ring))
	for k := 1; k < len(ring); k++ {
		cum[k] = cum[k-1] + math.Hypot(ring[k][0]-ring[k-1][0], ring[k][1]-ring[k-1][1])
	}
	total := cum[len(cum)-1]
	out := make([][2]float64, n+1)
	j := 1
	for k := 0; k <= n; k++ {
		d := total * float64(k) / float64(n)
		for j < len(ring)-1 && cum[j] < d {
			j++
		}
		seg := cum[j] - cum[j-1]
		f := 0.0
		if seg > 0 {
			f = (d - cum[j-1]) / seg
		}
		out[k] = [2]float64{
			ring[j-1][0] + f*(ring[j][0]-ring[j-1][0]),
			ring[j-1][1] + f*(ring[j][1]-ring[j-1][1]),
		}
	}
	return out
}
