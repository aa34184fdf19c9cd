package projection

import "math"

// rotation turns the sphere by dLambda around the polar axis, then by dPhi and
// dGamma around the two equatorial axes.
type rotation struct {
	dLambda                        float64
	cosPhi, sinPhi, cosGam, sinGam float64
	tilted                         bool
}

func newRotation(dLambda, dPhi, dGamma float64) rotation {
	return rotation{
		dLambda: dLambda,
		cosPhi:  math.Cos(dPhi),
		sinPhi:  math.Sin(dPhi),
		cosGam:  math.Cos(dGamma),
		sinGam:  math.Sin(dGamma),
		tilted:  dPhi != 0 || dGamma != 0,
	}
}

func wrapLambda(lambda float64) float64 {
	if lambda > math.Pi {
		return lambda - 2*math.Pi
	}
	if lambda < -math.Pi {
		return lambda + 2*math.Pi
	}
	return lambda
}

func asin(v float64) float64 {
	return math.Asin(math.Max(-1, math.Min(1, v)))
}

func (r rotation) forward(lambda, phi float64) (float64, float64) {
	lambda = wrapLambda(lambda + r.dLambda)
	if !r.tilted {
		return lambda, phi
	}
	cosphi := math.Cos(phi)
	x := math.Cos(lambda) * cosphi
	y := math.Sin(lambda) * cosphi
	z := math.Sin(phi)
	k := z*r.cosPhi + x*r.sinPhi
	return math.Atan2(y*r.cosGam-k*r.sinGam, x*r.cosPhi-z*r.sinPhi), asin(k*r.cosGam + y*r.sinGam)
}

func (r rotation) inverse(lambda, phi float64) (float64, float64) {
	if r.tilted {
		cosphi := math.Cos(phi)
		x := math.Cos(lambda) * cosphi
		y := math.Sin(lambda) * cosphi
		z := math.Sin(phi)
		k := z*r.cosGam - y*r.sinGam
		lambda = math.Atan2(y*r.cosGam+z*r.sinGam, x*r.cosPhi+k*r.sinPhi)
		phi = asin(k*r.cosPhi - x*r.sinPhi)
	}
	return wrapLambda(lambda - r.dLambda), phi
}
