package projection

import "math"

// Raw maps a rotated position in radians to unit projection space, y pointing up.
type Raw interface {
	Forward(lambda, phi float64) (x, y float64)
}

// Inverter is implemented by raw projections that can map unit space back to radians.
type Inverter interface {
	Inverse(x, y float64) (lambda, phi float64, ok bool)
}

// RawFunc adapts a plain function to Raw.
type RawFunc func(lambda, phi float64) (x, y float64)

func (f RawFunc) Forward(lambda, phi float64) (float64, float64) { return f(lambda, phi) }

type orthographic struct{}

func (orthographic) Forward(lambda, phi float64) (float64, float64) {
	return math.Cos(phi) * math.Sin(lambda), math.Sin(phi)
}

func (orthographic) Inverse(x, y float64) (float64, float64, bool) {
	rho := math.Hypot(x, y)
	if rho > 1 {
		return 0, 0, false
	}
	if rho == 0 {
		return 0, 0, true
	}
	c := math.Asin(rho)
	sinc, cosc := math.Sin(c), math.Cos(c)
	return math.Atan2(x*sinc, rho*cosc), math.Asin(y * sinc / rho), true
}

type equirectangular struct{}

func (equirectangular) Forward(lambda, phi float64) (float64, float64) { return lambda, phi }

func (equirectangular) Inverse(x, y float64) (float64, float64, bool) {
	return x, y, math.Abs(x) <= math.Pi && math.Abs(y) <= math.Pi/2
}

const mercatorLimit = 85 * math.Pi / 180

type mercator struct{}

func (mercator) Forward(lambda, phi float64) (float64, float64) {
	phi = math.Max(-mercatorLimit, math.Min(mercatorLimit, phi))
	return lambda, math.Log(math.Tan(math.Pi/4 + phi/2))
}

func (mercator) Inverse(x, y float64) (float64, float64, bool) {
	return x, 2*math.Atan(math.Exp(y)) - math.Pi/2, math.Abs(x) <= math.Pi
}

type miller struct{}

func (miller) Forward(lambda, phi float64) (float64, float64) {
	return lambda, 1.25 * math.Log(math.Tan(math.Pi/4+0.4*phi))
}

func (miller) Inverse(x, y float64) (float64, float64, bool) {
	return x, 2.5 * math.Atan(math.Exp(0.8*y)) - 0.625*math.Pi, math.Abs(x) <= math.Pi
}

type cylindricalEqualArea struct{}

func (cylindricalEqualArea) Forward(lambda, phi float64) (float64, float64) {
	return lambda, math.Sin(phi)
}

func (cylindricalEqualArea) Inverse(x, y float64) (float64, float64, bool) {
	if math.Abs(y) > 1 {
		return 0, 0, false
	}
	return x, math.Asin(y), math.Abs(x) <= math.Pi
}

type sinusoidal struct{}

func (sinusoidal) Forward(lambda, phi float64) (float64, float64) {
	return lambda * math.Cos(phi), phi
}

func (sinusoidal) Inverse(x, y float64) (float64, float64, bool) {
	if math.Abs(y) > math.Pi/2 {
		return 0, 0, false
	}
	c := math.Cos(y)
	if c == 0 {
		return 0, y, true
	}
	lambda := x / c
	return lambda, y, math.Abs(lambda) <= math.Pi
}

// mollweide solves 2θ + sin 2θ = π sin φ with Newton iterations.
type mollweide struct{}

func (mollweide) Forward(lambda, phi float64) (float64, float64) {
	theta := phi
	for i := 0; i < 10; i++ {
		denom := 2 + 2*math.Cos(2*theta)
		if math.Abs(denom) < 1e-9 {
			break
		}
		delta := (2*theta + math.Sin(2*theta) - math.Pi*math.Sin(phi)) / denom
		theta -= delta
		if math.Abs(delta) < 1e-7 {
			break
		}
	}
	return (2 * math.Sqrt2 / math.Pi) * lambda * math.Cos(theta), math.Sqrt2 * math.Sin(theta)
}

type hammer struct{}

func (hammer) Forward(lambda, phi float64) (float64, float64) {
	cosphi := math.Cos(phi)
	k := math.Sqrt(2 / (1 + cosphi*math.Cos(lambda/2)))
	return 2 * k * cosphi * math.Sin(lambda/2), k * math.Sin(phi)
}

type aitoff struct{}

func (aitoff) Forward(lambda, phi float64) (float64, float64) {
	cosphi := math.Cos(phi)
	alpha := math.Acos(math.Max(-1, math.Min(1, cosphi*math.Cos(lambda/2))))
	sinci := 1.0
	if alpha != 0 {
		sinci = math.Sin(alpha) / alpha
	}
	return 2 * cosphi * math.Sin(lambda/2) / sinci, math.Sin(phi) / sinci
}

var winkelPhi1 = math.Acos(2 / math.Pi)

type winkelTripel struct{}

func (winkelTripel) Forward(lambda, phi float64) (float64, float64) {
	x, y := aitoff{}.Forward(lambda, phi)
	return (x + lambda*math.Cos(winkelPhi1)) / 2, (y + phi) / 2
}

type kavrayskiy7 struct{}

func (kavrayskiy7) Forward(lambda, phi float64) (float64, float64) {
	return 3 * lambda / (2 * math.Pi) * math.Sqrt(math.Pi*math.Pi/3-phi*phi), phi
}

type naturalEarth struct{}

func (naturalEarth) Forward(lambda, phi float64) (float64, float64) {
	phi2 := phi * phi
	phi4 := phi2 * phi2
	x := lambda * (0.8707 - 0.131979*phi2 + phi4*(-0.013791+phi4*(0.003971*phi2-0.001529*phi4)))
	y := phi * (1.007226 + phi2*(0.015085+phi4*(-0.044475+0.028874*phi2-0.005916*phi4)))
	return x, y
}

// conicEqualArea is the Albers projection for the two standard parallels, in radians.
type conicEqualArea struct {
	n, c, rho0 float64
}

func newConicEqualArea(phi0, phi1 float64) Raw {
	sin0 := math.Sin(phi0)
	n := (sin0 + math.Sin(phi1)) / 2
	if math.Abs(n) < 1e-9 {
		return cylindricalEqualArea{}
	}
	c := 1 + sin0*(2*n-sin0)
	return conicEqualArea{n: n, c: c, rho0: math.Sqrt(c) / n}
}

func (p conicEqualArea) Forward(lambda, phi float64) (float64, float64) {
	rho := math.Sqrt(math.Max(0, p.c-2*p.n*math.Sin(phi))) / p.n
	lambda *= p.n
	return rho * math.Sin(lambda), p.rho0 - rho*math.Cos(lambda)
}
