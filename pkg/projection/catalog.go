package projection

func fixed(raw Raw) func() *Projection {
	return func() *Projection { return New(raw) }
}

func globe() *Projection {
	return New(orthographic{}).SetClipAngle(90)
}

// Catalog lists every projection implemented by this package.
func Catalog() []Entry {
	return []Entry{
		{Key: "aitoff", Name: "Aitoff", Build: fixed(aitoff{})},
		{Key: "albers", Name: "Albers", Parallels: &[2]float64{20, 50}, Build: func() *Projection {
			return newConic(newConicEqualArea, [2]float64{29.5, 45.5})
		}},
		{Key: "equirectangular", Name: "Equirectangular (Plate Carree)", Build: fixed(equirectangular{})},
		{Key: "globe", Name: "Globe", Rotates: true, Shape: ShapeSphere, Build: globe},
		{Key: "hammer", Name: "Hammer", Build: fixed(hammer{})},
		{Key: "kavrayskiyvii", Name: "Kavrayskiy VII", Build: fixed(kavrayskiy7{})},
		{Key: "lambertcylindricalequalarea", Name: "Lambert cylindrical equal-area", Build: fixed(cylindricalEqualArea{})},
		{Key: "mercator", Name: "Mercator", Build: fixed(mercator{})},
		{Key: "miller", Name: "Miller", Build: fixed(miller{})},
		{Key: "mollweide", Name: "Mollweide", Build: fixed(mollweide{})},
		{Key: "naturalearth", Name: "Natural Earth", Build: fixed(naturalEarth{})},
		{Key: "orthographic", Name: "Orthographic", Rotates: true, Shape: ShapeSphere, Build: globe},
		{Key: "sinusoidal", Name: "Sinusoidal", Build: fixed(sinusoidal{})},
		{Key: "winkeltripel", Name: "Winkel Tripel", Build: fixed(winkelTripel{})},
	}
}

// DefaultRegistry returns a registry holding the full catalog.
func DefaultRegistry() *Registry {
	return NewRegistry(Catalog()...)
}
