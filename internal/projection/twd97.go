// Package projection converts TWD97 (TM2) planar coordinates to WGS84
// geographic coordinates.
package projection

import "math"

// Taiwan TM2 projection parameters on the GRS80 ellipsoid. Fixed constants:
// multi-datum support is out of scope.
const (
	semiMajorAxis = 6378137.0      // a (meters)
	semiMinorAxis = 6356752.314245 // b (meters)
	scaleFactor   = 0.9999         // k0
	falseEasting  = 250000.0       // dx (meters)
	falseNorthing = 0.0            // dy (meters)
)

// centralMeridian is 121°E in radians.
var centralMeridian = 121.0 * math.Pi / 180.0

// ToWGS84 maps one TWD97 pair to WGS84 latitude/longitude in degrees.
// Inverse Transverse Mercator via the footprint-latitude method. Pure and
// total over finite inputs; plausibility of the input is the parser's job.
//
// The series below follow the reference formulas term for term; reordering
// or refactoring the coefficient arithmetic shifts results by meters.
func ToWGS84(x, y float64) (lat, lng float64) {
	a := semiMajorAxis
	b := semiMinorAxis
	k0 := scaleFactor

	// eccentricity and second eccentricity squared
	e := math.Sqrt(1 - (b*b)/(a*a))
	e2 := math.Pow(e*a/b, 2)

	x -= falseEasting
	y -= falseNorthing

	// meridional arc and footprint latitude
	m := y / k0
	mu := m / (a * (1.0 - math.Pow(e, 2)/4.0 - 3*math.Pow(e, 4)/64.0 - 5*math.Pow(e, 6)/256.0))
	e1 := (1.0 - math.Sqrt(1.0-math.Pow(e, 2))) / (1.0 + math.Sqrt(1.0-math.Pow(e, 2)))

	j1 := 3*e1/2 - 27*math.Pow(e1, 3)/32.0
	j2 := 21*math.Pow(e1, 2)/16 - 55*math.Pow(e1, 4)/32.0
	j3 := 151 * math.Pow(e1, 3) / 96.0
	j4 := 1097 * math.Pow(e1, 4) / 512.0

	fp := mu + j1*math.Sin(2*mu) + j2*math.Sin(4*mu) + j3*math.Sin(6*mu) + j4*math.Sin(8*mu)

	// expansion terms at the footprint latitude
	c1 := math.Pow(e2*math.Cos(fp), 2)
	t1 := math.Pow(math.Tan(fp), 2)
	r1 := a * (1 - math.Pow(e, 2)) / math.Pow(1-math.Pow(e, 2)*math.Pow(math.Sin(fp), 2), 3.0/2.0)
	n1 := a / math.Sqrt(1-math.Pow(e, 2)*math.Pow(math.Sin(fp), 2))
	d := x / (n1 * k0)

	// latitude correction (degree 2/4/6 polynomial in D)
	q1 := n1 * math.Tan(fp) / r1
	q2 := math.Pow(d, 2) / 2.0
	q3 := (5 + 3*t1 + 10*c1 - 4*math.Pow(c1, 2) - 9*e2) * math.Pow(d, 4) / 24.0
	q4 := (61 + 90*t1 + 298*c1 + 45*math.Pow(t1, 2) - 3*math.Pow(c1, 2) - 252*e2) * math.Pow(d, 6) / 720.0
	latRad := fp - q1*(q2-q3+q4)

	// longitude correction (degree 1/3/5 polynomial in D)
	q5 := d
	q6 := (1 + 2*t1 + c1) * math.Pow(d, 3) / 6
	q7 := (5 - 2*c1 + 28*t1 - 3*math.Pow(c1, 2) + 8*e2 + 24*math.Pow(t1, 2)) * math.Pow(d, 5) / 120.0
	lngRad := centralMeridian + (q5-q6+q7)/math.Cos(fp)

	lat = latRad * 180 / math.Pi
	lng = lngRad * 180 / math.Pi
	return lat, lng
}
