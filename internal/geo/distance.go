package geo

import (
	"math"

	"github.com/jwillemsen/baanradar/internal/model"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371

// Distance returns the great-circle distance between two locations in
// kilometers. Callers must check Unresolved on both locations first: the
// (0,0) sentinel would otherwise measure from the Gulf of Guinea.
func Distance(a, b model.Location) float64 {
	lon1 := radians(a.Lon)
	lat1 := radians(a.Lat)
	lon2 := radians(b.Lon)
	lat2 := radians(b.Lat)

	dlon := lon2 - lon1
	dlat := lat2 - lat1

	h := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// Unresolved reports whether a location carries the sentinel coordinates
// written when geocoding failed.
func Unresolved(l model.Location) bool {
	return l.Lon == 0 && l.Lat == 0
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
