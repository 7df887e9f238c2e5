package geo

import (
	"github.com/twpayne/go-polyline"
)

// EncodePolyline. google encoded polyline (precision 5) of the coordinates in order.
func EncodePolyline(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}
	raw := make([][]float64, len(coords))
	for i, c := range coords {
		raw[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(raw))
}

func DecodePolyline(s string) ([]Coordinate, error) {
	raw, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(raw))
	for i, c := range raw {
		coords[i] = NewCoordinate(c[0], c[1])
	}
	return coords, nil
}
