package geo

import (
	"github.com/golang/geo/s2"
)

func toS2Point(c Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate,
	snap Coordinate) Coordinate {
	projection := s2.Project(toS2Point(snap), toS2Point(pointA), toS2Point(pointB))
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLinePerpendicularDistance. distance in meters from snap to the closest point of segment (pointA, pointB).
func PointLinePerpendicularDistance(pointA Coordinate, pointB Coordinate,
	snap Coordinate) float64 {
	if pointA == pointB {
		return HaversineBetween(pointA, snap)
	}
	projectionPoint := ProjectPointToLineCoord(pointA, pointB, snap)

	return HaversineBetween(snap, projectionPoint)
}
