package geo

type BoundingBox struct {
	minLat, minLon float64
	maxLat, maxLon float64
}

func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) BoundingBox {
	return BoundingBox{minLat: minLat,
		minLon: minLon,
		maxLat: maxLat,
		maxLon: maxLon}
}

// BoundingBoxAround. lat/lon box enclosing the circle of radiusMeters around (lat, lon).
func BoundingBoxAround(lat, lon, radiusMeters float64) BoundingBox {
	north, _ := GetDestinationPoint(lat, lon, 0, radiusMeters)
	south, _ := GetDestinationPoint(lat, lon, 180, radiusMeters)
	_, east := GetDestinationPoint(lat, lon, 90, radiusMeters)
	_, west := GetDestinationPoint(lat, lon, 270, radiusMeters)
	if north > 90 {
		north = 90
	}
	if south < -90 {
		south = -90
	}
	if west > east {
		// crosses the antimeridian
		west, east = -180, 180
	}
	return NewBoundingBox(south, west, north, east)
}

func (b BoundingBox) GetMin() [2]float64 {
	return [2]float64{b.minLat, b.minLon}
}

func (b BoundingBox) GetMax() [2]float64 {
	return [2]float64{b.maxLat, b.maxLon}
}

func (b BoundingBox) GetMinLat() float64 {
	return b.minLat
}

func (b BoundingBox) GetMinLon() float64 {
	return b.minLon
}

func (b BoundingBox) GetMaxLat() float64 {
	return b.maxLat
}

func (b BoundingBox) GetMaxLon() float64 {
	return b.maxLon
}

func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.minLat && lat <= b.maxLat && lon >= b.minLon && lon <= b.maxLon
}
