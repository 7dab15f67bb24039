// Package geo provides pure geometry over route polylines: great-circle
// distances, distance-parameterized positions and point-to-polyline
// projection. All functions are side-effect free and defined for every
// valid numeric input.
package geo

import (
	"math"

	"fuel-route-service/internal/domain"
)

const earthRadiusMiles = 3958.8

// Haversine returns the great-circle distance in miles between two points.
func Haversine(a, b domain.Coordinates) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

// CumulativeDistances returns cumulative miles along the polyline.
// The first element is always 0 and the sequence is non-decreasing.
func CumulativeDistances(points []domain.Coordinates) []float64 {
	distances := make([]float64, 0, len(points))
	distances = append(distances, 0)
	for i := 1; i < len(points); i++ {
		distances = append(distances, distances[i-1]+Haversine(points[i-1], points[i]))
	}
	return distances
}

// Interpolate returns the point at targetMiles along the polyline.
//
// Targets at or before the start return the first point; targets at or
// past the total length return the last point. In between, the bracketing
// points are blended linearly in raw lon/lat space. That is a deliberate
// short-segment approximation, not a great-circle interpolation; marker
// placement and distance-to-polyline checks downstream are tuned to it.
func Interpolate(points []domain.Coordinates, cumulative []float64, targetMiles float64) domain.Coordinates {
	if targetMiles <= 0 {
		return points[0]
	}
	if targetMiles >= cumulative[len(cumulative)-1] {
		return points[len(points)-1]
	}
	for i := 1; i < len(cumulative); i++ {
		if cumulative[i] < targetMiles {
			continue
		}
		prevMile := cumulative[i-1]
		segLength := cumulative[i] - prevMile
		ratio := 0.0
		if segLength != 0 {
			ratio = (targetMiles - prevMile) / segLength
		}
		return domain.Coordinates{
			Lon: points[i-1].Lon + (points[i].Lon-points[i-1].Lon)*ratio,
			Lat: points[i-1].Lat + (points[i].Lat-points[i-1].Lat)*ratio,
		}
	}
	return points[len(points)-1]
}

// MinDistanceToPolyline returns the closest distance in miles from the
// target point to any segment of the polyline. A polyline with fewer than
// two points has no segments and yields +Inf.
func MinDistanceToPolyline(target domain.Coordinates, points []domain.Coordinates) float64 {
	closest := math.Inf(1)
	for i := 1; i < len(points); i++ {
		d := pointToSegmentDistance(target, points[i-1], points[i])
		if d < closest {
			closest = d
		}
	}
	return closest
}

// pointToSegmentDistance approximates the shortest distance from a point
// to a segment on Earth. The projection is done in planar lon/lat space
// and clamped to the segment, then the projected point is measured with
// the haversine formula. Good enough for short distances.
func pointToSegmentDistance(point, start, end domain.Coordinates) float64 {
	dx := end.Lon - start.Lon
	dy := end.Lat - start.Lat
	if dx == 0 && dy == 0 {
		return Haversine(point, start)
	}

	t := ((point.Lon-start.Lon)*dx + (point.Lat-start.Lat)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	proj := domain.Coordinates{
		Lon: start.Lon + t*dx,
		Lat: start.Lat + t*dy,
	}
	return Haversine(point, proj)
}

// Downsample reduces the polyline to at most maxPoints points using a
// fixed stride, preserving the first and last point exactly. Input within
// the limit is returned unchanged.
func Downsample(points []domain.Coordinates, maxPoints int) []domain.Coordinates {
	if maxPoints < 1 || len(points) <= maxPoints {
		return points
	}
	step := len(points) / maxPoints
	if step < 1 {
		step = 1
	}
	reduced := make([]domain.Coordinates, 0, maxPoints+1)
	for i := 0; i < len(points); i += step {
		reduced = append(reduced, points[i])
	}
	if reduced[len(reduced)-1] != points[len(points)-1] {
		reduced = append(reduced, points[len(points)-1])
	}
	return reduced
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
