package mapbox

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/twpayne/go-polyline"

	"fuel-route-service/internal/domain"
	"fuel-route-service/internal/geo"
)

const (
	staticMapMaxPoints = 180
	staticMapWidth     = 800
	staticMapHeight    = 400
)

// BuildStaticMapURL returns a Mapbox Static Images URL with the route and
// stops drawn: a blue route path, green/black start and end pins, and a
// red pin per fuel stop.
func (p *Provider) BuildStaticMapURL(
	geometry []domain.Coordinates,
	stopPoints []domain.Coordinates,
	start, end domain.Coordinates,
) string {
	downsampled := geo.Downsample(geometry, staticMapMaxPoints)

	coords := make([][]float64, 0, len(downsampled))
	for _, c := range downsampled {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	encoded := string(polyline.EncodeCoords(coords))

	overlays := []string{
		fmt.Sprintf("path-4+0066ff-0.7(%s)", url.QueryEscape(encoded)),
		fmt.Sprintf("pin-s-a+00aa55(%v,%v)", start.Lon, start.Lat),
		fmt.Sprintf("pin-s-b+111111(%v,%v)", end.Lon, end.Lat),
	}
	for _, s := range stopPoints {
		overlays = append(overlays, fmt.Sprintf("pin-s+f44(%v,%v)", s.Lon, s.Lat))
	}

	return fmt.Sprintf(
		"%s/styles/v1/mapbox/streets-v12/static/%s/auto/%dx%d?access_token=%s",
		p.baseURL, strings.Join(overlays, ","), staticMapWidth, staticMapHeight, p.accessToken,
	)
}
