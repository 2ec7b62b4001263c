// Package lighting provides the directional light for the shaded pass.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/objpick/pkg/math"
)

// DefaultLongitude and DefaultLatitude place the sun above and in front of
// the default camera.
const (
	DefaultLongitude = 25
	DefaultLatitude  = 60
)

// SunDirection converts longitude/latitude angles in degrees to a normalized
// direction pointing towards the sun. Longitude is rotation around Y,
// latitude is elevation from the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := longitude * math32.Pi / 180
	lat := latitude * math32.Pi / 180

	sinLon, cosLon := math32.Sincos(lon)
	sinLat, cosLat := math32.Sincos(lat)

	return math.Vec3{
		X: cosLat * sinLon,
		Y: sinLat,
		Z: cosLat * cosLon,
	}
}
