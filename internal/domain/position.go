package domain

// Position is a WGS-84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are inside the WGS-84 range. The
// zero value (0, 0) is treated as absent rather than a real fix: it is the
// null island sentinel every upstream source uses for "no data".
func (p Position) Valid() bool {
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
