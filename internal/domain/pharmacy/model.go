package pharmacy

// SourceOverpass tags records normalized from the Overpass places query.
const SourceOverpass = "openstreetmap_overpass"

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a normalized pharmacy record. Lat/Lng are pointers because the
// persisted preferred snapshot may predate coordinate capture; records coming
// out of the places collaborator always carry both.
type Place struct {
	ID      string   `json:"id"`
	OSMID   string   `json:"osmId"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Phone   string   `json:"phone"`
	Hours   string   `json:"hours"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Source  string   `json:"source"`

	// DistanceMiles is derived from the caller's coordinate, never stored.
	DistanceMiles *float64 `json:"distance,omitempty"`

	// Preferred marks the record matching the stored preferred snapshot.
	Preferred bool `json:"preferred,omitempty"`
}

// Coordinate returns the place's point and whether one is resolvable.
func (p Place) Coordinate() (Coordinate, bool) {
	if p.Lat == nil || p.Lng == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *p.Lat, Lng: *p.Lng}, true
}

// Snapshot normalizes a place for the preferred-pharmacy slot: either id key
// stands in for a missing one and the source tag defaults to Overpass.
func (p Place) Snapshot() Place {
	snap := p
	snap.DistanceMiles = nil
	snap.Preferred = false
	if snap.ID == "" {
		snap.ID = snap.OSMID
	}
	if snap.ID == "" {
		snap.ID = "selected"
	}
	if snap.OSMID == "" {
		snap.OSMID = p.ID
	}
	if snap.Source == "" {
		snap.Source = SourceOverpass
	}
	return snap
}

// Matches reports whether other refers to the same pharmacy as p. Either key
// is accepted because persisted snapshots predate one naming scheme.
func (p Place) Matches(other Place) bool {
	if p.ID != "" && (p.ID == other.ID || p.ID == other.OSMID) {
		return true
	}
	if p.OSMID != "" && (p.OSMID == other.ID || p.OSMID == other.OSMID) {
		return true
	}
	return false
}
