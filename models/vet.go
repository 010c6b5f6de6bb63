package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a Point from latitude and longitude.
func NewGeoPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// LatLng returns the point's latitude and longitude. ok is false for a malformed point.
func (p *GeoPoint) LatLng() (lat, lng float64, ok bool) {
	if p == nil || len(p.Coordinates) != 2 {
		return 0, 0, false
	}
	return p.Coordinates[1], p.Coordinates[0], true
}

// Vet is a veterinarian and the clinic they work from.
type Vet struct {
	ID         string      `bson:"id" json:"id"`
	Name       string      `bson:"name" json:"name"`
	ClinicName string      `bson:"clinicName" json:"clinicName"`
	Location   *GeoPoint   `bson:"location,omitempty" json:"location,omitempty"`
	Schedule   DaySchedule `bson:"schedule" json:"schedule"`
}

// EffectiveSchedule returns the vet's window, falling back to DefaultDaySchedule.
func (v Vet) EffectiveSchedule() DaySchedule {
	s := v.Schedule
	if s.DayEndHour == 0 && s.DayStartHour == 0 {
		return DefaultDaySchedule
	}
	if s.SlotIntervalMinutes <= 0 {
		s.SlotIntervalMinutes = DefaultDaySchedule.SlotIntervalMinutes
	}
	return s
}

// NearbyVet is a vet annotated with its distance from the query point.
type NearbyVet struct {
	Vet
	DistanceKm float64 `json:"distanceKm"`
}
