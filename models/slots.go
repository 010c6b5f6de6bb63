package models

// TimeSlot is a bookable start time computed on demand. It is never persisted.
type TimeSlot struct {
	Time      string `json:"time"` // "HH:MM"
	Available bool   `json:"available"`
}

// DaySchedule is a vet's fixed daily window.
type DaySchedule struct {
	DayStartHour        int `bson:"dayStartHour" json:"dayStartHour"`
	DayEndHour          int `bson:"dayEndHour" json:"dayEndHour"`
	SlotIntervalMinutes int `bson:"slotIntervalMinutes" json:"slotIntervalMinutes"`
}

// DefaultDaySchedule is used when a vet has not configured a window.
var DefaultDaySchedule = DaySchedule{DayStartHour: 9, DayEndHour: 18, SlotIntervalMinutes: 30}

// SlotsResponse is returned by the slot query endpoint.
type SlotsResponse struct {
	VetID    string     `json:"vetId"`
	Date     string     `json:"date"`
	Duration int        `json:"duration"`
	Slots    []TimeSlot `json:"slots"`
}
