package models

// ReminderPayload is the body of a queued reminder task.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
	OwnerID       string `json:"ownerId"`
	Offset        string `json:"offset"`   // e.g. "24h0m0s"
	FireDate      string `json:"fireDate"` // RFC3339
	Title         string `json:"title"`
	Body          string `json:"body"`
}
