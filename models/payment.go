package models

import "time"

// TransactionStatus tracks a payment through the processor lifecycle.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Transaction is a payment for one appointment.
type Transaction struct {
	ID              string            `bson:"id" json:"id"`
	PaymentIntentID string            `bson:"paymentIntentId" json:"paymentIntentId"`
	AppointmentID   string            `bson:"appointmentId" json:"appointmentId"`
	VetID           string            `bson:"vetId" json:"vetId"`
	Amount          float64           `bson:"amount" json:"amount"`
	Commission      float64           `bson:"commission" json:"commission"`
	VetAmount       float64           `bson:"vetAmount" json:"vetAmount"`
	Currency        string            `bson:"currency" json:"currency"`
	Status          TransactionStatus `bson:"status" json:"status"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// VetBalance is the amount owed to a vet from completed payments.
type VetBalance struct {
	VetID     string    `bson:"vetId" json:"vetId"`
	Available float64   `bson:"available" json:"available"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PaymentIntentRequest asks for a payment intent for an appointment.
type PaymentIntentRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

// PaymentIntentResponse carries what the app needs to confirm the payment.
type PaymentIntentResponse struct {
	PaymentIntentID string  `json:"paymentIntentId"`
	ClientSecret    string  `json:"clientSecret"`
	Amount          float64 `json:"amount"`
	Commission      float64 `json:"commission"`
	VetAmount       float64 `json:"vetAmount"`
	Currency        string  `json:"currency"`
}
