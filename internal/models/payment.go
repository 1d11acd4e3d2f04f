package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

type Payment struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	ProductID             string    `json:"product_id" db:"product_id"`
	CustomerPhone         string    `json:"customer_phone" db:"customer_phone"`
	CustomerName          string    `json:"customer_name" db:"customer_name"`
	Amount                float64   `json:"amount" db:"amount"`
	Currency              string    `json:"currency" db:"currency"`
	Status                string    `json:"status" db:"status"`
	MidtransTransactionID *string   `json:"midtrans_transaction_id" db:"midtrans_transaction_id"`
	PaymentLinkURL        *string   `json:"payment_link_url" db:"payment_link_url"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

type PaymentRequest struct {
	ProductID     string  `json:"product_id" binding:"required"`
	CustomerPhone string  `json:"customer_phone" binding:"required"`
	CustomerName  string  `json:"customer_name" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,min=0"`
}

type PaymentNotification struct {
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
}
