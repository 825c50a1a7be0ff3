package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a single payment attempt.
// It only ever moves forward: UNPAID/PENDING/PROCESSING may become
// SUCCESS or REFUNDED; SUCCESS is terminal.
type PaymentStatus string

const (
	PaymentStatusUnpaid     PaymentStatus = "UNPAID"
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSuccess    PaymentStatus = "SUCCESS"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// Scan implements sql.Scanner interface
func (s *PaymentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		*s = PaymentStatusUnpaid
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Terminal reports whether no further transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusRefunded
}

// Payment is one attempt (full or installment) to collect money
// against a Booking. Amounts are stored in major currency units; the
// gateway speaks minor units and the conversion lives in the money
// package.
type Payment struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	UserID           string          `gorm:"size:36;not null;index" json:"user_id"`
	BookingID        string          `gorm:"size:36;not null;index" json:"booking_id"`
	PaymentReference string          `gorm:"unique;not null;size:100;index" json:"payment_reference"`
	Amount           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status           PaymentStatus   `gorm:"size:20;not null;default:'UNPAID'" json:"status"`
	IsInstallment    bool            `gorm:"not null;default:false" json:"is_installment"`
	PaymentURL       *string         `gorm:"size:500" json:"payment_url,omitempty"`
	GatewayResponse  *string         `gorm:"size:255" json:"gateway_response,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
