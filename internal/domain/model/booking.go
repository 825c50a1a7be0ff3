package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the booking's own lifecycle, independent from its
// payment axis. Only APPROVED bookings are payable.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusApproved  BookingStatus = "APPROVED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// BookingPaymentStatus is derived from the booking's payment records
// plus the installment policy. Written only by the reconciler.
type BookingPaymentStatus string

const (
	BookingPaymentUnpaid     BookingPaymentStatus = "UNPAID"
	BookingPaymentPartial    BookingPaymentStatus = "PARTIAL"
	BookingPaymentSuccess    BookingPaymentStatus = "SUCCESS"
	BookingPaymentProcessing BookingPaymentStatus = "PROCESSING"
	BookingPaymentPending    BookingPaymentStatus = "PENDING"
	BookingPaymentRefunded   BookingPaymentStatus = "REFUNDED"
)

// Scan implements sql.Scanner interface
func (s *BookingPaymentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = BookingPaymentStatus(v)
	case []byte:
		*s = BookingPaymentStatus(v)
	default:
		*s = BookingPaymentUnpaid
	}
	return nil
}

// Value implements driver.Valuer interface
func (s BookingPaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Booking is a client's order for a tailoring service. Payments
// reference it; it is never deleted while they do.
type Booking struct {
	ID            string               `gorm:"primaryKey;size:36" json:"id"`
	UserID        string               `gorm:"size:36;not null;index" json:"user_id"`
	Status        BookingStatus        `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	PaymentStatus BookingPaymentStatus `gorm:"size:20;not null;default:'UNPAID'" json:"payment_status"`
	TotalAmount   decimal.Decimal      `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	DeliveryDate  *time.Time           `json:"delivery_date,omitempty"`
	Notes         *string              `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Payments []Payment `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}
