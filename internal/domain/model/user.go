package model

import "time"

// User is a projection of the identity collaborator's account record.
// Account management itself lives in the user service; this service
// only reads the fields the gateway and notifications need.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Phone     *string   `gorm:"size:30" json:"phone,omitempty"`
	Role      string    `gorm:"size:20;not null;default:'CLIENT'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
