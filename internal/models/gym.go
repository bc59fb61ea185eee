package models

import "time"

type Gym struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:255;not null" json:"name"`
	Neighborhood string `gorm:"size:255;not null" json:"neighborhood"`
	Street       string `gorm:"size:255;not null" json:"street"`
	Number       int    `json:"number"`
	Complement   string `gorm:"size:255" json:"complement"`
	Zipcode      string `gorm:"size:20;not null" json:"zipcode"`
	City         string `gorm:"size:255;not null" json:"city"`

	Phone        string `gorm:"size:20" json:"phone"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
