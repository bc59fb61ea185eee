package models

import "time"

type EmergencyContact struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ClientID uint `gorm:"index" json:"client_id"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`

	Neighborhood string `gorm:"size:255;not null" json:"neighborhood"`
	Street       string `gorm:"size:255;not null" json:"street"`
	Number       int    `json:"number"`
	Complement   string `gorm:"size:255" json:"complement"`
	Zipcode      string `gorm:"size:20;not null" json:"zipcode"`
	City         string `gorm:"size:255;not null" json:"city"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
