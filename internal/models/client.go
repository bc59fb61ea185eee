package models

import "time"

const (
	SexMasculino = "Masculino"
	SexFeminino  = "Feminino"
)

type Client struct {
	ID    uint `gorm:"primaryKey" json:"id"`
	GymID uint `gorm:"index" json:"gym_id"`

	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// Date of birth in "2006-01-02" format.
	Birthday string `gorm:"size:10;not null" json:"birthday"`
	Sex      string `gorm:"size:10;not null" json:"sex"`

	Neighborhood string `gorm:"size:255;not null" json:"neighborhood"`
	Street       string `gorm:"size:255;not null" json:"street"`
	Number       int    `json:"number"`
	Complement   string `gorm:"size:255" json:"complement"`
	Zipcode      string `gorm:"size:20;not null" json:"zipcode"`
	City         string `gorm:"size:255;not null" json:"city"`

	Phone  string  `gorm:"size:20" json:"phone"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Blood  string  `gorm:"size:3" json:"blood"`

	EmergencyContacts []EmergencyContact `gorm:"foreignKey:ClientID" json:"emergency_contacts,omitempty"`
	MedicalConditions []MedicalCondition `gorm:"foreignKey:ClientID" json:"medical_conditions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
