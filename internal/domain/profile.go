package domain

import "time"

type ProfileType string

const (
	ProfileTypeBrand ProfileType = "BRAND"
	ProfileTypeStore ProfileType = "STORE"
)

type Profile struct {
	ID           int32       `json:"id"`
	Type         ProfileType `json:"type"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PhoneNumber  string      `json:"phone_number"`
	PasswordHash string      `json:"-"`
	CreatedOn    time.Time   `json:"created_on"`
	UpdatedOn    time.Time   `json:"updated_on"`
}
