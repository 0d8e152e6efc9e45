// models/auth.go

package models

type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"fullName" validate:"required"`
	AccountType string `json:"accountType" validate:"required"` // "player", "club", "agent", "academy", "trainer"
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone" bson:"phone" validate:"required"`
	Country     string `json:"country,omitempty" bson:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty" bson:"countryCode,omitempty"`
	Nationality string `json:"nationality,omitempty" bson:"nationality,omitempty"`
	City        string `json:"city,omitempty" bson:"city,omitempty"`
	// Only for player signups
	PlayerData *PlayerSignupData `json:"playerData,omitempty"`
	// Only for club/academy signups
	OrganizationData *OrganizationSignupData `json:"organizationData,omitempty"`
	// Only for agent/trainer signups
	ProfessionalData *ProfessionalSignupData `json:"professionalData,omitempty"`
}

type PlayerSignupData struct {
	Position      string  `json:"position"`
	PreferredFoot string  `json:"preferredFoot,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	CurrentClub   string  `json:"currentClub,omitempty"`
}

type OrganizationSignupData struct {
	OrganizationName string   `json:"organizationName"`
	League           string   `json:"league,omitempty"`
	FoundedYear      int      `json:"foundedYear,omitempty"`
	Phones           []string `json:"phones,omitempty"`
	Emails           []string `json:"emails,omitempty"`
	Website          string   `json:"website,omitempty"`
	Address          string   `json:"address,omitempty"`
}

type ProfessionalSignupData struct {
	LicenseNumber   string   `json:"licenseNumber,omitempty"`
	YearsExperience int      `json:"yearsExperience,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	Bio             string   `json:"bio,omitempty"`
}

// CheckUserExistsRequest is the body of POST /api/auth/check-user-exists
type CheckUserExistsRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// CheckUserExistsResponse reports whether a phone is already registered
type CheckUserExistsResponse struct {
	PhoneExists bool `json:"phoneExists"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password
type ResetPasswordRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}
