// models/profiles.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Player profile document, stored in the "players" collection
type Player struct {
	ID            primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID   `json:"userId" bson:"userId"`
	Position      string               `json:"position" bson:"position"`
	PreferredFoot string               `json:"preferredFoot,omitempty" bson:"preferredFoot,omitempty"`
	Height        float64              `json:"height,omitempty" bson:"height,omitempty"`
	Weight        float64              `json:"weight,omitempty" bson:"weight,omitempty"`
	CurrentClub   string               `json:"currentClub,omitempty" bson:"currentClub,omitempty"`
	PreviousClubs []string             `json:"previousClubs,omitempty" bson:"previousClubs,omitempty"`
	Achievements  []string             `json:"achievements,omitempty" bson:"achievements,omitempty"`
	Stats         *PlayerStats         `json:"stats,omitempty" bson:"stats,omitempty"`
	Videos        []primitive.ObjectID `json:"videos,omitempty" bson:"videos,omitempty"`
	OpenToOffers  bool                 `json:"openToOffers" bson:"openToOffers"`
	Views         int                  `json:"views" bson:"views"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// PlayerStats are self-reported season numbers shown on the profile card
type PlayerStats struct {
	MatchesPlayed int `json:"matchesPlayed" bson:"matchesPlayed"`
	Goals         int `json:"goals" bson:"goals"`
	Assists       int `json:"assists" bson:"assists"`
	CleanSheets   int `json:"cleanSheets,omitempty" bson:"cleanSheets,omitempty"`
	YellowCards   int `json:"yellowCards,omitempty" bson:"yellowCards,omitempty"`
	RedCards      int `json:"redCards,omitempty" bson:"redCards,omitempty"`
}

// Organization covers clubs and academies, stored in "clubs" / "academies"
type Organization struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"userId" bson:"userId"`
	OrganizationName string             `json:"organizationName" bson:"organizationName"`
	League           string             `json:"league,omitempty" bson:"league,omitempty"`
	FoundedYear      int                `json:"foundedYear,omitempty" bson:"foundedYear,omitempty"`
	Phones           []string           `json:"phones,omitempty" bson:"phones,omitempty"`
	Emails           []string           `json:"emails,omitempty" bson:"emails,omitempty"`
	Website          string             `json:"website,omitempty" bson:"website,omitempty"`
	Address          string             `json:"address,omitempty" bson:"address,omitempty"`
	Verified         bool               `json:"verified" bson:"verified"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Professional covers agents and trainers, stored in "agents" / "trainers"
type Professional struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	LicenseNumber   string             `json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
	YearsExperience int                `json:"yearsExperience,omitempty" bson:"yearsExperience,omitempty"`
	Specializations []string           `json:"specializations,omitempty" bson:"specializations,omitempty"`
	Bio             string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Verified        bool               `json:"verified" bson:"verified"`
	Rating          float64            `json:"rating" bson:"rating"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UpdatePlayerRequest is the editable subset of a player profile
type UpdatePlayerRequest struct {
	Position      string       `json:"position,omitempty"`
	PreferredFoot string       `json:"preferredFoot,omitempty"`
	Height        float64      `json:"height,omitempty"`
	Weight        float64      `json:"weight,omitempty"`
	CurrentClub   string       `json:"currentClub,omitempty"`
	PreviousClubs []string     `json:"previousClubs,omitempty"`
	Achievements  []string     `json:"achievements,omitempty"`
	Stats         *PlayerStats `json:"stats,omitempty"`
	OpenToOffers  *bool        `json:"openToOffers,omitempty"`
}
