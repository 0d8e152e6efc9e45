// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Email          string              `json:"email" bson:"email"`
	Password       string              `json:"password,omitempty" bson:"password"`
	FullName       string              `json:"fullName" bson:"fullName"`
	AccountType    string              `json:"accountType" bson:"accountType"` // "player", "club", "agent", "academy", "trainer", "admin"
	IsActive       bool                `json:"isActive" bson:"isActive"`
	Status         string              `json:"status,omitempty" bson:"status,omitempty"` // "pending", "active", "suspended"
	LastActivityAt time.Time           `json:"lastActivityAt" bson:"lastActivityAt"`
	DateOfBirth    string              `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Gender         string              `json:"gender,omitempty" bson:"gender,omitempty"`
	Phone          string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Country        string              `json:"country,omitempty" bson:"country,omitempty"`
	CountryCode    string              `json:"countryCode,omitempty" bson:"countryCode,omitempty"`
	Nationality    string              `json:"nationality,omitempty" bson:"nationality,omitempty"`
	City           string              `json:"city,omitempty" bson:"city,omitempty"`
	ProfilePic     string              `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	PhoneVerified  bool                `json:"phoneVerified,omitempty" bson:"phoneVerified,omitempty"`
	EmailVerified  bool                `json:"emailVerified,omitempty" bson:"emailVerified,omitempty"`
	PlayerID       *primitive.ObjectID `json:"playerId,omitempty" bson:"playerId,omitempty"`
	ClubID         *primitive.ObjectID `json:"clubId,omitempty" bson:"clubId,omitempty"`
	AgentID        *primitive.ObjectID `json:"agentId,omitempty" bson:"agentId,omitempty"`
	AcademyID      *primitive.ObjectID `json:"academyId,omitempty" bson:"academyId,omitempty"`
	TrainerID      *primitive.ObjectID `json:"trainerId,omitempty" bson:"trainerId,omitempty"`
	GoogleID       string              `json:"googleId,omitempty" bson:"googleId,omitempty"`
	AppleUserID    string              `json:"appleUserID,omitempty" bson:"appleUserID,omitempty"`
	FirebaseUID    string              `json:"firebaseUID,omitempty" bson:"firebaseUID,omitempty"`
	FCMToken       string              `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	Subscription   *Subscription       `json:"subscription,omitempty" bson:"subscription,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// LoginRequest models
type LoginRequest struct {
	Email      string `json:"email,omitempty" validate:"required_without=Phone,omitempty,email"`
	Phone      string `json:"phone,omitempty" validate:"required_without=Email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// GoogleAuthRequest is the model for Google authentication
type GoogleAuthRequest struct {
	TokenID  string `json:"tokenId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
	GoogleID string `json:"googleId"`
}

// UpdateProfileRequest covers the common editable user fields
type UpdateProfileRequest struct {
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`
}
