package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionPlan is a purchasable plan, priced in the base currency (EGP)
type SubscriptionPlan struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	AccountType  string             `json:"accountType" bson:"accountType"` // which role this plan targets
	PriceEGP     float64            `json:"priceEGP" bson:"priceEGP"`
	DurationDays int                `json:"durationDays" bson:"durationDays"`
	Features     []string           `json:"features,omitempty" bson:"features,omitempty"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// Subscription is the active plan attached to a user
type Subscription struct {
	PlanID    primitive.ObjectID `json:"planId" bson:"planId"`
	PlanName  string             `json:"planName" bson:"planName"`
	Status    string             `json:"status" bson:"status"` // "active", "expired", "cancelled"
	StartDate time.Time          `json:"startDate" bson:"startDate"`
	EndDate   time.Time          `json:"endDate" bson:"endDate"`
}

// PlanPrice is a plan price converted into a display currency
type PlanPrice struct {
	Plan            SubscriptionPlan `json:"plan"`
	Currency        string           `json:"currency"`
	ConvertedAmount float64          `json:"convertedAmount"`
	Rate            float64          `json:"rate"`
}
