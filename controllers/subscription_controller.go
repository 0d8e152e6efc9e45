// controllers/subscription_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/services"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// SubscriptionController serves plans and manages user subscriptions.
// Plans are priced in EGP; display prices are converted through the
// currency cache.
type SubscriptionController struct {
	DB       *mongo.Client
	Currency *services.CurrencyService
}

func NewSubscriptionController(db *mongo.Client, currency *services.CurrencyService) *SubscriptionController {
	return &SubscriptionController{DB: db, Currency: currency}
}

// GetPlans lists active plans, optionally filtered by account type and
// converted into the requested display currency.
func (sc *SubscriptionController) GetPlans(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"isActive": true}
	if accountType := c.QueryParam("accountType"); accountType != "" {
		if !utils.IsValidAccountType(accountType) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid account type",
			})
		}
		filter["accountType"] = accountType
	}

	cursor, err := config.GetCollection(sc.DB, "subscriptionPlans").Find(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load plans",
		})
	}
	defer cursor.Close(ctx)

	var plans []models.SubscriptionPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode plans",
		})
	}

	currency := c.QueryParam("currency")
	if currency == "" || currency == services.BaseCurrency {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Plans retrieved",
			Data:    plans,
		})
	}

	priced := make([]models.PlanPrice, 0, len(plans))
	for _, plan := range plans {
		converted, err := sc.Currency.ConvertFromEGP(plan.PriceEGP, currency)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		priced = append(priced, models.PlanPrice{
			Plan:            plan,
			Currency:        currency,
			ConvertedAmount: converted.ConvertedAmount,
			Rate:            converted.Rate,
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plans retrieved",
		Data:    priced,
	})
}

// Subscribe activates a plan on the caller's account
func (sc *SubscriptionController) Subscribe(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, sc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	var req struct {
		PlanID string `json:"planId"`
	}
	if err := c.Bind(&req); err != nil || req.PlanID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Plan ID is required",
		})
	}

	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var plan models.SubscriptionPlan
	err = config.GetCollection(sc.DB, "subscriptionPlans").FindOne(ctx, bson.M{
		"_id":      planID,
		"isActive": true,
	}).Decode(&plan)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Plan not found",
		})
	}

	if plan.AccountType != "" && plan.AccountType != user.AccountType {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "This plan is not available for your account type",
		})
	}

	if user.Subscription != nil && user.Subscription.Status == "active" &&
		user.Subscription.EndDate.After(time.Now()) {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "You already have an active subscription",
		})
	}

	now := time.Now()
	subscription := models.Subscription{
		PlanID:    plan.ID,
		PlanName:  plan.Name,
		Status:    "active",
		StartDate: now,
		EndDate:   now.AddDate(0, 0, plan.DurationDays),
	}

	_, err = config.GetCollection(sc.DB, "users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"subscription": subscription, "updatedAt": now}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to activate subscription",
		})
	}

	utils.NotifyUser(sc.DB, user.ID, "Subscription activated",
		"Your "+plan.Name+" subscription is now active", "subscription", nil)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscription activated",
		Data:    subscription,
	})
}

// CancelSubscription marks the caller's subscription as cancelled. Access
// continues until the paid period ends.
func (sc *SubscriptionController) CancelSubscription(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, sc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	if user.Subscription == nil || user.Subscription.Status != "active" {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No active subscription to cancel",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = config.GetCollection(sc.DB, "users").UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"subscription.status": "cancelled", "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to cancel subscription",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscription cancelled, access continues until " + user.Subscription.EndDate.Format("2006-01-02"),
	})
}

// GetSubscriptionStatus returns the caller's current subscription
func (sc *SubscriptionController) GetSubscriptionStatus(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, sc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	if user.Subscription == nil {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "No subscription",
			Data:    map[string]bool{"subscribed": false},
		})
	}

	// Lazily expire subscriptions past their end date
	if user.Subscription.Status == "active" && user.Subscription.EndDate.Before(time.Now()) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		config.GetCollection(sc.DB, "users").UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{"subscription.status": "expired"}},
		)
		user.Subscription.Status = "expired"
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscription status retrieved",
		Data: map[string]interface{}{
			"subscribed":   user.Subscription.Status == "active",
			"subscription": user.Subscription,
		},
	})
}
