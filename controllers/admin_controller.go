// controllers/admin_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// AdminController covers the moderation surface. All routes are gated to
// admin accounts by the role middleware.
type AdminController struct {
	DB *mongo.Client
}

func NewAdminController(db *mongo.Client) *AdminController {
	return &AdminController{DB: db}
}

// GetUsers lists users, optionally filtered by account type or status
func (ac *AdminController) GetUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	filter := bson.M{}
	if accountType := c.QueryParam("accountType"); accountType != "" {
		filter["accountType"] = accountType
	}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"password": 0}).
		SetLimit(100)

	cursor, err := config.GetCollection(ac.DB, "users").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load users",
		})
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode users",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved",
		Data:    users,
	})
}

// UpdateUserStatus suspends or reactivates an account
func (ac *AdminController) UpdateUserStatus(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Status != "active" && req.Status != "suspended" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be 'active' or 'suspended'",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(ac.DB, "users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"status":    req.Status,
			"isActive":  req.Status == "active",
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update user status",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	if req.Status == "suspended" {
		utils.NotifyUser(ac.DB, userID, "Account suspended",
			"Your account has been suspended by an administrator", "system", nil)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User status updated",
	})
}

// CreatePlan adds a subscription plan
func (ac *AdminController) CreatePlan(c echo.Context) error {
	var plan models.SubscriptionPlan
	if err := c.Bind(&plan); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if plan.Name == "" || plan.PriceEGP <= 0 || plan.DurationDays <= 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Name, positive price and duration are required",
		})
	}
	if plan.AccountType != "" && !utils.IsValidAccountType(plan.AccountType) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid account type",
		})
	}

	plan.ID = primitive.NewObjectID()
	plan.IsActive = true
	plan.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(ac.DB, "subscriptionPlans").InsertOne(ctx, plan); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create plan",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Plan created",
		Data:    plan,
	})
}

// DeactivatePlan hides a plan from new subscribers. Existing subscriptions
// are unaffected.
func (ac *AdminController) DeactivatePlan(c echo.Context) error {
	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(ac.DB, "subscriptionPlans").UpdateOne(ctx,
		bson.M{"_id": planID},
		bson.M{"$set": bson.M{"isActive": false}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to deactivate plan",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Plan not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plan deactivated",
	})
}
