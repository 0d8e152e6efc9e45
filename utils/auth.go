// utils/auth.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
	"github.com/scoutlinkhq/scoutlink_backend/models"
)

// GetUserFromToken loads the full user document for the authenticated request.
func GetUserFromToken(c echo.Context, db *mongo.Client) (*models.User, error) {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return nil, err
	}

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.New("invalid user ID format")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = config.GetCollection(db, "users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("user not found")
		}
		return nil, errors.New("error retrieving user")
	}

	// Don't return password in response
	user.Password = ""

	return &user, nil
}

// GetUserIDFromToken extracts the user ID from the JWT token as an ObjectID.
func GetUserIDFromToken(c echo.Context) (primitive.ObjectID, error) {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, echo.ErrUnauthorized
	}
	return primitive.ObjectIDFromHex(userID)
}
