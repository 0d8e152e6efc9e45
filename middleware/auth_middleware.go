// middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RequireAccountTypes gates a route group to the listed account types.
func RequireAccountTypes(accountTypes ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(accountTypes))
	for _, t := range accountTypes {
		allowed[t] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountType := ExtractAccountType(c)
			if !allowed[accountType] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// ActivityTracker middleware updates user's last activity timestamp
func ActivityTracker(db *mongo.Client, dbName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := ExtractUserID(c)
			if err != nil || userID == "" {
				return next(c)
			}

			objID, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				return next(c)
			}

			// Update lastActivityAt in the background, never block the request
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				collection := db.Database(dbName).Collection("users")
				_, _ = collection.UpdateOne(ctx,
					bson.M{"_id": objID},
					bson.M{"$set": bson.M{
						"lastActivityAt": time.Now(),
						"isActive":       true,
					}},
				)
			}()

			return next(c)
		}
	}
}

// MarkInactiveUsers flags users with no recent activity
func MarkInactiveUsers(db *mongo.Client, dbName string, inactivityThreshold time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-inactivityThreshold)
	collection := db.Database(dbName).Collection("users")
	_, _ = collection.UpdateMany(ctx,
		bson.M{"lastActivityAt": bson.M{"$lt": cutoff}, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false}},
	)
}
