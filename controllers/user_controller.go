// controllers/user_controller.go
package controllers

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/repositories"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// UserController handles profile reads and updates for all account types
type UserController struct {
	DB       *mongo.Client
	UserRepo *repositories.UserRepository
}

func NewUserController(db *mongo.Client) *UserController {
	return &UserController{
		DB:       db,
		UserRepo: repositories.NewUserRepository(db),
	}
}

// GetProfile returns the authenticated user together with its role profile
func (uc *UserController) GetProfile(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, uc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data := map[string]interface{}{
		"user":           user,
		"dashboardRoute": utils.GetDashboardRoute(user.AccountType),
	}

	if profile := uc.loadRoleProfile(ctx, user); profile != nil {
		data["profile"] = profile
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved",
		Data:    data,
	})
}

// loadRoleProfile fetches the role document named by the account registry
func (uc *UserController) loadRoleProfile(ctx context.Context, user *models.User) interface{} {
	collName, err := utils.GetProfileCollection(user.AccountType)
	if err != nil {
		return nil
	}
	coll := config.GetCollection(uc.DB, collName)

	switch user.AccountType {
	case utils.AccountTypePlayer:
		var p models.Player
		if err := coll.FindOne(ctx, bson.M{"userId": user.ID}).Decode(&p); err == nil {
			return p
		}
	case utils.AccountTypeClub, utils.AccountTypeAcademy:
		var o models.Organization
		if err := coll.FindOne(ctx, bson.M{"userId": user.ID}).Decode(&o); err == nil {
			return o
		}
	case utils.AccountTypeAgent, utils.AccountTypeTrainer:
		var p models.Professional
		if err := coll.FindOne(ctx, bson.M{"userId": user.ID}).Decode(&p); err == nil {
			return p
		}
	}
	return nil
}

// UpdateProfile updates the common user fields
func (uc *UserController) UpdateProfile(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		update["fullName"] = utils.SanitizeInput(req.FullName)
	}
	if req.Email != "" {
		email, err := utils.SanitizeEmail(req.Email)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid email format",
			})
		}
		// Changing the email requires re-verification
		update["email"] = email
		update["emailVerified"] = false
	}
	if req.Phone != "" {
		phone, err := utils.SanitizePhone(req.Phone)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number",
			})
		}
		update["phone"] = phone
		update["phoneVerified"] = false
	}
	if req.Country != "" {
		update["country"] = utils.SanitizeInput(req.Country)
	}
	if req.City != "" {
		update["city"] = utils.SanitizeInput(req.City)
	}
	if req.Nationality != "" {
		update["nationality"] = utils.SanitizeInput(req.Nationality)
	}
	if req.DateOfBirth != "" {
		update["dateOfBirth"] = req.DateOfBirth
	}
	if req.Gender != "" {
		update["gender"] = req.Gender
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = config.GetCollection(uc.DB, "users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated successfully",
	})
}

// UpdatePlayerProfile updates the player-specific fields
func (uc *UserController) UpdatePlayerProfile(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, uc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: err.Error(),
		})
	}
	if user.AccountType != utils.AccountTypePlayer {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only player accounts have a player profile",
		})
	}

	var req models.UpdatePlayerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Position != "" {
		update["position"] = utils.SanitizeInput(req.Position)
	}
	if req.PreferredFoot != "" {
		update["preferredFoot"] = req.PreferredFoot
	}
	if req.Height > 0 {
		update["height"] = req.Height
	}
	if req.Weight > 0 {
		update["weight"] = req.Weight
	}
	if req.CurrentClub != "" {
		update["currentClub"] = utils.SanitizeInput(req.CurrentClub)
	}
	if req.PreviousClubs != nil {
		update["previousClubs"] = utils.SanitizeStringArray(req.PreviousClubs)
	}
	if req.Achievements != nil {
		update["achievements"] = utils.SanitizeStringArray(req.Achievements)
	}
	if req.Stats != nil {
		update["stats"] = req.Stats
	}
	if req.OpenToOffers != nil {
		update["openToOffers"] = *req.OpenToOffers
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = config.GetCollection(uc.DB, "players").UpdateOne(ctx,
		bson.M{"userId": user.ID},
		bson.M{"$set": update},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update player profile",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Player profile updated successfully",
	})
}

// GetPublicProfile returns another user's profile and counts the view
func (uc *UserController) GetPublicProfile(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	target, err := uc.UserRepo.FindByID(targetID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}
	target.Password = ""

	data := map[string]interface{}{"user": target}
	if profile := uc.loadRoleProfile(ctx, target); profile != nil {
		data["profile"] = profile
	}

	// Viewing someone else's player profile bumps their view counter
	if viewerID, err := utils.GetUserIDFromToken(c); err == nil && viewerID != targetID {
		if target.AccountType == utils.AccountTypePlayer {
			config.GetCollection(uc.DB, "players").UpdateOne(ctx,
				bson.M{"userId": targetID},
				bson.M{"$inc": bson.M{"views": 1}},
			)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved",
		Data:    data,
	})
}

// UploadProfilePicture accepts a multipart image, resizes it and stores it
func (uc *UserController) UploadProfilePicture(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Image file is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}

	resized, err := utils.ResizeProfileImage(data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	// Resized output is always jpeg
	url, err := utils.SaveUpload(resized, "profile.jpg", "image", "profiles")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if err := uc.UserRepo.UpdateProfilePicture(userID, url); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile picture",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile picture updated",
		Data:    map[string]string{"profilePic": url},
	})
}

// UpdateFCMToken stores the device token for push notifications
func (uc *UserController) UpdateFCMToken(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req struct {
		FCMToken string `json:"fcmToken"`
	}
	if err := c.Bind(&req); err != nil || req.FCMToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing FCM token",
		})
	}

	if err := uc.UserRepo.UpdateFCMToken(userID, req.FCMToken); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update FCM token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "FCM token updated",
	})
}

// GetProfileQR renders a QR code pointing at the user's public profile
func (uc *UserController) GetProfileQR(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "https://scoutlink.app"
	}
	profileURL := baseURL + "/profile/" + userID.Hex()

	code, err := qr.Encode(profileURL, qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	code, err = barcode.Scale(code, 256, 256)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale QR code",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code",
		})
	}

	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// SearchPlayers lists players matching optional position/openToOffers filters
func (uc *UserController) SearchPlayers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if position := c.QueryParam("position"); position != "" {
		filter["position"] = utils.SanitizeInput(position)
	}
	if c.QueryParam("openToOffers") == "true" {
		filter["openToOffers"] = true
	}

	cursor, err := config.GetCollection(uc.DB, "players").Find(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to search players",
		})
	}
	defer cursor.Close(ctx)

	players := []models.Player{}
	if err := cursor.All(ctx, &players); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode players",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Players retrieved",
		Data:    players,
	})
}
