// controllers/auth_controller.go
package controllers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/jwk"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/services"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// AuthController handles signup, verification and session management
type AuthController struct {
	DB  *mongo.Client
	OTP *services.OTPService
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client, otp *services.OTPService) *AuthController {
	return &AuthController{DB: db, OTP: otp}
}

// Signup validates the registration payload, stashes it as a pending signup
// and sends a verification code to the phone. The user document is only
// created after the code is verified.
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	req.FullName = utils.SanitizeInput(req.FullName)

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}
	req.Email = email

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}
	req.Phone = phone

	if !utils.IsSignupAccountType(req.AccountType) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid account type",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Refuse duplicates before burning an OTP send
	usersColl := config.GetCollection(ac.DB, "users")
	count, err := usersColl.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"email": req.Email},
		{"phone": req.Phone},
	}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "An account with this email or phone already exists",
		})
	}

	if err := ac.OTP.Store().SavePendingSignup(ctx, req.Phone, &req); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store registration",
		})
	}

	result, err := ac.OTP.SendSmartOTP(ctx, &models.SmartOTPRequest{
		Phone:       req.Phone,
		Name:        req.FullName,
		Country:     req.Country,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		ac.OTP.Store().DeletePendingSignup(ctx, req.Phone)
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrSendInProgress) || errors.Is(err, services.ErrResendTooSoon) {
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to send verification code: " + err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Verification code sent",
		Data: map[string]interface{}{
			"phone":  req.Phone,
			"method": result.Method,
		},
	})
}

// VerifyOTP checks the signup verification code and, on success, creates
// the user together with its role profile and issues tokens.
func (ac *AuthController) VerifyOTP(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	phone, err := utils.SanitizePhone(req.PhoneNumber)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := ac.OTP.VerifyOTP(ctx, phone, req.OTPCode); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: verifyErrorMessage(err),
		})
	}

	signup, err := ac.OTP.Store().GetPendingSignup(ctx, phone)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No pending registration found, please sign up again",
		})
	}

	user, err := ac.createUserWithProfile(ctx, signup)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account: " + err.Error(),
		})
	}

	// Pending payload is consumed exactly once
	ac.OTP.Store().DeletePendingSignup(ctx, phone)

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.AccountType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created successfully",
		Data: map[string]interface{}{
			"token":          token,
			"refreshToken":   refreshToken,
			"user":           user,
			"dashboardRoute": utils.GetDashboardRoute(user.AccountType),
		},
	})
}

// ResendOTP issues a fresh code for a pending registration
func (ac *AuthController) ResendOTP(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	signup, err := ac.OTP.Store().GetPendingSignup(ctx, phone)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No pending registration found, please sign up again",
		})
	}

	result, err := ac.OTP.SendSmartOTP(ctx, &models.SmartOTPRequest{
		Phone:       phone,
		Name:        signup.FullName,
		Country:     signup.Country,
		CountryCode: signup.CountryCode,
	})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrSendInProgress) || errors.Is(err, services.ErrResendTooSoon) {
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Verification code resent",
		Data:    map[string]interface{}{"method": result.Method},
	})
}

// createUserWithProfile inserts the user document plus the role profile
// document named by the account type registry, and links them.
func (ac *AuthController) createUserWithProfile(ctx context.Context, signup *models.SignupRequest) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := models.User{
		ID:             primitive.NewObjectID(),
		Email:          signup.Email,
		Password:       string(hashedPassword),
		FullName:       signup.FullName,
		AccountType:    signup.AccountType,
		IsActive:       true,
		Status:         "active",
		Phone:          signup.Phone,
		Country:        signup.Country,
		CountryCode:    signup.CountryCode,
		Nationality:    signup.Nationality,
		City:           signup.City,
		DateOfBirth:    signup.DateOfBirth,
		Gender:         signup.Gender,
		PhoneVerified:  true,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	collName, err := utils.GetProfileCollection(signup.AccountType)
	if err != nil {
		return nil, err
	}

	profileID := primitive.NewObjectID()
	var profileDoc interface{}
	switch signup.AccountType {
	case utils.AccountTypePlayer:
		player := models.Player{
			ID:        profileID,
			UserID:    user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if signup.PlayerData != nil {
			player.Position = signup.PlayerData.Position
			player.PreferredFoot = signup.PlayerData.PreferredFoot
			player.Height = signup.PlayerData.Height
			player.Weight = signup.PlayerData.Weight
			player.CurrentClub = signup.PlayerData.CurrentClub
		}
		profileDoc = player
		user.PlayerID = &profileID
	case utils.AccountTypeClub, utils.AccountTypeAcademy:
		org := models.Organization{
			ID:        profileID,
			UserID:    user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if signup.OrganizationData != nil {
			org.OrganizationName = utils.SanitizeInput(signup.OrganizationData.OrganizationName)
			org.League = signup.OrganizationData.League
			org.FoundedYear = signup.OrganizationData.FoundedYear
			org.Phones = utils.SanitizeStringArray(signup.OrganizationData.Phones)
			org.Emails = signup.OrganizationData.Emails
			org.Website = signup.OrganizationData.Website
			org.Address = utils.SanitizeInput(signup.OrganizationData.Address)
		}
		profileDoc = org
		if signup.AccountType == utils.AccountTypeClub {
			user.ClubID = &profileID
		} else {
			user.AcademyID = &profileID
		}
	case utils.AccountTypeAgent, utils.AccountTypeTrainer:
		prof := models.Professional{
			ID:        profileID,
			UserID:    user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if signup.ProfessionalData != nil {
			prof.LicenseNumber = signup.ProfessionalData.LicenseNumber
			prof.YearsExperience = signup.ProfessionalData.YearsExperience
			prof.Specializations = utils.SanitizeStringArray(signup.ProfessionalData.Specializations)
			prof.Bio = utils.SanitizeInput(signup.ProfessionalData.Bio)
		}
		profileDoc = prof
		if signup.AccountType == utils.AccountTypeAgent {
			user.AgentID = &profileID
		} else {
			user.TrainerID = &profileID
		}
	default:
		return nil, fmt.Errorf("unsupported account type: %s", signup.AccountType)
	}

	if _, err := config.GetCollection(ac.DB, "users").InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	if _, err := config.GetCollection(ac.DB, collName).InsertOne(ctx, profileDoc); err != nil {
		// Roll the user back so a retry does not hit the duplicate check
		config.GetCollection(ac.DB, "users").DeleteOne(ctx, bson.M{"_id": user.ID})
		return nil, fmt.Errorf("failed to insert %s profile: %w", signup.AccountType, err)
	}

	return &user, nil
}

// Login authenticates by email or phone plus password
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if req.Email != "" {
		email, err := utils.SanitizeEmail(req.Email)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid email format",
			})
		}
		filter["email"] = email
	} else if req.Phone != "" {
		phone, err := utils.SanitizePhone(req.Phone)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number",
			})
		}
		filter["phone"] = phone
	} else {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email or phone is required",
		})
	}

	var user models.User
	err := config.GetCollection(ac.DB, "users").FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if user.Status == "suspended" {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is suspended",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.AccountType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	data := map[string]interface{}{
		"token":          token,
		"refreshToken":   refreshToken,
		"dashboardRoute": utils.GetDashboardRoute(user.AccountType),
	}

	if req.RememberMe {
		rememberToken, err := utils.StoreRememberedCredentials(ctx, config.GetRedisClient(), &utils.RememberedCredentials{
			Email:       user.Email,
			Phone:       user.Phone,
			AccountType: user.AccountType,
			UserID:      user.ID.Hex(),
			DeviceInfo:  c.Request().UserAgent(),
		})
		if err == nil {
			data["rememberMeToken"] = rememberToken
		}
	}

	user.Password = ""
	data["user"] = user

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    data,
	})
}

// Logout blacklists the presented token
func (ac *AuthController) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		token := authHeader[7:]
		middleware.BlacklistToken(token, time.Now().Add(72*time.Hour))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// CheckUserExists reports whether a phone number is already registered
func (ac *AuthController) CheckUserExists(c echo.Context) error {
	var req models.CheckUserExistsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := config.GetCollection(ac.DB, "users").CountDocuments(ctx, bson.M{"phone": phone})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check user",
		})
	}

	return c.JSON(http.StatusOK, models.CheckUserExistsResponse{PhoneExists: count > 0})
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (ac *AuthController) RefreshToken(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing refresh token",
		})
	}

	claims := &middleware.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired refresh token",
		})
	}

	newToken, newRefreshToken, err := middleware.GenerateJWT(claims.UserID, claims.Email, claims.AccountType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token refreshed",
		Data: map[string]string{
			"token":        newToken,
			"refreshToken": newRefreshToken,
		},
	})
}

// ValidateToken checks the Authorization header token and returns the user
// it belongs to, so clients can restore a session on startup.
func (ac *AuthController) ValidateToken(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Missing or malformed token",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	if middleware.IsTokenBlacklisted(tokenString) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Token has been revoked",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	claims := &middleware.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	objID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token subject",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = config.GetCollection(ac.DB, "users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User no longer exists",
			Data:    map[string]interface{}{"valid": false},
		})
	}
	user.Password = ""

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data: map[string]interface{}{
			"valid":     true,
			"user":      user,
			"expiresAt": claims.ExpiresAt,
		},
	})
}

// GetRememberedCredentials returns the stored credentials for a remember-me token
func (ac *AuthController) GetRememberedCredentials(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	creds, err := utils.GetRememberedCredentials(ctx, config.GetRedisClient(), req.Token)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Credentials retrieved",
		Data:    creds,
	})
}

// RemoveRememberedCredentials deletes a remember-me token
func (ac *AuthController) RemoveRememberedCredentials(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := utils.RemoveRememberedCredentials(ctx, config.GetRedisClient(), req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to remove credentials",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Credentials removed",
	})
}

// GoogleLogin authenticates with a Firebase-issued Google ID token
func (ac *AuthController) GoogleLogin(c echo.Context) error {
	var req models.GoogleAuthRequest
	if err := c.Bind(&req); err != nil || req.TokenID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing or invalid token",
		})
	}

	if config.FirebaseApp == nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Google sign-in is not configured",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	authClient, err := config.FirebaseApp.Auth(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to initialize auth client",
		})
	}

	decoded, err := authClient.VerifyIDToken(ctx, req.TokenID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired Google token",
		})
	}

	email, _ := decoded.Claims["email"].(string)
	if email == "" {
		email = req.Email
	}

	collection := config.GetCollection(ac.DB, "users")
	var user models.User
	err = collection.FindOne(ctx, bson.M{"$or": []bson.M{
		{"firebaseUID": decoded.UID},
		{"email": email},
	}}).Decode(&user)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to look up user",
			})
		}
		// First Google sign-in creates a player account by default
		now := time.Now()
		user = models.User{
			ID:             primitive.NewObjectID(),
			Email:          email,
			FullName:       req.Name,
			AccountType:    utils.AccountTypePlayer,
			IsActive:       true,
			Status:         "active",
			EmailVerified:  true,
			ProfilePic:     req.PhotoURL,
			GoogleID:       req.GoogleID,
			FirebaseUID:    decoded.UID,
			LastActivityAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := collection.InsertOne(ctx, user); err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create account",
			})
		}
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.AccountType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":          token,
			"refreshToken":   refreshToken,
			"user":           user,
			"dashboardRoute": utils.GetDashboardRoute(user.AccountType),
		},
	})
}

// AppleSignin authenticates with an Apple identity token verified against
// Apple's published JWKS.
func (ac *AuthController) AppleSignin(c echo.Context) error {
	var req struct {
		IdentityToken string `json:"identityToken"`
	}
	if err := c.Bind(&req); err != nil || req.IdentityToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing or invalid identityToken",
		})
	}

	// Parse the JWT header to get the key id
	parts := strings.Split(req.IdentityToken, ".")
	if len(parts) < 2 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid identityToken format",
		})
	}
	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid JWT header",
		})
	}
	var header struct {
		Kid string `json:"kid"`
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid JWT header JSON",
		})
	}

	jwkSet, err := jwk.Fetch(context.Background(), "https://appleid.apple.com/auth/keys")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch Apple public keys",
		})
	}

	key, found := jwkSet.LookupKeyID(header.Kid)
	if !found {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Apple public key not found",
		})
	}

	var pubkey interface{}
	if err := key.Raw(&pubkey); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to parse Apple public key",
		})
	}

	parsedToken, err := jwt.Parse(req.IdentityToken, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != header.Alg {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return pubkey, nil
	})
	if err != nil || !parsedToken.Valid {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired Apple identity token",
		})
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to parse token claims",
		})
	}

	appleUserID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if appleUserID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Apple user ID not found in token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")
	var user models.User
	err = collection.FindOne(ctx, bson.M{"appleUserID": appleUserID}).Decode(&user)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to look up user",
			})
		}
		now := time.Now()
		user = models.User{
			ID:             primitive.NewObjectID(),
			AppleUserID:    appleUserID,
			Email:          email,
			AccountType:    utils.AccountTypePlayer,
			IsActive:       true,
			Status:         "active",
			EmailVerified:  email != "",
			LastActivityAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := collection.InsertOne(ctx, user); err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create account",
			})
		}
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.AccountType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":          token,
			"refreshToken":   refreshToken,
			"user":           user,
			"dashboardRoute": utils.GetDashboardRoute(user.AccountType),
		},
	})
}

// verifyErrorMessage maps verification outcomes to user-facing strings
func verifyErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrOTPNotFound):
		return "No verification code found, please request a new one"
	case errors.Is(err, services.ErrOTPExpired):
		return "Verification code has expired, please request a new one"
	case errors.Is(err, services.ErrTooManyAttempts):
		return "Too many incorrect attempts, please request a new code"
	case errors.Is(err, services.ErrOTPMismatch):
		return err.Error()
	}
	return "Verification failed"
}
