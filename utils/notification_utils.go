// utils/notification_utils.go
package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/models"
)

// SaveNotification saves a notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}

// SendFCMNotificationToUser sends a Firebase Cloud Messaging notification to a user
func SendFCMNotificationToUser(db *mongo.Client, userID primitive.ObjectID, title, message string, data map[string]interface{}) error {
	collection := config.GetCollection(db, "users")
	var user models.User
	err := collection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.FCMToken == "" {
		log.Printf("User %s has no FCM token", userID.Hex())
		return fmt.Errorf("user has no FCM token")
	}

	if config.FirebaseApp == nil {
		log.Printf("Firebase app is not initialized")
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		log.Printf("Error getting messaging client: %v", err)
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	notificationData := map[string]string{
		"type":      "system",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for key, value := range data {
		if str, ok := value.(string); ok {
			notificationData[key] = str
		} else {
			notificationData[key] = ""
		}
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: notificationData,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "scoutlink_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound: "default",
					Badge: func() *int { v := 1; return &v }(),
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		log.Printf("Error sending FCM notification to user: %v", err)
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM notification sent to user %s: %s", userID.Hex(), response)
	return nil
}

// NotifyUser persists an in-app notification and pushes it over FCM.
// FCM failure is not fatal; the in-app notification alone is acceptable.
func NotifyUser(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data map[string]interface{}) error {
	if err := SaveNotification(db, userID, title, message, notifType, data); err != nil {
		return err
	}
	if err := SendFCMNotificationToUser(db, userID, title, message, data); err != nil {
		log.Printf("FCM push skipped for %s: %v", userID.Hex(), err)
	}
	return nil
}
