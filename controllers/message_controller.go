// controllers/message_controller.go
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
	"github.com/scoutlinkhq/scoutlink_backend/websocket"
)

// MessageController handles direct messaging between users. Messages are
// persisted to Mongo and pushed live over the websocket hub when the
// recipient is online.
type MessageController struct {
	DB  *mongo.Client
	Hub *websocket.Hub
}

func NewMessageController(db *mongo.Client, hub *websocket.Hub) *MessageController {
	return &MessageController{DB: db, Hub: hub}
}

// SendMessage persists a message, updates the conversation and pushes it
// to the recipient.
func (mc *MessageController) SendMessage(c echo.Context) error {
	senderID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	content := utils.SanitizeInput(req.Content)
	if content == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Message content is required",
		})
	}

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid recipient ID",
		})
	}
	if recipientID == senderID {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Cannot message yourself",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Recipient must exist before we open a conversation
	count, err := config.GetCollection(mc.DB, "users").CountDocuments(ctx, bson.M{"_id": recipientID})
	if err != nil || count == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Recipient not found",
		})
	}

	conversation, err := mc.findOrCreateConversation(ctx, senderID, recipientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to open conversation",
		})
	}

	now := time.Now()
	message := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: conversation.ID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
		CreatedAt:      now,
	}

	if _, err := config.GetCollection(mc.DB, "messages").InsertOne(ctx, message); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to send message",
		})
	}

	config.GetCollection(mc.DB, "conversations").UpdateOne(ctx,
		bson.M{"_id": conversation.ID},
		bson.M{"$set": bson.M{"lastMessage": content, "lastMessageAt": now}},
	)

	// Live push when online, notification otherwise
	if mc.Hub.IsOnline(recipientID) {
		mc.Hub.NotifyNewMessage(recipientID, message)
	} else {
		utils.NotifyUser(mc.DB, recipientID, "New message", content, "message", map[string]interface{}{
			"conversationId": conversation.ID.Hex(),
			"senderId":       senderID.Hex(),
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Message sent",
		Data:    message,
	})
}

func (mc *MessageController) findOrCreateConversation(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	coll := config.GetCollection(mc.DB, "conversations")

	var conversation models.Conversation
	err := coll.FindOne(ctx, bson.M{
		"participants": bson.M{"$all": []primitive.ObjectID{a, b}},
	}).Decode(&conversation)
	if err == nil {
		return &conversation, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	conversation = models.Conversation{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{a, b},
		CreatedAt:    time.Now(),
	}
	if _, err := coll.InsertOne(ctx, conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetConversations lists the caller's conversations, most recent first
func (mc *MessageController) GetConversations(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	cursor, err := config.GetCollection(mc.DB, "conversations").Find(ctx,
		bson.M{"participants": userID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load conversations",
		})
	}
	defer cursor.Close(ctx)

	conversations := []models.Conversation{}
	if err := cursor.All(ctx, &conversations); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode conversations",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Conversations retrieved",
		Data:    conversations,
	})
}

// GetMessages returns the messages of one conversation and marks the
// caller's unread messages as read.
func (mc *MessageController) GetMessages(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid conversation ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Only participants may read the thread
	var conversation models.Conversation
	err = config.GetCollection(mc.DB, "conversations").FindOne(ctx, bson.M{
		"_id":          conversationID,
		"participants": userID,
	}).Decode(&conversation)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Conversation not found",
		})
	}

	msgColl := config.GetCollection(mc.DB, "messages")

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := msgColl.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load messages",
		})
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode messages",
		})
	}

	msgColl.UpdateMany(ctx,
		bson.M{"conversationId": conversationID, "recipientId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Messages retrieved",
		Data:    messages,
	})
}
