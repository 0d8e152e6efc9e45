package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation groups messages between two users
type Conversation struct {
	ID            primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Participants  []primitive.ObjectID `json:"participants" bson:"participants"`
	LastMessage   string               `json:"lastMessage,omitempty" bson:"lastMessage,omitempty"`
	LastMessageAt time.Time            `json:"lastMessageAt" bson:"lastMessageAt"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
}

// Message is one chat message inside a conversation
type Message struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversationId"`
	SenderID       primitive.ObjectID `json:"senderId" bson:"senderId"`
	RecipientID    primitive.ObjectID `json:"recipientId" bson:"recipientId"`
	Content        string             `json:"content" bson:"content"`
	IsRead         bool               `json:"isRead" bson:"isRead"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// SendMessageRequest is the REST body for sending a chat message
type SendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}
