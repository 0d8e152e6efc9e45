package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is one highlight clip in the feed
type Video struct {
	ID           primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       primitive.ObjectID   `json:"userId" bson:"userId"`
	Title        string               `json:"title" bson:"title"`
	Description  string               `json:"description,omitempty" bson:"description,omitempty"`
	VideoURL     string               `json:"videoUrl" bson:"videoUrl"`
	ThumbnailURL string               `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	Position     string               `json:"position,omitempty" bson:"position,omitempty"`
	Likes        []primitive.ObjectID `json:"likes,omitempty" bson:"likes,omitempty"`
	Views        int                  `json:"views" bson:"views"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// VideoFeedItem is a feed entry joined with its uploader's public info
type VideoFeedItem struct {
	Video        Video  `json:"video"`
	UploaderName string `json:"uploaderName"`
	UploaderPic  string `json:"uploaderPic,omitempty"`
	AccountType  string `json:"accountType"`
	LikeCount    int    `json:"likeCount"`
}
