// controllers/video_controller.go
package controllers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strconv"
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

// VideoController handles highlight clip uploads and the discovery feed
type VideoController struct {
	DB *mongo.Client
}

func NewVideoController(db *mongo.Client) *VideoController {
	return &VideoController{DB: db}
}

const defaultFeedLimit = 20

// UploadVideo stores a highlight clip, generates its thumbnail and links it
// to the uploader's player profile.
func (vc *VideoController) UploadVideo(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, vc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: err.Error(),
		})
	}

	file, err := c.FormFile("video")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Video file is required",
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

	videoURL, err := utils.SaveUpload(data, file.Filename, "video", "videos")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	// Thumbnail extraction needs ffmpeg on the host; the clip is still
	// usable without one.
	thumbnailURL, err := utils.GenerateVideoThumbnail(videoURL)
	if err != nil {
		log.Printf("thumbnail generation failed for %s: %v", videoURL, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	now := time.Now()
	video := models.Video{
		ID:           primitive.NewObjectID(),
		UserID:       user.ID,
		Title:        utils.SanitizeInput(c.FormValue("title")),
		Description:  utils.SanitizeInput(c.FormValue("description")),
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Position:     utils.SanitizeInput(c.FormValue("position")),
		Likes:        []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := config.GetCollection(vc.DB, "videos").InsertOne(ctx, video); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save video",
		})
	}

	if user.AccountType == utils.AccountTypePlayer {
		config.GetCollection(vc.DB, "players").UpdateOne(ctx,
			bson.M{"userId": user.ID},
			bson.M{"$push": bson.M{"videos": video.ID}},
		)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Video uploaded successfully",
		Data:    video,
	})
}

// GetFeed returns recent clips joined with uploader info, newest first
func (vc *VideoController) GetFeed(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	limit := defaultFeedLimit
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	page := 0
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}

	filter := bson.M{}
	if position := c.QueryParam("position"); position != "" {
		filter["position"] = utils.SanitizeInput(position)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page * limit)).
		SetLimit(int64(limit))

	cursor, err := config.GetCollection(vc.DB, "videos").Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load feed",
		})
	}
	defer cursor.Close(ctx)

	var videos []models.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode feed",
		})
	}

	// Join uploader info per distinct uploader, not per clip
	uploaderIDs := make([]primitive.ObjectID, 0, len(videos))
	seen := make(map[primitive.ObjectID]bool)
	for _, v := range videos {
		if !seen[v.UserID] {
			seen[v.UserID] = true
			uploaderIDs = append(uploaderIDs, v.UserID)
		}
	}

	uploaders := make(map[primitive.ObjectID]models.User)
	if len(uploaderIDs) > 0 {
		userCursor, err := config.GetCollection(vc.DB, "users").Find(ctx, bson.M{"_id": bson.M{"$in": uploaderIDs}})
		if err == nil {
			var users []models.User
			if err := userCursor.All(ctx, &users); err == nil {
				for _, u := range users {
					uploaders[u.ID] = u
				}
			}
		}
	}

	feed := make([]models.VideoFeedItem, 0, len(videos))
	for _, v := range videos {
		item := models.VideoFeedItem{
			Video:     v,
			LikeCount: len(v.Likes),
		}
		if u, ok := uploaders[v.UserID]; ok {
			item.UploaderName = u.FullName
			item.UploaderPic = u.ProfilePic
			item.AccountType = u.AccountType
		}
		feed = append(feed, item)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Feed retrieved",
		Data:    feed,
	})
}

// GetVideo returns a single clip and bumps its view counter
func (vc *VideoController) GetVideo(c echo.Context) error {
	videoID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid video ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var video models.Video
	err = config.GetCollection(vc.DB, "videos").FindOneAndUpdate(ctx,
		bson.M{"_id": videoID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Video not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Video retrieved",
		Data:    video,
	})
}

// LikeVideo toggles the caller's like on a clip
func (vc *VideoController) LikeVideo(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	videoID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid video ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coll := config.GetCollection(vc.DB, "videos")

	var video models.Video
	if err := coll.FindOne(ctx, bson.M{"_id": videoID}).Decode(&video); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Video not found",
		})
	}

	liked := false
	for _, id := range video.Likes {
		if id == userID {
			liked = true
			break
		}
	}

	var update bson.M
	message := "Video liked"
	if liked {
		update = bson.M{"$pull": bson.M{"likes": userID}}
		message = "Like removed"
	} else {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	}

	if _, err := coll.UpdateOne(ctx, bson.M{"_id": videoID}, update); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update like",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
	})
}

// DeleteVideo removes the caller's own clip
func (vc *VideoController) DeleteVideo(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	videoID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid video ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(vc.DB, "videos").DeleteOne(ctx, bson.M{
		"_id":    videoID,
		"userId": userID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete video",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Video not found or not owned by you",
		})
	}

	config.GetCollection(vc.DB, "players").UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$pull": bson.M{"videos": videoID}},
	)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Video deleted",
	})
}
