// utils/file_utils.go
package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum upload sizes
	maxImageSize = 10 * 1024 * 1024
	maxVideoSize = 100 * 1024 * 1024
)

var (
	allowedImageExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}
	allowedVideoExts = map[string]bool{
		".mp4":  true,
		".mov":  true,
		".avi":  true,
		".webm": true,
	}
)

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	filename = filepath.Base(filename)
	reg := regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	return reg.ReplaceAllString(filename, "")
}

// ValidateFileType checks if the file extension is allowed for the given media type
func ValidateFileType(filename, mediaType string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch mediaType {
	case "image":
		if !allowedImageExts[ext] {
			return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif, webp")
		}
	case "video":
		if !allowedVideoExts[ext] {
			return fmt.Errorf("unsupported video format. Allowed formats: mp4, mov, avi, webm")
		}
	default:
		return fmt.Errorf("invalid media type. Must be 'image' or 'video'")
	}
	return nil
}

// InitializeStorage creates necessary directories for file storage
func InitializeStorage() error {
	dirs := []string{
		uploadBaseDir,
		filepath.Join(uploadBaseDir, "profiles"),
		filepath.Join(uploadBaseDir, "videos"),
		filepath.Join(uploadBaseDir, "thumbnails"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// SaveUpload writes uploaded bytes under uploads/<subdir> with a unique name
// and returns the public URL.
func SaveUpload(fileData []byte, filename, mediaType, subdir string) (string, error) {
	maxSize := maxImageSize
	if mediaType == "video" {
		maxSize = maxVideoSize
	}
	if len(fileData) > maxSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", maxSize)
	}

	cleanName := cleanFilename(filename)
	if err := ValidateFileType(cleanName, mediaType); err != nil {
		return "", err
	}

	if err := InitializeStorage(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(cleanName))
	uniqueName := fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.New().String()[:8], ext)
	fullPath := filepath.Join(uploadBaseDir, subdir, uniqueName)

	if err := os.WriteFile(fullPath, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}

	return fmt.Sprintf("%s/%s/%s", baseURL, subdir, uniqueName), nil
}

// ResizeProfileImage decodes, resizes and re-encodes a profile picture so
// huge camera uploads don't land in the feed as-is.
func ResizeProfileImage(imageData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	resized := imaging.Fit(img, 512, 512, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	return buf.Bytes(), nil
}

// GenerateVideoThumbnail extracts the first second frame of a stored video
// and writes a resized jpeg next to it under uploads/thumbnails.
func GenerateVideoThumbnail(videoURL string) (string, error) {
	// videoURL is /uploads/videos/<name>; resolve it back to the local path
	videoPath := filepath.Join(uploadBaseDir, strings.TrimPrefix(videoURL, baseURL+"/"))

	thumbName := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath)) + ".jpg"
	rawPath := filepath.Join(uploadBaseDir, "thumbnails", "raw_"+thumbName)
	thumbnailPath := filepath.Join(uploadBaseDir, "thumbnails", thumbName)

	err := ffmpeg.Input(videoPath).
		Output(rawPath, ffmpeg.KwArgs{"vframes": 1, "ss": "00:00:01"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to extract thumbnail: %v", err)
	}
	defer os.Remove(rawPath)

	thumbnailData, err := os.ReadFile(rawPath)
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail: %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(thumbnailData))
	if err != nil {
		return "", fmt.Errorf("failed to decode thumbnail: %v", err)
	}
	resized := imaging.Resize(img, 320, 0, imaging.Lanczos)

	out, err := os.Create(thumbnailPath)
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail file: %v", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %v", err)
	}

	return fmt.Sprintf("%s/thumbnails/%s", baseURL, thumbName), nil
}
