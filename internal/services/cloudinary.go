package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

// Uploader is the subset of the Cloudinary upload API used by [CloudinarySink].
type Uploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinarySink implements [MediaSink] with Cloudinary.
type CloudinarySink struct {
	uploader Uploader
	logger   *log.Logger
}

// NewCloudinarySink creates a sink from account credentials.
func NewCloudinarySink(cfg shared.CloudinaryConfig, logger *log.Logger) (*CloudinarySink, error) {
	if !cfg.Complete() {
		return nil, fmt.Errorf("%w: cloudinary cloud_name, api_key and api_secret are required", shared.ErrMissingCredentials)
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return NewCloudinarySinkWithUploader(&cld.Upload, logger), nil
}

// NewCloudinarySinkWithUploader creates a sink around an existing uploader.
func NewCloudinarySinkWithUploader(u Uploader, logger *log.Logger) *CloudinarySink {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CloudinarySink{uploader: u, logger: logger}
}

// Upload sends the audio as songs/<id> and the thumbnail as covers/<id>.
//
// A missing or failed cover yields an empty cover URL. Both local files are removed before returning.
func (c *CloudinarySink) Upload(ctx context.Context, audioPath, thumbnailPath string, info models.VideoInfo) (string, string, error) {
	defer c.remove(thumbnailPath)

	if audioPath == "" {
		return "", "", fmt.Errorf("%w: no audio file", shared.ErrUploadFailed)
	}

	songURL, err := c.uploadFile(ctx, audioPath, uploader.UploadParams{
		PublicID:     "songs/" + info.ID,
		ResourceType: "video",
		Overwrite:    api.Bool(true),
		Tags:         api.CldAPIArray{"youtube", "song"},
		Context: api.CldAPIMap{
			"title":    info.Title,
			"artist":   info.Artist,
			"duration": strconv.Itoa(info.Duration),
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", shared.ErrUploadFailed, err)
	}

	var coverURL string
	if thumbnailPath != "" {
		coverURL, err = c.uploadFile(ctx, thumbnailPath, uploader.UploadParams{
			PublicID:     "covers/" + info.ID,
			ResourceType: "image",
			Overwrite:    api.Bool(true),
			Tags:         api.CldAPIArray{"youtube", "cover"},
		})
		if err != nil {
			c.logger.Warn("cover upload failed", "id", info.ID, "error", err)
			coverURL = ""
		}
	}

	c.logger.Info("uploaded media", "id", info.ID, "song_url", songURL, "cover_url", coverURL)
	return songURL, coverURL, nil
}

func (c *CloudinarySink) uploadFile(ctx context.Context, path string, params uploader.UploadParams) (string, error) {
	defer c.remove(path)

	res, err := c.uploader.Upload(ctx, path, params)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", errors.New("empty upload response")
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("upload response has no secure url")
	}
	return res.SecureURL, nil
}

func (c *CloudinarySink) remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("could not remove temp file", "path", path, "error", err)
		return
	}
	c.logger.Debug("cleaned up temp file", "path", path)
}
