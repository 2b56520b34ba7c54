// package services defines the collaborators of the ingestion pipeline
//
// Video source (yt-dlp), media sink (Cloudinary), song catalog (HTTP API)
package services

import (
	"context"

	"github.com/desertthunder/ytingest/internal/models"
)

// VideoSource extracts metadata and media from a video hosting site.
type VideoSource interface {
	// ExtractInfo returns metadata for a single video URL.
	// A nil info with a nil error means nothing usable was found.
	ExtractInfo(ctx context.Context, url string) (*models.VideoInfo, error)

	// ExtractPlaylist returns up to limit entries of a playlist after skipping skip.
	ExtractPlaylist(ctx context.Context, url string, skip, limit int) ([]models.VideoInfo, error)

	// ExtractChannel returns up to limit uploads of a channel after skipping skip.
	ExtractChannel(ctx context.Context, url string, skip, limit int) ([]models.VideoInfo, error)

	// Download fetches audio and thumbnail to local files.
	// An empty thumbnail path is not an error.
	Download(ctx context.Context, info models.VideoInfo) (audioPath, thumbnailPath string, err error)
}

// MediaSink uploads local media files to a hosting service.
//
// Implementations remove the local files once each upload attempt finishes.
type MediaSink interface {
	Upload(ctx context.Context, audioPath, thumbnailPath string, info models.VideoInfo) (songURL, coverURL string, err error)
}

// Catalog is the external song registry.
type Catalog interface {
	// Exists reports whether a song for the video id is already registered.
	Exists(ctx context.Context, id, title string) (bool, error)

	// Publish registers a new song.
	Publish(ctx context.Context, song models.Song) error
}
