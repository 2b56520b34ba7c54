package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

const (
	checkExistsPath = "/checkSongExistsByYtId"
	addSongPath     = "/addSong"
)

// CatalogService implements [Catalog] against the song catalog HTTP API.
type CatalogService struct {
	api    *APIService
	logger *log.Logger
}

// NewCatalogService creates a catalog client on top of api.
func NewCatalogService(api *APIService, logger *log.Logger) *CatalogService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CatalogService{api: api, logger: logger}
}

type existsRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

// Exists asks the catalog whether the video id is already registered.
//
// Any non-200 answer is treated as "not registered".
func (c *CatalogService) Exists(ctx context.Context, id, title string) (bool, error) {
	resp, err := c.api.PostJSON(ctx, checkExistsPath, existsRequest{ID: id, Title: title})
	if err != nil {
		return false, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("catalog exists check returned non-200", "status", resp.StatusCode, "id", id)
		return false, nil
	}

	var body existsResponse
	if err := resp.Decode(&body); err != nil {
		return false, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return body.Exists, nil
}

// Publish registers song with the catalog.
func (c *CatalogService) Publish(ctx context.Context, song models.Song) error {
	resp, err := c.api.PostJSON(ctx, addSongPath, song)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrPublishFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", shared.ErrPublishFailed, resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	c.logger.Info("sent song to catalog", "id", song.ID, "title", song.Title)
	return nil
}
