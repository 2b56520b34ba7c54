package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
)

const youtubeBase = "https://www.youtube.com"

var (
	audioExtensions     = []string{"mp3", "webm", "m4a", "opus"}
	thumbnailExtensions = []string{"jpg", "png", "webp"}
)

// CommandRunner executes an external program and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with [exec.CommandContext].
type ExecRunner struct{}

// Run executes name with args, folding stderr into the returned error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// YTDLPOpts configures a [YTDLPSource].
type YTDLPOpts struct {
	Binary      string        // yt-dlp executable (default: yt-dlp)
	TempDir     string        // Download directory (default: a fresh directory under os.TempDir)
	CookiesPath string        // Optional Netscape cookies file
	ProxyURL    string        // Optional proxy passed to yt-dlp
	Runner      CommandRunner // Defaults to [ExecRunner]
	Logger      *log.Logger
}

// YTDLPSource implements [VideoSource] by shelling out to yt-dlp.
type YTDLPSource struct {
	bin     string
	tempDir string
	cookies string
	proxy   string
	runner  CommandRunner
	logger  *log.Logger
}

// NewYTDLPSource creates a yt-dlp backed source, creating the temp directory if needed.
func NewYTDLPSource(opts YTDLPOpts) (*YTDLPSource, error) {
	if opts.Binary == "" {
		opts.Binary = "yt-dlp"
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	if opts.TempDir == "" {
		dir, err := os.MkdirTemp("", "ytingest-")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		opts.TempDir = dir
	} else if err := os.MkdirAll(opts.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &YTDLPSource{
		bin:     opts.Binary,
		tempDir: opts.TempDir,
		cookies: opts.CookiesPath,
		proxy:   opts.ProxyURL,
		runner:  opts.Runner,
		logger:  opts.Logger,
	}, nil
}

// TempDir returns the download directory.
func (s *YTDLPSource) TempDir() string {
	return s.tempDir
}

// ytdlpEntry is the subset of yt-dlp's JSON output we read.
type ytdlpEntry struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Duration  float64      `json:"duration"`
	Uploader  string       `json:"uploader"`
	Channel   string       `json:"channel"`
	Thumbnail string       `json:"thumbnail"`
	URL       string       `json:"url"`
	Entries   []ytdlpEntry `json:"entries"`
}

func (e ytdlpEntry) artist() string {
	if e.Uploader != "" {
		return e.Uploader
	}
	return e.Channel
}

func (s *YTDLPSource) baseArgs() []string {
	args := []string{"--quiet", "--no-warnings"}
	if s.cookies != "" {
		args = append(args, "--cookies", s.cookies)
	}
	if s.proxy != "" {
		args = append(args, "--proxy", s.proxy)
	}
	return args
}

func (s *YTDLPSource) dumpJSON(ctx context.Context, url string, flat bool) (*ytdlpEntry, error) {
	args := s.baseArgs()
	if flat {
		args = append(args, "--flat-playlist")
	} else {
		args = append(args, "--no-playlist")
	}
	args = append(args, "-J", url)

	out, err := s.runner.Run(ctx, s.bin, args...)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("yt-dlp returned empty output")
	}

	var entry ytdlpEntry
	if err := json.Unmarshal(out, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	return &entry, nil
}

// ExtractInfo returns metadata for a single video.
func (s *YTDLPSource) ExtractInfo(ctx context.Context, url string) (*models.VideoInfo, error) {
	entry, err := s.dumpJSON(ctx, url, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrExtractFailed, err)
	}
	if entry.ID == "" {
		return nil, nil
	}

	s.logger.Info("extracted video info", "id", entry.ID, "title", entry.Title)
	return &models.VideoInfo{
		ID:        entry.ID,
		Title:     entry.Title,
		Duration:  seconds(entry.Duration),
		Artist:    entry.artist(),
		URL:       url,
		Thumbnail: entry.Thumbnail,
	}, nil
}

// ExtractPlaylist lists a page of playlist entries. Bare playlist ids are accepted.
func (s *YTDLPSource) ExtractPlaylist(ctx context.Context, url string, skip, limit int) ([]models.VideoInfo, error) {
	return s.extractList(ctx, NormalizePlaylistURL(url), skip, limit)
}

// ExtractChannel lists a page of channel uploads. Handles, bare channel ids and full URLs are accepted.
func (s *YTDLPSource) ExtractChannel(ctx context.Context, url string, skip, limit int) ([]models.VideoInfo, error) {
	return s.extractList(ctx, NormalizeChannelURL(url), skip, limit)
}

func (s *YTDLPSource) extractList(ctx context.Context, url string, skip, limit int) ([]models.VideoInfo, error) {
	listing, err := s.dumpJSON(ctx, url, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrExtractFailed, err)
	}

	page := paginate(listing.Entries, skip, limit)
	videos := make([]models.VideoInfo, 0, len(page))
	for _, e := range page {
		if e.ID == "" {
			continue
		}
		artist := e.artist()
		if artist == "" {
			artist = listing.artist()
		}
		videos = append(videos, models.VideoInfo{
			ID:        e.ID,
			Title:     e.Title,
			Duration:  seconds(e.Duration),
			Artist:    artist,
			URL:       youtubeBase + "/watch?v=" + e.ID,
			Thumbnail: e.Thumbnail,
		})
	}

	s.logger.Info("extracted videos", "url", url, "count", len(videos), "skip", skip, "limit", limit)
	return videos, nil
}

// Download fetches the best audio stream as mp3, then the thumbnail as jpg.
//
// A failed thumbnail download is logged and yields an empty thumbnail path.
func (s *YTDLPSource) Download(ctx context.Context, info models.VideoInfo) (string, string, error) {
	output := filepath.Join(s.tempDir, "%(id)s.%(ext)s")

	audioArgs := append(s.baseArgs(),
		"--no-playlist",
		"-f", "bestaudio/best",
		"--extract-audio", "--audio-format", "mp3", "--audio-quality", "192K",
		"-o", output, info.URL,
	)
	if _, err := s.runner.Run(ctx, s.bin, audioArgs...); err != nil {
		return "", "", fmt.Errorf("%w: %w", shared.ErrDownloadFailed, err)
	}

	audioPath := s.locate(info.ID, audioExtensions)
	if audioPath == "" {
		return "", "", fmt.Errorf("%w: no audio file for %s", shared.ErrDownloadFailed, info.ID)
	}

	thumbArgs := append(s.baseArgs(),
		"--no-playlist",
		"--skip-download", "--write-thumbnail", "--convert-thumbnails", "jpg",
		"-o", output, info.URL,
	)
	var thumbnailPath string
	if _, err := s.runner.Run(ctx, s.bin, thumbArgs...); err != nil {
		s.logger.Warn("could not download thumbnail", "id", info.ID, "error", err)
	} else {
		thumbnailPath = s.locate(info.ID, thumbnailExtensions)
	}

	s.logger.Info("downloaded media", "id", info.ID, "audio", audioPath, "thumbnail", thumbnailPath)
	return audioPath, thumbnailPath, nil
}

func (s *YTDLPSource) locate(id string, exts []string) string {
	for _, ext := range exts {
		p := filepath.Join(s.tempDir, id+"."+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// NormalizePlaylistURL turns a bare playlist id into a playlist URL.
func NormalizePlaylistURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return youtubeBase + "/playlist?list=" + raw
}

// NormalizeChannelURL resolves handles and bare ids and points the URL at the uploads tab.
func NormalizeChannelURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "@"):
		raw = youtubeBase + "/" + raw
	case !strings.HasPrefix(raw, "http"):
		raw = youtubeBase + "/channel/" + raw
	}

	raw = strings.TrimRight(raw, "/")
	if !strings.HasSuffix(raw, "/videos") {
		raw += "/videos"
	}
	return raw
}

// paginate returns entries[skip:skip+limit], clamped to the slice bounds.
func paginate[T any](entries []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || skip >= len(entries) {
		return nil
	}
	end := skip + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[skip:end]
}

func seconds(d float64) int {
	if d <= 0 || math.IsNaN(d) {
		return 0
	}
	return int(math.Round(d))
}
