package models

// VideoInfo describes a single video as reported by the video source.
type VideoInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Duration  int    `json:"duration"` // Duration in seconds, 0 when unknown
	Artist    string `json:"artist"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Song is the payload registered with the song catalog.
type Song struct {
	Title    string `json:"title"`
	SongURL  string `json:"songURL"`
	CoverURL string `json:"coverURL"`
	ID       string `json:"id"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration"`
}

// NewSong builds the catalog payload for an uploaded video.
func NewSong(info VideoInfo, songURL, coverURL string) Song {
	return Song{
		Title:    info.Title,
		SongURL:  songURL,
		CoverURL: coverURL,
		ID:       info.ID,
		Artist:   info.Artist,
		Duration: info.Duration,
	}
}

// ItemResult is how one video left the pipeline.
type ItemResult struct {
	Info     VideoInfo
	Outcome  Outcome
	SongURL  string
	CoverURL string
	Err      error // Set when Outcome is OutcomeError
}
