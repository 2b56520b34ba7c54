package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/registry"
	"github.com/desertthunder/ytingest/internal/shared"
)

func extractingInfoUpdate() registry.Update {
	return registry.Update{
		Status:         models.StatusProcessing,
		Message:        "Extracting video information...",
		DetailedStatus: models.PhaseExtractingInfo,
		Counters:       models.CounterPatch{models.CounterTotal: 1, models.CounterPending: 1},
	}
}

func extractingCollectionUpdate(kind models.Kind) registry.Update {
	phase := models.PhaseExtractingPlaylist
	if kind == models.KindChannel {
		phase = models.PhaseExtractingChannel
	}
	return registry.Update{
		Status:         models.StatusProcessing,
		Message:        fmt.Sprintf("Extracting %s videos...", kind),
		DetailedStatus: phase,
	}
}

func stepUpdate(phase models.Phase, message string) registry.Update {
	return registry.Update{
		Status:         models.StatusProcessing,
		Message:        message,
		DetailedStatus: phase,
	}
}

func extractFailedUpdate(kind models.Kind, err error) registry.Update {
	message := "Failed to extract video information"
	if kind != models.KindVideo {
		message = fmt.Sprintf("Failed to extract %s videos", kind)
	}
	return registry.Update{
		Status:          models.StatusFailed,
		Message:         message,
		Error:           err.Error(),
		LastVideoStatus: models.OutcomeError,
		Counters:        models.CounterPatch{models.CounterError: 1, models.CounterPending: 0},
	}
}

func collectionStartedUpdate(kind models.Kind, c models.Counters) registry.Update {
	return registry.Update{
		Status:   models.StatusProcessing,
		Message:  fmt.Sprintf("Found %d videos in %s", c.Total, kind),
		Counters: c.Patch(),
	}
}

func itemStartedUpdate(step, total int, title string) registry.Update {
	return registry.Update{
		Status:         models.StatusProcessing,
		Message:        fmt.Sprintf("Processing item %d/%d: %s", step, total, title),
		Progress:       fmt.Sprintf("%d/%d", step, total),
		DetailedStatus: models.PhaseProcessingVideo,
	}
}

func itemFinishedUpdate(step, total int, res models.ItemResult, c models.Counters) registry.Update {
	return registry.Update{
		Status:          models.StatusProcessing,
		Message:         fmt.Sprintf("Processing item %d/%d: %s (%s)", step, total, res.Info.Title, outcomeLabel(res)),
		Progress:        fmt.Sprintf("%d/%d", step, total),
		Counters:        c.Patch(),
		LastVideoStatus: res.Outcome,
	}
}

func collectionCompletedUpdate(kind models.Kind, c models.Counters) registry.Update {
	rate := 0.0
	if c.Total > 0 {
		rate = float64(c.Success) / float64(c.Total) * 100
	}
	return registry.Update{
		Status:   models.StatusCompleted,
		Message:  fmt.Sprintf("%s completed: %d/%d successful (%.1f%%)", kind.Label(), c.Success, c.Total, rate),
		Counters: c.Patch(),
		Result: models.CollectionResult{
			Total:      c.Total,
			Processed:  c.Processed,
			Successful: c.Success,
		},
	}
}

// videoOutcomeUpdate is the terminal write of a single-video job.
func videoOutcomeUpdate(res models.ItemResult, c models.Counters) registry.Update {
	u := registry.Update{
		Counters:        c.Patch(),
		LastVideoStatus: res.Outcome,
	}

	switch res.Outcome {
	case models.OutcomeSuccess:
		u.Status = models.StatusCompleted
		u.Message = "Video processed successfully"
		u.Result = models.VideoResult{VideoInfo: res.Info, SongURL: res.SongURL, CoverURL: res.CoverURL}
	case models.OutcomeExists:
		u.Status = models.StatusCompleted
		u.Message = "Song already exists, skipping processing"
	case models.OutcomeSkippedDuration:
		u.Status = models.StatusCompleted
		u.Message = skippedDurationMessage(res.Info.Duration)
	default:
		u.Status = models.StatusFailed
		u.Message = failureMessage(res.Err)
		if res.Err != nil {
			u.Error = res.Err.Error()
		}
	}
	return u
}

func panicUpdate(r any) registry.Update {
	return registry.Update{
		Status:          models.StatusFailed,
		Message:         fmt.Sprintf("Processing error: %v", r),
		Error:           fmt.Sprintf("%v: %v", shared.ErrPanic, r),
		LastVideoStatus: models.OutcomeError,
		Counters:        models.CounterPatch{models.CounterError: 1, models.CounterPending: 0},
	}
}

func skippedDurationMessage(seconds int) string {
	return fmt.Sprintf("Video skipped - duration %.1f min (must be %d-%d min)",
		float64(seconds)/60, MinDurationSeconds/60, MaxDurationSeconds/60)
}

func failureMessage(err error) string {
	switch {
	case err == nil:
		return "Processing error"
	case errors.Is(err, shared.ErrExtractFailed):
		return "Failed to extract video information"
	case errors.Is(err, shared.ErrDownloadFailed):
		return "Failed to download audio"
	case errors.Is(err, shared.ErrUploadFailed):
		return "Failed to upload media"
	case errors.Is(err, shared.ErrPublishFailed):
		return "Failed to send to external API"
	default:
		return "Processing error: " + err.Error()
	}
}

// outcomeLabel is the suffix shown after an item in collection progress messages.
func outcomeLabel(res models.ItemResult) string {
	switch res.Outcome {
	case models.OutcomeSuccess:
		return "success"
	case models.OutcomeExists:
		return "exists"
	case models.OutcomeSkippedDuration:
		return "skipped - duration"
	}

	switch {
	case errors.Is(res.Err, shared.ErrDownloadFailed):
		return "download error"
	case errors.Is(res.Err, shared.ErrUploadFailed):
		return "upload error"
	case errors.Is(res.Err, shared.ErrPublishFailed):
		return "api error"
	default:
		return "error"
	}
}
