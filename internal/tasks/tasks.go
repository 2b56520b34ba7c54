package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/registry"
	"github.com/desertthunder/ytingest/internal/services"
	"github.com/desertthunder/ytingest/internal/shared"
)

// Tracker receives task state writes. [registry.Registry] implements it.
type Tracker interface {
	Update(id string, u registry.Update) error
}

// OutcomeRecorder persists item outcomes for later inspection.
//
// Recording is best effort: errors are logged and never change a job's result.
type OutcomeRecorder interface {
	RecordOutcome(taskID string, res models.ItemResult) error
}

// PipelineOpts contains the collaborators of a [Pipeline].
type PipelineOpts struct {
	Source   services.VideoSource
	Sink     services.MediaSink
	Catalog  services.Catalog
	Tracker  Tracker
	Recorder OutcomeRecorder // Optional
	Logger   *log.Logger
}

// Pipeline processes videos and writes every state transition to its [Tracker].
type Pipeline struct {
	source   services.VideoSource
	sink     services.MediaSink
	catalog  services.Catalog
	tracker  Tracker
	recorder OutcomeRecorder
	logger   *log.Logger
}

// NewPipeline creates a new [Pipeline].
func NewPipeline(opts PipelineOpts) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Pipeline{
		source:   opts.Source,
		sink:     opts.Sink,
		catalog:  opts.Catalog,
		tracker:  opts.Tracker,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
}

// Run executes job according to its kind. It implements [JobRunner].
func (p *Pipeline) Run(ctx context.Context, job Job) {
	switch job.Kind {
	case models.KindVideo:
		p.ProcessVideo(ctx, job.ID, job.URL)
	case models.KindPlaylist, models.KindChannel:
		p.ProcessCollection(ctx, job.ID, job.Kind, job.URL, job.Skip, job.Limit)
	default:
		p.write(job.ID, p.logger, registry.Update{
			Status:  models.StatusFailed,
			Message: "Unsupported job type",
			Error:   fmt.Sprintf("%v: job type %q", shared.ErrInvalidArgument, job.Kind),
		})
	}
}

// ProcessVideo ingests a single video. The task ends completed (success, exists, skipped) or failed.
func (p *Pipeline) ProcessVideo(ctx context.Context, taskID, url string) {
	logger := shared.WithLogger(p.logger, "task_id", taskID, "kind", models.KindVideo)
	defer p.recoverTask(taskID, logger)

	p.write(taskID, logger, extractingInfoUpdate())

	info, err := p.source.ExtractInfo(ctx, url)
	if err != nil || info == nil {
		err = ensureKind(err, shared.ErrExtractFailed)
		logger.Error("extract failed", "url", url, "error", err)
		p.write(taskID, logger, extractFailedUpdate(models.KindVideo, err))
		return
	}

	step := func(phase models.Phase, message string) {
		p.write(taskID, logger, stepUpdate(phase, message))
	}

	counters := models.Counters{Total: 1, Pending: 1}
	res := p.processItem(ctx, logger, *info, step)
	counters.Record(res.Outcome)
	p.record(taskID, logger, res)

	logger.Info("video finished", "id", info.ID, "outcome", res.Outcome)
	p.write(taskID, logger, videoOutcomeUpdate(res, counters))
}

// ProcessCollection ingests a page of a playlist or channel in source order.
//
// A failing item is counted and the batch moves on. The task ends completed unless listing fails.
func (p *Pipeline) ProcessCollection(ctx context.Context, taskID string, kind models.Kind, url string, skip, limit int) {
	logger := shared.WithLogger(p.logger, "task_id", taskID, "kind", kind)
	defer p.recoverTask(taskID, logger)

	p.write(taskID, logger, extractingCollectionUpdate(kind))

	var (
		videos []models.VideoInfo
		err    error
	)
	switch kind {
	case models.KindPlaylist:
		videos, err = p.source.ExtractPlaylist(ctx, url, skip, limit)
	case models.KindChannel:
		videos, err = p.source.ExtractChannel(ctx, url, skip, limit)
	default:
		err = fmt.Errorf("%w: collection type %q", shared.ErrInvalidArgument, kind)
	}
	if err == nil && len(videos) == 0 {
		err = shared.ErrNoItems
	}
	if err != nil {
		logger.Error("listing failed", "url", url, "error", err)
		p.write(taskID, logger, extractFailedUpdate(kind, err))
		return
	}

	counters := models.Counters{Total: len(videos), Pending: len(videos)}
	p.write(taskID, logger, collectionStartedUpdate(kind, counters))

	for i, info := range videos {
		p.write(taskID, logger, itemStartedUpdate(i+1, len(videos), info.Title))

		res := p.processItem(ctx, logger, info, nil)
		counters.Record(res.Outcome)
		p.record(taskID, logger, res)

		logger.Info("item finished", "step", i+1, "total", len(videos), "id", info.ID, "outcome", res.Outcome)
		p.write(taskID, logger, itemFinishedUpdate(i+1, len(videos), res, counters))
	}

	p.write(taskID, logger, collectionCompletedUpdate(kind, counters))
}

// processItem runs admission, exists check, download, upload and publish for one video.
//
// step, when non-nil, is called before each stage. A panic is converted into an error outcome.
func (p *Pipeline) processItem(ctx context.Context, logger *log.Logger, info models.VideoInfo, step func(models.Phase, string)) (res models.ItemResult) {
	res = models.ItemResult{Info: info}
	if step == nil {
		step = func(models.Phase, string) {}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("item panicked", "id", info.ID, "panic", r)
			res.Outcome = models.OutcomeError
			res.Err = fmt.Errorf("%w: %v", shared.ErrPanic, r)
		}
	}()

	fail := func(err error) models.ItemResult {
		logger.Warn("item failed", "id", info.ID, "error", err)
		res.Outcome = models.OutcomeError
		res.Err = err
		return res
	}

	if !IsDurationValid(info.Duration) {
		logger.Info("skipping video outside duration window", "id", info.ID, "duration", info.Duration)
		res.Outcome = models.OutcomeSkippedDuration
		return res
	}

	step(models.PhaseCheckingExists, "Checking if song already exists...")
	exists, err := p.catalog.Exists(ctx, info.ID, info.Title)
	if err != nil {
		logger.Warn("exists check failed, continuing", "id", info.ID, "error", err)
	} else if exists {
		res.Outcome = models.OutcomeExists
		return res
	}

	step(models.PhaseDownloading, "Downloading audio and thumbnail...")
	audioPath, thumbnailPath, err := p.source.Download(ctx, info)
	if err != nil || audioPath == "" {
		return fail(ensureKind(err, shared.ErrDownloadFailed))
	}

	step(models.PhaseUploading, "Uploading to media host...")
	songURL, coverURL, err := p.sink.Upload(ctx, audioPath, thumbnailPath, info)
	if err != nil || songURL == "" {
		return fail(ensureKind(err, shared.ErrUploadFailed))
	}
	res.SongURL, res.CoverURL = songURL, coverURL

	step(models.PhaseSendingToAPI, "Sending to external API...")
	if err := p.catalog.Publish(ctx, models.NewSong(info, songURL, coverURL)); err != nil {
		return fail(ensureKind(err, shared.ErrPublishFailed))
	}

	res.Outcome = models.OutcomeSuccess
	return res
}

func (p *Pipeline) write(taskID string, logger *log.Logger, u registry.Update) {
	if err := p.tracker.Update(taskID, u); err != nil {
		logger.Warn("could not update task", "status", u.Status, "error", err)
	}
}

func (p *Pipeline) record(taskID string, logger *log.Logger, res models.ItemResult) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordOutcome(taskID, res); err != nil {
		logger.Warn("could not record outcome", "id", res.Info.ID, "error", err)
	}
}

func (p *Pipeline) recoverTask(taskID string, logger *log.Logger) {
	if r := recover(); r != nil {
		logger.Error("job panicked", "panic", r)
		p.write(taskID, logger, panicUpdate(r))
	}
}

// ensureKind wraps err with kind unless it already matches. A nil err becomes kind.
func ensureKind(err, kind error) error {
	switch {
	case err == nil:
		return kind
	case errors.Is(err, kind):
		return err
	default:
		return fmt.Errorf("%w: %w", kind, err)
	}
}
