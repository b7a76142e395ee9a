package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/soundclash/trackcut-api/internal/cutter"
	"github.com/soundclash/trackcut-api/internal/probe"
	"github.com/soundclash/trackcut-api/internal/segment"
	"github.com/soundclash/trackcut-api/internal/storage"
	"github.com/soundclash/trackcut-api/internal/tracklist"
)

// Static errors for split job inputs.
var (
	// ErrNoInput is returned when neither an archive URL nor audio paths
	// are provided.
	ErrNoInput = errors.New("job: no recordings to split")
	// ErrChunkedNeedsSource is returned when chunked probing is requested
	// without the original recording to cut from.
	ErrChunkedNeedsSource = errors.New("job: chunked input requires a source path")
)

// ArchiveFetcher downloads a recording bundle and returns the extracted
// audio paths.
type ArchiveFetcher interface {
	Download(ctx context.Context, url, destDir string) ([]string, error)
}

// TracklistFetcher retrieves a published track list.
type TracklistFetcher interface {
	Fetch(ctx context.Context, url string) ([]tracklist.Track, error)
}

// SplitInput contains the input parameters for a split job.
type SplitInput struct {
	// ArchiveURL points at a zip bundle of recordings to download.
	ArchiveURL string
	// AudioPaths are local recording paths, in playback order. When Chunked
	// is set they are analysis chunks of a single recording.
	AudioPaths []string
	// Chunked marks AudioPaths as consecutive chunks of SourcePath.
	Chunked bool
	// SourcePath is the original recording the chunks were sliced from.
	SourcePath string
	// Targets are requested track durations in seconds. Empty means
	// silence-only splitting.
	Targets []float64
	// TracklistURL optionally points at a published track list used to
	// fill Targets when none are given.
	TracklistURL string
	// MinTrackSec overrides the minimum track length for silence-only
	// splitting. Zero means the service default.
	MinTrackSec float64
}

// SplitService orchestrates the recording split workflow: resolve inputs,
// probe for silences, plan cut directives, run the cutter, and publish the
// resulting tracks.
type SplitService struct {
	repo    Repository
	store   storage.Storage
	prober  probe.Prober
	cutter  cutter.Cutter
	fetcher ArchiveFetcher
	lists   TracklistFetcher
	logger  *slog.Logger

	detectOpts         probe.DetectOpts
	defaultMinTrackSec float64
	maxConcurrentProbe int
}

// ServiceOption is a function that configures a SplitService.
type ServiceOption func(*SplitService)

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *SplitService) {
		s.logger = logger
	}
}

// WithArchiveFetcher enables archive URL inputs.
func WithArchiveFetcher(f ArchiveFetcher) ServiceOption {
	return func(s *SplitService) {
		s.fetcher = f
	}
}

// WithTracklistFetcher enables track list URL inputs.
func WithTracklistFetcher(f TracklistFetcher) ServiceOption {
	return func(s *SplitService) {
		s.lists = f
	}
}

// WithDetectOpts sets the silence detection parameters.
func WithDetectOpts(opts probe.DetectOpts) ServiceOption {
	return func(s *SplitService) {
		s.detectOpts = opts
	}
}

// WithDefaultMinTrack sets the minimum track length, in seconds, used for
// silence-only splitting when the request does not override it.
func WithDefaultMinTrack(sec float64) ServiceOption {
	return func(s *SplitService) {
		if sec > 0 {
			s.defaultMinTrackSec = sec
		}
	}
}

// WithMaxConcurrentProbes limits how many recordings are probed in parallel.
func WithMaxConcurrentProbes(n int) ServiceOption {
	return func(s *SplitService) {
		if n > 0 {
			s.maxConcurrentProbe = n
		}
	}
}

// NewSplitService creates a new SplitService.
func NewSplitService(repo Repository, store storage.Storage, prober probe.Prober, cut cutter.Cutter, opts ...ServiceOption) *SplitService {
	s := &SplitService{
		repo:               repo,
		store:              store,
		prober:             prober,
		cutter:             cut,
		logger:             slog.Default(),
		detectOpts:         probe.DefaultDetectOpts(),
		defaultMinTrackSec: 60,
		maxConcurrentProbe: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJob validates the input, creates a job in PENDING status and
// persists it.
func (s *SplitService) CreateJob(ctx context.Context, input SplitInput) (*Job, error) {
	if input.ArchiveURL == "" && len(input.AudioPaths) == 0 {
		return nil, ErrNoInput
	}
	if input.Chunked && input.SourcePath == "" {
		return nil, ErrChunkedNeedsSource
	}

	j := New()
	j.ArchiveURL = input.ArchiveURL
	j.Inputs = append([]string(nil), input.AudioPaths...)
	j.Targets = append([]float64(nil), input.Targets...)

	s.logger.Info("creating split job",
		slog.String("job_id", j.ID),
		slog.Int("inputs", len(input.AudioPaths)),
		slog.Int("targets", len(input.Targets)),
		slog.Bool("chunked", input.Chunked),
	)

	if err := s.repo.Save(ctx, j); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return j, nil
}

// GetJob retrieves a job by ID.
func (s *SplitService) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs.
func (s *SplitService) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// Run executes the split workflow for a previously created job. The job
// ends in COMPLETED, PARTIAL (recordings exhausted before all targets were
// filled) or FAILED.
func (s *SplitService) Run(ctx context.Context, jobID string, input SplitInput) error {
	j, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := j.Start(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, j); err != nil {
		return err
	}

	tracks, unsatisfied, err := s.process(ctx, j, input)
	if err != nil {
		s.logger.Error("split job failed",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		_ = j.Fail(err.Error())
		_ = s.repo.Save(context.WithoutCancel(ctx), j)
		return err
	}

	j.SetTracks(tracks)
	if unsatisfied > 0 {
		s.logger.Warn("recordings exhausted before all tracks were filled",
			slog.String("job_id", j.ID),
			slog.Int("unsatisfied", unsatisfied),
		)
		_ = j.CompletePartial(unsatisfied)
	} else {
		_ = j.Complete()
	}
	if err := s.repo.Save(ctx, j); err != nil {
		return err
	}

	s.logger.Info("split job finished",
		slog.String("job_id", j.ID),
		slog.String("status", string(j.GetStatus())),
		slog.Int("tracks", len(tracks)),
	)
	return nil
}

// process runs the workflow body and returns the published tracks plus the
// number of unsatisfied targets.
func (s *SplitService) process(ctx context.Context, j *Job, input SplitInput) ([]TrackOutput, int, error) {
	targets, err := s.resolveTargets(ctx, input)
	if err != nil {
		return nil, 0, err
	}

	paths, fetched, err := s.resolvePaths(ctx, j, input)
	if err != nil {
		return nil, 0, err
	}
	if len(fetched) > 0 {
		defer func() { _ = s.store.CleanupTemp(context.WithoutCancel(ctx), fetched) }()
	}

	streams, err := s.probeAll(ctx, paths, input)
	if err != nil {
		return nil, 0, err
	}

	directives, unsatisfied, err := s.plan(streams, targets, input.MinTrackSec)
	if err != nil {
		return nil, 0, err
	}
	if len(directives) == 0 {
		return nil, unsatisfied, nil
	}

	outDir := filepath.Join(s.store.TempDir(), j.ID)
	outputs, err := s.cutter.Cut(ctx, directives, outDir)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = s.store.CleanupTemp(context.WithoutCancel(ctx), outputs) }()

	tracks, err := s.publish(ctx, j.ID, directives, outputs)
	if err != nil {
		return nil, 0, err
	}
	return tracks, unsatisfied, nil
}

// resolveTargets fills target durations from the track list service when the
// request names a list instead of explicit durations.
func (s *SplitService) resolveTargets(ctx context.Context, input SplitInput) ([]float64, error) {
	if len(input.Targets) > 0 || input.TracklistURL == "" {
		return input.Targets, nil
	}
	if s.lists == nil {
		return nil, errors.New("job: track list fetching is not configured")
	}
	tracks, err := s.lists.Fetch(ctx, input.TracklistURL)
	if err != nil {
		return nil, fmt.Errorf("fetch track list: %w", err)
	}
	return tracklist.Durations(tracks), nil
}

// resolvePaths returns the local recording paths, downloading the archive
// bundle first when one is given. The second return lists files the caller
// must clean up.
func (s *SplitService) resolvePaths(ctx context.Context, j *Job, input SplitInput) (paths, fetched []string, err error) {
	if input.ArchiveURL == "" {
		return input.AudioPaths, nil, nil
	}
	if s.fetcher == nil {
		return nil, nil, errors.New("job: archive fetching is not configured")
	}

	destDir := filepath.Join(s.store.TempDir(), j.ID+"_bundle")
	paths, err = s.fetcher.Download(ctx, input.ArchiveURL, destDir)
	if err != nil {
		return nil, nil, fmt.Errorf("download archive: %w", err)
	}
	j.SetInputs(paths)
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, nil, err
	}
	return paths, paths, nil
}

// probeAll runs silence detection over every recording, preserving input
// order. Chunked inputs are stitched into one stream labelled with the
// original recording path so the cutter cuts from the real file.
func (s *SplitService) probeAll(ctx context.Context, paths []string, input SplitInput) ([]segment.Stream, error) {
	if input.Chunked {
		res, err := probe.ProbeChunks(ctx, s.prober, input.SourcePath, paths, s.detectOpts)
		if err != nil {
			return nil, err
		}
		return []segment.Stream{res.Stream()}, nil
	}

	streams := make([]segment.Stream, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentProbe)
	for i, path := range paths {
		g.Go(func() error {
			res, err := s.prober.Probe(gctx, path, s.detectOpts)
			if err != nil {
				return fmt.Errorf("probe %s: %w", path, err)
			}
			streams[i] = res.Stream()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return streams, nil
}

// plan turns probed streams into cut directives. With targets it walks the
// recordings sequentially; without targets each recording is split at its
// own silences, with output indexes renumbered across recordings.
func (s *SplitService) plan(streams []segment.Stream, targets []float64, minTrackSec float64) ([]segment.Directive, int, error) {
	if len(targets) > 0 {
		directives, err := segment.SplitByTargets(streams, targets)
		if err != nil {
			var exhausted *segment.ExhaustedStreamsError
			if errors.As(err, &exhausted) {
				return directives, exhausted.Unsatisfied, nil
			}
			return nil, 0, err
		}
		return directives, 0, nil
	}

	minTrack := minTrackSec
	if minTrack <= 0 {
		minTrack = s.defaultMinTrackSec
	}

	var out []segment.Directive
	next := 0
	for _, st := range streams {
		directives, err := segment.SplitStream(st, minTrack)
		if err != nil {
			return nil, 0, err
		}
		base := next
		for _, d := range directives {
			d.OutputIndex += base
			if d.OutputIndex >= next {
				next = d.OutputIndex + 1
			}
			out = append(out, d)
		}
	}
	return out, 0, nil
}

// publish uploads the cut tracks and describes them. Track durations are
// the per-index directive sums; re-encoding never happens, so the numbers
// hold for the published files.
func (s *SplitService) publish(ctx context.Context, jobID string, directives []segment.Directive, outputs []string) ([]TrackOutput, error) {
	durations := make(map[int]float64)
	order := make([]int, 0)
	seen := make(map[int]bool)
	for _, d := range directives {
		durations[d.OutputIndex] += d.End - d.Start
		if !seen[d.OutputIndex] {
			seen[d.OutputIndex] = true
			order = append(order, d.OutputIndex)
		}
	}
	if len(order) != len(outputs) {
		return nil, fmt.Errorf("job: cutter produced %d tracks, planned %d", len(outputs), len(order))
	}

	tracks := make([]TrackOutput, 0, len(outputs))
	for i, path := range outputs {
		name := jobID + "/" + filepath.Base(path)
		url, err := s.publishFile(ctx, name, path)
		if err != nil {
			return nil, fmt.Errorf("publish %s: %w", name, err)
		}
		tracks = append(tracks, TrackOutput{
			Index:    order[i],
			Name:     name,
			URL:      url,
			Duration: durations[order[i]],
		})
	}
	return tracks, nil
}

func (s *SplitService) publishFile(ctx context.Context, name, path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - path is produced by the cutter
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return s.store.PublishTrack(ctx, name, f)
}
