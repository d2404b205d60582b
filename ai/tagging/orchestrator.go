// Package tagging drives notes through the tagging pipeline: prompt
// building, provider call, tag extraction, and frontmatter update.
package tagging

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/time/rate"

	"github.com/tagwise/tagwise/ai/format"
	"github.com/tagwise/tagwise/ai/metrics"
	"github.com/tagwise/tagwise/ai/prompt"
	"github.com/tagwise/tagwise/ai/provider"
	"github.com/tagwise/tagwise/vault"
)

// State tracks how far a note progressed through the pipeline.
type State string

const (
	StateIdle               State = "idle"
	StatePromptBuilt        State = "prompt_built"
	StateRequestSent        State = "request_sent"
	StateResponseReceived   State = "response_received"
	StateTagsExtracted      State = "tags_extracted"
	StateFrontmatterUpdated State = "frontmatter_updated"
	StateFailed             State = "failed"
)

// NoteResult is the outcome for a single note.
type NoteResult struct {
	Path string
	// State is the last state reached; StateFrontmatterUpdated on success,
	// StateFailed otherwise (LastState then names the step that failed).
	State State
	// LastState is the state the pipeline was in when a failure occurred.
	LastState State
	// Strategy names the extraction strategy that produced the tags.
	Strategy string
	// Added are the tags newly merged into the note.
	Added []string
	// Tags is the full merged tag list written back.
	Tags []string
	Err  error
}

// BatchReport summarizes one batch run.
type BatchReport struct {
	RunID     string
	Provider  string
	Model     string
	StartedAt time.Time
	Duration  time.Duration
	// Processed counts every note attempted, including failures.
	Processed int
	Failed    int
	Results   []*NoteResult
}

// Recorder persists batch runs. Implemented by the store; nil disables
// history recording.
type Recorder interface {
	RecordRun(ctx context.Context, report *BatchReport) error
}

// Options configures an Orchestrator.
type Options struct {
	Mode     prompt.Mode
	MaxTags  int
	Language string
	// Model is the configured model name, carried into reports.
	Model string
	// ContentLimit caps prompt content length in runes; 0 means no cap.
	ContentLimit int
	// RequestInterval paces batch requests; 0 disables pacing. Batch runs
	// are strictly sequential either way — the bottleneck is the remote
	// provider's rate limit, not local compute.
	RequestInterval time.Duration
}

// Orchestrator runs single notes and batches through the pipeline.
type Orchestrator struct {
	adapter  provider.Adapter
	client   *provider.Client
	vault    *vault.Vault
	opts     Options
	limiter  *rate.Limiter
	recorder Recorder
	exporter *metrics.Exporter
}

// New creates an orchestrator. client may be nil to use the default
// transport.
func New(adapter provider.Adapter, client *provider.Client, v *vault.Vault, opts Options) *Orchestrator {
	if client == nil {
		client = provider.NewClient(nil)
	}
	if opts.Mode == "" {
		opts.Mode = prompt.ModeGenerateNew
	}
	if opts.MaxTags <= 0 {
		opts.MaxTags = 10
	}
	var limiter *rate.Limiter
	if opts.RequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RequestInterval), 1)
	}
	return &Orchestrator{
		adapter: adapter,
		client:  client,
		vault:   v,
		opts:    opts,
		limiter: limiter,
	}
}

// SetRecorder attaches a run-history recorder.
func (o *Orchestrator) SetRecorder(r Recorder) { o.recorder = r }

// SetExporter attaches a metrics exporter.
func (o *Orchestrator) SetExporter(e *metrics.Exporter) { o.exporter = e }

// TagNote runs one note through the pipeline. On failure the returned
// result's LastState names the step that failed and the same error is
// returned for the caller to surface.
func (o *Orchestrator) TagNote(ctx context.Context, path string) (*NoteResult, error) {
	res := &NoteResult{Path: path, State: StateIdle}

	fail := func(err error) (*NoteResult, error) {
		res.LastState = res.State
		res.State = StateFailed
		res.Err = err
		if o.exporter != nil {
			o.exporter.RecordNote(false)
		}
		slog.Error("tagging: note failed", "path", path, "step", res.LastState, "error", err)
		return res, err
	}

	note, err := o.vault.Read(path)
	if err != nil {
		return fail(err)
	}
	existing := note.Tags()

	content := format.PlainText(note.Body)
	if o.opts.ContentLimit > 0 {
		content = format.Truncate(content, o.opts.ContentLimit)
	}

	p, err := prompt.Build(content, existing, o.opts.Mode, o.opts.MaxTags, o.opts.Language)
	if err != nil {
		return fail(err)
	}
	res.State = StatePromptBuilt

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return fail(err)
		}
	}

	res.State = StateRequestSent
	start := time.Now()
	resp, err := o.client.Send(ctx, o.adapter, p)
	if o.exporter != nil {
		o.exporter.RecordRequest(o.adapter.Name(), time.Since(start), err == nil)
	}
	if err != nil {
		return fail(err)
	}
	res.State = StateResponseReceived
	res.Strategy = resp.Strategy
	if o.exporter != nil {
		o.exporter.RecordExtraction(resp.Strategy)
	}

	merged, added := MergeTags(existing, resp.Tags)
	res.State = StateTagsExtracted
	res.Added = added
	res.Tags = merged

	if err := o.vault.WriteTags(note, merged); err != nil {
		return fail(err)
	}
	res.State = StateFrontmatterUpdated

	if o.exporter != nil {
		o.exporter.RecordNote(true)
	}
	slog.Debug("tagging: note updated",
		"path", path,
		"strategy", res.Strategy,
		"added", len(added),
		"tags", len(merged),
	)
	return res, nil
}

// TagBatch processes every note matching the filter, strictly sequentially
// and in input order. A failure on one note is recorded and counted; the
// loop continues.
func (o *Orchestrator) TagBatch(ctx context.Context, filter vault.Filter) (*BatchReport, error) {
	paths, err := o.vault.List(filter)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		RunID:     shortuuid.New(),
		Provider:  o.adapter.Name(),
		Model:     o.opts.Model,
		StartedAt: time.Now(),
	}

	slog.Info("tagging: batch started", "run_id", report.RunID, "notes", len(paths), "provider", report.Provider)

	for _, path := range paths {
		res, err := o.TagNote(ctx, path)
		report.Processed++
		if err != nil {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}
	report.Duration = time.Since(report.StartedAt)

	slog.Info("tagging: batch finished",
		"run_id", report.RunID,
		"processed", report.Processed,
		"failed", report.Failed,
		"duration_ms", report.Duration.Milliseconds(),
	)

	if o.recorder != nil {
		if err := o.recorder.RecordRun(ctx, report); err != nil {
			// History is best-effort; the tagging work itself succeeded.
			slog.Warn("tagging: failed to record run", "run_id", report.RunID, "error", err)
		}
	}
	return report, nil
}

// MergeTags unions existing and incoming tags, case-sensitively, keeping
// insertion order with existing tags first. The second return value lists
// the tags that were actually new.
func MergeTags(existing, incoming []string) (merged, added []string) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged = make([]string, 0, len(existing)+len(incoming))
	for _, t := range existing {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		merged = append(merged, t)
	}
	for _, t := range incoming {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		merged = append(merged, t)
		added = append(added, t)
	}
	return merged, added
}
