// Package pipeline runs one transcription end to end: compose the prompt,
// invoke the model, extract the JSON payloads from the reply, validate the
// records, and assemble the transcript aggregate.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dollyto/multimodal-video-transcriber/internal/extract"
	"github.com/dollyto/multimodal-video-transcriber/internal/logging"
	"github.com/dollyto/multimodal-video-transcriber/internal/prompt"
	"github.com/dollyto/multimodal-video-transcriber/internal/services/gemini"
	"github.com/dollyto/multimodal-video-transcriber/internal/transcript"
	"github.com/dollyto/multimodal-video-transcriber/internal/videoref"
)

// ModelClient generates a raw model reply for a transcription request.
type ModelClient interface {
	GenerateTranscript(ctx context.Context, req gemini.Request) (string, error)
}

// Request describes one transcription run.
type Request struct {
	// Video is the parsed video reference.
	Video videoref.Ref
	// Vertex selects the Vertex platform; it widens the accepted video kinds.
	Vertex bool
	// Model names the model invoked for this run.
	Model string
	// RunID identifies the run in logs and the archive; generated when empty.
	RunID string
	// Options shapes the prompt and the expected reply structure.
	Options prompt.Options
}

// Result carries the assembled transcription together with the raw reply it
// was extracted from, so the reply can be archived for later inspection.
type Result struct {
	Transcription *transcript.Transcription
	RawReply      string
}

// Pipeline orchestrates transcription runs against a model client.
type Pipeline struct {
	client ModelClient
	logger *slog.Logger
}

// New builds a pipeline. A nil logger discards all records.
func New(client ModelClient, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{client: client, logger: logging.WithComponent(logger, "pipeline")}
}

// Run executes one transcription. Errors keep their stage's type: option and
// reference problems surface before the model is invoked, invocation failures
// as *gemini.InvocationError, reply problems as *extract.ParseError, and
// record problems as *transcript.ValidationError.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	runID := strings.TrimSpace(req.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	log := p.logger.With("run_id", runID)

	if err := req.Options.Validate(); err != nil {
		return nil, err
	}
	videoURI, err := req.Video.ResolveFor(req.Vertex)
	if err != nil {
		return nil, err
	}
	text, err := prompt.Build(req.Options)
	if err != nil {
		return nil, err
	}
	log.Info("prompt composed",
		"video", videoURI,
		"model", req.Model,
		"payloads", req.Options.PayloadCount())

	started := time.Now()
	raw, err := p.client.GenerateTranscript(ctx, gemini.Request{
		VideoURI:    videoURI,
		Prompt:      text,
		Model:       req.Model,
		StartOffset: req.Options.SegmentStart,
		EndOffset:   req.Options.SegmentEnd,
		FPS:         req.Options.FPS,
	})
	if err != nil {
		log.Error("model invocation failed", logging.Error(err))
		return nil, err
	}
	log.Info("model replied",
		"duration", time.Since(started).Round(time.Millisecond),
		"reply_bytes", len(raw))

	payloads, err := extract.ExpectPayloads(raw, req.Options.PayloadCount())
	if err != nil {
		log.Error("reply extraction failed", logging.Error(err))
		return nil, err
	}

	segments, err := transcript.ParseSegments(payloads[0])
	if err != nil {
		log.Error("segment validation failed", logging.Error(err))
		return nil, err
	}
	speakers, err := transcript.ParseSpeakers(payloads[1])
	if err != nil {
		log.Error("speaker validation failed", logging.Error(err))
		return nil, err
	}
	var rows []transcript.TranslationRow
	if req.Options.IncludeTranslation {
		rows, err = transcript.ParseTranslation(payloads[2])
		if err != nil {
			log.Error("translation validation failed", logging.Error(err))
			return nil, err
		}
	}

	result, err := transcript.Assemble(segments, speakers, rows, transcript.Metadata{
		RunID:          runID,
		VideoRef:       videoURI,
		Model:          req.Model,
		FPS:            req.Options.FPS,
		TimecodeStyle:  req.Options.TimecodeStyle.String(),
		TargetLanguage: req.Options.TargetLanguage,
	})
	if err != nil {
		log.Error("assembly failed", logging.Error(err))
		return nil, err
	}
	log.Info("transcription assembled",
		"segments", result.SegmentCount(),
		"speakers", result.SpeakerCount())
	return &Result{Transcription: result, RawReply: raw}, nil
}
