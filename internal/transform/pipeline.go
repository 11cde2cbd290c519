// Package transform runs the human-to-dog pipeline: identify the closest
// breed, describe the subject, and generate a three-image progression from
// mostly-human to fully dog.
package transform

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shaggydog/internal/logging"
	"shaggydog/internal/services"
)

// Vision is the remote provider surface the pipeline depends on.
type Vision interface {
	Classify(ctx context.Context, image []byte, system, question string) (string, error)
	Describe(ctx context.Context, image []byte, system, question string) (string, error)
	Generate(ctx context.Context, prompt, size, quality string) ([]byte, error)
}

// Settings carry the generation parameters forwarded to the provider.
type Settings struct {
	ImageSize    string
	ImageQuality string
}

// Result is the full output of one transformation run.
type Result struct {
	Breed       string
	Transition1 []byte
	Transition2 []byte
	FinalDog    []byte
}

// ProgressFunc receives checkpoint updates as the pipeline advances.
type ProgressFunc func(percent int, message string)

// Pipeline orchestrates one transformation end to end.
type Pipeline struct {
	vision   Vision
	settings Settings
	logger   *slog.Logger
	titler   cases.Caser
}

// NewPipeline builds a pipeline around the provider client.
func NewPipeline(vision Vision, settings Settings, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		vision:   vision,
		settings: settings,
		logger:   logger,
		titler:   cases.Title(language.English),
	}
}

// Run executes the full pipeline against a normalized headshot. Progress is
// reported at fixed checkpoints; the caller adds the terminal update. The
// two transition images are generated concurrently once the breed and
// description are known.
func (p *Pipeline) Run(ctx context.Context, original []byte, onProgress ProgressFunc) (*Result, error) {
	if onProgress == nil {
		onProgress = func(int, string) {}
	}
	if len(original) == 0 {
		return nil, services.Wrap(services.ErrValidation, "transform", "run", "no image to transform", nil)
	}

	onProgress(10, "Identifying dog breed...")
	rawBreed, err := p.vision.Classify(ctx, original, classifySystemPrompt, classifyQuestion)
	if err != nil {
		return nil, err
	}
	breed := p.cleanBreed(rawBreed)
	if breed == "" {
		return nil, services.Wrap(services.ErrRemote, "transform", "classify", "provider returned no breed", nil)
	}
	p.logger.Info("identified breed", logging.String("breed", breed))

	description, err := p.vision.Describe(ctx, original, describeSystemPrompt, describeQuestion)
	if err != nil {
		return nil, err
	}

	onProgress(20, "Generating first transition to "+breed+"...")

	var transition1, transition2 []byte
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		img, err := p.generate(groupCtx, transitionPrompt(breed, description, 0.33))
		if err != nil {
			return err
		}
		transition1 = img
		return nil
	})
	group.Go(func() error {
		img, err := p.generate(groupCtx, transitionPrompt(breed, description, 0.66))
		if err != nil {
			return err
		}
		transition2 = img
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	onProgress(40, "Generating second transition to "+breed+"...")
	onProgress(60, "Generating final "+breed+" image...")

	finalDog, err := p.generate(ctx, finalPrompt(breed))
	if err != nil {
		return nil, err
	}

	onProgress(80, "Almost done...")

	return &Result{
		Breed:       breed,
		Transition1: transition1,
		Transition2: transition2,
		FinalDog:    finalDog,
	}, nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string) ([]byte, error) {
	return p.vision.Generate(ctx, prompt, p.settings.ImageSize, p.settings.ImageQuality)
}

// cleanBreed strips quotes and trailing punctuation the model sometimes adds
// and title-cases the result.
func (p *Pipeline) cleanBreed(raw string) string {
	breed := strings.TrimSpace(raw)
	breed = strings.Trim(breed, "\"'`")
	breed = strings.TrimRight(breed, ".!")
	breed = strings.Join(strings.Fields(breed), " ")
	if breed == "" {
		return ""
	}
	return p.titler.String(strings.ToLower(breed))
}
