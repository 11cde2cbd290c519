package transform

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type fakeVision struct {
	mu          sync.Mutex
	breed       string
	description string
	classifyErr error
	generateErr error
	prompts     []string
}

func (f *fakeVision) Classify(ctx context.Context, image []byte, system, question string) (string, error) {
	if f.classifyErr != nil {
		return "", f.classifyErr
	}
	return f.breed, nil
}

func (f *fakeVision) Describe(ctx context.Context, image []byte, system, question string) (string, error) {
	return f.description, nil
}

func (f *fakeVision) Generate(ctx context.Context, prompt, size, quality string) ([]byte, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return []byte("image:" + prompt[:24]), nil
}

func newTestPipeline(vision *fakeVision) *Pipeline {
	return NewPipeline(vision, Settings{ImageSize: "1024x1024", ImageQuality: "standard"}, nil)
}

func TestRunProducesThreeImages(t *testing.T) {
	vision := &fakeVision{breed: "Golden Retriever", description: "a person with curly hair"}
	pipeline := newTestPipeline(vision)

	result, err := pipeline.Run(context.Background(), []byte("headshot"), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Breed != "Golden Retriever" {
		t.Fatalf("unexpected breed %q", result.Breed)
	}
	if len(result.Transition1) == 0 || len(result.Transition2) == 0 || len(result.FinalDog) == 0 {
		t.Fatal("expected all three images to be generated")
	}
	if len(vision.prompts) != 3 {
		t.Fatalf("expected 3 generation calls, got %d", len(vision.prompts))
	}
}

func TestRunReportsCheckpointsInOrder(t *testing.T) {
	vision := &fakeVision{breed: "Beagle", description: "short hair, glasses"}
	pipeline := newTestPipeline(vision)

	var percents []int
	var messages []string
	_, err := pipeline.Run(context.Background(), []byte("headshot"), func(percent int, message string) {
		percents = append(percents, percent)
		messages = append(messages, message)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []int{10, 20, 40, 60, 80}
	if len(percents) != len(want) {
		t.Fatalf("expected %d checkpoints, got %v", len(want), percents)
	}
	for i, p := range want {
		if percents[i] != p {
			t.Fatalf("checkpoint %d: expected %d, got %v", i, p, percents)
		}
	}
	if !strings.Contains(messages[1], "Beagle") {
		t.Fatalf("transition message should name the breed: %q", messages[1])
	}
	if messages[len(messages)-1] != "Almost done..." {
		t.Fatalf("unexpected final checkpoint message %q", messages[len(messages)-1])
	}
}

func TestRunPromptsFollowTransitionWording(t *testing.T) {
	vision := &fakeVision{breed: "Poodle", description: "long face, warm smile"}
	pipeline := newTestPipeline(vision)

	if _, err := pipeline.Run(context.Background(), []byte("headshot"), nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var sawHumanLeaning, sawDogLeaning, sawFinal bool
	for _, prompt := range vision.prompts {
		switch {
		case strings.Contains(prompt, "mostly human but with subtle Poodle dog features"):
			sawHumanLeaning = true
		case strings.Contains(prompt, "mostly Poodle dog but retains some human characteristics"):
			sawDogLeaning = true
		case strings.Contains(prompt, "facing forward, friendly expression, full portrait"):
			sawFinal = true
		}
		if !strings.Contains(prompt, "Studio lighting") {
			t.Fatalf("prompt missing shared style suffix: %q", prompt)
		}
	}
	if !sawHumanLeaning || !sawDogLeaning || !sawFinal {
		t.Fatalf("missing expected prompt stages: %v", vision.prompts)
	}

	for _, prompt := range vision.prompts[:2] {
		if strings.Contains(prompt, "facing forward") {
			continue
		}
		if !strings.Contains(prompt, "long face, warm smile") {
			t.Fatalf("transition prompt should embed the description: %q", prompt)
		}
	}
}

func TestRunCleansBreedName(t *testing.T) {
	vision := &fakeVision{breed: "  \"golden retriever.\" ", description: "desc"}
	pipeline := newTestPipeline(vision)

	result, err := pipeline.Run(context.Background(), []byte("headshot"), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Breed != "Golden Retriever" {
		t.Fatalf("expected cleaned breed, got %q", result.Breed)
	}
}

func TestRunFailsFastOnClassifyError(t *testing.T) {
	classifyErr := errors.New("provider down")
	vision := &fakeVision{classifyErr: classifyErr}
	pipeline := newTestPipeline(vision)

	var checkpoints []int
	_, err := pipeline.Run(context.Background(), []byte("headshot"), func(percent int, _ string) {
		checkpoints = append(checkpoints, percent)
	})
	if !errors.Is(err, classifyErr) {
		t.Fatalf("expected classify error, got %v", err)
	}
	if len(vision.prompts) != 0 {
		t.Fatal("no generation should run after classify fails")
	}
	if len(checkpoints) != 1 || checkpoints[0] != 10 {
		t.Fatalf("only the first checkpoint should fire, got %v", checkpoints)
	}
}

func TestRunPropagatesGenerationError(t *testing.T) {
	generateErr := errors.New("image generation failed")
	vision := &fakeVision{breed: "Husky", description: "desc", generateErr: generateErr}
	pipeline := newTestPipeline(vision)

	if _, err := pipeline.Run(context.Background(), []byte("headshot"), nil); !errors.Is(err, generateErr) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestRunRejectsEmptyImage(t *testing.T) {
	pipeline := newTestPipeline(&fakeVision{breed: "Pug"})
	if _, err := pipeline.Run(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for empty image")
	}
}
