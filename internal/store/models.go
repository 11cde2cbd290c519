package store

import "time"

// User is an account that can upload headshots.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Transformation is one completed pipeline run with all four images.
type Transformation struct {
	ID          int64
	UserID      int64
	Breed       string
	Original    []byte
	Transition1 []byte
	Transition2 []byte
	FinalDog    []byte
	CreatedAt   time.Time
}

// TransformationSummary carries gallery metadata without the image blobs.
type TransformationSummary struct {
	ID        int64
	UserID    int64
	Breed     string
	CreatedAt time.Time
}

// ImageKind names one of the four stored images.
type ImageKind string

const (
	ImageOriginal    ImageKind = "original"
	ImageTransition1 ImageKind = "transition1"
	ImageTransition2 ImageKind = "transition2"
	ImageFinalDog    ImageKind = "final"
)

// ValidImageKind reports whether kind names a stored image column.
func ValidImageKind(kind ImageKind) bool {
	switch kind {
	case ImageOriginal, ImageTransition1, ImageTransition2, ImageFinalDog:
		return true
	}
	return false
}
