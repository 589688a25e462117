package models

import (
	"image"

	"github.com/google/uuid"
)

// Blob is one connected component cropped out of a source image.
type Blob struct {
	ID       string
	SourceID string
	Source   string
	Label    int32
	Bounds   image.Rectangle
	Pixels   int
	Image    *Grid
}

// NewBlob tags a cropped component with a fresh id and the identity of the
// image it was cut from.
func NewBlob(sourceID, sourceTitle string, label int32, bounds image.Rectangle, pixels int, crop *Grid) Blob {
	return Blob{
		ID:       uuid.NewString(),
		SourceID: sourceID,
		Source:   sourceTitle + " (object)",
		Label:    label,
		Bounds:   bounds,
		Pixels:   pixels,
		Image:    crop,
	}
}

// Area is the size of the blob's bounding box, the key blobs are ranked by.
func (b Blob) Area() int {
	return b.Bounds.Dx() * b.Bounds.Dy()
}
