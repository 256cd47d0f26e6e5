package extractor

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	untitled        = "Untitled"
	unknownUploader = "Unknown"
)

// infoFields mirrors the subset of the tool's info JSON that Metadata exposes.
// Numbers are decoded as float64 because the tool emits both ints and floats.
type infoFields struct {
	ID        string   `json:"id"`
	Title     *string  `json:"title"`
	Duration  *float64 `json:"duration"`
	Thumbnail *string  `json:"thumbnail"`
	Uploader  *string  `json:"uploader"`
	ViewCount *float64 `json:"view_count"`
}

// decodeMetadata projects the tool's info JSON onto Metadata, filling defaults
// for a missing title or uploader.
func decodeMetadata(raw []byte) (*Metadata, error) {
	var f infoFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode video info: %w", err)
	}

	m := &Metadata{
		ID:       f.ID,
		Title:    untitled,
		Uploader: unknownUploader,
	}
	if f.Title != nil && *f.Title != "" {
		m.Title = *f.Title
	}
	if f.Uploader != nil && *f.Uploader != "" {
		m.Uploader = *f.Uploader
	}
	if f.Thumbnail != nil {
		m.Thumbnail = *f.Thumbnail
	}
	if f.Duration != nil && *f.Duration > 0 {
		m.Duration = *f.Duration
	}
	if f.ViewCount != nil && *f.ViewCount > 0 {
		m.ViewCount = int64(math.Round(*f.ViewCount))
	}
	return m, nil
}
