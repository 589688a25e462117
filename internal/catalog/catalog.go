// Package catalog persists loaded images, their descriptor histograms and
// extracted blobs in a SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"texture-extractor/internal/models"
	"texture-extractor/internal/processing/histogram"
)

type Logger interface {
	Debug(component, message string, fields map[string]interface{})
}

type Catalog struct {
	db     *sql.DB
	logger Logger
}

// Open opens or creates the database at path and migrates it to the latest
// schema.
func Open(path string, logger Logger) (*Catalog, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db, logger: logger}
	if err := c.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// DescriptorRecord is one stored texture run.
type DescriptorRecord struct {
	ID         int64
	ImageID    string
	Algorithm  string
	Parameters map[string]interface{}
	Histogram  []int
	Mean       float64
	Duration   time.Duration
}

// BlobRecord is one stored blob without its pixels.
type BlobRecord struct {
	ID      string
	ImageID string
	Rank    int
	Label   int32
	MinX    int
	MinY    int
	MaxX    int
	MaxY    int
	Pixels  int
	Source  string
}

// RecordImage stores img. Recording the same image twice is a no-op.
func (c *Catalog) RecordImage(ctx context.Context, img *models.ImageData) error {
	if img == nil {
		return fmt.Errorf("%w: image is nil", models.ErrInvalidImage)
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO images (image_id, title, source, format, width, height, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(image_id) DO NOTHING`,
		img.ID, img.Title, img.Source, img.Format, img.Width, img.Height, img.LoadTime.UTC())
	if err != nil {
		return fmt.Errorf("failed to record image %s: %w", img.ID, err)
	}
	return nil
}

// RecordDescriptor stores the histogram of a processing result and returns
// its row id. The image must have been recorded first.
func (c *Catalog) RecordDescriptor(ctx context.Context, res *models.ProcessingResult) (int64, error) {
	if res == nil || res.Output == nil {
		return 0, fmt.Errorf("%w: result has no output", models.ErrInvalidImage)
	}

	hist := histogram.Compute(res.Output)

	params, err := json.Marshal(res.Parameters)
	if err != nil {
		return 0, fmt.Errorf("failed to encode parameters: %w", err)
	}
	bins, err := json.Marshal(hist.Counts())
	if err != nil {
		return 0, fmt.Errorf("failed to encode histogram: %w", err)
	}

	result, err := c.db.ExecContext(ctx, `
		INSERT INTO descriptors (image_id, algorithm, parameters, histogram, mean_value, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		res.ImageID, res.Algorithm, string(params), string(bins), hist.Mean(),
		float64(res.ProcessTime)/float64(time.Millisecond))
	if err != nil {
		return 0, fmt.Errorf("failed to record descriptor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read descriptor id: %w", err)
	}

	c.logger.Debug("Catalog", "descriptor recorded", map[string]interface{}{
		"id":        id,
		"algorithm": res.Algorithm,
	})
	return id, nil
}

// RecordBlobs stores blobs in one transaction, ranked in slice order from 1.
func (c *Catalog) RecordBlobs(ctx context.Context, blobs []models.Blob) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO blobs (blob_id, image_id, rank, label, min_x, min_y, max_x, max_y, pixels, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare blob insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range blobs {
		if _, err := stmt.ExecContext(ctx, b.ID, b.SourceID, i+1, b.Label,
			b.Bounds.Min.X, b.Bounds.Min.Y, b.Bounds.Max.X, b.Bounds.Max.Y, b.Pixels, b.Source); err != nil {
			return fmt.Errorf("failed to record blob %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit blobs: %w", err)
	}
	return nil
}

// Descriptors lists the runs stored for imageID, oldest first.
func (c *Catalog) Descriptors(ctx context.Context, imageID string) ([]DescriptorRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT descriptor_id, image_id, algorithm, parameters, histogram, mean_value, duration_ms
		FROM descriptors WHERE image_id = ? ORDER BY descriptor_id`, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query descriptors: %w", err)
	}
	defer rows.Close()

	var records []DescriptorRecord
	for rows.Next() {
		var (
			r              DescriptorRecord
			params, bins   string
			durationMillis float64
		)
		if err := rows.Scan(&r.ID, &r.ImageID, &r.Algorithm, &params, &bins, &r.Mean, &durationMillis); err != nil {
			return nil, fmt.Errorf("failed to scan descriptor: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &r.Parameters); err != nil {
			return nil, fmt.Errorf("failed to decode parameters: %w", err)
		}
		if err := json.Unmarshal([]byte(bins), &r.Histogram); err != nil {
			return nil, fmt.Errorf("failed to decode histogram: %w", err)
		}
		r.Duration = time.Duration(durationMillis * float64(time.Millisecond))
		records = append(records, r)
	}
	return records, rows.Err()
}

// Blobs lists the blobs stored for imageID by rank.
func (c *Catalog) Blobs(ctx context.Context, imageID string) ([]BlobRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT blob_id, image_id, rank, label, min_x, min_y, max_x, max_y, pixels, source
		FROM blobs WHERE image_id = ? ORDER BY rank`, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blobs: %w", err)
	}
	defer rows.Close()

	var records []BlobRecord
	for rows.Next() {
		var r BlobRecord
		if err := rows.Scan(&r.ID, &r.ImageID, &r.Rank, &r.Label, &r.MinX, &r.MinY, &r.MaxX, &r.MaxY, &r.Pixels, &r.Source); err != nil {
			return nil, fmt.Errorf("failed to scan blob: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
