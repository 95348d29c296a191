// Package thumbnails is the consumer side of the thumbnail pipeline: it
// takes queued jobs, reads the original image and writes one resized
// variant per configured width. Processing a job twice only overwrites
// the same variants, so redelivery is safe.
package thumbnails

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dvolkovs/filevault/internal/common"
	"github.com/dvolkovs/filevault/internal/logging"
	"github.com/dvolkovs/filevault/internal/server/blob"
	"github.com/dvolkovs/filevault/internal/server/models"
	"github.com/dvolkovs/filevault/internal/server/repositories/repomanager"
)

type Processor struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	blobs  blob.Store
	logger logging.Logger
}

func NewProcessor(db *sql.DB, repos repomanager.RepositoryManager, blobs blob.Store, logger logging.Logger) *Processor {
	return &Processor{
		db:     db,
		repos:  repos,
		blobs:  blobs,
		logger: logger.With("module", "thumbnails"),
	}
}

// Process handles one job. Errors wrapping common.ErrMalformedJob mark
// jobs that can never succeed; everything else is transient and subject
// to redelivery.
func (p *Processor) Process(ctx context.Context, job models.ThumbnailJob) error {
	if job.FileID == "" {
		return fmt.Errorf("%w: missing fileId", common.ErrMalformedJob)
	}
	if job.UserID == "" {
		return fmt.Errorf("%w: missing userId", common.ErrMalformedJob)
	}

	node, err := p.repos.Files(p.db).GetByIDAndOwner(ctx, job.FileID, job.UserID)
	if err != nil {
		return fmt.Errorf("looking up file %s: %w", job.FileID, err)
	}
	if node.Kind != models.KindImage {
		return fmt.Errorf("%w: file %s is a %s, not an image", common.ErrMalformedJob, node.ID, node.Kind)
	}

	data, err := p.blobs.Read(ctx, node.StorageKey)
	if err != nil {
		return fmt.Errorf("reading original %s: %w", node.StorageKey, err)
	}

	src, format, err := decodeImage(data)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, width := range models.ThumbnailWidths {
		g.Go(func() error {
			encoded, err := encodeImage(scaleToWidth(src, width), format)
			if err != nil {
				return err
			}
			if err := p.blobs.WriteDerived(ctx, node.StorageKey, width, encoded); err != nil {
				return fmt.Errorf("writing %d variant: %w", width, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p.logger.Info(ctx, "thumbnails generated",
		"file_id", node.ID, "widths", len(models.ThumbnailWidths))
	return nil
}
