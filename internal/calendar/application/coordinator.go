package application

import (
	"context"
	"log/slog"

	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
)

// SyncCoordinator keeps each block's optional calendar linkage loosely
// consistent with the external store. Every operation here is best-effort:
// the local block's state never depends on external-calendar success, and
// no method returns an error for a failed remote call. Failures are logged
// and linkage is adjusted to the best-known truth.
type SyncCoordinator struct {
	provider  Provider
	blockRepo schedulingDomain.BlockRepository
	logger    *slog.Logger
}

// NewSyncCoordinator creates a calendar sync coordinator.
func NewSyncCoordinator(provider Provider, blockRepo schedulingDomain.BlockRepository, logger *slog.Logger) *SyncCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncCoordinator{
		provider:  provider,
		blockRepo: blockRepo,
		logger:    logger,
	}
}

// Enabled reports whether a provider is configured.
func (c *SyncCoordinator) Enabled() bool { return c.provider != nil }

// LinkOnCreate mirrors a freshly persisted block into targetCalendarID.
// On success the linkage fields are written back and the block persisted
// again; on failure the block simply stays unlinked.
func (c *SyncCoordinator) LinkOnCreate(ctx context.Context, block *schedulingDomain.TimeBlock, targetCalendarID string) {
	if c.provider == nil || block.IsLinked() {
		return
	}

	ref, err := c.provider.CreateEvent(ctx, targetCalendarID, eventDataFor(block))
	if err != nil {
		c.logger.Warn("calendar event create failed, block left unlinked",
			"block_id", block.ID(), "calendar_id", targetCalendarID, "error", err)
		return
	}

	block.SetLink(ref.EventID, targetCalendarID, ref.LastModified)
	if err := c.blockRepo.Save(ctx, block); err != nil {
		c.logger.Error("failed to persist calendar linkage",
			"block_id", block.ID(), "event_id", ref.EventID, "error", err)
	}
}

// SyncOnUpdate reconciles linkage after a block edit. Three cases: push an
// update to a still-wanted link, tear down a no-longer-wanted link, or
// create a newly wanted one. Tearing down always clears local linkage even
// when the remote delete fails, so local state never stays falsely linked.
func (c *SyncCoordinator) SyncOnUpdate(ctx context.Context, block *schedulingDomain.TimeBlock, wantsLinked bool, targetCalendarID string) {
	if c.provider == nil {
		return
	}

	link := block.Link()
	switch {
	case link != nil && wantsLinked:
		lastModified, err := c.provider.UpdateEvent(ctx, link.CalendarID, link.EventID, eventDataFor(block))
		if err != nil {
			c.logger.Warn("calendar event update failed, linkage left as last known good",
				"block_id", block.ID(), "event_id", link.EventID, "error", err)
			return
		}
		block.RefreshLink(lastModified)
		if err := c.blockRepo.Save(ctx, block); err != nil {
			c.logger.Error("failed to persist refreshed linkage", "block_id", block.ID(), "error", err)
		}

	case link != nil && !wantsLinked:
		if err := c.provider.DeleteEvent(ctx, link.CalendarID, link.EventID); err != nil {
			c.logger.Warn("calendar event delete failed, clearing linkage anyway",
				"block_id", block.ID(), "event_id", link.EventID, "error", err)
		}
		block.ClearLink()
		if err := c.blockRepo.Save(ctx, block); err != nil {
			c.logger.Error("failed to persist cleared linkage", "block_id", block.ID(), "error", err)
		}

	case link == nil && wantsLinked:
		c.LinkOnCreate(ctx, block, targetCalendarID)
	}
}

// UnlinkOnDelete removes the mirrored event before a block is deleted
// locally, so the external store is not left with an orphan. The local
// delete proceeds irrespective of the outcome.
func (c *SyncCoordinator) UnlinkOnDelete(ctx context.Context, block *schedulingDomain.TimeBlock) {
	if c.provider == nil {
		return
	}
	link := block.Link()
	if link == nil {
		return
	}
	if err := c.provider.DeleteEvent(ctx, link.CalendarID, link.EventID); err != nil {
		c.logger.Warn("calendar event delete failed on block deletion",
			"block_id", block.ID(), "event_id", link.EventID, "error", err)
	}
}

// ReconcileReport summarizes a reconciliation sweep.
type ReconcileReport struct {
	Checked  int
	Unlinked int
	Failed   int
}

// Reconcile sweeps every linked block and clears linkage for blocks whose
// external event has been deleted out of band. Existence reads are
// authoritative; transient lookup failures leave linkage untouched, which
// makes the sweep idempotent and safe to run alongside normal edits.
func (c *SyncCoordinator) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	if c.provider == nil {
		return report, nil
	}

	blocks, err := c.blockRepo.FindLinked(ctx)
	if err != nil {
		return nil, err
	}

	for _, block := range blocks {
		link := block.Link()
		if link == nil {
			continue
		}
		report.Checked++

		exists, err := c.provider.EventExists(ctx, link.CalendarID, link.EventID)
		if err != nil {
			report.Failed++
			c.logger.Warn("calendar existence check failed, leaving linkage untouched",
				"block_id", block.ID(), "event_id", link.EventID, "error", err)
			continue
		}
		if exists {
			continue
		}

		block.ClearLink()
		if err := c.blockRepo.Save(ctx, block); err != nil {
			report.Failed++
			c.logger.Error("failed to persist drift correction", "block_id", block.ID(), "error", err)
			continue
		}
		report.Unlinked++
		c.logger.Info("external event disappeared, linkage cleared",
			"block_id", block.ID(), "event_id", link.EventID)
	}

	return report, nil
}

// ListCalendars passes through to the provider.
func (c *SyncCoordinator) ListCalendars(ctx context.Context) ([]Calendar, error) {
	return c.provider.ListCalendars(ctx)
}

func eventDataFor(block *schedulingDomain.TimeBlock) EventData {
	return EventData{
		Title:     block.Title(),
		Notes:     block.Notes(),
		StartTime: block.StartTime(),
		EndTime:   block.EndTime(),
	}
}
