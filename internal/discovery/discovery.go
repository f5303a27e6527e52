// Package discovery probes a range of clip IDs on the source stream
// platform, parses each clip page found, and records newly discovered
// meetings (and their agenda items) in the ledger.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

const stageName = "discovery"

// Service discovers meetings by probing a clip ID range concurrently,
// bounded by a rate limiter the way the reference pipeline bounded its
// asyncio.Semaphore-guarded httpx fan-out.
type Service struct {
	Fetcher      capability.ClipFetcher
	Ledger       *ledger.Store
	URLTemplate  string
	Concurrency  int
	Log          *slog.Logger
}

// Stats summarizes the outcome of a discovery run.
type Stats struct {
	New      int
	Existing int
	Updated  int
}

// candidate is one successfully parsed clip page awaiting a save decision.
type candidate struct {
	clipID int64
	page   ParsedClipPage
}

// Run probes every clip ID in [startID, endID], keeping only pages whose
// meeting type is in allowedTypes (nil/empty means keep all), and persists
// newly discovered (or newly URL-completed) meetings to the ledger.
func (s *Service) Run(ctx context.Context, startID, endID int64, allowedTypes []string) (Stats, error) {
	candidates, err := s.probeRange(ctx, startID, endID, allowedTypes)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{}
	for _, c := range candidates {
		outcome, err := s.save(ctx, c)
		if err != nil {
			s.Log.Error("failed to save discovered meeting", "clip_id", c.clipID, "error", err)
			continue
		}
		switch outcome {
		case outcomeNew:
			stats.New++
		case outcomeExisting:
			stats.Existing++
		case outcomeUpdated:
			stats.Updated++
		}
	}

	s.Log.Info("discovery run complete", "new", stats.New, "existing", stats.Existing, "updated", stats.Updated)
	return stats, nil
}

func (s *Service) probeRange(ctx context.Context, startID, endID int64, allowedTypes []string) ([]candidate, error) {
	concurrency := s.Concurrency
	if concurrency < 1 {
		concurrency = 5
	}
	limiter := rate.NewLimiter(rate.Limit(concurrency), concurrency)

	var mu sync.Mutex
	var candidates []candidate

	g, gctx := errgroup.WithContext(ctx)
	for clipID := startID; clipID <= endID; clipID++ {
		clipID := clipID
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			page, err := s.Fetcher.FetchClipPage(gctx, clipID)
			if err != nil {
				if errors.Is(err, capability.ErrNotFound) {
					return nil
				}
				s.Log.Warn("clip fetch failed", "clip_id", clipID, "error", err)
				return nil
			}

			parsed, ok := ParseClipPage(page.HTML)
			if !ok {
				return nil
			}
			if len(allowedTypes) > 0 && !containsType(allowedTypes, ParseMeetingType(parsed.Title)) {
				return nil
			}

			mu.Lock()
			candidates = append(candidates, candidate{clipID: clipID, page: parsed})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("discovery probe: %w", err)
	}
	return candidates, nil
}

func containsType(types []string, t string) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

type outcome int

const (
	outcomeNew outcome = iota
	outcomeExisting
	outcomeUpdated
)

func (s *Service) save(ctx context.Context, c candidate) (outcome, error) {
	existing, err := s.Ledger.GetMeeting(ctx, c.clipID)
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return 0, fmt.Errorf("lookup existing meeting: %w", err)
	}

	if existing != nil {
		if existing.VideoURL == "" && c.page.VideoURL != "" {
			if err := s.Ledger.UpdateMeetingVideoURL(ctx, c.clipID, c.page.VideoURL); err != nil {
				return 0, fmt.Errorf("update video url: %w", err)
			}
			return outcomeUpdated, nil
		}
		return outcomeExisting, nil
	}

	meetingDate, _ := ParseMeetingDate(c.page.Title)
	var meetingDatePtr *time.Time
	if !meetingDate.IsZero() {
		meetingDatePtr = &meetingDate
	}

	m := ledger.Meeting{
		ClipID:          c.clipID,
		Title:           c.page.Title,
		MeetingDate:     meetingDatePtr,
		MeetingType:     ParseMeetingType(c.page.Title),
		VideoURL:        c.page.VideoURL,
		DurationSeconds: c.page.DurationSeconds,
		Status:          ledger.StatusDiscovered,
	}
	if err := s.Ledger.InsertMeeting(ctx, m); err != nil {
		return 0, fmt.Errorf("insert meeting: %w", err)
	}

	if len(c.page.AgendaItems) > 0 {
		items := make([]ledger.AgendaItem, len(c.page.AgendaItems))
		for i, a := range c.page.AgendaItems {
			start := a.StartSeconds
			items[i] = ledger.AgendaItem{
				ClipID:       c.clipID,
				ItemNumber:   a.ItemNumber,
				Title:        a.Title,
				StartSeconds: &start,
				EndSeconds:   a.EndSeconds,
				SourceItemID: a.SourceItemID,
			}
		}
		if err := s.Ledger.UpsertAgendaItems(ctx, c.clipID, items); err != nil {
			return 0, fmt.Errorf("insert agenda items: %w", err)
		}
	}

	if err := s.Ledger.LogEvent(ctx, c.clipID, stageName, "completed", "discovered"); err != nil {
		return 0, fmt.Errorf("log discovery event: %w", err)
	}
	return outcomeNew, nil
}
