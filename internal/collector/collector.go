package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/internal/external/grailed"
	"github.com/wonny/jhlj/backend/internal/jensen"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

// Notifier receives a signal after a successful collection cycle.
type Notifier interface {
	NotifyIndexRefreshed()
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// Collector orchestrates one marketplace collection cycle:
// search -> dedupe -> validate -> extract -> score -> store.
// ⭐ SSOT: 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	grailedClient *grailed.Client
	listings      contracts.ListingRepository
	runs          contracts.ScrapeRunRepository
	notifier      Notifier
	workers       int
	logger        *logger.Logger
}

// NewCollector creates a new Collector instance
func NewCollector(
	grailedClient *grailed.Client,
	listings contracts.ListingRepository,
	runs contracts.ScrapeRunRepository,
	cfg Config,
	log *logger.Logger,
) *Collector {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &Collector{
		grailedClient: grailedClient,
		listings:      listings,
		runs:          runs,
		workers:       workers,
		logger:        log.WithField("module", "collector"),
	}
}

// SetNotifier registers the refresh broadcast target.
func (c *Collector) SetNotifier(n Notifier) {
	c.notifier = n
}

// searchJob is one query/sold-state pair of the rotation.
type searchJob struct {
	query string
	sold  bool
}

type searchResult struct {
	listings []*contracts.RawListing
	err      error
}

// Run executes one full collection cycle and records it as a ScrapeRun.
func (c *Collector) Run(ctx context.Context) (*contracts.ScrapeRun, error) {
	run := &contracts.ScrapeRun{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		Status:    contracts.RunStatusRunning,
	}
	if err := c.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"run_id":  run.RunID.String(),
		"queries": len(grailed.SearchQueries),
		"workers": c.workers,
	}).Info("Starting collection cycle")

	raw, errCount, jobCount := c.searchAll(ctx)
	if errCount == jobCount {
		return c.fail(ctx, run, fmt.Errorf("all %d search queries failed", jobCount))
	}

	unique := dedupe(raw)
	run.Found = len(unique)

	c.fillDescriptions(ctx, unique)

	scored, skipCounts := c.scoreAll(unique)
	run.Skipped = len(unique) - len(scored)
	run.SkipCounts = skipCounts

	stored, err := c.listings.SaveBatch(ctx, scored)
	if err != nil {
		return c.fail(ctx, run, fmt.Errorf("save listings: %w", err))
	}
	run.Stored = stored

	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = contracts.RunStatusCompleted
	if err := c.runs.Finish(ctx, run); err != nil {
		c.logger.WithError(err).Error("Failed to record run completion")
	}

	if c.notifier != nil {
		c.notifier.NotifyIndexRefreshed()
	}

	c.logger.WithFields(map[string]interface{}{
		"run_id":   run.RunID.String(),
		"found":    run.Found,
		"stored":   run.Stored,
		"skipped":  run.Skipped,
		"duration": run.Duration().String(),
	}).Info("Collection cycle completed")

	return run, nil
}

// fail finalizes the run row as failed and returns the original error.
func (c *Collector) fail(ctx context.Context, run *contracts.ScrapeRun, err error) (*contracts.ScrapeRun, error) {
	now := time.Now().UTC()
	msg := err.Error()
	run.FinishedAt = &now
	run.Status = contracts.RunStatusFailed
	run.Error = &msg

	if ferr := c.runs.Finish(ctx, run); ferr != nil {
		c.logger.WithError(ferr).Error("Failed to record run failure")
	}
	return run, err
}

// searchAll fans the query rotation out over the worker pool.
// 쿼리 하나가 실패해도 사이클은 계속 (부분 실패 허용)
func (c *Collector) searchAll(ctx context.Context) ([]*contracts.RawListing, int, int) {
	jobs := make([]searchJob, 0, len(grailed.SearchQueries)*2)
	for _, q := range grailed.SearchQueries {
		jobs = append(jobs, searchJob{query: q, sold: false})
		jobs = append(jobs, searchJob{query: q, sold: true})
	}

	jobCh := make(chan searchJob, len(jobs))
	resultCh := make(chan searchResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.searchWorker(ctx, workerID, jobCh, resultCh)
		}(i)
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var all []*contracts.RawListing
	errCount := 0
	for res := range resultCh {
		if res.err != nil {
			errCount++
			continue
		}
		all = append(all, res.listings...)
	}
	return all, errCount, len(jobs)
}

// searchWorker processes search jobs from the queue.
func (c *Collector) searchWorker(ctx context.Context, workerID int, jobCh <-chan searchJob, resultCh chan<- searchResult) {
	for job := range jobCh {
		select {
		case <-ctx.Done():
			resultCh <- searchResult{err: ctx.Err()}
			return
		default:
		}

		listings, err := c.grailedClient.Search(ctx, job.query, job.sold)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"query":  job.query,
				"sold":   job.sold,
			}).Error("Search query failed")
			resultCh <- searchResult{err: err}
			continue
		}

		resultCh <- searchResult{listings: listings}
	}
}

// dedupe keeps the first occurrence per listing id. Listings without an id
// pass through for the validator to count.
func dedupe(listings []*contracts.RawListing) []*contracts.RawListing {
	seen := make(map[string]bool, len(listings))
	unique := make([]*contracts.RawListing, 0, len(listings))
	for _, l := range listings {
		if l.ID != "" {
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
		}
		unique = append(unique, l)
	}
	return unique
}

// fillDescriptions backfills missing descriptions from listing pages.
// 상세 페이지 요청은 레이트 리밋이 지배하므로 워커 수만큼만 동시 실행
func (c *Collector) fillDescriptions(ctx context.Context, listings []*contracts.RawListing) {
	var targets []*contracts.RawListing
	for _, l := range listings {
		if l.Description != "" {
			continue
		}
		// 어차피 검증에서 걸러질 리스팅에는 요청을 쓰지 않는다
		if _, skip := jensen.Validate(l); skip {
			continue
		}
		targets = append(targets, l)
	}
	if len(targets) == 0 {
		return
	}

	jobCh := make(chan *contracts.RawListing, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range jobCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				desc, err := c.grailedClient.FetchDescription(ctx, l.ID)
				if err != nil {
					c.logger.WithError(err).WithField("listing_id", l.ID).Debug("Description fetch failed")
					continue
				}
				l.Description = desc
			}
		}()
	}

	for _, l := range targets {
		jobCh <- l
	}
	close(jobCh)
	wg.Wait()

	c.logger.WithField("count", len(targets)).Debug("Backfilled descriptions")
}

// scoreAll validates, extracts and scores the deduplicated listings.
// Malformed listings are counted per reason and never fail the cycle.
func (c *Collector) scoreAll(raw []*contracts.RawListing) ([]*contracts.ScoredListing, map[contracts.SkipReason]int) {
	scored := make([]*contracts.ScoredListing, 0, len(raw))
	skipCounts := make(map[contracts.SkipReason]int)

	for _, l := range raw {
		if reason, skip := jensen.Validate(l); skip {
			skipCounts[reason]++
			continue
		}

		features := jensen.Extract(l.Title, l.Description, l.Designer)
		observed := l.ObservedAt.UTC()

		scored = append(scored, &contracts.ScoredListing{
			ID:          l.ID,
			ObservedOn:  time.Date(observed.Year(), observed.Month(), observed.Day(), 0, 0, 0, 0, time.UTC),
			Title:       l.Title,
			Description: l.Description,
			Designer:    l.Designer,
			Price:       l.Price,
			Sold:        l.Sold,
			SoldPrice:   l.SoldPrice,
			Score:       jensen.Score(features),
			Features:    features,
			URL:         l.URL,
			ScrapedAt:   l.ObservedAt,
		})
	}
	return scored, skipCounts
}
