// Package crawlworker runs the coordinator and the fixed-size worker pool
// that drives the frontier through fetch, extract, and tokenize into the
// store. A worker's failure never escapes its loop iteration: every
// non-success outcome is logged and the URL is marked processed so the
// crawl keeps moving.
package crawlworker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ogsearch/ogsearch/internal/errs"
	"github.com/ogsearch/ogsearch/internal/extractor"
	"github.com/ogsearch/ogsearch/internal/fetcher"
	"github.com/ogsearch/ogsearch/internal/frontier"
	"github.com/ogsearch/ogsearch/internal/resume"
	"github.com/ogsearch/ogsearch/internal/store"
	"github.com/ogsearch/ogsearch/internal/tokenizer"
)

var disallowedSubstrings = []string{
	".css", ".js", ".jpg", ".jpeg", ".png", ".gif", ".pdf",
	".zip", ".rar", ".exe", ".dmg", ".mp3", ".mp4", ".avi",
}

const (
	maxURLLength     = 500
	politenessDelay  = 100 * time.Millisecond
	pollInterval     = 5 * time.Second
	terminationGrace = 2 * time.Second
)

// ShouldCrawl accepts only http(s) URLs of bounded length that do not
// contain any disallowed substring anywhere in the URL — a substring check,
// not an extension check, matching the system this replaces exactly.
func ShouldCrawl(url string) bool {
	if len(url) > maxURLLength {
		return false
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false
	}
	lower := strings.ToLower(url)
	for _, s := range disallowedSubstrings {
		if strings.Contains(lower, s) {
			return false
		}
	}
	return true
}

// Config configures a Pool's coordinator and worker count.
type Config struct {
	StartURL string
	MaxDepth int
	Workers  int
}

// Pool coordinates W worker goroutines draining a Frontier into a Store,
// via a Fetcher, Extractor, and Tokenizer. Counters are observational only.
type Pool struct {
	cfg    Config
	front  *frontier.Frontier
	fetch  *fetcher.Fetcher
	db     *store.Store
	tok    *tokenizer.Tokenizer
	resume *resume.Store

	pagesCrawled int64
	pagesIndexed int64
	totalWords   int64
}

// New builds a Pool ready to Run. resumeStore is optional (nil disables
// crawl-resume entirely, matching default behavior); when set, a dequeued
// URL already recorded from a prior run is marked processed and skipped
// before it is fetched, and every URL that is fetched as HTML and handled
// to the end of the worker loop is recorded after MarkProcessed. URLs
// skipped or failed earlier in the loop are not recorded.
func New(cfg Config, front *frontier.Frontier, fetch *fetcher.Fetcher, db *store.Store, resumeStore *resume.Store) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Pool{
		cfg:    cfg,
		front:  front,
		fetch:  fetch,
		db:     db,
		tok:    tokenizer.New(),
		resume: resumeStore,
	}
}

// Run seeds the frontier with the start URL at depth 0, spawns the worker
// pool, and blocks until the coordinator observes the frontier drained and
// stops it. It also returns if ctx is cancelled first.
func (p *Pool) Run(ctx context.Context) {
	p.front.Enqueue(p.cfg.StartURL, 0)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id)
		}(i)
	}

	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()
	go p.logProgress(progressCtx)

	go p.coordinate(ctx)

	wg.Wait()
}

// logProgress ticks every 5 seconds and logs the current counters plus
// pending queue depth, matching the original crawler's progress reporting.
func (p *Pool) logProgress(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := p.Stats()
			log.Printf("progress: pages_crawled=%d pages_indexed=%d total_words=%d pending=%d",
				stats.PagesCrawled, stats.PagesIndexed, stats.TotalWords, p.front.PendingCount())
		}
	}
}

func (p *Pool) coordinate(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.front.Stop()
			return
		case <-ticker.C:
			if p.front.PendingCount() != 0 {
				continue
			}
			time.Sleep(terminationGrace)
			if p.front.Empty() {
				p.front.Stop()
				return
			}
		}
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		item, ok := p.front.Dequeue()
		if !ok {
			return
		}

		if p.front.IsProcessed(item.URL) {
			continue
		}

		if item.Depth > p.cfg.MaxDepth {
			log.Printf("worker %d: skipping %s: %v", id, item.URL, errs.NewSkipped("max depth exceeded"))
			p.front.MarkProcessed(item.URL)
			continue
		}

		if !ShouldCrawl(item.URL) {
			log.Printf("worker %d: skipping %s: %v", id, item.URL, errs.NewSkipped("blocked url pattern"))
			p.front.MarkProcessed(item.URL)
			continue
		}

		if p.resume != nil {
			if visited, err := p.resume.Visited(item.URL); err != nil {
				log.Printf("worker %d: resume lookup failed for %s: %v", id, item.URL, fmt.Errorf("%w: %w", errs.ErrStorageUnavailable, err))
			} else if visited {
				log.Printf("worker %d: skipping %s: %v", id, item.URL, errs.NewSkipped("already visited in a prior crawl"))
				p.front.MarkProcessed(item.URL)
				continue
			}
		}

		resp := p.fetch.Get(ctx, item.URL)
		if !resp.Success {
			log.Printf("worker %d: fetch failed for %s: %v", id, item.URL, fmt.Errorf("%w: %s", errs.ErrTransport, resp.ErrorMessage))
			p.front.MarkProcessed(item.URL)
			continue
		}

		if !strings.Contains(resp.ContentType, "text/html") {
			log.Printf("worker %d: skipping %s: %v", id, item.URL, errs.NewSkipped("content-type is not text/html"))
			p.front.MarkProcessed(item.URL)
			continue
		}

		atomic.AddInt64(&p.pagesCrawled, 1)

		title := extractor.ExtractTitle(resp.Body)
		content := extractor.ExtractText(resp.Body)

		if err := p.indexPage(ctx, item.URL, title, content); err != nil {
			log.Printf("worker %d: indexing failed for %s: %v", id, item.URL, fmt.Errorf("%w: %w", errs.ErrIndexingFailed, err))
		} else {
			atomic.AddInt64(&p.pagesIndexed, 1)
		}

		if item.Depth < p.cfg.MaxDepth {
			for _, link := range extractor.ExtractLinks(resp.Body, item.URL) {
				if ShouldCrawl(link) {
					p.front.Enqueue(link, item.Depth+1)
				}
			}
		}

		p.front.MarkProcessed(item.URL)
		if p.resume != nil {
			if err := p.resume.MarkVisited(item.URL); err != nil {
				log.Printf("worker %d: resume record failed for %s: %v", id, item.URL, err)
			}
		}
		time.Sleep(politenessDelay)
	}
}

// indexPage upserts the document, then upserts each word and accumulates
// its frequency as a posting.
func (p *Pool) indexPage(ctx context.Context, url, title, content string) error {
	docID, err := p.db.InsertDocument(ctx, url, title, content)
	if err != nil {
		return err
	}

	freq := p.tok.Index(content)

	var occurrences int64
	for _, n := range freq {
		occurrences += int64(n)
	}
	atomic.AddInt64(&p.totalWords, occurrences)

	for word, n := range freq {
		wordID, err := p.db.GetOrCreateWord(ctx, word)
		if err != nil {
			return err
		}
		if err := p.db.AddPosting(ctx, docID, wordID, n); err != nil {
			return err
		}
	}
	return nil
}

// Stats is a point-in-time, observational snapshot of the pool's counters.
type Stats struct {
	PagesCrawled int64
	PagesIndexed int64
	TotalWords   int64
}

// Stats returns the current observational counters.
func (p *Pool) Stats() Stats {
	return Stats{
		PagesCrawled: atomic.LoadInt64(&p.pagesCrawled),
		PagesIndexed: atomic.LoadInt64(&p.pagesIndexed),
		TotalWords:   atomic.LoadInt64(&p.totalWords),
	}
}
