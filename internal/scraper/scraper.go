// Package scraper coordinates a full inventory run: discovery, per-page
// extraction, VIN enrichment and the cleanup pipeline.
package scraper

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"dealerscraper/internal/browser"
	"dealerscraper/internal/discovery"
	"dealerscraper/internal/extractor"
	"dealerscraper/internal/models"
	"dealerscraper/internal/pipeline"
	"dealerscraper/internal/vindecode"
)

// Config controls one scrape run.
type Config struct {
	EntryURLs         []string
	MaxVehiclesPerURL int
	Limits            discovery.Limits
	Headless          bool
	BlockImages       bool
	Workers           int
}

func (c Config) withDefaults() Config {
	if c.MaxVehiclesPerURL == 0 {
		c.MaxVehiclesPerURL = 500
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	return c
}

// Reporter receives run progress. Handlers plug in their own to surface
// status over the API; LogReporter is the default.
type Reporter interface {
	Progress(pct int, msg string)
	Warn(msg string)
	Error(msg string)
}

// LogReporter writes progress to the standard logger.
type LogReporter struct{}

func (LogReporter) Progress(pct int, msg string) { log.Printf("📊 [%d%%] %s", pct, msg) }
func (LogReporter) Warn(msg string)              { log.Printf("⚠️  %s", msg) }
func (LogReporter) Error(msg string)             { log.Printf("❌ %s", msg) }

// Scraper runs inventory scrapes. Safe to reuse across runs, but a single
// run at a time.
type Scraper struct {
	decoder  *vindecode.Client
	reporter Reporter
}

func New(decoder *vindecode.Client, reporter Reporter) *Scraper {
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Scraper{decoder: decoder, reporter: reporter}
}

// Run executes a full scrape over every entry URL and returns the finalized
// dataset. A browser launch failure is fatal; everything past that degrades
// per-page.
func (s *Scraper) Run(ctx context.Context, cfg Config) ([]*models.VehicleRecord, error) {
	cfg = cfg.withDefaults()
	start := time.Now()

	var raw []*models.VehicleRecord
	for i, entry := range cfg.EntryURLs {
		pct := i * 80 / len(cfg.EntryURLs)
		s.reporter.Progress(pct, fmt.Sprintf("Scraping site %d/%d: %s", i+1, len(cfg.EntryURLs), entry))

		recs, err := s.scrapeSite(ctx, entry, cfg)
		if err != nil {
			return nil, err
		}
		raw = append(raw, recs...)
	}

	s.reporter.Progress(85, fmt.Sprintf("Decoding VINs for %d records", len(raw)))
	s.enrich(ctx, raw)

	s.reporter.Progress(95, "Running cleanup pipeline")
	out := pipeline.Finalize(raw)

	s.reporter.Progress(100, fmt.Sprintf("Done: %d vehicles in %s", len(out), time.Since(start).Round(time.Second)))
	return out, nil
}

func (s *Scraper) scrapeSite(ctx context.Context, entry string, cfg Config) ([]*models.VehicleRecord, error) {
	session, err := browser.New(browser.Options{
		Headless:    cfg.Headless,
		BlockImages: cfg.BlockImages,
	})
	if err != nil {
		return nil, fmt.Errorf("browser launch failed: %v", err)
	}
	defer session.Close()

	links, err := discovery.Discover(session, entry, cfg.Limits)
	if err != nil {
		s.reporter.Warn(fmt.Sprintf("Discovery failed for %s: %v", entry, err))
		return nil, nil
	}
	if len(links) > cfg.MaxVehiclesPerURL {
		links = links[:cfg.MaxVehiclesPerURL]
	}
	log.Printf("🎉 %s: extracting %d detail pages", extractor.SiteLabel(entry), len(links))

	if cfg.Workers > 1 {
		return s.extractParallel(ctx, links, cfg)
	}
	return s.extractAll(ctx, session, links), nil
}

// extractAll walks the detail pages with the discovery session. A failed
// page yields a stub record carrying only the URL so the pipeline can
// account for it.
func (s *Scraper) extractAll(ctx context.Context, session *browser.Session, links []string) []*models.VehicleRecord {
	engine := extractor.New(session)
	out := make([]*models.VehicleRecord, 0, len(links))

	for i, link := range links {
		if ctx.Err() != nil {
			s.reporter.Warn("Run cancelled")
			break
		}
		rec, err := engine.Extract(link)
		if err != nil {
			s.reporter.Warn(fmt.Sprintf("Extraction failed for %s: %v", link, err))
			rec = &models.VehicleRecord{SourceURL: link, SourceSite: extractor.SiteLabel(link)}
		}
		out = append(out, rec)

		if (i+1)%10 == 0 {
			log.Printf("✓ Extracted %d/%d pages", i+1, len(links))
		}
		browser.JitterSleep(1500*time.Millisecond, 700*time.Millisecond)
	}
	return out
}

// extractParallel fans the detail pages out over a small pool, one browser
// per worker. Output is re-sorted by URL so runs stay deterministic.
func (s *Scraper) extractParallel(ctx context.Context, links []string, cfg Config) ([]*models.VehicleRecord, error) {
	jobs := make(chan string, len(links))
	results := make(chan *models.VehicleRecord, len(links))
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			session, err := browser.New(browser.Options{
				Headless:    cfg.Headless,
				BlockImages: cfg.BlockImages,
			})
			if err != nil {
				s.reporter.Error(fmt.Sprintf("Worker browser launch failed: %v", err))
				for link := range jobs {
					results <- &models.VehicleRecord{SourceURL: link, SourceSite: extractor.SiteLabel(link)}
				}
				return
			}
			defer session.Close()
			engine := extractor.New(session)

			for link := range jobs {
				if ctx.Err() != nil {
					results <- &models.VehicleRecord{SourceURL: link, SourceSite: extractor.SiteLabel(link)}
					continue
				}
				rec, err := engine.Extract(link)
				if err != nil {
					s.reporter.Warn(fmt.Sprintf("Extraction failed for %s: %v", link, err))
					rec = &models.VehicleRecord{SourceURL: link, SourceSite: extractor.SiteLabel(link)}
				}
				results <- rec
				browser.JitterSleep(1500*time.Millisecond, 700*time.Millisecond)
			}
		}()
	}

	for _, link := range links {
		jobs <- link
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]*models.VehicleRecord, 0, len(links))
	for rec := range results {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceURL < out[j].SourceURL })
	return out, nil
}

// enrich decodes every full VIN into the vin_* fields. Scraped fields are
// never overwritten; the decoded values sit alongside for cross-checking.
func (s *Scraper) enrich(ctx context.Context, recs []*models.VehicleRecord) {
	if s.decoder == nil {
		return
	}
	decoded := 0
	for _, rec := range recs {
		if len(rec.VIN) != 17 {
			continue
		}
		res := s.decoder.Decode(ctx, rec.VIN)
		if res.Empty() {
			continue
		}
		rec.VINMake = res.Make
		rec.VINModel = res.Model
		rec.VINYear = res.ModelYear
		rec.VINTrim = res.Trim
		rec.VINBodyStyle = res.BodyClass
		decoded++
	}
	log.Printf("✓ Decoded %d VINs", decoded)
}
