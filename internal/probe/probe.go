// Package probe fetches the local site of each project and reports whether
// it answers, with a few details read from its landing page.
package probe

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Target is one site to probe
type Target struct {
	Name string
	URL  string
}

// Result is the outcome of probing one site
type Result struct {
	Reachable    bool          `json:"reachable"`
	StatusCode   int           `json:"status_code,omitempty"`
	Title        string        `json:"title,omitempty"`
	Generator    string        `json:"generator,omitempty"`
	HasLoginForm bool          `json:"has_login_form"`
	Latency      time.Duration `json:"latency_ns"`
	Error        string        `json:"error,omitempty"`
}

// Config holds prober configuration
type Config struct {
	Workers int
	Timeout time.Duration
}

// DefaultConfig returns default prober configuration
func DefaultConfig() *Config {
	return &Config{
		Workers: 5,
		Timeout: 5 * time.Second,
	}
}

// Prober fetches sites with a fixed pool of workers
type Prober struct {
	client  *http.Client
	workers int
	timeout time.Duration
}

// NewProber creates a new prober
func NewProber(config *Config) *Prober {
	if config == nil {
		config = DefaultConfig()
	}
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}

	return &Prober{
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		workers: workers,
		timeout: config.Timeout,
	}
}

// Probe fetches every target and returns the results keyed by target name.
// A site that fails to answer is reported in its result, never as an error.
func (p *Prober) Probe(ctx context.Context, targets []Target) map[string]Result {
	results := make(map[string]Result, len(targets))
	if len(targets) == 0 {
		return results
	}

	queue := make(chan Target)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := 0; i < p.workers && i < len(targets); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range queue {
				result := p.probeOne(ctx, target.URL)
				mu.Lock()
				results[target.Name] = result
				mu.Unlock()
			}
		}()
	}

	for _, target := range targets {
		queue <- target
	}
	close(queue)
	wg.Wait()

	return results
}

func (p *Prober) probeOne(ctx context.Context, address string) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	result, err := p.fetch(ctx, address)
	result.Latency = time.Since(start)
	if err != nil {
		log.Printf("WARNING: probe %s: %v", address, err)
		result.Error = err.Error()
	}
	return result
}

func (p *Prober) fetch(ctx context.Context, address string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Herd-Inventory/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch site: %w", err)
	}
	defer resp.Body.Close()

	// any HTTP answer means the site is served, even an error page
	result := Result{Reachable: true, StatusCode: resp.StatusCode}
	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return result, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to parse HTML: %w", err)
	}
	parseDocument(doc, &result)
	return result, nil
}

// parseDocument reads the page details from the landing page
func parseDocument(doc *goquery.Document, result *Result) {
	result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if generator, ok := doc.Find(`meta[name="generator"]`).First().Attr("content"); ok {
		result.Generator = strings.TrimSpace(generator)
	}
	result.HasLoginForm = doc.Find("input[type='password']").Length() > 0
}
