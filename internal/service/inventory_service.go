package service

import (
	"context"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/sykell/herd-inventory/internal/config"
	"github.com/sykell/herd-inventory/internal/discovery"
	"github.com/sykell/herd-inventory/internal/inventory"
	"github.com/sykell/herd-inventory/internal/probe"
)

// Snapshot is one complete inventory pass, ready for presentation
type Snapshot struct {
	ID            string                     `json:"id"`
	GeneratedAt   time.Time                  `json:"generated_at"`
	ServerVersion string                     `json:"server_version,omitempty"`
	Projects      []Project                  `json:"projects"`
	Databases     []inventory.DatabaseRecord `json:"databases"`
	Stats         Stats                      `json:"stats"`
	ScanErrors    []string                   `json:"scan_errors,omitempty"`
	DatabaseError string                     `json:"database_error,omitempty"`
	Warnings      []string                   `json:"warnings,omitempty"`
}

// Project is a discovered project joined with its database record
type Project struct {
	discovery.ProjectRecord
	SiteURL       string                    `json:"site_url"`
	AdminURL      string                    `json:"admin_url,omitempty"`
	DatabaseURL   string                    `json:"database_url,omitempty"`
	DatabaseFound bool                      `json:"database_found"`
	DatabaseInfo  *inventory.DatabaseRecord `json:"database_info,omitempty"`
	Site          *probe.Result             `json:"site,omitempty"`
}

// Stats summarizes a snapshot
type Stats struct {
	TotalProjects     int                         `json:"total_projects"`
	ByFramework       map[discovery.Framework]int `json:"by_framework"`
	Databases         int                         `json:"databases"`
	TotalSizeMB       float64                     `json:"total_size_mb"`
	MissingDatabases  int                         `json:"missing_databases"`
	ProjectsWithoutDB int                         `json:"projects_without_database"`
	ReachableSites    int                         `json:"reachable_sites,omitempty"`
}

// SiteProber checks the local sites of discovered projects
type SiteProber interface {
	Probe(ctx context.Context, targets []probe.Target) map[string]probe.Result
}

// InventoryService runs discovery and database collection and merges the results
type InventoryService struct {
	cfg       *config.Config
	engine    *discovery.Engine
	collector *inventory.Collector
	prober    SiteProber
}

// NewInventoryService creates an inventory service
func NewInventoryService(cfg *config.Config, engine *discovery.Engine, collector *inventory.Collector) *InventoryService {
	if engine == nil {
		engine = discovery.NewEngine(nil, nil)
	}
	if collector == nil {
		collector = inventory.NewCollector(nil)
	}
	svc := &InventoryService{cfg: cfg, engine: engine, collector: collector}
	if cfg.Probe.Enabled {
		svc.prober = probe.NewProber(&probe.Config{Workers: cfg.Probe.Workers, Timeout: cfg.Probe.Timeout})
	}
	return svc
}

// WithProber replaces the site prober; nil disables probing
func (s *InventoryService) WithProber(prober SiteProber) *InventoryService {
	s.prober = prober
	return s
}

// Snapshot performs a fresh inventory pass. It never fails: discovery and
// database errors are reported inside the snapshot.
func (s *InventoryService) Snapshot(ctx context.Context) *Snapshot {
	snap := &Snapshot{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
	}

	records, err := s.engine.Discover(s.cfg.ScanRoots)
	if err != nil {
		snap.ScanErrors = splitErrors(err)
	}

	inv, err := s.collector.Collect(ctx, s.cfg.Database)
	if err != nil {
		log.Printf("WARNING: database inventory unavailable: %v", err)
		snap.DatabaseError = err.Error()
	}

	snap.ServerVersion = inv.ServerVersion
	snap.Warnings = inv.Warnings
	snap.Databases = inv.Records()
	snap.Projects = s.merge(records, inv)
	if s.prober != nil {
		s.probeSites(ctx, snap.Projects)
	}
	snap.Stats = summarize(snap.Projects, inv)

	log.Printf("Inventory %s: %d projects, %d databases", snap.ID, len(snap.Projects), len(snap.Databases))
	return snap
}

func (s *InventoryService) merge(records []discovery.ProjectRecord, inv *inventory.Inventory) []Project {
	projects := make([]Project, 0, len(records))
	for _, record := range records {
		project := Project{
			ProjectRecord: record,
			SiteURL:       record.SiteURLFor(s.cfg.DomainSuffix),
			AdminURL:      record.AdminURLFor(s.cfg.DomainSuffix),
		}
		if record.HasDatabase() {
			project.DatabaseURL = DatabaseURL(s.cfg.PhpMyAdminURL, record.Database)
			if info, ok := inv.Lookup(record.Database); ok {
				project.DatabaseFound = true
				project.DatabaseInfo = &info
			}
		}
		projects = append(projects, project)
	}
	return projects
}

func (s *InventoryService) probeSites(ctx context.Context, projects []Project) {
	targets := make([]probe.Target, 0, len(projects))
	for _, p := range projects {
		targets = append(targets, probe.Target{Name: p.Name, URL: p.SiteURL})
	}

	results := s.prober.Probe(ctx, targets)
	for i := range projects {
		if result, ok := results[projects[i].Name]; ok {
			projects[i].Site = &result
		}
	}
}

func summarize(projects []Project, inv *inventory.Inventory) Stats {
	stats := Stats{
		TotalProjects: len(projects),
		ByFramework:   make(map[discovery.Framework]int, len(discovery.Frameworks)),
		Databases:     len(inv.Databases),
		TotalSizeMB:   inv.TotalSizeMB(),
	}
	for _, fw := range discovery.Frameworks {
		stats.ByFramework[fw] = 0
	}

	for _, p := range projects {
		stats.ByFramework[p.Framework]++
		if p.Site != nil && p.Site.Reachable {
			stats.ReachableSites++
		}
		switch {
		case !p.HasDatabase():
			stats.ProjectsWithoutDB++
		case !p.DatabaseFound:
			stats.MissingDatabases++
		}
	}
	return stats
}

// DatabaseURL links a database to its phpMyAdmin structure page
func DatabaseURL(phpMyAdminURL, name string) string {
	if phpMyAdminURL == "" {
		return ""
	}
	return phpMyAdminURL + "/index.php?route=/database/structure&db=" + url.QueryEscape(name)
}

// FilterProjects returns the projects of the given framework
func FilterProjects(projects []Project, framework discovery.Framework) []Project {
	filtered := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Framework == framework {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}
