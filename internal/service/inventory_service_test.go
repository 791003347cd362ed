package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sykell/herd-inventory/internal/config"
	"github.com/sykell/herd-inventory/internal/db"
	"github.com/sykell/herd-inventory/internal/discovery"
	"github.com/sykell/herd-inventory/internal/inventory"
	"github.com/sykell/herd-inventory/internal/probe"
)

type stubCatalog struct {
	tables map[string]int
	sizes  map[string]float64
	order  []string
}

func (s *stubCatalog) ServerVersion(ctx context.Context) (string, error) { return "8.0.36", nil }
func (s *stubCatalog) Databases(ctx context.Context) ([]string, error)    { return s.order, nil }
func (s *stubCatalog) CountTables(ctx context.Context, name string) (int, error) {
	return s.tables[name], nil
}
func (s *stubCatalog) SizeBytes(ctx context.Context, name string) (float64, error) {
	return s.sizes[name], nil
}
func (s *stubCatalog) Close() error { return nil }

func stubOpener(catalog inventory.Catalog, err error) inventory.Opener {
	return func(ctx context.Context, creds db.Credentials) (inventory.Catalog, error) {
		if err != nil {
			return nil, err
		}
		return catalog, nil
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newFixture(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "site-a", "wp-config.php"), "<?php define('DB_NAME', 'wp_a');")
	writeFile(t, filepath.Join(root, "site-b", "artisan"), "")
	writeFile(t, filepath.Join(root, "site-b", ".env"), "DB_DATABASE=laravel_b\n")
	writeFile(t, filepath.Join(root, "site-c", "artisan"), "")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scratch"), 0755))

	return &config.Config{
		ScanRoots: []discovery.ScanRoot{
			{Path: root},
			{Path: filepath.Join(root, "does-not-exist")},
		},
		DomainSuffix:  ".test",
		PhpMyAdminURL: "https://phpmyadmin.test",
	}
}

func TestSnapshot(t *testing.T) {
	cfg := newFixture(t)
	catalog := &stubCatalog{
		order:  []string{"mysql", "wp_a", "unused"},
		tables: map[string]int{"wp_a": 12, "unused": 1},
		sizes:  map[string]float64{"wp_a": 4194304, "unused": 524288},
	}
	svc := NewInventoryService(cfg, nil, inventory.NewCollector(stubOpener(catalog, nil)))

	snap := svc.Snapshot(context.Background())

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "8.0.36", snap.ServerVersion)
	assert.Empty(t, snap.DatabaseError)
	require.Len(t, snap.ScanErrors, 1)

	require.Len(t, snap.Projects, 4)
	sort.Slice(snap.Projects, func(i, j int) bool { return snap.Projects[i].Name < snap.Projects[j].Name })

	// sorted: scratch, site-a, site-b, site-c
	siteA := snap.Projects[1]
	assert.Equal(t, discovery.FrameworkWordPress, siteA.Framework)
	assert.Equal(t, "http://site-a.test", siteA.SiteURL)
	assert.Equal(t, "http://site-a.test/wp-admin", siteA.AdminURL)
	assert.Equal(t, "https://phpmyadmin.test/index.php?route=/database/structure&db=wp_a", siteA.DatabaseURL)
	assert.True(t, siteA.DatabaseFound)
	require.NotNil(t, siteA.DatabaseInfo)
	assert.Equal(t, 12, siteA.DatabaseInfo.TableCount)
	assert.Equal(t, 4.0, siteA.DatabaseInfo.SizeMB)

	siteB := snap.Projects[2]
	assert.Equal(t, discovery.FrameworkLaravel, siteB.Framework)
	assert.Equal(t, "laravel_b", siteB.Database)
	assert.False(t, siteB.DatabaseFound)
	assert.Nil(t, siteB.DatabaseInfo)
	assert.Empty(t, siteB.AdminURL)

	assert.Equal(t, Stats{
		TotalProjects: 4,
		ByFramework: map[discovery.Framework]int{
			discovery.FrameworkWordPress: 1,
			discovery.FrameworkLaravel:   2,
			discovery.FrameworkPython:    0,
			discovery.FrameworkUnknown:   1,
		},
		Databases:         2,
		TotalSizeMB:       4.5,
		MissingDatabases:  1,
		ProjectsWithoutDB: 2,
	}, snap.Stats)

	assert.Equal(t, []inventory.DatabaseRecord{
		{Name: "wp_a", TableCount: 12, SizeMB: 4},
		{Name: "unused", TableCount: 1, SizeMB: 0.5},
	}, snap.Databases)
}

func TestSnapshot_DatabaseUnreachable(t *testing.T) {
	cfg := newFixture(t)
	svc := NewInventoryService(cfg, nil, inventory.NewCollector(stubOpener(nil, errors.New("connection refused"))))

	snap := svc.Snapshot(context.Background())

	assert.Contains(t, snap.DatabaseError, "connection refused")
	assert.Empty(t, snap.Databases)
	assert.Len(t, snap.Projects, 4)
	assert.Equal(t, 0, snap.Stats.Databases)
	assert.Equal(t, 2, snap.Stats.MissingDatabases)
	for _, p := range snap.Projects {
		assert.False(t, p.DatabaseFound)
	}
}

type stubProber struct {
	targets []probe.Target
}

func (s *stubProber) Probe(ctx context.Context, targets []probe.Target) map[string]probe.Result {
	s.targets = targets
	return map[string]probe.Result{
		"site-a": {Reachable: true, StatusCode: 200, Title: "Blog"},
		"site-b": {Reachable: false, Error: "connection refused"},
	}
}

func TestSnapshot_ProbesSites(t *testing.T) {
	cfg := newFixture(t)
	prober := &stubProber{}
	svc := NewInventoryService(cfg, nil, inventory.NewCollector(stubOpener(&stubCatalog{}, nil))).WithProber(prober)

	snap := svc.Snapshot(context.Background())

	require.Len(t, prober.targets, 4)
	urls := map[string]string{}
	for _, target := range prober.targets {
		urls[target.Name] = target.URL
	}
	assert.Equal(t, "http://scratch.test", urls["scratch"])

	sort.Slice(snap.Projects, func(i, j int) bool { return snap.Projects[i].Name < snap.Projects[j].Name })
	assert.Nil(t, snap.Projects[0].Site)
	require.NotNil(t, snap.Projects[1].Site)
	assert.Equal(t, "Blog", snap.Projects[1].Site.Title)
	require.NotNil(t, snap.Projects[2].Site)
	assert.False(t, snap.Projects[2].Site.Reachable)
	assert.Equal(t, 1, snap.Stats.ReachableSites)
}

func TestNewInventoryService_ProbeFromConfig(t *testing.T) {
	cfg := newFixture(t)
	assert.Nil(t, NewInventoryService(cfg, nil, nil).prober)

	cfg.Probe = config.ProbeConfig{Enabled: true, Workers: 2, Timeout: time.Second}
	assert.NotNil(t, NewInventoryService(cfg, nil, nil).prober)
}

func TestFilterProjects(t *testing.T) {
	projects := []Project{
		{ProjectRecord: discovery.ProjectRecord{Name: "a", Framework: discovery.FrameworkLaravel}},
		{ProjectRecord: discovery.ProjectRecord{Name: "b", Framework: discovery.FrameworkWordPress}},
		{ProjectRecord: discovery.ProjectRecord{Name: "c", Framework: discovery.FrameworkLaravel}},
	}

	laravel := FilterProjects(projects, discovery.FrameworkLaravel)
	require.Len(t, laravel, 2)
	assert.Equal(t, "a", laravel[0].Name)
	assert.Equal(t, "c", laravel[1].Name)
	assert.Empty(t, FilterProjects(projects, discovery.FrameworkPython))
}

func TestDatabaseURL(t *testing.T) {
	assert.Equal(t, "https://pma.test/index.php?route=/database/structure&db=my+db", DatabaseURL("https://pma.test", "my db"))
	assert.Empty(t, DatabaseURL("", "shop"))
}
