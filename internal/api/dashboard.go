package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sykell/herd-inventory/internal/discovery"
	"github.com/sykell/herd-inventory/internal/service"
)

const dashboardTemplateName = "dashboard"

type projectSection struct {
	Framework discovery.Framework
	Projects  []service.Project
}

type dashboardView struct {
	AppName       string
	PhpMyAdminURL string
	Snapshot      *service.Snapshot
	Sections      []projectSection
}

// DashboardTemplate parses the dashboard page. Database links point at phpMyAdminURL.
func DashboardTemplate(phpMyAdminURL string) *template.Template {
	funcs := template.FuncMap{
		"databaseURL": func(name string) string {
			return service.DatabaseURL(phpMyAdminURL, name)
		},
		"count": func(stats service.Stats, fw discovery.Framework) int {
			return stats.ByFramework[fw]
		},
	}
	return template.Must(template.New(dashboardTemplateName).Funcs(funcs).Parse(dashboardHTML))
}

// DashboardHandler renders the HTML dashboard from a fresh snapshot
func DashboardHandler(appName, phpMyAdminURL string, svc Snapshotter) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := svc.Snapshot(c.Request.Context())

		view := dashboardView{
			AppName:       appName,
			PhpMyAdminURL: phpMyAdminURL,
			Snapshot:      snap,
		}
		for _, fw := range discovery.Frameworks {
			projects := service.FilterProjects(snap.Projects, fw)
			// WordPress and Laravel always get a section, even when empty
			if len(projects) == 0 && fw != discovery.FrameworkWordPress && fw != discovery.FrameworkLaravel {
				continue
			}
			view.Sections = append(view.Sections, projectSection{Framework: fw, Projects: projects})
		}

		c.HTML(http.StatusOK, dashboardTemplateName, view)
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.AppName}}</title>
<style>
body{font-family:system-ui,sans-serif;background:#f9fafb;color:#111827;margin:0}
header,main{max-width:72rem;margin:0 auto;padding:1rem}
.stats{display:grid;grid-template-columns:repeat(4,1fr);gap:1rem}
.card{background:#fff;border:1px solid #e5e7eb;border-radius:.5rem;padding:1rem}
.projects{display:grid;grid-template-columns:repeat(auto-fill,minmax(18rem,1fr));gap:1rem}
.alert{background:#fef2f2;border:1px solid #fecaca;padding:.75rem;border-radius:.5rem;margin-bottom:1rem}
.missing{color:#b91c1c}
table{width:100%;border-collapse:collapse;background:#fff}
td,th{border-bottom:1px solid #e5e7eb;padding:.5rem;text-align:left}
</style>
</head>
<body>
<header>
<h1>{{.AppName}}</h1>
{{with .Snapshot.ServerVersion}}<p id="server-version">MySQL {{.}}</p>{{end}}
{{if .PhpMyAdminURL}}<a id="phpmyadmin" href="{{.PhpMyAdminURL}}" target="_blank" rel="noopener">phpMyAdmin</a>{{end}}
</header>
<main>
{{with .Snapshot.DatabaseError}}<div class="alert" id="database-error">Database server unavailable: {{.}}</div>{{end}}
{{range .Snapshot.ScanErrors}}<div class="alert scan-error">{{.}}</div>{{end}}

<section id="overview">
<h2>Overview</h2>
<div class="stats">
<div class="card"><strong id="stat-total">{{.Snapshot.Stats.TotalProjects}}</strong> Total Sites</div>
<div class="card"><strong id="stat-laravel">{{count .Snapshot.Stats "Laravel"}}</strong> Laravel Sites</div>
<div class="card"><strong id="stat-wordpress">{{count .Snapshot.Stats "WordPress"}}</strong> WordPress Sites</div>
<div class="card"><strong id="stat-databases">{{.Snapshot.Stats.Databases}}</strong> Databases ({{printf "%.2f" .Snapshot.Stats.TotalSizeMB}} MB)</div>
</div>
</section>

{{range .Sections}}
<section class="framework" data-framework="{{.Framework}}">
<h2>{{.Framework}} Sites</h2>
{{if not .Projects}}<p class="empty">No {{.Framework}} sites found.</p>{{end}}
<div class="projects">
{{range .Projects}}
<div class="card project" data-name="{{.Name}}">
<h3><a class="site-url" href="{{.SiteURL}}" target="_blank" rel="noopener">{{.Name}}</a></h3>
{{with .AdminURL}}<a class="admin-url" href="{{.}}" target="_blank" rel="noopener">Admin</a>{{end}}
<p class="path">{{.RootPath}}</p>
{{with .Site}}{{if .Reachable}}<p class="site-status up">HTTP {{.StatusCode}}{{with .Title}} &middot; {{.}}{{end}}</p>{{else}}<p class="site-status missing">Site not responding</p>{{end}}{{end}}
{{if .HasDatabase}}
<p class="database">Database: {{.Database}}
{{if .DatabaseFound}}<a class="database-url" href="{{.DatabaseURL}}" target="_blank" rel="noopener">Open</a> ({{.DatabaseInfo.TableCount}} tables, {{printf "%.2f" .DatabaseInfo.SizeMB}} MB){{else}}<span class="missing">(not on server)</span>{{end}}
</p>
{{else}}
<p class="database missing">Database: Not Found</p>
{{end}}
</div>
{{end}}
</div>
</section>
{{end}}

<section id="databases">
<h2>Databases</h2>
<table>
<thead><tr><th>Name</th><th>Tables</th><th>Size (MB)</th><th></th></tr></thead>
<tbody>
{{range .Snapshot.Databases}}
<tr class="database-row" data-name="{{.Name}}"><td>{{.Name}}</td><td class="tables">{{.TableCount}}</td><td class="size">{{printf "%.2f" .SizeMB}}</td><td>{{with databaseURL .Name}}<a href="{{.}}" target="_blank" rel="noopener">phpMyAdmin</a>{{end}}</td></tr>
{{else}}
<tr><td colspan="4">No databases found.</td></tr>
{{end}}
</tbody>
</table>
</section>
<footer><small>Inventory {{.Snapshot.ID}} generated {{.Snapshot.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</small></footer>
</main>
</body>
</html>
`
