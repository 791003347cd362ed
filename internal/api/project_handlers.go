package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sykell/herd-inventory/internal/discovery"
	"github.com/sykell/herd-inventory/internal/service"
)

// ListResponse represents a list response
type ListResponse struct {
	Data  []service.Project `json:"data"`
	Total int               `json:"total"`
}

var allowedSorts = map[string]func(a, b service.Project) bool{
	"name asc":       func(a, b service.Project) bool { return a.Name < b.Name },
	"name desc":      func(a, b service.Project) bool { return a.Name > b.Name },
	"framework asc":  func(a, b service.Project) bool { return a.Framework < b.Framework },
	"framework desc": func(a, b service.Project) bool { return a.Framework > b.Framework },
}

// ProjectsHandler lists projects with optional framework filter, search and sort
func ProjectsHandler(svc Snapshotter) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects := svc.Snapshot(c.Request.Context()).Projects

		if raw := strings.TrimSpace(c.Query("framework")); raw != "" {
			framework, ok := parseFramework(raw)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown framework", "framework": raw})
				return
			}
			projects = service.FilterProjects(projects, framework)
		}

		// Parse search parameter
		if search := strings.ToLower(strings.TrimSpace(c.Query("q"))); search != "" {
			matched := make([]service.Project, 0, len(projects))
			for _, p := range projects {
				if strings.Contains(strings.ToLower(p.Name), search) || strings.Contains(strings.ToLower(p.Database), search) {
					matched = append(matched, p)
				}
			}
			projects = matched
		}

		// Unknown sorts keep discovery order
		if less, ok := allowedSorts[c.Query("sort")]; ok {
			sorted := append([]service.Project(nil), projects...)
			sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
			projects = sorted
		}

		c.JSON(http.StatusOK, ListResponse{
			Data:  projects,
			Total: len(projects),
		})
	}
}

// ProjectHandler returns a single project by directory name
func ProjectHandler(svc Snapshotter) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		for _, p := range svc.Snapshot(c.Request.Context()).Projects {
			if p.Name == name {
				c.JSON(http.StatusOK, p)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	}
}

func parseFramework(raw string) (discovery.Framework, bool) {
	for _, fw := range discovery.Frameworks {
		if strings.EqualFold(string(fw), raw) {
			return fw, true
		}
	}
	return "", false
}
