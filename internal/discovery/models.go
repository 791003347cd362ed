package discovery

// Framework identifies the web framework a project directory belongs to
type Framework string

const (
	FrameworkWordPress Framework = "WordPress"
	FrameworkLaravel   Framework = "Laravel"
	FrameworkPython    Framework = "Python"
	FrameworkUnknown   Framework = "Unknown"
)

// Frameworks lists every verdict the classifier can return, in display order
var Frameworks = []Framework{
	FrameworkWordPress,
	FrameworkLaravel,
	FrameworkPython,
	FrameworkUnknown,
}

// ScanRoot is a directory whose immediate subdirectories are candidate projects
type ScanRoot struct {
	Path    string   `json:"path"`
	Exclude []string `json:"exclude,omitempty"`
}

// Candidate is a single directory entry found under a scan root
type Candidate struct {
	Path string
	Name string
}

// ProjectRecord represents one classified project found during a scan
type ProjectRecord struct {
	Name      string    `json:"name"`
	Framework Framework `json:"framework"`
	RootPath  string    `json:"path"`
	Database  string    `json:"database,omitempty"`
}

// HasDatabase reports whether a database name was extracted for the project
func (p ProjectRecord) HasDatabase() bool {
	return p.Database != ""
}

// SiteURLFor returns the local URL the project is served on
func (p ProjectRecord) SiteURLFor(domainSuffix string) string {
	return "http://" + p.Name + domainSuffix
}

// AdminURLFor returns the administration URL, or "" when the framework has none
func (p ProjectRecord) AdminURLFor(domainSuffix string) string {
	if p.Framework == FrameworkWordPress {
		return p.SiteURLFor(domainSuffix) + "/wp-admin"
	}
	return ""
}
