// Package discovery finds local projects under scan roots, classifies their
// framework and reads the database name they are configured with.
package discovery

import (
	"errors"
	"log"
)

// Engine composes listing, classification and extraction
type Engine struct {
	classifier *Classifier
	extractor  *Extractor
}

// NewEngine creates a discovery engine. Nil arguments fall back to defaults.
func NewEngine(classifier *Classifier, extractor *Extractor) *Engine {
	if classifier == nil {
		classifier = NewClassifier()
	}
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &Engine{classifier: classifier, extractor: extractor}
}

// ScanRoot classifies every candidate directory under root. On listing
// failure it returns no records together with the error.
func (e *Engine) ScanRoot(root ScanRoot) ([]ProjectRecord, error) {
	candidates, err := ListDirectories(root)
	if err != nil {
		return nil, err
	}

	records := make([]ProjectRecord, 0, len(candidates))
	for _, candidate := range candidates {
		records = append(records, e.classify(candidate))
	}
	return records, nil
}

// Discover scans every root independently and concatenates the results.
// Root failures are logged and joined into the returned error, which is
// informational: the records are always usable.
func (e *Engine) Discover(roots []ScanRoot) ([]ProjectRecord, error) {
	var (
		records []ProjectRecord
		errs    []error
	)

	for _, root := range roots {
		found, err := e.ScanRoot(root)
		if err != nil {
			log.Printf("WARNING: skipping scan root %s: %v", root.Path, err)
			errs = append(errs, err)
			continue
		}
		records = append(records, found...)
	}

	return records, errors.Join(errs...)
}

func (e *Engine) classify(candidate Candidate) ProjectRecord {
	record := ProjectRecord{
		Name:      candidate.Name,
		Framework: e.classifier.Classify(candidate.Path),
		RootPath:  candidate.Path,
	}

	name, err := e.extractor.DatabaseName(candidate.Path, record.Framework)
	switch {
	case err == nil:
		record.Database = name
	case !errors.Is(err, ErrNoDatabase):
		log.Printf("WARNING: could not read database name for %s: %v", candidate.Path, err)
	}

	return record
}
