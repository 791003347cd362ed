package inventory

import (
	"fmt"
	"log"
	"math"
)

// DatabaseRecord describes one user database on the server
type DatabaseRecord struct {
	Name       string  `json:"name"`
	TableCount int     `json:"tables"`
	SizeMB     float64 `json:"size_mb"`
}

// Inventory is the result of one inventory pass
type Inventory struct {
	ServerVersion string                    `json:"server_version,omitempty"`
	Databases     map[string]DatabaseRecord `json:"databases"`
	// Order keeps the server-returned enumeration order
	Order    []string `json:"order"`
	Warnings []string `json:"warnings,omitempty"`
}

func newInventory() *Inventory {
	return &Inventory{
		Databases: make(map[string]DatabaseRecord),
		Order:     []string{},
	}
}

// Lookup returns the record for name, if the server has it
func (inv *Inventory) Lookup(name string) (DatabaseRecord, bool) {
	record, ok := inv.Databases[name]
	return record, ok
}

// Records returns the databases in server order
func (inv *Inventory) Records() []DatabaseRecord {
	records := make([]DatabaseRecord, 0, len(inv.Order))
	for _, name := range inv.Order {
		records = append(records, inv.Databases[name])
	}
	return records
}

// TotalSizeMB sums the size of every database, rounded to 2 decimal places
func (inv *Inventory) TotalSizeMB() float64 {
	var total float64
	for _, record := range inv.Databases {
		total += record.SizeMB
	}
	return math.Round(total*100) / 100
}

func (inv *Inventory) add(record DatabaseRecord) {
	if _, dup := inv.Databases[record.Name]; !dup {
		inv.Order = append(inv.Order, record.Name)
	}
	inv.Databases[record.Name] = record
}

func (inv *Inventory) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("WARNING: inventory: %s", msg)
	inv.Warnings = append(inv.Warnings, msg)
}
