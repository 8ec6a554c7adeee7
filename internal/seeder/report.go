package seeder

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

type StageReport struct {
	Table     string        `yaml:"table"`
	Generated int           `yaml:"generated"`
	Inserted  int64         `yaml:"inserted"`
	Skipped   int64         `yaml:"skipped"`
	Duration  time.Duration `yaml:"duration"`
}

type Report struct {
	Seed      uint64        `yaml:"seed"`
	StartedAt time.Time     `yaml:"started_at"`
	Stages    []StageReport `yaml:"stages"`
}

// Stage returns the report of table, if it ran.
func (r *Report) Stage(table string) (StageReport, bool) {
	for _, st := range r.Stages {
		if st.Table == table {
			return st, true
		}
	}
	return StageReport{}, false
}

func (r *Report) TotalInserted() int64 {
	var n int64
	for _, st := range r.Stages {
		n += st.Inserted
	}
	return n
}

func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// TableCount is one line of a status listing.
type TableCount struct {
	Table string `yaml:"table"`
	Rows  int64  `yaml:"rows"`
}
