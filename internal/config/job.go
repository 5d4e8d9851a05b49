package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Job describes one discovery run: which keywords to work, the context
// keyword that earns the soft bonus, and optional filter overrides.
type Job struct {
	Keywords         []string   `yaml:"keywords"`
	ContextKeyword   string     `yaml:"context_keyword"`
	PerKeywordTarget int        `yaml:"per_keyword_target"`
	Concurrency      int        `yaml:"concurrency"`
	Filters          JobFilters `yaml:"filters"`
}

// JobFilters overrides the qualification gates. Zero values keep the
// built-in defaults.
type JobFilters struct {
	MinSubscribers int64    `yaml:"min_subscribers"`
	MinVideos      int64    `yaml:"min_videos"`
	Blacklist      []string `yaml:"blacklist"`
}

// DefaultJob is the run the collector ships with.
func DefaultJob() Job {
	return Job{
		Keywords:         []string{"패션", "운동", "육아"},
		ContextKeyword:   "의류",
		PerKeywordTarget: 3,
		Concurrency:      3,
	}
}

// LoadJob reads a YAML job file, fills defaults for omitted fields, and
// validates the result.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job file: %w", err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("parse job file: %w", err)
	}

	defaults := DefaultJob()
	if len(job.Keywords) == 0 {
		job.Keywords = defaults.Keywords
	}
	if job.ContextKeyword == "" {
		job.ContextKeyword = defaults.ContextKeyword
	}
	if job.PerKeywordTarget == 0 {
		job.PerKeywordTarget = defaults.PerKeywordTarget
	}
	if job.Concurrency == 0 {
		job.Concurrency = defaults.Concurrency
	}

	if err := job.Validate(); err != nil {
		return Job{}, fmt.Errorf("job file %s: %w", path, err)
	}
	return job, nil
}

// Validate rejects jobs that would make the orchestrator misbehave.
func (j Job) Validate() error {
	keywords := 0
	for _, kw := range j.Keywords {
		if strings.TrimSpace(kw) != "" {
			keywords++
		}
	}
	if keywords == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	if j.PerKeywordTarget < 1 {
		return fmt.Errorf("per_keyword_target must be at least 1, got %d", j.PerKeywordTarget)
	}
	if j.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", j.Concurrency)
	}
	if j.Filters.MinSubscribers < 0 {
		return fmt.Errorf("filters.min_subscribers must not be negative, got %d", j.Filters.MinSubscribers)
	}
	if j.Filters.MinVideos < 0 {
		return fmt.Errorf("filters.min_videos must not be negative, got %d", j.Filters.MinVideos)
	}
	return nil
}
