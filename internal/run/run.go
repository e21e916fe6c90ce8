// Package run executes ordered runs of checks per activity and interprets
// each check's post-behavior directive to steer the iteration.
package run

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"modsieve/internal/check"
)

// Config is the full evaluation suite: ordered runs, each an ordered check
// list. Parsing config text into this shape happens upstream; this package
// only validates and builds it.
type Config struct {
	Runs []RunConfig `json:"runs"`
}

// RunConfig is one named run.
type RunConfig struct {
	Name   string         `json:"name"`
	Checks []check.Config `json:"checks"`
}

// LoadFile reads a JSON suite configuration from disk. Unknown fields are
// rejected so typos in check configs fail at startup instead of silently
// disabling behavior.
func LoadFile(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read suite config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse suite config %s: %w", path, err)
	}
	return cfg, nil
}

// Run is a built, immutable run.
type Run struct {
	name   string
	checks []*check.Check
}

// Name returns the run's label.
func (r *Run) Name() string { return r.name }

// buildRuns validates the suite shape and constructs every check. All
// configuration errors surface here, before any activity is evaluated.
func buildRuns(cfg Config, deps check.Deps) ([]*Run, map[string]int, error) {
	if len(cfg.Runs) == 0 {
		return nil, nil, fmt.Errorf("at least one run is required")
	}

	runs := make([]*Run, 0, len(cfg.Runs))
	index := make(map[string]int, len(cfg.Runs))
	for i, rc := range cfg.Runs {
		if rc.Name == "" {
			return nil, nil, fmt.Errorf("run %d: name is required", i)
		}
		if _, dup := index[rc.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate run name %q", rc.Name)
		}
		index[rc.Name] = i

		checks := make([]*check.Check, 0, len(rc.Checks))
		seen := make(map[string]struct{}, len(rc.Checks))
		for _, cc := range rc.Checks {
			c, err := check.New(cc, deps)
			if err != nil {
				return nil, nil, fmt.Errorf("run %q: %w", rc.Name, err)
			}
			if _, dup := seen[c.Name()]; dup {
				return nil, nil, fmt.Errorf("run %q: duplicate check name %q", rc.Name, c.Name())
			}
			seen[c.Name()] = struct{}{}
			checks = append(checks, c)
		}
		runs = append(runs, &Run{name: rc.Name, checks: checks})
	}

	// Goto targets must name existing runs.
	for _, r := range runs {
		for _, c := range r.checks {
			onTrigger, onFail := c.Directives()
			for _, d := range []check.Directive{onTrigger, onFail} {
				if d.Behavior != check.BehaviorGoto {
					continue
				}
				if _, ok := index[d.Target]; !ok {
					return nil, nil, fmt.Errorf("run %q check %q: goto target %q does not exist", r.name, c.Name(), d.Target)
				}
			}
		}
	}

	return runs, index, nil
}
