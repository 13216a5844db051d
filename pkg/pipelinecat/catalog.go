package pipelinecat

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog is the mutex-guarded, directory-backed pipeline collection: one
// YAML file per pipeline, named "<id>.yaml".
type Catalog struct {
	mu        sync.Mutex
	dir       string
	pipelines map[string]*Pipeline
}

// OpenCatalog loads every "*.yaml"/"*.yml" file in dir, validating each. A
// missing directory is not an error — it is treated as an empty catalog.
func OpenCatalog(dir string) (*Catalog, error) {
	c := &Catalog{dir: dir, pipelines: map[string]*Pipeline{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("pipelinecat: read %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		p, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if err := Validate(p); err != nil {
			return nil, err
		}
		c.pipelines[p.ID] = p
	}
	return c, nil
}

func loadFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipelinecat: read %s: %w", path, err)
	}
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("pipelinecat: parse %s: %w", path, err)
	}
	return &p, nil
}

// List returns every pipeline, sorted by id for deterministic output.
func (c *Catalog) List() []*Pipeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Pipeline, 0, len(c.pipelines))
	for _, p := range c.pipelines {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the pipeline with the given id.
func (c *Catalog) Get(id string) (*Pipeline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pipelines[id]
	return p, ok
}

// Save validates p, then atomically rewrites "<id>.yaml" and updates the
// in-memory catalog.
func (c *Catalog) Save(p *Pipeline) error {
	if err := Validate(p); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("pipelinecat: encode %s: %w", p.ID, err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("pipelinecat: mkdir %s: %w", c.dir, err)
	}

	path := filepath.Join(c.dir, p.ID+".yaml")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("pipelinecat: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("pipelinecat: rename %s: %w", path, err)
	}

	c.pipelines[p.ID] = p
	return nil
}

// Delete removes the pipeline's file and its in-memory entry. Deleting an
// absent id is a no-op.
func (c *Catalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pipelines[id]; !ok {
		return nil
	}
	path := filepath.Join(c.dir, id+".yaml")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pipelinecat: remove %s: %w", path, err)
	}
	delete(c.pipelines, id)
	return nil
}
