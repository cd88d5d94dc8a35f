package agents

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Agent describes one specialized domain agent.
type Agent struct {
	Name        string   `yaml:"name" json:"name"`
	Icon        string   `yaml:"icon,omitempty" json:"icon"`
	Description string   `yaml:"description" json:"description"`
	Tools       []string `yaml:"tools,omitempty" json:"tools"`
	// Routing — one-line definition the supervisor uses to classify queries
	Routing string `yaml:"routing,omitempty" json:"routing"`
	// Prompt stays out of JSON: the agent listing is public.
	Prompt string `yaml:"prompt" json:"-"`
}

type registryFile struct {
	Agents []Agent `yaml:"agents"`
}

// Registry holds the live agent set. Reads are hot-path (every chat turn),
// writes happen on admin updates and file reloads.
type Registry struct {
	mu    sync.RWMutex
	by    map[string]Agent
	order []string
	path  string
}

// NewRegistry starts from the built-in agents and overlays the yaml file at
// path, if given. A missing file is seeded with the defaults so operators
// have something to edit.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{
		by:    make(map[string]Agent),
		order: make([]string, 0, len(defaultAgents)),
		path:  path,
	}
	for _, a := range defaultAgents {
		r.by[a.Name] = a
		r.order = append(r.order, a.Name)
	}

	if path == "" {
		return r, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if seedErr := r.persistLocked(); seedErr != nil {
			log.Printf("[agents] could not seed %s: %v", path, seedErr)
		}
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}
	if err := r.apply(raw); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the yaml file. The old set is kept when the file is broken.
func (r *Registry) Reload() error {
	if r.path == "" {
		return nil
	}
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read agents file: %w", err)
	}
	return r.apply(raw)
}

func (r *Registry) apply(raw []byte) error {
	var f registryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse agents file: %w", err)
	}

	for i, a := range f.Agents {
		a.Name = strings.ToLower(strings.TrimSpace(a.Name))
		if a.Name == "" {
			return fmt.Errorf("agent #%d has no name", i+1)
		}
		if strings.TrimSpace(a.Prompt) == "" {
			return fmt.Errorf("agent %q has no prompt", a.Name)
		}
		f.Agents[i] = a
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range f.Agents {
		if _, known := r.by[a.Name]; !known {
			r.order = append(r.order, a.Name)
		}
		r.by[a.Name] = a
	}
	return nil
}

// Editable reports whether updates can be persisted. Without a backing file
// the built-in set is read-only.
func (r *Registry) Editable() bool {
	return r.path != ""
}

// Lookup returns the agent for a domain name.
func (r *Registry) Lookup(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.by[strings.ToLower(name)]
	return a, ok
}

// List returns all agents in registration order.
func (r *Registry) List() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agent, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.by[name])
	}
	return out
}

// Domains returns the routable domain names.
func (r *Registry) Domains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// AgentUpdate carries the editable fields. Nil means "leave as is".
type AgentUpdate struct {
	Icon        *string  `json:"icon"`
	Description *string  `json:"description"`
	Routing     *string  `json:"routing"`
	Prompt      *string  `json:"prompt"`
	Tools       []string `json:"tools"`
}

// Update patches one agent and persists the whole set.
func (r *Registry) Update(name string, upd AgentUpdate) (Agent, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.by[name]
	if !ok {
		return Agent{}, fmt.Errorf("unknown agent %q", name)
	}

	if upd.Icon != nil {
		a.Icon = *upd.Icon
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.Routing != nil {
		a.Routing = *upd.Routing
	}
	if upd.Prompt != nil {
		if strings.TrimSpace(*upd.Prompt) == "" {
			return Agent{}, fmt.Errorf("prompt must not be empty")
		}
		a.Prompt = *upd.Prompt
	}
	if upd.Tools != nil {
		a.Tools = upd.Tools
	}

	r.by[name] = a

	if err := r.persistLocked(); err != nil {
		return Agent{}, err
	}
	return a, nil
}

// persistLocked writes the current set to the yaml file atomically.
// Callers must hold at least a read lock.
func (r *Registry) persistLocked() error {
	if r.path == "" {
		return nil
	}

	f := registryFile{Agents: make([]Agent, 0, len(r.order))}
	for _, n := range r.order {
		f.Agents = append(f.Agents, r.by[n])
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal agents: %w", err)
	}

	pending, err := renameio.NewPendingFile(r.path)
	if err != nil {
		return fmt.Errorf("create pending agents file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write agents file: %w", err)
	}
	return pending.CloseAtomicallyReplace()
}
