package actions

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds the available actions, addressable by ID or alias.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
	aliases map[string]string // alias -> action ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]Action),
		aliases: make(map[string]string),
	}
}

// Register adds an action. IDs and aliases must be unique.
func (r *Registry) Register(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" || a.Subcommand == "" {
		return fmt.Errorf("action needs an ID and a subcommand")
	}
	if _, exists := r.lookup(a.ID); exists {
		return fmt.Errorf("action %q already registered", a.ID)
	}
	for _, alias := range a.Aliases {
		if _, exists := r.lookup(alias); exists {
			return fmt.Errorf("alias %q of %s already registered", alias, a.ID)
		}
	}

	r.actions[a.ID] = a
	for _, alias := range a.Aliases {
		r.aliases[alias] = a.ID
	}
	return nil
}

func (r *Registry) lookup(name string) (Action, bool) {
	if a, ok := r.actions[name]; ok {
		return a, true
	}
	if id, ok := r.aliases[name]; ok {
		a, ok := r.actions[id]
		return a, ok
	}
	return Action{}, false
}

// Get retrieves an action by ID, alias or subcommand.
func (r *Registry) Get(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.lookup(name); ok {
		return a, true
	}
	for _, a := range r.actions {
		if a.Subcommand == name {
			return a, true
		}
	}
	return Action{}, false
}

// List returns all actions sorted by ID.
func (r *Registry) List() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Action, 0, len(r.actions))
	for _, a := range r.actions {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// ListGroup returns the list action of group, used to fill the tree.
func (r *Registry) ListGroup(group string) (Action, bool) {
	for _, a := range r.List() {
		if a.Group == group && a.List {
			return a, true
		}
	}
	return Action{}, false
}

// AllCompletions returns every ID, alias and subcommand, sorted.
func (r *Registry) AllCompletions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, 2*len(r.actions)+len(r.aliases))
	for id, a := range r.actions {
		seen[id] = true
		seen[a.Subcommand] = true
	}
	for alias := range r.aliases {
		seen[alias] = true
	}
	completions := make([]string, 0, len(seen))
	for name := range seen {
		if name != "" {
			completions = append(completions, name)
		}
	}
	sort.Strings(completions)
	return completions
}

// Completions returns the IDs, aliases and subcommands starting with prefix.
func (r *Registry) Completions(prefix string) []string {
	var out []string
	for _, c := range r.AllCompletions() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
