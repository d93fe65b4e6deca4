package dataset

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Factory builds a processor rooted at a dataset directory.
type Factory func(dir string, opts Options) (Processor, error)

// Family describes one registered source family: how to recognize a
// canonical dataset name and how to build its processor.
type Family struct {
	Name  string
	Match func(dataset string) bool
	New   Factory
}

// Registry maps source families to their processors.
type Registry struct {
	families map[string]Family
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry populated with all source families.
func NewRegistry() *Registry {
	r := &Registry{families: make(map[string]Family)}

	r.Register(Family{
		Name:  "douban",
		Match: prefix("douban-"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewDouban(dir, opts)
		},
	})
	r.Register(Family{
		Name:  "food",
		Match: exact("food"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewFood(dir, opts)
		},
	})
	r.Register(Family{
		Name:  "gowalla",
		Match: exact("gowalla"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewGowalla(dir, opts)
		},
	})
	r.Register(Family{
		Name:  "kuairec",
		Match: exact("kuairec"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewKuaiRec(dir, opts)
		},
	})
	r.Register(Family{
		Name:  "movielens",
		Match: prefix("movielens-"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewMovieLens(dir, opts)
		},
	})
	r.Register(Family{
		Name:  "retailrocket",
		Match: exact("retailrocket"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewRetailRocket(dir, opts)
		},
	})
	r.Register(Family{
		Name:  "steam",
		Match: exact("steam"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewSteam(dir, opts)
		},
	})
	r.Register(Family{
		Name:  "yelp",
		Match: prefix("yelp"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewYelp(dir, opts)
		},
	})
	r.Register(Family{
		Name:  "yoochoose",
		Match: prefix("yoochoose-"),
		New: func(dir string, opts Options) (Processor, error) {
			return NewYooChoose(dir, opts)
		},
	})

	return r
}

// Register adds a family to the registry.
func (r *Registry) Register(f Family) {
	r.families[f.Name] = f
	r.order = append(r.order, f.Name)
}

// Get returns a family by name.
func (r *Registry) Get(name string) (Family, error) {
	f, ok := r.families[name]
	if !ok {
		return Family{}, eris.Errorf("dataset: unknown family %q (known: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return f, nil
}

// Names returns all registered family names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve builds the processor for a dataset directory. The last path
// segment is the canonical dataset name and selects the family; an
// unrecognized name is a configuration error.
func (r *Registry) Resolve(dir string, opts Options) (Processor, error) {
	name := filepath.Base(filepath.Clean(dir))
	for _, fname := range r.order {
		f := r.families[fname]
		if f.Match(name) {
			return f.New(dir, opts)
		}
	}
	return nil, eris.Errorf("dataset: no family matches dataset %q (known families: %s)",
		name, strings.Join(r.Names(), ", "))
}

func exact(name string) func(string) bool {
	return func(s string) bool { return s == name }
}

func prefix(p string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, p) }
}
