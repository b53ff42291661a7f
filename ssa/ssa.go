package ssa

import (
	"fmt"
	"go/types"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/tools/go/ssa"

	unreflecttypes "github.com/goccy/unreflect/types"
)

const provenance = "synthetic accessor"

// Universe is the loading context of units whose declaring type has no package path.
const Universe = "builtin"

// Policy decides whether units may be installed into a loading context.
type Policy func(context string) error

// Loader installs accessor units into per-package loading contexts of a
// single ssa.Program. It is safe for concurrent use.
type Loader struct {
	mu     sync.Mutex
	prog   *ssa.Program
	pkgs   map[string]*ssa.Package
	policy Policy
	logger *slog.Logger
}

type Option func(*Loader)

func WithPolicy(policy Policy) Option {
	return func(l *Loader) {
		l.policy = policy
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		prog: ssa.NewProgram(nil, 0),
		pkgs: map[string]*ssa.Package{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Program returns the program units are installed into.
func (l *Loader) Program() *ssa.Program {
	return l.prog
}

// Install defines a synthetic function named name with signature sig in the
// loading context of the package context.
func (l *Loader) Install(name, context string, sig *types.Signature) (*ssa.Function, error) {
	if context == "" {
		context = Universe
	}
	if l.policy != nil {
		if err := l.policy(context); err != nil {
			return nil, fmt.Errorf("failed to install %s into %s: %w", name, context, err)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	pkg := l.packageFor(context)
	if _, exists := pkg.Members[name]; exists {
		return nil, fmt.Errorf("failed to install %s into %s: name already defined", name, context)
	}
	fn := l.prog.NewFunction(name, sig, provenance)
	fn.Pkg = pkg
	pkg.Members[name] = fn
	l.logger.Debug("installed accessor unit", "unit", name, "context", context)
	return fn, nil
}

func (l *Loader) packageFor(context string) *ssa.Package {
	if pkg, exists := l.pkgs[context]; exists {
		return pkg
	}
	pkg := l.prog.CreatePackage(unreflecttypes.Package(context), nil, nil, false)
	l.pkgs[context] = pkg
	return pkg
}

// Lookup returns the unit installed under name in context.
func (l *Loader) Lookup(context, name string) (*ssa.Function, bool) {
	if context == "" {
		context = Universe
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	pkg, exists := l.pkgs[context]
	if !exists {
		return nil, false
	}
	fn, ok := pkg.Members[name].(*ssa.Function)
	return fn, ok
}

// Units returns the sorted names of the units installed in context.
func (l *Loader) Units(context string) []string {
	if context == "" {
		context = Universe
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	pkg, exists := l.pkgs[context]
	if !exists {
		return nil
	}
	var names []string
	for name, member := range pkg.Members {
		if fn, ok := member.(*ssa.Function); ok && fn.Synthetic == provenance {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
