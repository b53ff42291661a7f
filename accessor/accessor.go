// Package accessor synthesizes specialized accessors for fields and
// invokable members. Each accessor is a unit: a precomputed plan executed
// without per-call member lookup, registered under a process-unique name in
// the loading context of the package declaring the member.
package accessor

import (
	"fmt"
	"go/types"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"golang.org/x/tools/go/ssa"

	"github.com/goccy/unreflect/internal/errs"
	unreflectssa "github.com/goccy/unreflect/ssa"
)

type FieldAccessor interface {
	Get(instance any) (any, error)
	Set(instance any, value any) error
}

type InvokableAccessor interface {
	Invoke(instance any, args ...any) (any, error)
}

// Unit is implemented by every synthesized accessor.
type Unit interface {
	Unit() string
}

// Installer registers units into loading contexts.
type Installer interface {
	Install(name, context string, sig *types.Signature) (*ssa.Function, error)
}

var counter atomic.Uint64

// NextUnitName returns a process-unique unit name.
func NextUnitName() string {
	return fmt.Sprintf("Accessor$%d", counter.Add(1))
}

type Compiler struct {
	installer Installer
	logger    *slog.Logger
	cache     *sync.Map
}

type Option func(*Compiler)

func WithInstaller(installer Installer) Option {
	return func(c *Compiler) {
		c.installer = installer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithCache makes the compiler return the same accessor for repeated
// requests on the same member.
func WithCache(enabled bool) Option {
	return func(c *Compiler) {
		if enabled {
			c.cache = &sync.Map{}
		} else {
			c.cache = nil
		}
	}
}

func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.installer == nil {
		c.installer = unreflectssa.NewLoader(unreflectssa.WithLogger(c.logger))
	}
	return c
}

var defaultCompiler = sync.OnceValue(func() *Compiler {
	return NewCompiler()
})

// Default returns the process-wide compiler.
func Default() *Compiler {
	return defaultCompiler()
}

func (c *Compiler) Installer() Installer {
	return c.installer
}

func (c *Compiler) install(member, context string, sig *types.Signature) (string, error) {
	name := NextUnitName()
	if _, err := c.installer.Install(name, context, sig); err != nil {
		return "", errs.Synthesis(member, err)
	}
	c.logger.Debug("synthesized accessor", "unit", name, "member", member, "context", context)
	return name, nil
}

func (c *Compiler) cached(key string, build func() (any, error)) (any, error) {
	if c.cache == nil {
		return build()
	}
	if v, ok := c.cache.Load(key); ok {
		return v, nil
	}
	v, err := build()
	if err != nil {
		return nil, err
	}
	actual, _ := c.cache.LoadOrStore(key, v)
	return actual, nil
}

func contextOf(t reflect.Type) string {
	for t != nil && t.Name() == "" && (t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.PkgPath()
}
