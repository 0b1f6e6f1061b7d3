// Package registry maps namespaced function names to host-provided
// callables. The registry is written once at startup and only read during
// evaluation; every access is guarded by an internal read-write lock.
package registry

import (
	"fmt"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/xtml-lang/xtml/pkgs/errors"
	"github.com/xtml-lang/xtml/pkgs/types"
)

// Func is a host-provided callable. A type mismatch inside the function
// reports through the returned error and yields an Unknown value.
type Func func(args []types.Value) (types.Value, error)

// signature pairs a callable with its arity bounds. The pair (0, 0)
// means "any arity".
type signature struct {
	fn      Func
	minArgs int
	maxArgs int
}

// Registry holds all registered namespaces and their functions.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]signature
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		namespaces: make(map[string]map[string]signature),
	}
}

// RegisterNamespace creates a namespace. Registering an existing
// namespace keeps its functions.
func (r *Registry) RegisterNamespace(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.namespaces[name]; !ok {
		r.namespaces[name] = make(map[string]signature)
	}
}

// Register adds a function to a namespace, overwriting any previous
// mapping for the name. The namespace must already exist.
func (r *Registry) Register(namespace, name string, fn Func, minArgs, maxArgs int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[namespace]
	if !ok {
		return errors.Newf(errors.ErrName, "namespace %q is not registered", namespace)
	}
	ns[name] = signature{fn: fn, minArgs: minArgs, maxArgs: maxArgs}
	return nil
}

// Exists reports whether namespace::name is registered.
func (r *Registry) Exists(namespace, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ns, ok := r.namespaces[namespace]
	if !ok {
		return false
	}
	_, ok = ns[name]
	return ok
}

// Call invokes namespace::name with args. A missing function or an
// argument count outside the declared bounds yields an Unknown value
// together with the describing error.
func (r *Registry) Call(namespace, name string, args []types.Value) (types.Value, error) {
	r.mu.RLock()
	ns, nsOK := r.namespaces[namespace]
	var sig signature
	fnOK := false
	if nsOK {
		sig, fnOK = ns[name]
	}
	r.mu.RUnlock()

	if !nsOK {
		return types.Unknown(), r.unknownError("namespace", namespace, r.namespaceNames())
	}
	if !fnOK {
		return types.Unknown(), r.unknownError(fmt.Sprintf("function %s::", namespace), name, r.functionNames(namespace))
	}

	anyArity := sig.minArgs == 0 && sig.maxArgs == 0
	if !anyArity && (len(args) < sig.minArgs || (sig.maxArgs != 0 && len(args) > sig.maxArgs)) {
		return types.Unknown(), errors.Newf(errors.ErrArity,
			"%s::%s called with %d arguments, expects %d..%d", namespace, name, len(args), sig.minArgs, sig.maxArgs)
	}

	return sig.fn(args)
}

// unknownError builds a NAME_ERROR, attaching a did-you-mean suggestion
// when a registered name ranks close enough.
func (r *Registry) unknownError(what, missing string, candidates []string) error {
	msg := fmt.Sprintf("%s%s not found", what, missing)
	if suggestion, ok := closestMatch(missing, candidates); ok {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
	}
	return errors.New(errors.ErrName, msg)
}

// closestMatch finds the best fuzzy match for target among candidates.
func closestMatch(target string, candidates []string) (string, bool) {
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return "", false
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
		}
	}
	return best.Target, true
}

func (r *Registry) namespaceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.namespaces)
}

func (r *Registry) functionNames(namespace string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.namespaces[namespace])
}
