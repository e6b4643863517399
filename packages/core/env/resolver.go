package env

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver resolves templates in stages: the merged variable map first, then
// {{$NAME}} tokens against the process environment. Tokens that survive both
// stages are reported through the WarnFunc and left in place.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	chain     map[string]string
	lookupEnv func(string) (string, bool)
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
		chain:     make(map[string]string),
		lookupEnv: os.LookupEnv,
	}
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetChainVariable records a value captured from a response. Chain variables
// take precedence over regular variables with the same name.
func (r *Resolver) SetChainVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chain[name] = value
}

// Variables returns a snapshot of the merged variable map.
func (r *Resolver) Variables() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return MergeVariables(r.variables, r.chain)
}

func (r *Resolver) Resolve(input string) string {
	out := Substitute(input, r.Variables())
	if !HasVariables(out) {
		return out
	}
	out = variablePattern.ReplaceAllStringFunc(out, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if !strings.HasPrefix(name, "$") {
			return match
		}
		if val, ok := r.lookupEnv(name[1:]); ok {
			return val
		}
		return match
	})
	for _, name := range FindVariables(out) {
		r.warn("unresolved variable: %s", name)
	}
	return out
}

func (r *Resolver) ResolveAll(values []string) []string {
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = r.Resolve(v)
	}
	return result
}

// ResolveHeaders resolves header names and values with the same collision
// rule as SubstituteHeaders.
func (r *Resolver) ResolveHeaders(headers map[string]string) map[string]string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	resolved := make(map[string]string, len(headers))
	for _, name := range names {
		resolved[r.Resolve(name)] = r.Resolve(headers[name])
	}
	return resolved
}

func (r *Resolver) HasVariable(name string) bool {
	_, ok := r.GetVariable(name)
	return ok
}

func (r *Resolver) GetVariable(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.chain[name]; ok {
		return v, true
	}
	if v, ok := r.variables[name]; ok {
		return v, true
	}
	return "", false
}

// GetUnresolvedVariables returns the names in input that Resolve would leave
// in place.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	vars := r.Variables()
	var unresolved []string
	for _, name := range FindVariables(input) {
		if _, ok := vars[name]; ok {
			continue
		}
		if strings.HasPrefix(name, "$") {
			if _, ok := r.lookupEnv(name[1:]); ok {
				continue
			}
		}
		unresolved = append(unresolved, name)
	}
	return unresolved
}

func (r *Resolver) HasUnresolvedVariables(input string) bool {
	return len(r.GetUnresolvedVariables(input)) > 0
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	clone.lookupEnv = r.lookupEnv
	clone.warnFunc = r.warnFunc
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	for k, v := range r.chain {
		clone.chain[k] = v
	}
	return clone
}
