// Package registry keeps versioned schema subjects and gates new versions
// on the subject's compatibility policy. Subjects are explicit string
// identifiers supplied at registration time; schema trees are built once by
// the caller and passed by value.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"skema/lib/columnar"
	"skema/lib/compat"
	"skema/lib/schema"
	"skema/manager"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrVersionNotFound = errors.New("version not found")
)

// IncompatibleError rejects a registration whose schema fails the subject's
// policy. The embedded result carries operator-readable issue strings.
type IncompatibleError struct {
	Subject string
	Result  compat.Result
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("schema is incompatible with subject %q under %s: %s",
		e.Subject, e.Result.Policy, strings.Join(e.Result.Issues, "; "))
}

// Version is one registered schema version of a subject.
type Version struct {
	Version      int
	Schema       schema.Node
	Fingerprint  string
	Target       columnar.Schema
	RegisteredAt time.Time
}

type subject struct {
	policy   compat.Policy
	versions []Version
}

// Registry is safe for concurrent use. It holds subjects in memory for the
// lifetime of the process; durability is the caller's concern.
type Registry struct {
	mu       sync.RWMutex
	subjects map[string]*subject
	mgr      *manager.Manager
	logger   *zap.Logger
}

func New(mgr *manager.Manager, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		subjects: make(map[string]*subject),
		mgr:      mgr,
		logger:   logger,
	}
}

// Register adds a schema as the subject's next version after checking it
// against the current latest version under the subject's policy. Registering
// a schema whose fingerprint already exists on the subject returns the
// existing version unchanged.
func (r *Registry) Register(name string, node schema.Node) (Version, error) {
	// Convert first: an unconvertible schema is rejected before it can
	// become a version, and the conversion lands in the cache.
	target, err := r.mgr.GetOrCreateSchema(node)
	if err != nil {
		return Version{}, fmt.Errorf("schema for subject %q is not convertible: %w", name, err)
	}
	fp := schema.Fingerprint(node)

	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subjects[name]
	if !ok {
		sub = &subject{policy: compat.Backward}
		r.subjects[name] = sub
	}
	for _, v := range sub.versions {
		if v.Fingerprint == fp {
			return v, nil
		}
	}

	var prev schema.Node
	if n := len(sub.versions); n > 0 {
		prev = sub.versions[n-1].Schema
	}
	res := compat.Check(prev, node, sub.policy)
	if !res.Compatible {
		r.logger.Warn("rejected schema registration",
			zap.String("subject", name),
			zap.String("policy", sub.policy.String()),
			zap.Strings("issues", res.Issues),
		)
		return Version{}, &IncompatibleError{Subject: name, Result: res}
	}

	v := Version{
		Version:      len(sub.versions) + 1,
		Schema:       node,
		Fingerprint:  fp,
		Target:       target,
		RegisteredAt: time.Now(),
	}
	sub.versions = append(sub.versions, v)
	r.logger.Info("registered schema",
		zap.String("subject", name),
		zap.Int("version", v.Version),
		zap.String("fingerprint", fp),
		zap.Strings("warnings", res.Warnings),
	)
	return v, nil
}

// Test reports whether a schema would be accepted as the subject's next
// version, without registering anything.
func (r *Registry) Test(name string, node schema.Node) (compat.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subjects[name]
	if !ok {
		return compat.Result{}, fmt.Errorf("%w: %q", ErrSubjectNotFound, name)
	}
	var prev schema.Node
	if n := len(sub.versions); n > 0 {
		prev = sub.versions[n-1].Schema
	}
	return compat.Check(prev, node, sub.policy), nil
}

// Latest returns the newest version of a subject.
func (r *Registry) Latest(name string) (Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subjects[name]
	if !ok || len(sub.versions) == 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrSubjectNotFound, name)
	}
	return sub.versions[len(sub.versions)-1], nil
}

// Version returns one specific version of a subject.
func (r *Registry) Version(name string, version int) (Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subjects[name]
	if !ok {
		return Version{}, fmt.Errorf("%w: %q", ErrSubjectNotFound, name)
	}
	if version < 1 || version > len(sub.versions) {
		return Version{}, fmt.Errorf("%w: %q version %d", ErrVersionNotFound, name, version)
	}
	return sub.versions[version-1], nil
}

// Versions lists a subject's version numbers in registration order.
func (r *Registry) Versions(name string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subjects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSubjectNotFound, name)
	}
	out := make([]int, 0, len(sub.versions))
	for _, v := range sub.versions {
		out = append(out, v.Version)
	}
	return out, nil
}

// Subjects lists all subject names, sorted.
func (r *Registry) Subjects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.subjects))
	for name := range r.subjects {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SetPolicy sets a subject's compatibility policy, creating the subject if
// it does not exist yet.
func (r *Registry) SetPolicy(name string, policy compat.Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subjects[name]
	if !ok {
		sub = &subject{}
		r.subjects[name] = sub
	}
	sub.policy = policy
}

// Policy returns a subject's compatibility policy.
func (r *Registry) Policy(name string) (compat.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subjects[name]
	if !ok {
		return compat.Backward, fmt.Errorf("%w: %q", ErrSubjectNotFound, name)
	}
	return sub.policy, nil
}

// Delete removes a subject and invalidates the cached conversions of all of
// its versions.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subjects[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrSubjectNotFound, name)
	}
	for _, v := range sub.versions {
		r.mgr.InvalidateSchema(v.Schema)
	}
	delete(r.subjects, name)
	r.logger.Info("deleted subject", zap.String("subject", name), zap.Int("versions", len(sub.versions)))
	return nil
}
