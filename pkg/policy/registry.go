package policy

import (
	"fmt"
	"sort"

	"github.com/vantagecrm/vantage/pkg/serrors"
)

// ErrPolicyNotFound indicates an entity type reached the permission
// surface without a registered policy. Callers must treat it as deny;
// its presence at runtime is a setup bug, not a normal condition.
var ErrPolicyNotFound = serrors.NewError("POLICY_NOT_FOUND", "no policy registered for entity type", "")

// ErrForbidden is returned by callers when a policy denies an action.
var ErrForbidden = serrors.NewError("PERMISSION_DENIED", "permission denied", "")

// Registry maps entity-type names to their policies. It is populated
// during module registration at startup and frozen before serving;
// after Freeze it is safe for unbounded concurrent reads.
type Registry struct {
	frozen   bool
	policies map[string]Policy
}

func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// Register binds a policy to an entity-type name. Double registration
// and registration after Freeze are configuration bugs and panic.
func (r *Registry) Register(entityType string, p Policy) {
	if r.frozen {
		panic(fmt.Sprintf("policy: registry frozen, cannot register %q", entityType))
	}
	if entityType == "" || p == nil {
		panic("policy: entity type and policy are required")
	}
	if _, ok := r.policies[entityType]; ok {
		panic(fmt.Sprintf("policy: duplicate registration for %q", entityType))
	}
	r.policies[entityType] = p
}

// Freeze marks the end of the registration phase. Subsequent Register
// calls panic.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Lookup(entityType string) (Policy, error) {
	p, ok := r.policies[entityType]
	if !ok {
		return nil, ErrPolicyNotFound.WithDetail(entityType)
	}
	return p, nil
}

// Verify returns the sorted list of required entity types that have no
// registered policy. A non-empty result is a fatal configuration error
// surfaced by the startup/CI gate.
func (r *Registry) Verify(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := r.policies[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Registered returns the sorted entity-type names with a policy.
func (r *Registry) Registered() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CanView fails closed: an unregistered entity type is a denial.
func (r *Registry) CanView(actor Actor, obj Object) bool {
	p, err := r.Lookup(obj.EntityType())
	if err != nil {
		return false
	}
	return p.CanView(actor, obj)
}

// CanChange fails closed like CanView.
func (r *Registry) CanChange(actor Actor, obj Object) bool {
	p, err := r.Lookup(obj.EntityType())
	if err != nil {
		return false
	}
	return p.CanChange(actor, obj)
}

// CanDelete fails closed like CanView.
func (r *Registry) CanDelete(actor Actor, obj Object) bool {
	p, err := r.Lookup(obj.EntityType())
	if err != nil {
		return false
	}
	return p.CanDelete(actor, obj)
}
