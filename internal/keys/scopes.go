package keys

// Permission scopes. The enumeration is fixed; unknown scopes requested at
// issuance are reported back to the caller, not persisted.
const (
	ScopeReadProfile     = "read-profile"
	ScopeReadOperations  = "read-operations"
	ScopeWriteOperations = "write-operations"
	ScopeReadBalance     = "read-balance"
	ScopeAdminAll        = "admin-all"
)

var knownScopes = map[string]bool{
	ScopeReadProfile:     true,
	ScopeReadOperations:  true,
	ScopeWriteOperations: true,
	ScopeReadBalance:     true,
	ScopeAdminAll:        true,
}

// KnownScope reports whether a scope is part of the fixed enumeration.
func KnownScope(scope string) bool {
	return knownScopes[scope]
}

// IntersectScopes intersects the requested scopes with the allowlist,
// preserving request order and dropping duplicates. Rejected scopes are
// returned so callers can warn instead of silently losing permissions.
func IntersectScopes(requested []string) (accepted, rejected []string) {
	seen := make(map[string]bool, len(requested))
	for _, scope := range requested {
		if seen[scope] {
			continue
		}
		seen[scope] = true

		if knownScopes[scope] {
			accepted = append(accepted, scope)
		} else {
			rejected = append(rejected, scope)
		}
	}
	return accepted, rejected
}
