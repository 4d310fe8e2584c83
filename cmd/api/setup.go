package main

import (
	"fmt"
	"os"

	"github.com/altalabs/keywarden/internal/keys"
	"github.com/altalabs/keywarden/internal/storage"
)

// ensureBootstrapKey issues the first admin credential when the store is
// empty, so the management API is reachable on a fresh install. The secret is
// printed exactly once and is not retrievable afterwards.
func ensureBootstrapKey(store storage.Store, svc *keys.Service) error {
	count, err := store.CountCredentials()
	if err != nil {
		return fmt.Errorf("failed to inspect credential store: %w", err)
	}
	if count > 0 {
		return nil
	}

	issued, err := svc.Issue(keys.IssueParams{
		OwnerID:  "bootstrap",
		Scopes:   []string{keys.ScopeAdminAll},
		PlanTier: keys.PlanAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to issue bootstrap key: %w", err)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "╔════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(os.Stderr, "║                 FIRST-TIME SETUP                           ║")
	fmt.Fprintln(os.Stderr, "╚════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "No credentials found. A bootstrap admin key was issued.")
	fmt.Fprintln(os.Stderr, "Store it now - it will not be shown again:")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "    %s\n", issued.Secret)
	fmt.Fprintln(os.Stderr)

	return nil
}
