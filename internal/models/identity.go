// Package models defines the catalog row types shared by repositories and
// services: credentials, stored objects, folders, recycle entries, share
// tokens, audit events, and failed-attempt records.
package models

import "fmt"

// VaultIdentity names one of the two isolated logical namespaces a
// credential can unlock. Every object, folder, and credential row is tagged
// with exactly one identity; the two are never mixed.
type VaultIdentity string

const (
	// IdentityReal is the primary vault.
	IdentityReal VaultIdentity = "real"
	// IdentityDecoy is the decoy vault: innocuous content behind a separate
	// PIN, for coercion resistance. Decoy deletes are immediate and
	// permanent, with no recycle bin.
	IdentityDecoy VaultIdentity = "decoy"
)

// Valid reports whether v is one of the two known identities.
func (v VaultIdentity) Valid() bool {
	return v == IdentityReal || v == IdentityDecoy
}

// ParseVaultIdentity converts a stored string into a VaultIdentity.
func ParseVaultIdentity(s string) (VaultIdentity, error) {
	v := VaultIdentity(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown vault identity %q", s)
	}
	return v, nil
}
