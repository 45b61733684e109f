// Package authcore is the authentication-security core of the backend: a
// standards-based one-time-password engine (RFC 4226 HOTP, RFC 6238 TOTP)
// and the adaptive brute-force protection and account-lockout machinery
// guarding the login path.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build], and the counter store contract is safe for concurrent
// access from independent processes sharing one backing store.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (BlockDecision, LockStatus, AuthResult). Internal
// coordination — failure-window accounting, lockout state derivation, base32
// handling — lives under internal/ and is never exported. Pluggable
// infrastructure lives in its own packages: counterstore for the shared TTL
// counter/flag store, password for hashing, pgstore for the durable user
// record store.
//
// # What this package must NOT do
//
//   - Issue, refresh, or validate session tokens. Login ends at an
//     [AuthResult]; token issuance is the host application's concern.
//   - Make authorization decisions. No roles, no permissions.
//   - Log OTP secrets or password material at any level.
//
// # Failure contract
//
// The distributed counter layer is a secondary defense. When it is
// unreachable the blocklist fails open by default (set by
// BlocklistConfig.OnStoreError) and logs loudly; the durable per-user
// lockout in the user record store remains the primary enforcement and does
// not share that policy. OTP verification never returns an error: malformed
// secrets and codes degrade to a false result so a corrupt enrollment can
// never crash or bypass a login flow.
package authcore
