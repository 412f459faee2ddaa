// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth derives the secrets that protect saved scenarios.

# Admin Keys

Admin keys are HMAC-SHA256 values over the scenario ID:

	adminKey := auth.GenerateAdminKey(scenarioID, salt)
	err := auth.ValidateAdminKey(scenarioID, adminKey, salt)

The key is returned once, when the scenario is saved, and is never stored.
Deleting a scenario requires it in the X-Admin-Key header.

# Share Slugs

	slug := auth.GenerateShareSlug(scenarioID, salt)

Slugs are base62 (alphanumeric only), at most 11 characters, and
deterministic from the scenario ID and salt.

# ID Generation

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)

Returns 16 hex characters. Each derivation mixes in its own purpose label,
so one salt can serve all three without the outputs being related.
*/
package auth
