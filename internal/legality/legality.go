// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package legality decides whether a candidate may be fetched. The policy
// lives apart from the download path so it can grow (embargoes, license
// checks) without touching transfer code.
package legality

import "github.com/pdiddy/openpaper/pkg/types"

// IsLegallyDownloadable reports whether p may be fetched: exactly p.IsOA.
func IsLegallyDownloadable(p types.Paper) bool {
	return p.IsOA
}
