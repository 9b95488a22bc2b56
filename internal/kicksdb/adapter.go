package kicksdb

import "github.com/guarzo/solewatch/internal/marketplace"

// Ensure Client satisfies the marketplace adapter contract.
var _ marketplace.Adapter = (*Client)(nil)
