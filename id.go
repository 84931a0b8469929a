package rally

import "github.com/xraph/rally/id"

// ID is the primary identifier type for all Rally entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
