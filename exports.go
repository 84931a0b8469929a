package rally

import "github.com/xraph/rally/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	IDR  = types.IDR
	USD  = types.USD
	EUR  = types.EUR
	SGD  = types.SGD
	MYR  = types.MYR
	AUD  = types.AUD
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
