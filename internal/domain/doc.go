// Package domain holds the storefront entity types shared by every other
// package.
//
// This package contains type definitions and small value helpers only. It
// imports nothing internal, so engine, persist, store and the outer surfaces
// can all depend on it without cycles.
//
// Key constraints:
//   - Money is an integer amount of whole rupees, never a float
//   - JSON tags use camelCase so persisted snapshots keep their established
//     key layout
//   - Entities embedded in other entities (cart items in orders, addresses in
//     orders) are value copies, not references
package domain
