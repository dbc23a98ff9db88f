// Package catalog loads the seed product catalog and answers catalog
// queries.
//
// The seed is CUE, validated against an embedded schema before it is
// decoded, so a malformed operator catalog fails at startup with a position
// rather than producing half-filled products.
package catalog
