// Package model provides the core types of the elimination tournament.
//
// This package contains type definitions only. All other internal packages
// import model; model imports nothing internal.
//
// Key design constraints:
//   - Item ids are assigned by the catalog and never reused
//   - NoItem (0) is the "none" sentinel in ledger rows
//   - Ratings only increase, eliminations are never undone
//   - The ledger is append-only; Seq orders rows, never wall-clock time
package model
