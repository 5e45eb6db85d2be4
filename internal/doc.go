// Package internal contains helper utilities that are intentionally private
// to shopadmin, currently secure random token and identifier generation.
//
// # What this package must NOT do
//
//   - Export types that appear in the public shopadmin API.
//   - Be imported by any package outside the shopadmin module.
package internal
