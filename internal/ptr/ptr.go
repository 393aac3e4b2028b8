// Package ptr provides a tiny helper for taking the address of a value literal, used by the
// end-to-end tests and load generator for optional profile fields and by the WebAuthn config.
package ptr

// Ref returns a pointer to the value passed as argument.
//
// Might be replaced by new(T, v) in the future
// https://github.com/golang/go/issues/45624#issuecomment-2671497947
func Ref[T any](v T) *T {
	return &v
}
