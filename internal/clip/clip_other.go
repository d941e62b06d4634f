//go:build !windows

package clip

// New reports ErrUnsupported: the viewer chain and registered clipboard
// formats only exist on Windows. Use Memory for dry runs.
func New(_ uintptr) (Board, error) {
	return nil, ErrUnsupported
}
