//go:build !webots

package webots

// Open connects to the Webots instance that launched this process.
func Open() (Simulator, error) {
	return nil, ErrUnavailable
}
