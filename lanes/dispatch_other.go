//go:build !amd64 && !arm64

package lanes

func init() {
	// Other architectures fall back to scalar mode.
	setScalarMode()
}
