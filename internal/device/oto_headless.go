//go:build headless

package device

// Oto is unavailable in headless builds.
type Oto struct{}

// NewOto always fails in headless builds.
func NewOto(Source, int) (*Oto, error) {
	return nil, ErrUnavailable
}

// Name implements Output.
func (*Oto) Name() string { return KindOto }

// Resume implements Output.
func (*Oto) Resume() error { return ErrUnavailable }

// Suspend implements Output.
func (*Oto) Suspend() error { return nil }

// Close implements Output.
func (*Oto) Close() error { return nil }
