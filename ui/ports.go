// Package ui defines the seams between the coordinator and whatever surface
// hosts it. The source of these interfaces is a set of page-global DOM
// helpers; here they are injected ports so a page, kiosk shell, or test can
// supply its own.
package ui

// Alerter shows a blocking, dismissable message to the user.
type Alerter interface {
	Alert(message string)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// Navigator redirects the user to another page. A redirect is terminal for
// the current page; no local state matters after it.
type Navigator interface {
	Redirect(path string)
}

// BadgeSink receives cart badge-count changes, the coordinator's only
// outbound UI signal.
type BadgeSink interface {
	SetBadge(count int)
}

// Noop implements every port with do-nothing behavior (Confirm answers yes).
// Useful as a default for headless use.
type Noop struct{}

func (Noop) Alert(string)        {}
func (Noop) Confirm(string) bool { return true }
func (Noop) Redirect(string)     {}
func (Noop) SetBadge(int)        {}
