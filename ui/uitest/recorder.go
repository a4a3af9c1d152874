// Package uitest provides recording implementations of the ui ports for use
// in tests.
package uitest

import "sync"

// Recorder implements every ui port and records what flowed through it.
type Recorder struct {
	mu sync.Mutex

	// ConfirmAnswer is returned from Confirm. Defaults to false; set it to
	// true to approve destructive actions.
	ConfirmAnswer bool

	alerts    []string
	confirms  []string
	redirects []string
	badges    []int
}

func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Alert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, message)
}

func (r *Recorder) Confirm(message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirms = append(r.confirms, message)
	return r.ConfirmAnswer
}

func (r *Recorder) Redirect(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, path)
}

func (r *Recorder) SetBadge(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.badges = append(r.badges, count)
}

// Alerts returns every message shown so far.
func (r *Recorder) Alerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.alerts...)
}

// Confirms returns every confirmation prompt shown so far.
func (r *Recorder) Confirms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.confirms...)
}

// Redirects returns every redirect issued so far.
func (r *Recorder) Redirects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.redirects...)
}

// Badges returns every badge value set so far.
func (r *Recorder) Badges() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int{}, r.badges...)
}

// LastBadge returns the most recent badge value, or -1 if none was set.
func (r *Recorder) LastBadge() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.badges) == 0 {
		return -1
	}
	return r.badges[len(r.badges)-1]
}
