package monitor

import "strings"

// Subscription matches objects and returns the messages to send about them.
// Any matcher may be nil.
type Subscription struct {
	// Name prefixes the IDs of the notifications the subscription produces.
	Name     string
	Checkout func(*Checkout) []Message
	Build    func(*Build) []Message
	Test     func(*Test) []Message
}

func validateSubscriptions(subs []Subscription) error {
	seen := make(map[string]bool, len(subs))
	for _, s := range subs {
		if s.Name == "" || strings.ContainsAny(s.Name, ":/") {
			return ErrInvalidSubscription
		}
		if seen[s.Name] {
			return ErrDuplicateSubscription
		}
		seen[s.Name] = true
	}
	return nil
}

// DefaultSubscriptions returns the built-in subscriptions.
func DefaultSubscriptions() []Subscription {
	return []Subscription{LTPMaintainers()}
}
