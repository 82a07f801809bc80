// Package monitor turns freshly loaded report data into notifications.
//
// A Subscription holds matcher functions for checkouts, builds and tests.
// Monitor.Match finds the objects touched by a loaded report, reassembles
// each affected checkout with its builds and tests from the database, runs
// every subscription over them and returns the resulting Notifications.
//
// A Notification's ID is derived from the subscription, the object and the
// message ID, so matching the same object twice yields the same ID and the
// notification spool stores it only once. Render produces the RFC 5322
// message that is spooled and later sent.
package monitor
