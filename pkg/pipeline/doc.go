// Package pipeline runs the long-lived loops of the notification service.
//
//   - Ingester pulls reports from the message queue, loads them into the
//     database, matches them against monitor subscriptions, puts the
//     resulting notifications into the spool and acknowledges the report.
//     When the database reports overload the message is left
//     unacknowledged and the ingester backs off.
//   - Deliverer sends every unpicked spooled notification, acknowledging it
//     in the spool once the sender accepted it. Failed deliveries are
//     retried after their lease expires.
//   - Wiper removes spooled notifications older than the retention age.
//
// Run starts any number of loops and stops them all when one fails or the
// context is cancelled.
package pipeline
