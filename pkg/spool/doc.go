// Package spool registers notifications and hands them out for delivery so
// that every notification is attempted, and attempted once, even with many
// concurrent senders.
//
// A notification is stored once under its ID by Put. Senders list candidate
// IDs with Unpicked, claim one with Pick, which leases it for a pick timeout,
// and confirm delivery with Ack. A sender that dies mid-delivery loses its
// lease when the timeout passes, and the notification becomes pickable again.
// Acknowledged notifications are never picked again. Wipe removes
// notifications by creation time.
//
// Atomicity comes from the Store: Put and Pick each run as one Store
// transaction over a single document. Three stores are provided:
//
//   - MemoryStore, process-local, for tests and single-process setups.
//   - PostgresStore, a table with row locks (migrations in PostgresMigrations).
//   - MongoStore, a collection updated inside session transactions.
//
// Usage:
//
//	client, err := spool.NewClient(spool.NewPostgresStore(pool))
//	if err != nil {
//	    return err
//	}
//	if _, err := client.Put(ctx, notification, time.Time{}); err != nil {
//	    return err
//	}
//	for id, err := range client.Unpicked(ctx, time.Time{}) {
//	    if err != nil {
//	        return err
//	    }
//	    msg, ok, err := client.Pick(ctx, id, time.Time{}, 0)
//	    ...
//	}
//
// Zero time arguments mean "now"; a zero lease means the client's pick
// timeout.
package spool
