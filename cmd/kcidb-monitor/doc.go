// Command kcidb-monitor runs the notification service and administers its
// spool.
//
//	kcidb-monitor run                       ingest reports, deliver and wipe notifications
//	kcidb-monitor health                    check the queue and spool connections
//	kcidb-monitor spool unpicked [--at T]   list notifications ready for delivery
//	kcidb-monitor spool wipe [--until T]    remove notifications created until T
//	kcidb-monitor spool delete ID...        remove notifications
//
// Settings come from KCIDB_* environment variables or a .env file.
package main
