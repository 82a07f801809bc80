// Command kcidb-mq administers the report queue.
//
//	kcidb-mq publisher init|cleanup|publish
//	kcidb-mq subscriber init|cleanup|pull
//
// publish reads JSON reports from standard input, pull prints one report as
// indented JSON and acknowledges it. The queue lives in Redis; settings come
// from KCIDB_MQ_* and KCIDB_REDIS_* environment variables or a .env file.
package main
