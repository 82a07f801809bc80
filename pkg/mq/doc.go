// Package mq moves CI reports between producer and consumer processes with
// at-least-once delivery.
//
// The package is organised around two roles sharing a Broker:
//
//   - Publisher validates, upgrades and encodes reports onto a topic
//   - Subscriber pulls reports from a subscription and acknowledges them
//
// The Broker interface hides the transport. RedisBroker maps topics onto
// Redis Streams and subscriptions onto consumer groups; MemoryBroker keeps
// everything in-process for tests and local runs. Both redeliver a pulled
// message that was not acknowledged within the ack deadline.
//
// # Usage
//
//	broker := mq.NewRedisBroker(client)
//	pub, _ := mq.NewPublisher(broker, "reports")
//	_ = pub.Init(ctx)
//	_ = pub.Publish(ctx, data)
//
//	sub, _ := mq.NewSubscriber(broker, "reports", "loader")
//	_ = sub.Init(ctx)
//	ackID, data, err := sub.Pull(ctx) // blocks until a message or ctx is done
//	...
//	_ = sub.Ack(ctx, ackID)
//
// Pull polls the broker with a bounded per-attempt wait (Config.PullTimeout)
// and retries immediately when an attempt times out. Cancel ctx to stop it.
//
// # Errors
//
// ErrInvalidPayload rejects reports that do not validate against any
// supported schema version. ErrPullTimeout is internal to the polling loop
// and never returned by Subscriber.Pull.
package mq
