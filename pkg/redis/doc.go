// Package redis connects to the Redis server backing the message queue.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	broker := mq.NewRedisBroker(client)
//
// Streams commands used by the broker require Redis 6.2 or newer.
package redis
