// Package mongo connects to MongoDB with the official v2 driver.
//
// The notification spool's MongoStore needs multi-document transactions, so
// the server must run as a replica set (a single-node set is enough).
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo
