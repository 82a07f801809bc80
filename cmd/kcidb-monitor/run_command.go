package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcidb/kcidb-go/pkg/db"
	"github.com/kcidb/kcidb-go/pkg/logger"
	"github.com/kcidb/kcidb-go/pkg/monitor"
	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/pipeline"
)

func newRunCommand(a *app) *cobra.Command {
	var deliveryInterval time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest reports and deliver notifications until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pcfg := a.cfg.Pipeline
			if deliveryInterval > 0 {
				pcfg.DeliveryInterval = deliveryInterval
			}

			broker, queue, err := a.connect(ctx, a)
			if err != nil {
				return err
			}
			defer queue.close()
			sub, err := mq.NewSubscriber(broker, a.cfg.MQ.Topic, a.cfg.MQ.Subscription,
				mq.WithPullTimeout(a.cfg.MQ.PullTimeout),
				mq.WithSubscriberLogger(a.logger))
			if err != nil {
				return err
			}
			if err := sub.Init(ctx); err != nil {
				return err
			}

			var driver db.Driver = db.NewMemoryDriver()
			if a.cfg.DB.MaxConcurrentLoads > 0 {
				driver = db.NewThrottle(driver, a.cfg.DB.MaxConcurrentLoads)
			}
			database, err := db.NewClient(driver, db.WithLogger(a.logger))
			if err != nil {
				return err
			}
			if err := database.Init(ctx); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			mon, err := monitor.New(database, monitor.DefaultSubscriptions(), monitor.WithLogger(a.logger))
			if err != nil {
				return err
			}

			sp, store, err := a.openSpool(ctx, a)
			if err != nil {
				return err
			}
			defer store.close()
			sender, err := a.newSender(a)
			if err != nil {
				return err
			}

			common := []pipeline.Option{pipeline.WithConfig(pcfg), pipeline.WithLogger(a.logger)}
			ingester, err := pipeline.NewIngester(sub, database, mon, sp, common...)
			if err != nil {
				return err
			}
			deliverer, err := pipeline.NewDeliverer(sp, sender,
				append(common, pipeline.WithInterval(pcfg.DeliveryInterval))...)
			if err != nil {
				return err
			}
			wiper, err := pipeline.NewWiper(sp,
				append(common, pipeline.WithInterval(pcfg.WipeInterval))...)
			if err != nil {
				return err
			}

			a.logger.InfoContext(ctx, "monitor started",
				logger.Topic(a.cfg.MQ.Topic),
				logger.Subscription(a.cfg.MQ.Subscription))
			err = pipeline.Run(ctx, ingester, deliverer, wiper)
			a.logger.InfoContext(ctx, "monitor stopped")
			return err
		},
	}
	cmd.Flags().DurationVar(&deliveryInterval, "delivery-interval", 0, "Pause between delivery passes (default $KCIDB_DELIVERY_INTERVAL)")
	return cmd
}

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the queue and spool connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, queue, err := a.connect(ctx, a)
			if err != nil {
				return err
			}
			defer queue.close()
			if err := queue.health(ctx); err != nil {
				return fmt.Errorf("queue: %w", err)
			}

			_, store, err := a.openSpool(ctx, a)
			if err != nil {
				return err
			}
			defer store.close()
			if err := store.health(ctx); err != nil {
				return fmt.Errorf("spool: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
