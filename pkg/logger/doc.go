// Package logger builds the *slog.Logger shared by the kcidb services and
// provides attribute constructors so that every component names its fields
// the same way.
//
// New applies functional options on top of JSON-at-INFO defaults and wraps
// the resulting handler with LogHandlerDecorator, which adds attributes
// pulled from context.Context on every record. Config carries the same
// settings in a form loadable from the environment:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.New(logger.FromConfig(cfg), logger.WithService("kcidb-monitor"))
//	logger.SetAsDefault(log)
//
// Attribute helpers such as Topic, Subscription, NotificationID and Error
// return slog.Attr values. Helpers taking an error or an ID return an empty
// Attr for zero input, which slog drops:
//
//	log.WarnContext(ctx, "delivery failed", logger.NotificationID(id), logger.Error(err))
//
// WithNotification stores a notification ID in a context so that everything
// logged while handling it carries the ID without threading it through each
// call.
package logger
