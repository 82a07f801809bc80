// Package email delivers rendered notification messages.
//
// A Sender takes a parsed RFC 5322 message, as produced by the notification
// spool, and hands it to a delivery backend:
//
//   - PostmarkSender sends it through the Postmark transactional API;
//   - DevSender writes it to a directory as an .eml file, for local runs.
//
// New picks the backend from Config:
//
//	var cfg email.Config
//	config.MustLoad(&cfg)
//	sender, err := email.New(cfg)
//	if err != nil {
//		return err
//	}
//	err = sender.Send(ctx, msg)
//
// Delivery failures wrap ErrFailedToSendEmail, malformed messages
// ErrInvalidMessage.
package email
