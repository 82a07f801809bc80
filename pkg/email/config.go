package email

const (
	BackendPostmark = "postmark"
	BackendDev      = "dev"
)

// Config holds email delivery configuration. The Postmark tokens are only
// required by the postmark backend.
type Config struct {
	Backend              string `env:"KCIDB_EMAIL_BACKEND" envDefault:"dev"`
	Sender               string `env:"KCIDB_EMAIL_SENDER" envDefault:"kernelci.org bot <bot@kernelci.org>"`
	ReplyTo              string `env:"KCIDB_EMAIL_REPLY_TO"`
	Tag                  string `env:"KCIDB_EMAIL_TAG" envDefault:"kcidb"`
	DevDir               string `env:"KCIDB_EMAIL_DEV_DIR" envDefault:"./outbox"`
	PostmarkServerToken  string `env:"KCIDB_POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"KCIDB_POSTMARK_ACCOUNT_TOKEN"`
}
