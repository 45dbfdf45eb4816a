package messaging

import (
	"context"
	"time"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

// Publisher is satisfied by *RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EmailNotifier turns account notifications into templated email jobs.
type EmailNotifier struct {
	pub   Publisher
	brand mailtpl.Brand
	now   func() time.Time
}

func NewEmailNotifier(pub Publisher, brand mailtpl.Brand) *EmailNotifier {
	return &EmailNotifier{pub: pub, brand: brand, now: time.Now}
}

func (n *EmailNotifier) Notify(ctx context.Context, note application.Notification) error {
	if note.To == "" {
		return nil
	}
	opts := []mailtpl.Option{mailtpl.WithTime(n.now())}
	if note.IP != "" {
		opts = append(opts, mailtpl.WithIP(note.IP))
	}
	if note.UserAgent != "" {
		opts = append(opts, mailtpl.WithUserAgent(note.UserAgent))
	}
	if len(note.Changes) > 0 {
		opts = append(opts, mailtpl.WithChanges(note.Changes))
	}
	data := mailtpl.NewEmailData(n.brand, note.Type, note.Name, note.Username, note.To, opts...)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return n.pub.PublishJSON(c, mailer.EmailJob{
		To:       note.To,
		Template: note.Type,
		Data:     mailtpl.ToMap(data),
	})
}

var _ application.Notifier = (*EmailNotifier)(nil)
