package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

// Outcome tells the consumer loop how to settle a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Retry
)

// EmailWorker renders and sends queued email jobs.
type EmailWorker struct {
	sender mailer.Sender
	logger logrus.FieldLogger
}

func NewEmailWorker(sender mailer.Sender, logger logrus.FieldLogger) *EmailWorker {
	return &EmailWorker{sender: sender, logger: logger}
}

// Handle processes one message body. Malformed or unrenderable jobs are dropped;
// delivery failures are retried.
func (w *EmailWorker) Handle(ctx context.Context, body []byte) Outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad email job")
		return Drop
	}
	subject, text, html, err := render(job)
	if err != nil {
		w.logger.WithError(err).WithField("template", job.Template).Warn("render email failed")
		return Drop
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.sender.Send(c, job.To, subject, text, html); err != nil {
		w.logger.WithError(err).WithField("template", job.Template).Warn("send email failed")
		return Retry
	}
	w.logger.WithField("template", job.Template).Debug("email sent")
	return Ack
}

func render(job mailer.EmailJob) (subject, text, html string, err error) {
	if job.To == "" {
		return "", "", "", errors.New("missing recipient")
	}
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", errors.New("job has neither template nor content")
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	if !mailtpl.Known(job.Template) {
		return "", "", "", fmt.Errorf("unknown template %q", job.Template)
	}
	return mailtpl.Render(job.Template, job.Data)
}
