package templates

import (
	"strings"
	"time"
)

// Brand carries the sender-side fields shared by every email.
type Brand struct {
	AppName     string
	CompanyName string
	SupportURL  string
	LogoURL     string
}

type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = strings.TrimSpace(ip) } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04 MST")
	}
}
func WithChanges(ch map[string]string) Option {
	return func(d *EmailData) { d.Changes = ch }
}

// NewEmailData fills the common fields, then applies opts.
func NewEmailData(b Brand, typ, name, username, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:        name,
		Username:    username,
		Email:       email,
		Type:        typ,
		AppName:     b.AppName,
		CompanyName: b.CompanyName,
		SupportURL:  b.SupportURL,
		LogoURL:     b.LogoURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
