// Package events ships session lifecycle events to NATS for whoever wants
// to watch them. Nothing in the service consumes them.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkeye/Karaoke/internal/core"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type Config struct {
	URL           string
	Subject       string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultConfig() Config {
	return Config{
		Subject:       "karaoke.sessions",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// msgPublisher is the part of *nats.Conn the publisher needs.
type msgPublisher interface {
	Publish(subj string, data []byte) error
}

type NATSPublisher struct {
	pub     msgPublisher
	nc      *nats.Conn
	subject string
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(core.SessionEvent) {}

// New returns a NATS-backed sink, or Nop when no URL is configured. The
// returned close func is always safe to call.
func New(cfg Config) (core.EventSink, func(), error) {
	if cfg.URL == "" {
		log.Info().Str("module", "events").Msg("NATS disabled, session events are not published")
		return Nop{}, func() {}, nil
	}
	p, err := Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func Connect(cfg Config) (*NATSPublisher, error) {
	def := DefaultConfig()
	if cfg.Subject == "" {
		cfg.Subject = def.Subject
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = def.ReconnectWait
	}

	opts := []nats.Option{
		nats.Name("karaoke"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Str("module", "events").Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("module", "events").Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Str("module", "events").Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info().Str("module", "events").Str("url", nc.ConnectedUrl()).Str("subject", cfg.Subject).Msg("connected to NATS")

	p := newPublisher(nc, cfg.Subject)
	p.nc = nc
	return p, nil
}

func newPublisher(pub msgPublisher, subject string) *NATSPublisher {
	return &NATSPublisher{pub: pub, subject: subject}
}

// Publish sends ev to <subject>.<kind>. Failures are logged and dropped.
func (p *NATSPublisher) Publish(ev core.SessionEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "events").Str("kind", string(ev.Kind)).Msg("marshal event")
		return
	}
	subj := p.subject + "." + string(ev.Kind)
	if err := p.pub.Publish(subj, data); err != nil {
		log.Warn().Err(err).Str("module", "events").Str("subject", subj).Str("code", string(ev.Code)).Msg("publish event")
		return
	}
	log.Debug().Str("module", "events").Str("subject", subj).Str("code", string(ev.Code)).Msg("event published")
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		log.Warn().Err(err).Str("module", "events").Msg("NATS drain")
		p.nc.Close()
	}
}
