package handlers

import "github.com/aretw0/switchboard/pkg/ports"

type settings struct {
	name        string
	description string
	keywords    []string
	source      ports.DataSource
	mailer      ports.Mailer
	kb          ports.KnowledgeBase
}

// Option defines a functional option for configuring a built-in handler.
type Option func(*settings)

// WithName overrides the display name.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithDescription overrides the description.
func WithDescription(description string) Option {
	return func(s *settings) {
		if description != "" {
			s.description = description
		}
	}
}

// WithKeywords replaces the default keyword set.
func WithKeywords(keywords ...string) Option {
	return func(s *settings) {
		if len(keywords) > 0 {
			s.keywords = keywords
		}
	}
}

// WithDataSource injects the external system queried by tabular, compliance,
// sales and HR handlers.
func WithDataSource(source ports.DataSource) Option {
	return func(s *settings) {
		s.source = source
	}
}

// WithMailer injects the delivery backend of the messaging handler.
func WithMailer(mailer ports.Mailer) Option {
	return func(s *settings) {
		s.mailer = mailer
	}
}

// WithKnowledgeBase injects the snippet source of the retrieval handler.
func WithKnowledgeBase(kb ports.KnowledgeBase) Option {
	return func(s *settings) {
		s.kb = kb
	}
}

func newSettings(name, description string, keywords []string, opts []Option) settings {
	s := settings{name: name, description: description, keywords: keywords}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) keyword() Keyword {
	return NewKeyword(s.name, s.description, s.keywords)
}
