package handlers

import (
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/ports"
)

// Kind names a built-in handler variant.
type Kind string

const (
	KindRetrieval  Kind = "retrieval"
	KindTabular    Kind = "tabular"
	KindMessaging  Kind = "messaging"
	KindCompliance Kind = "compliance"
	KindSales      Kind = "sales"
	KindHR         Kind = "hr"
)

var kindAliases = map[string]Kind{
	"rag":   KindRetrieval,
	"tag":   KindTabular,
	"email": KindMessaging,
}

// ParseKind resolves a kind name, accepting the rag/tag/email aliases.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	switch k := Kind(s); k {
	case KindRetrieval, KindTabular, KindMessaging, KindCompliance, KindSales, KindHR:
		return k, nil
	}
	return "", fmt.Errorf("unknown handler kind: %q", s)
}

// New builds a built-in handler of the given kind.
func New(kind Kind, opts ...Option) (ports.Handler, error) {
	switch kind {
	case KindRetrieval:
		return NewRetrieval(opts...), nil
	case KindTabular:
		return NewTabular(opts...), nil
	case KindMessaging:
		return NewMessaging(opts...), nil
	case KindCompliance:
		return NewCompliance(opts...), nil
	case KindSales:
		return NewSales(opts...), nil
	case KindHR:
		return NewHR(opts...), nil
	}
	return nil, fmt.Errorf("unknown handler kind: %q", kind)
}

// DefaultKinds is the registration order of the stock registry.
var DefaultKinds = []Kind{KindRetrieval, KindTabular, KindMessaging, KindCompliance, KindSales, KindHR}

// Default returns the stock registry: one handler per kind, without collaborators.
func Default() []ports.Handler {
	out := make([]ports.Handler, 0, len(DefaultKinds))
	for _, k := range DefaultKinds {
		h, _ := New(k)
		out = append(out, h)
	}
	return out
}
