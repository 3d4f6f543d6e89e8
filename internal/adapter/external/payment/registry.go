package payment

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/multipay/internal/domain"
	"github.com/seu-repo/multipay/internal/ports"
)

// Registry maps gateway names to adapter instances. It is built once at
// startup and read-only afterwards, safe for concurrent lookup.
type Registry struct {
	gateways    map[string]ports.PaymentGateway
	order       []string
	defaultName string
	log         *zap.Logger
}

func NewRegistry(defaultName string, log *zap.Logger) *Registry {
	return &Registry{
		gateways:    make(map[string]ports.PaymentGateway),
		defaultName: strings.ToLower(defaultName),
		log:         log,
	}
}

// Register adds an adapter under its own name. Registration order is
// preserved and decides the default when no explicit default is configured.
func (r *Registry) Register(gw ports.PaymentGateway) {
	name := strings.ToLower(string(gw.Name()))
	if _, exists := r.gateways[name]; !exists {
		r.order = append(r.order, name)
	}
	r.gateways[name] = gw
	r.log.Info("Payment gateway registered", zap.String("gateway", name))
}

// Resolve returns the adapter for name, case-insensitively. An empty name
// selects the configured default gateway, falling back to the first
// registered one.
func (r *Registry) Resolve(name string) (ports.PaymentGateway, error) {
	if len(r.order) == 0 {
		return nil, domain.ErrNoGatewayConfigured
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = r.defaultName
		if _, ok := r.gateways[key]; !ok {
			key = r.order[0]
		}
	}

	gw, ok := r.gateways[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrUnsupportedGateway)
	}
	return gw, nil
}

// Names returns the registered gateway names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
