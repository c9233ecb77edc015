package plugin

import (
	"context"
	"sync"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/logging"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

type registration struct {
	filter   Filter
	plugin   *Plugin // nil once ejected
	priority Priority
}

// Info describes one registration.
type Info struct {
	ID       ID
	Name     string
	Priority Priority
	Filter   Filter
	Ejected  bool
}

// Registry holds plugin registrations and runs the request and response
// phases. It is safe for concurrent use; each phase works on a snapshot taken
// when it starts, so registrations made during a call affect later calls only.
type Registry struct {
	mu     sync.RWMutex
	regs   []registration
	logger logging.Logger
}

// NewRegistry creates an empty Registry. A nil logger discards output.
func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{logger: logging.OrNop(logger)}
}

// Use registers p for the endpoints matched by filter and returns its ID.
func (r *Registry) Use(filter Filter, p *Plugin, priority Priority) (ID, error) {
	if p == nil {
		return -1, &zerrors.ConfigError{Option: "plugin", Message: "invalid plugin registration"}
	}
	switch priority {
	case High, Normal, Low:
	default:
		return -1, &zerrors.ConfigError{Option: "priority", Value: int(priority), Message: "invalid plugin priority"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = append(r.regs, registration{filter: filter, plugin: p, priority: priority})
	return ID(len(r.regs) - 1), nil
}

// Eject disables a registration. Ejecting twice, or an unknown ID, does nothing.
func (r *Registry) Eject(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || int(id) >= len(r.regs) {
		return
	}
	r.regs[id].plugin = nil
}

// Len returns the number of registrations ever made, ejected ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regs)
}

// Active returns the number of registrations that have not been ejected.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, reg := range r.regs {
		if reg.plugin != nil {
			n++
		}
	}
	return n
}

// Plugins describes every registration in ID order.
func (r *Registry) Plugins() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, len(r.regs))
	for i, reg := range r.regs {
		info := Info{ID: ID(i), Priority: reg.priority, Filter: reg.filter, Ejected: reg.plugin == nil}
		if reg.plugin != nil {
			info.Name = reg.plugin.Name
		}
		out[i] = info
	}
	return out
}

func (r *Registry) snapshot() []registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]registration, len(r.regs))
	copy(out, r.regs)
	return out
}

// InterceptRequest runs the request hooks that apply to ep and returns the
// final config. The first hook error stops the chain.
func (r *Registry) InterceptRequest(ctx context.Context, ep *api.Endpoint, cfg *transport.Config) (*transport.Config, error) {
	regs := r.snapshot()
	for _, priority := range requestOrder {
		for _, reg := range regs {
			if reg.priority != priority || reg.plugin == nil || reg.plugin.Request == nil || !reg.filter.Matches(ep) {
				continue
			}
			r.logger.Debug("plugin request hook", "plugin", reg.plugin.Name, "priority", priority.String(), "endpoint", ep.Key())

			next, err := reg.plugin.Request(ctx, ep, cfg)
			if err != nil {
				return nil, err
			}
			if next != nil {
				cfg = next
			}
		}
	}
	return cfg, nil
}

// InterceptResponse threads the fetch outcome (resp, err) through the
// response and error hooks that apply to ep. A nil response with a nil error,
// from the fetcher or a hook, is an error.
func (r *Registry) InterceptResponse(ctx context.Context, ep *api.Endpoint, cfg *transport.Config, resp *transport.Response, err error) (*transport.Response, error) {
	if resp == nil && err == nil {
		err = noResponse("fetcher", nil)
	}
	regs := r.snapshot()
	for _, priority := range responseOrder {
		for i := len(regs) - 1; i >= 0; i-- {
			reg := regs[i]
			if reg.priority != priority || reg.plugin == nil || !reg.filter.Matches(ep) {
				continue
			}
			p := reg.plugin

			if err == nil {
				if p.Response == nil {
					continue
				}
				r.logger.Debug("plugin response hook", "plugin", p.Name, "priority", priority.String(), "endpoint", ep.Key())
				resp, err = p.Response(ctx, ep, cfg, resp)
				if resp == nil && err == nil {
					err = noResponse("plugin", p.Name)
				}
				continue
			}

			if p.Error == nil {
				continue
			}
			r.logger.Debug("plugin error", "plugin", p.Name, "endpoint", ep.Key(), "error", err)
			resp, err = p.Error(ctx, ep, cfg, err)
			if resp == nil && err == nil {
				err = noResponse("plugin", p.Name)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// noResponse reports a hook or fetcher that returned neither a response nor
// an error.
func noResponse(option string, name any) error {
	return &zerrors.ConfigError{
		Option:  option,
		Value:   name,
		Message: "returned neither a response nor an error",
	}
}
