package autoconf

import (
	"context"
	"io"
	"sort"
	"sync"
	"syscall"
	"time"

	"grimm.is/ifconf/internal/clock"
	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/metrics"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

// Worker acquires and renews leases of one family.
type Worker interface {
	Acquire(ctx context.Context, iface string) (*Lease, error)
	Renew(ctx context.Context, lease *Lease) (*Lease, error)
}

// renewRetry is the wait after a failed renewal.
const renewRetry = 10 * time.Second

// Options configures a Service. Zero fields take defaults.
type Options struct {
	Workers map[netaddr.Family]Worker
	Metrics *metrics.Registry
	Clock   clock.Clock
	// Timeout bounds one acquisition or renewal.
	Timeout time.Duration
}

type leaseKey struct {
	iface  string
	family netaddr.Family
}

type managed struct {
	lease  *Lease
	cancel context.CancelFunc
}

// Service runs acquisitions and keeps leases renewed.
type Service struct {
	roster  *netif.Roster
	workers map[netaddr.Family]Worker
	metrics *metrics.Registry
	clock   clock.Clock
	timeout time.Duration
	log     *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	leases map[leaseKey]*managed
}

// NewService returns a Service applying leases through roster.
func NewService(roster *netif.Roster, opts Options) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		roster:  roster,
		workers: opts.Workers,
		metrics: opts.Metrics,
		clock:   opts.Clock,
		timeout: opts.Timeout,
		log:     logging.WithComponent("autoconf"),
		ctx:     ctx,
		cancel:  cancel,
		leases:  make(map[leaseKey]*managed),
	}
	if s.metrics == nil {
		s.metrics = metrics.Get()
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	return s
}

// Configure acquires a lease for family on name and applies it. A later
// request for the same interface and family supersedes the earlier lease.
func (s *Service) Configure(ctx context.Context, name string, family netaddr.Family) (*Lease, error) {
	if err := netif.ValidateName(name); err != nil {
		return nil, err
	}
	worker, ok := s.workers[family]
	if !ok {
		return nil, errors.Errorf(errors.KindUnsupported, "auto-configuration of %s is not supported", family)
	}
	iface := s.roster.Interface(name)
	if !iface.Exists() {
		return nil, errors.Errorf(errors.KindNotFound, "interface %s does not exist", name)
	}

	start := s.clock.Now()
	log := s.log.WithFields(map[string]any{"interface": name, "family": family.String()})
	log.Info("auto-configuring")

	if err := iface.ChangeFlags(netif.FlagConfiguring, 0); err != nil {
		log.Debug("setting configuring flag failed", "error", err)
	}

	actx, cancel := context.WithTimeout(ctx, s.timeout)
	lease, err := worker.Acquire(actx, name)
	cancel()
	if err == nil {
		if err = s.apply(iface, lease); err != nil {
			release(lease)
		}
	}

	if err != nil {
		if ferr := iface.ChangeFlags(0, netif.FlagConfiguring); ferr != nil {
			log.Debug("clearing configuring flag failed", "error", ferr)
		}
		s.metrics.RecordAutoconf(family.String(), s.clock.Since(start).Seconds(), err)
		log.Warn("auto-configuration failed", "error", err)
		if errors.GetKind(err) == errors.KindUnknown {
			err = errors.Attr(errors.Wrap(err, errors.KindOperation, "auto-configuration failed"), "interface", name)
		}
		return nil, err
	}

	if ferr := iface.ChangeFlags(netif.FlagAutoConfigured, netif.FlagConfiguring); ferr != nil {
		log.Warn("setting auto-configured flag failed", "error", ferr)
	}
	s.metrics.RecordAutoconf(family.String(), s.clock.Since(start).Seconds(), nil)
	s.track(leaseKey{name, family}, lease, worker)
	log.Info("auto-configured", "addresses", len(lease.Addresses), "gateway", lease.Gateway.String())
	return lease, nil
}

// apply installs lease's addresses and default route.
func (s *Service) apply(iface *netif.Interface, lease *Lease) error {
	if len(lease.Addresses) == 0 {
		return errors.New(errors.KindOperation, "lease carries no address")
	}
	for n, e := range lease.Addresses {
		var err error
		if lease.Family == netaddr.INET && n == 0 {
			err = iface.SetAddress(e)
		} else {
			err = iface.AddAddress(e)
			if errors.Is(err, syscall.EEXIST) {
				err = nil
			}
		}
		if err != nil {
			return err
		}
	}
	if !lease.Gateway.IsEmpty() {
		if err := iface.ReplaceDefaultRoute(lease.Gateway); err != nil {
			return err
		}
	}
	return nil
}

// track records lease and starts its renewal loop, cancelling any loop it
// supersedes.
func (s *Service) track(key leaseKey, lease *Lease, worker Worker) {
	ctx, cancel := context.WithCancel(s.ctx)

	s.mu.Lock()
	if old, ok := s.leases[key]; ok {
		old.cancel()
	}
	s.leases[key] = &managed{lease: lease, cancel: cancel}
	s.metrics.LeasesActive.Set(float64(len(s.leases)))
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("renewal loop panicked", "interface", key.iface, "panic", r)
			}
		}()
		s.renewLoop(ctx, key, lease, worker)
	}()
}

func (s *Service) renewLoop(ctx context.Context, key leaseKey, lease *Lease, worker Worker) {
	iface := s.roster.Interface(key.iface)
	wait := lease.renewAfter(s.clock.Now())
	defer func() { release(lease) }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(wait):
		}

		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		next, err := worker.Renew(rctx, lease)
		cancel()
		if err == nil {
			err = s.apply(iface, next)
		}
		s.metrics.RecordRenewal(key.iface, err)

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if lease.Expired(s.clock.Now()) {
				s.log.Warn("lease expired", "interface", key.iface, "family", key.family.String(), "error", err)
				s.expire(ctx, key, lease)
				return
			}
			s.log.Warn("renewal failed, retrying", "interface", key.iface, "error", err, "retry", renewRetry)
			wait = renewRetry
			continue
		}

		lease = next
		s.mu.Lock()
		if m, ok := s.leases[key]; ok && ctx.Err() == nil {
			m.lease = next
		}
		s.mu.Unlock()
		wait = lease.renewAfter(s.clock.Now())
		s.log.Debug("lease renewed", "interface", key.iface, "next", wait)
	}
}

// release frees resources a Worker attached to l.
func release(l *Lease) {
	if c, ok := l.state.(io.Closer); ok {
		_ = c.Close()
	}
}

// expire withdraws an expired lease from the interface.
func (s *Service) expire(ctx context.Context, key leaseKey, lease *Lease) {
	iface := s.roster.Interface(key.iface)
	for _, e := range lease.Addresses {
		if err := iface.RemoveAddress(e.Address); err != nil {
			s.log.Debug("withdrawing address failed", "interface", key.iface, "address", e.Address.String(), "error", err)
		}
	}
	if !lease.Gateway.IsEmpty() {
		_ = iface.RemoveDefaultRoute(key.family)
	}
	_ = iface.ChangeFlags(0, netif.FlagAutoConfigured)

	s.mu.Lock()
	if m, ok := s.leases[key]; ok && ctx.Err() == nil {
		delete(s.leases, key)
		m.cancel()
	}
	s.metrics.LeasesActive.Set(float64(len(s.leases)))
	s.mu.Unlock()
}

// Leases returns the maintained leases, sorted by interface and family.
func (s *Service) Leases() []LeaseInfo {
	s.mu.Lock()
	out := make([]LeaseInfo, 0, len(s.leases))
	for _, m := range s.leases {
		out = append(out, m.lease.info())
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Interface != out[j].Interface {
			return out[i].Interface < out[j].Interface
		}
		return out[i].Family < out[j].Family
	})
	return out
}

// Stop ends every renewal loop. Addresses stay configured.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}
