// Package labour is the labour scheduling and alerting engine: worker and
// task registries, automatic shift assignment, the shift lifecycle, alerts,
// staffing forecasts and the periodic scans that feed them.
package labour

import (
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/lock"
	"github.com/arnavshah/labour-scheduler/pkg/notify"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
	"github.com/rs/zerolog"
)

// Clock returns the current time
type Clock func() time.Time

// Service is the engine. Build it with New; the zero value is not usable.
type Service struct {
	store    repository.Store
	now      Clock
	loc      *time.Location
	locker   lock.Locker
	notifier notify.Notifier
	log      zerolog.Logger
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.now = c }
}

// WithLocation sets the zone used to compute day boundaries in the scans
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		now:      time.Now,
		loc:      time.Local,
		locker:   lock.NewMemory(),
		notifier: notify.Nop{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}
