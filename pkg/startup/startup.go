// Package startup brings service dependencies up in order with retries and
// tears them down in reverse.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

type StartupDependency interface {
	GetName() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type StartupStatus int

const (
	StartupStatusPending StartupStatus = iota
	StartupStatusStarted
	StartupStatusStopped
	StartupStatusFailed
)

// Dependency adapts a pair of functions to StartupDependency, for
// dependencies that don't warrant their own type.
type Dependency struct {
	Name     string
	Requires []string
	OnStart  func(ctx context.Context) error
	OnStop   func(ctx context.Context) error
}

func (d Dependency) GetName() string     { return d.Name }
func (d Dependency) DependsOn() []string { return d.Requires }

func (d Dependency) Start(ctx context.Context) error {
	if d.OnStart == nil {
		return nil
	}
	return d.OnStart(ctx)
}

func (d Dependency) Stop(ctx context.Context) error {
	if d.OnStop == nil {
		return nil
	}
	return d.OnStop(ctx)
}

type Startup struct {
	dependencies map[string]StartupDependency
	order        []string
	logger       ectologger.Logger
	statuses     map[string]StartupStatus
	attempt      int
	maxAttempts  int
}

func NewStartup(logger ectologger.Logger, maxAttempts int) *Startup {
	return &Startup{
		logger:       logger,
		dependencies: make(map[string]StartupDependency),
		statuses:     make(map[string]StartupStatus),
		maxAttempts:  maxAttempts,
	}
}

func (s *Startup) AddDependency(dependency StartupDependency) {
	name := dependency.GetName()
	if _, exists := s.dependencies[name]; !exists {
		s.order = append(s.order, name)
	}
	s.dependencies[name] = dependency
}

// Start brings every dependency up, retrying the whole sequence with
// Fibonacci backoff until it succeeds or attempts run out.
func (s *Startup) Start(ctx context.Context) error {
	s.attempt = 0
	var lastErr error

	a, b := 1, 1
	for s.attempt < s.maxAttempts {
		s.attempt++
		s.logger.WithField("attempt", s.attempt).Infof("Beginning startup attempt %d", s.attempt)

		success := true
		for _, name := range s.order {
			if err := s.startDependency(ctx, s.dependencies[name]); err != nil {
				s.logger.WithError(err).Errorf("Startup dependency '%s' attempt %d failed", name, s.attempt)
				lastErr = err
				success = false
				break
			}
		}

		if success {
			return nil
		}

		if s.attempt >= s.maxAttempts {
			return fmt.Errorf("startup failed after %d attempts: %w", s.attempt, lastErr)
		}

		waitTime := time.Duration(a) * time.Second
		s.logger.Infof("Retrying in %d seconds (attempt %d/%d)", a, s.attempt, s.maxAttempts)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}

		a, b = b, a+b
	}

	return nil
}

func (s *Startup) startDependency(ctx context.Context, dependency StartupDependency) error {
	if s.statuses[dependency.GetName()] == StartupStatusStarted {
		return nil
	}

	for _, dependencyName := range dependency.DependsOn() {
		if s.statuses[dependencyName] != StartupStatusStarted {
			required, ok := s.dependencies[dependencyName]
			if !ok {
				return fmt.Errorf("dependency '%s' requires unknown dependency '%s'", dependency.GetName(), dependencyName)
			}
			if err := s.startDependency(ctx, required); err != nil {
				return err
			}
		}
	}

	s.logger.WithField("dependency", dependency.GetName()).Infof("Starting dependency '%s'", dependency.GetName())
	s.statuses[dependency.GetName()] = StartupStatusPending
	if err := dependency.Start(ctx); err != nil {
		s.statuses[dependency.GetName()] = StartupStatusFailed
		s.logger.WithError(err).WithField("dependency", dependency.GetName()).Errorf("Failed to start dependency '%s'", dependency.GetName())
		return err
	}
	s.statuses[dependency.GetName()] = StartupStatusStarted
	return nil
}

// Stop tears dependencies down in reverse registration order.
func (s *Startup) Stop(ctx context.Context) error {
	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if s.statuses[name] == StartupStatusStopped {
			continue
		}
		if err := s.stopDependency(ctx, s.dependencies[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Startup) stopDependency(ctx context.Context, dependency StartupDependency) error {
	s.logger.WithField("dependency", dependency.GetName()).Infof("Stopping dependency '%s'", dependency.GetName())
	if err := dependency.Stop(ctx); err != nil {
		s.logger.WithError(err).WithField("dependency", dependency.GetName()).Errorf("Failed to stop dependency '%s'", dependency.GetName())
		return err
	}

	s.statuses[dependency.GetName()] = StartupStatusStopped
	return nil
}
