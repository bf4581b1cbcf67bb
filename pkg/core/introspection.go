package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	RepositoryType string `json:"repository_type"`
	Indexed        bool   `json:"indexed"`
	Watchable      bool   `json:"watchable"`
	Closed         bool   `json:"closed"`
	Repository     any    `json:"repository,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	var repoState any
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
		if in, ok := s.repo.(introspection.Introspectable); ok {
			repoState = in.State()
		}
	}
	_, indexed := s.repo.(Indexed)
	_, watchable := s.repo.(Watchable)

	return ServiceState{
		RepositoryType: repoType,
		Indexed:        indexed,
		Watchable:      watchable,
		Closed:         s.closed,
		Repository:     repoState,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "dataset-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
