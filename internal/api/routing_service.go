package api

import (
	"context"
	"errors"

	"shotrouter/internal/store"
)

// ErrRouteNotFound reports an unknown route identifier.
var ErrRouteNotFound = errors.New("route not found")

// RoutingService exposes destination and route management as API DTOs.
type RoutingService struct {
	store *store.Store
}

// NewRoutingService constructs a RoutingService.
func NewRoutingService(st *store.Store) *RoutingService {
	if st == nil {
		return nil
	}
	return &RoutingService{store: st}
}

// Destinations lists registered destinations, newest first.
func (s *RoutingService) Destinations(ctx context.Context) ([]Destination, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	dests, err := s.store.ListDestinations(ctx)
	if err != nil {
		return nil, err
	}
	return FromDestinations(dests), nil
}

// UpsertDestination registers a destination or updates its metadata.
func (s *RoutingService) UpsertDestination(ctx context.Context, req DestinationRequest) (*Destination, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	dest, err := s.store.UpsertDestination(ctx, req.Path, req.TargetDir, req.Name, req.Icon)
	if err != nil {
		return nil, err
	}
	dto := FromDestination(dest)
	return &dto, nil
}

// DeleteDestination removes a destination by path, reporting whether it
// existed. Routes pointing at the path survive.
func (s *RoutingService) DeleteDestination(ctx context.Context, path string) (bool, error) {
	if s == nil || s.store == nil {
		return false, nil
	}
	return s.store.DeleteDestination(ctx, path)
}

// Routes lists routing rules, optionally filtered by source directory.
func (s *RoutingService) Routes(ctx context.Context, sourcePath string) ([]Route, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	routes, err := s.store.ListRoutes(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	return FromRoutes(routes), nil
}

// AddRoute creates a routing rule.
func (s *RoutingService) AddRoute(ctx context.Context, req RouteRequest) (*Route, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	route, err := s.store.AddRoute(ctx, req.SourcePath, req.DestPath, req.Priority, active)
	if err != nil {
		return nil, err
	}
	dto := FromRoute(route)
	return &dto, nil
}

// UpdateRoute adjusts priority and/or active on a rule.
func (s *RoutingService) UpdateRoute(ctx context.Context, id string, req RouteUpdateRequest) (*Route, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	if _, err := s.store.UpdateRoute(ctx, id, req.Priority, req.Active); err != nil {
		return nil, err
	}
	route, err := s.store.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrRouteNotFound
	}
	dto := FromRoute(route)
	return &dto, nil
}

// DeleteRoute removes a rule by identifier, reporting whether it existed.
func (s *RoutingService) DeleteRoute(ctx context.Context, id string) (bool, error) {
	if s == nil || s.store == nil {
		return false, nil
	}
	return s.store.DeleteRoute(ctx, id)
}
