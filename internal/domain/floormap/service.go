package floormap

import (
	"context"

	"linkup/internal/domain/reservation"
	"linkup/internal/domain/resource"
)

type Marker struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Status resource.Status `json:"status"`
	Icon   string          `json:"icon"`
	IsMine bool            `json:"is_mine"`
}

type View struct {
	Computers []Marker `json:"computers"`
	Rooms     []Marker `json:"rooms"`
	MapImage  string   `json:"map_img"`
	IsAdmin   bool     `json:"is_admin"`
}

type Service struct {
	registry     *resource.Registry
	reservations *reservation.Service
}

func NewService(registry *resource.Registry, reservations *reservation.Service) *Service {
	return &Service{registry: registry, reservations: reservations}
}

// View renders every marker as callerID sees it.
func (s *Service) View(ctx context.Context, callerID int64, elevated bool) (*View, error) {
	if err := s.reservations.Sweep(ctx); err != nil {
		return nil, err
	}

	computers, err := s.registry.ListComputers(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.registry.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]resource.Resource, 0, len(computers)+len(rooms))
	for i := range computers {
		items = append(items, &computers[i])
	}
	for i := range rooms {
		items = append(items, &rooms[i])
	}

	statuses, err := s.reservations.Classified(ctx, callerID, items)
	if err != nil {
		return nil, err
	}

	view := &View{
		Computers: make([]Marker, 0, len(computers)),
		Rooms:     make([]Marker, 0, len(rooms)),
		MapImage:  MapImage,
		IsAdmin:   elevated,
	}
	for _, it := range items {
		m := toMarker(it, statuses[it.Key()])
		if it.Key().Kind == resource.KindComputer {
			view.Computers = append(view.Computers, m)
		} else {
			view.Rooms = append(view.Rooms, m)
		}
	}
	return view, nil
}

// toMarker expects status already classified for the viewer, so
// "reserved" means the viewer holds the covering reservation.
func toMarker(r resource.Resource, status resource.Status) Marker {
	x, y := r.Position()
	mine := status == resource.StatusReserved
	return Marker{
		ID:     r.Key().ID,
		Name:   r.DisplayName(),
		X:      x.Round(2).InexactFloat64(),
		Y:      y.Round(2).InexactFloat64(),
		Status: status,
		Icon:   Icon(r.Key().Kind, status, mine),
		IsMine: mine,
	}
}
