package reservation

import "time"

type CreateRequest struct {
	Type       string `json:"type" binding:"required"`
	ID         int64  `json:"id" binding:"required,gt=0"`
	ReserveNow bool   `json:"reserve_now"`
	Start      string `json:"start" binding:"required_without=ReserveNow"`
}

type SlotsQuery struct {
	Type string `form:"type" binding:"required"`
	ID   int64  `form:"id" binding:"required,gt=0"`
}

type SlotResponse struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

type ReservationResponse struct {
	ID           int64  `json:"id"`
	ResourceType string `json:"type"`
	ResourceID   int64  `json:"resource_id"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

func toSlotResponses(slots []Slot, loc *time.Location) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			Start:     formatTime(s.Start, loc),
			End:       formatTime(s.End, loc),
			Available: s.Available,
		})
	}
	return out
}

func toReservationResponse(r *Reservation, loc *time.Location) *ReservationResponse {
	if r == nil {
		return nil
	}
	return &ReservationResponse{
		ID:           r.ID,
		ResourceType: string(r.Kind),
		ResourceID:   r.ResourceID,
		Start:        formatTime(r.Start, loc),
		End:          formatTime(r.End, loc),
	}
}
