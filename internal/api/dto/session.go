package dto

type CreateSessionRequest struct {
	User   string `json:"user"`
	Viewer string `json:"viewer"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
	User      string `json:"user"`
	Viewer    string `json:"viewer"`
	View      View   `json:"view"`
}

type ZoomRequest struct {
	Zoom *float64 `json:"zoom"`
}

type MoveRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// HoverRequest reports the pointer entering (id set) or leaving (id null) a row or marker.
type HoverRequest struct {
	ID     *string `json:"id"`
	Source string  `json:"source"`
}

type ActivateRequest struct {
	ID string `json:"id"`
}

// EventResponse answers an interaction with whether it took effect and the resulting view.
type EventResponse struct {
	Applied bool `json:"applied"`
	View    View `json:"view"`
}
