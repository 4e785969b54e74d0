package domain

// Built-in status codes.
const (
	StatusCodeNew       = "new"
	StatusCodeConverted = "converted"
)

// ContactStatus drives queue priority and call-list exclusion.
type ContactStatus struct {
	Tracking

	Name                string `json:"name" validate:"required,max=100"`
	Code                string `json:"code" validate:"required,max=50"`
	Color               string `json:"color" validate:"required,hexcolor"`
	Order               int    `json:"order" validate:"gte=0"`
	ExcludeFromCallList bool   `json:"excludeFromCallList"`
	IsSystemStatus      bool   `json:"isSystemStatus"`
	IsDeletable         bool   `json:"isDeletable"`
}

func (s *ContactStatus) Kind() EntityType { return EntityContactStatus }

// CanDelete reports whether the status may be removed.
func (s *ContactStatus) CanDelete() bool {
	return s.IsDeletable && !s.IsSystemStatus
}

// DefaultStatuses is the seed status table.
func DefaultStatuses() []*ContactStatus {
	return []*ContactStatus{
		{Name: "New", Code: StatusCodeNew, Color: "#3B82F6", Order: 0, IsSystemStatus: true},
		{Name: "Attempted", Code: "attempted", Color: "#F59E0B", Order: 10, IsDeletable: true},
		{Name: "Callback requested", Code: "callback_requested", Color: "#8B5CF6", Order: 20, IsDeletable: true},
		{Name: "In discussion", Code: "in_discussion", Color: "#06B6D4", Order: 30, IsDeletable: true},
		{Name: "Interested", Code: "interested", Color: "#10B981", Order: 40, IsDeletable: true},
		{Name: "Not interested", Code: "not_interested", Color: "#6B7280", Order: 50, ExcludeFromCallList: true, IsDeletable: true},
		{Name: "Converted", Code: StatusCodeConverted, Color: "#22C55E", Order: 100, ExcludeFromCallList: true, IsSystemStatus: true},
		{Name: "Do not call", Code: "do_not_call", Color: "#EF4444", Order: 1000, ExcludeFromCallList: true, IsDeletable: true},
	}
}
