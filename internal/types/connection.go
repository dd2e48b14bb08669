package types

// ConnectionOrigin tags how a relationship edge was observed.
type ConnectionOrigin string

const (
	// OriginCoEmployment means the connector and target worked at the same company.
	OriginCoEmployment ConnectionOrigin = "co_employment"
	// OriginCoEducation means they attended the same school or program.
	OriginCoEducation ConnectionOrigin = "co_education"
	// OriginCorrespondence means direct email correspondence was observed.
	OriginCorrespondence ConnectionOrigin = "correspondence"
	// OriginCalendar means they attended the same calendar events.
	OriginCalendar ConnectionOrigin = "calendar"
)

// ConnectionRecord is one observed relationship-strength edge between a known
// network member (the connector) and a person believed to work at a target
// company. Several records may point at the same target person through
// different connectors or different origins.
type ConnectionRecord struct {
	ConnectorName string           `json:"connector_name"`
	TargetPerson  string           `json:"target_person"`
	TargetTitle   string           `json:"target_title,omitempty"`
	Strength      float64          `json:"strength"` // 0..1
	Origin        ConnectionOrigin `json:"origin"`
	// Detail carries the origin-specific context, e.g. a company name and
	// year range for co-employment or a school name for co-education.
	Detail string `json:"detail,omitempty"`
}

// ConnectionPath is one ranked introduction path toward a target company.
type ConnectionPath struct {
	TargetPerson string  `json:"target_person"`
	TargetTitle  string  `json:"target_title,omitempty"`
	Connector    string  `json:"connector"`
	Strength     float64 `json:"strength"` // 0..1, the connector's single strongest record
	// SharedContext is a human-readable synthesis of every record backing
	// this path, e.g. "worked together at Acme (2018-2020); attended Stanford together".
	SharedContext string `json:"shared_context"`
}

// CompanyConnections aggregates every introduction path for one company.
type CompanyConnections struct {
	CompanyDomain string           `json:"company_domain"`
	Paths         []ConnectionPath `json:"paths"`
	// ConnectionScore blends average path strength with breadth, normalized to [0,1].
	ConnectionScore float64 `json:"connection_score"`
	// HasWarmIntro is true iff the single strongest path is >= 0.7. It is
	// computed from the maximum, never the average.
	HasWarmIntro bool `json:"has_warm_intro"`
}
