package models

// Status is a health state reported by the status page or derived from it.
type Status string

const (
	StatusOperational Status = "operational"
	StatusMaintenance Status = "maintenance"
	StatusDowntime    Status = "downtime"
)

// UnknownID is the placeholder for a region or location that could not be resolved.
const UnknownID = "N/A"

// Region is a deployment region as shown on the dashboard.
type Region struct {
	ID       string `json:"id"`
	Location string `json:"location"`
}

// UnknownRegion is returned whenever a region cannot be resolved.
var UnknownRegion = Region{ID: UnknownID, Location: UnknownID}

// RegionTable maps a hostname, public resource name or region code to a Region.
type RegionTable map[string]Region

// Lookup returns the region stored under key, or UnknownRegion when absent.
// Blank fields of a stored region fall back to "N/A" individually.
func (t RegionTable) Lookup(key string) Region {
	r, ok := t[key]
	if !ok {
		return UnknownRegion
	}
	if r.ID == "" {
		r.ID = UnknownID
	}
	if r.Location == "" {
		r.Location = UnknownID
	}
	return r
}

// AggregatedResource is one status-page resource joined with its region,
// its active report and its section.
type AggregatedResource struct {
	RegionID       string  `json:"region_id"`
	RegionLocation string  `json:"region_location"`
	Name           string  `json:"name"`
	Status         Status  `json:"status"`
	Reason         *string `json:"reason"`
	IsVital        bool    `json:"is_vital"`
}

// App is the short view of a resource that is not operational.
type App struct {
	Name   string  `json:"name"`
	Reason *string `json:"reason"`
	Status Status  `json:"status"`
}

// StatusSummary is the payload served to the status dashboard.
type StatusSummary struct {
	VitalStatus     Status               `json:"vital_status"`
	Status          Status               `json:"status"`
	Resources       []AggregatedResource `json:"resources"`
	AffectedRegions []string             `json:"affected_regions"`
	Apps            []App                `json:"apps"`
}
