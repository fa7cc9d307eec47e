package healthcheck

import "status-aggregator/internal/models"

// Status computes the overall status. The checks run in a fixed order and
// must stay that way: a vital resource in maintenance outranks any number of
// non-vital outages, and ties between the counts go to downtime.
func Status(resources []models.AggregatedResource) models.Status {
	var maintenance, downtime int
	var vitalMaintenance, vitalDowntime bool

	for _, r := range resources {
		switch r.Status {
		case models.StatusMaintenance:
			maintenance++
			vitalMaintenance = vitalMaintenance || r.IsVital
		case models.StatusDowntime:
			downtime++
			vitalDowntime = vitalDowntime || r.IsVital
		}
	}

	switch {
	case vitalMaintenance:
		return models.StatusMaintenance
	case vitalDowntime:
		return models.StatusDowntime
	case maintenance == 0 && downtime == 0:
		return models.StatusOperational
	case maintenance > downtime:
		return models.StatusMaintenance
	default:
		return models.StatusDowntime
	}
}

// VitalStatus is "downtime" when any vital resource is in maintenance or
// downtime, otherwise "operational".
func VitalStatus(resources []models.AggregatedResource) models.Status {
	for _, r := range resources {
		if r.IsVital && (r.Status == models.StatusMaintenance || r.Status == models.StatusDowntime) {
			return models.StatusDowntime
		}
	}
	return models.StatusOperational
}
