package domain

// DefaultCommissionRatePercent applies when no platform settings row exists.
const DefaultCommissionRatePercent = 10.0

// PlatformSettings holds operator-tunable values read at processing time,
// not at request creation time.
type PlatformSettings struct {
	ID                    int32   `json:"id"`
	CommissionRatePercent float64 `json:"commission_rate_percent"`
}
