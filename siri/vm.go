package siri

// VehicleMonitoring represents the VehicleMonitoring delivery
type VehicleMonitoring struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	ValidUntil        string                 `json:"ValidUntil,omitempty"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	ValidUntilTime          string                  `json:"ValidUntilTime,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle journey
type MonitoredVehicleJourney struct {
	LineRef                string           `json:"LineRef"`
	DirectionRef           string           `json:"DirectionRef,omitempty"`
	VehicleMode            string           `json:"VehicleMode,omitempty"`
	PublishedLineName      string           `json:"PublishedLineName,omitempty"`
	OriginName             string           `json:"OriginName,omitempty"`
	DestinationName        string           `json:"DestinationName,omitempty"`
	Monitored              bool             `json:"Monitored"`
	DataSource             string           `json:"DataSource"`
	VehicleLocation        *VehicleLocation `json:"VehicleLocation,omitempty"`
	VehicleRef             string           `json:"VehicleRef"`
	MonitoredCall          *MonitoredCall   `json:"MonitoredCall,omitempty"`
	IsCompleteStopSequence bool             `json:"IsCompleteStopSequence"` // always false
}

// VehicleLocation represents the geographical location of a vehicle
type VehicleLocation struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

// MonitoredCall is the station the vehicle was last reported at
type MonitoredCall struct {
	StopPointRef          string           `json:"StopPointRef"`
	Order                 *int             `json:"Order,omitempty"`
	StopPointName         string           `json:"StopPointName,omitempty"`
	VehicleLocationAtStop *VehicleLocation `json:"VehicleLocationAtStop,omitempty"`
}
