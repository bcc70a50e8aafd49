package zhbus

import "time"

// Line is a named bus route as returned by the line lookup.
type Line struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Direction    string `json:"direction,omitempty"`
	FromStation  string `json:"fromStation,omitempty"`
	ToStation    string `json:"toStation,omitempty"`
	FirstBus     string `json:"firstBus,omitempty"`
	LastBus      string `json:"lastBus,omitempty"`
	Price        string `json:"price,omitempty"`
	Interval     string `json:"interval,omitempty"`
	StationCount int    `json:"stationCount,omitempty"`
}

// Station is a stop along a line. Order is 1-based and follows the upstream
// payload.
type Station struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Order int      `json:"order"`
	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
}

// HasLocation reports whether both coordinates are known.
func (s Station) HasLocation() bool { return s.Lat != nil && s.Lon != nil }

// StationList is the ordered station sequence of exactly one line.
type StationList struct {
	LineID   string    `json:"lineId"`
	Stations []Station `json:"stations"`
}

// ByName returns the first station with the given name.
func (l *StationList) ByName(name string) (Station, bool) {
	if l == nil {
		return Station{}, false
	}
	for _, s := range l.Stations {
		if s.Name == name {
			return s, true
		}
	}
	return Station{}, false
}

// VehicleStatus is one live vehicle on a line.
type VehicleStatus struct {
	ID             string   `json:"id"`
	CurrentStation string   `json:"currentStation,omitempty"`
	State          string   `json:"state,omitempty"` // raw upstream position state
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
}

// HasLocation reports whether both coordinates are known.
func (v VehicleStatus) HasLocation() bool { return v.Lat != nil && v.Lon != nil }

// RealTimeStatus is a transient snapshot of a line's vehicles. It is valid
// only at ReceivedAt and must not be cached.
type RealTimeStatus struct {
	LineName    string          `json:"lineName"`
	HeadStation string          `json:"headStation"`
	Vehicles    []VehicleStatus `json:"vehicles"`
	ReceivedAt  time.Time       `json:"receivedAt"`
}
