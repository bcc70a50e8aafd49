package siri

import (
	"time"

	"github.com/theoremus-urban-solutions/zhbus-go/utils"
	"github.com/theoremus-urban-solutions/zhbus-go/zhbus"
)

// Options tune the VM delivery built from a real-time status
type Options struct {
	ProducerRef string        // DataSource codespace
	Validity    time.Duration // ValidUntil offset from the status time
	Line        *zhbus.Line   // optional; fills direction and destination
}

// BuildVehicleMonitoring maps a line's real-time status onto a VM delivery,
// one VehicleActivity per vehicle in upstream order. stations is optional and
// resolves the vehicles' current station to a stop ref and order.
func BuildVehicleMonitoring(status *zhbus.RealTimeStatus, stations *zhbus.StationList, opts Options) VehicleMonitoring {
	vm := VehicleMonitoring{VehicleActivity: []VehicleActivityEntry{}}
	if status == nil {
		vm.ResponseTimestamp = utils.Iso8601(time.Now())
		return vm
	}
	recorded := status.ReceivedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}
	vm.ResponseTimestamp = utils.Iso8601(recorded)
	vm.ValidUntil = utils.ValidUntil(recorded, opts.Validity)

	for _, v := range status.Vehicles {
		mvj := MonitoredVehicleJourney{
			LineRef:           status.LineName,
			VehicleMode:       "bus",
			PublishedLineName: status.LineName,
			OriginName:        status.HeadStation,
			Monitored:         true,
			DataSource:        opts.ProducerRef,
			VehicleRef:        v.ID,
		}
		if opts.Line != nil {
			mvj.DirectionRef = opts.Line.Direction
			mvj.DestinationName = opts.Line.ToStation
		}
		if v.HasLocation() {
			mvj.VehicleLocation = &VehicleLocation{Latitude: *v.Lat, Longitude: *v.Lon}
		}
		if v.CurrentStation != "" {
			mvj.MonitoredCall = monitoredCall(v.CurrentStation, stations)
		}
		vm.VehicleActivity = append(vm.VehicleActivity, VehicleActivityEntry{
			RecordedAtTime:          vm.ResponseTimestamp,
			ValidUntilTime:          vm.ValidUntil,
			MonitoredVehicleJourney: mvj,
		})
	}
	return vm
}

// monitoredCall falls back to the station name as StopPointRef when the
// station is not in the list.
func monitoredCall(stationName string, stations *zhbus.StationList) *MonitoredCall {
	mc := &MonitoredCall{StopPointRef: stationName, StopPointName: stationName}
	s, ok := stations.ByName(stationName)
	if !ok {
		return mc
	}
	order := s.Order
	mc.StopPointRef = s.ID
	mc.Order = &order
	if s.HasLocation() {
		mc.VehicleLocationAtStop = &VehicleLocation{Latitude: *s.Lat, Longitude: *s.Lon}
	}
	return mc
}
