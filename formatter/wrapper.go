package formatter

import (
	"github.com/theoremus-urban-solutions/zhbus-go/siri"
)

// BuildServiceDelivery creates a standardized ServiceDelivery wrapper
// with ResponseTimestamp and ProducerRef (codespace)
func BuildServiceDelivery(timestamp, codespace string) siri.ServiceDelivery {
	if codespace == "" {
		codespace = "UNKNOWN"
	}
	return siri.ServiceDelivery{
		ResponseTimestamp:         timestamp,
		ProducerRef:               codespace,
		VehicleMonitoringDelivery: []siri.VehicleMonitoring{},
	}
}

// WrapVehicleMonitoringResponse wraps a VM delivery in a complete SIRI response
func WrapVehicleMonitoringResponse(vm siri.VehicleMonitoring, codespace string) *siri.SiriResponse {
	sd := BuildServiceDelivery(vm.ResponseTimestamp, codespace)
	sd.VehicleMonitoringDelivery = append(sd.VehicleMonitoringDelivery, vm)
	return &siri.SiriResponse{
		Siri: siri.SiriServiceDelivery{
			ServiceDelivery: sd,
		},
	}
}
