package formatter

import (
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/zhbus-go/siri"
)

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// BuildXML serializes a SIRI response to XML
func (rb *responseBuilder) BuildXML(res *siri.SiriResponse) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("<Siri xmlns=\"http://www.siri.org.uk/siri\" version=\"2.0\">")
	sd := res.Siri.ServiceDelivery
	b.WriteString("<ServiceDelivery>")
	writeElem(&b, "ResponseTimestamp", sd.ResponseTimestamp)
	writeElem(&b, "ProducerRef", sd.ProducerRef)
	for _, vm := range sd.VehicleMonitoringDelivery {
		writeVehicleMonitoringXML(&b, vm)
	}
	b.WriteString("</ServiceDelivery>")
	b.WriteString("</Siri>")
	return []byte(b.String())
}

func writeVehicleMonitoringXML(b *strings.Builder, vm siri.VehicleMonitoring) {
	b.WriteString("<VehicleMonitoringDelivery version=\"2.0\">")
	writeElem(b, "ResponseTimestamp", vm.ResponseTimestamp)
	writeElem(b, "ValidUntil", vm.ValidUntil)
	for _, va := range vm.VehicleActivity {
		b.WriteString("<VehicleActivity>")
		writeElem(b, "RecordedAtTime", va.RecordedAtTime)
		writeElem(b, "ValidUntilTime", va.ValidUntilTime)
		writeMVJXML(b, va.MonitoredVehicleJourney)
		b.WriteString("</VehicleActivity>")
	}
	b.WriteString("</VehicleMonitoringDelivery>")
}

func writeMVJXML(b *strings.Builder, mvj siri.MonitoredVehicleJourney) {
	b.WriteString("<MonitoredVehicleJourney>")
	writeElem(b, "LineRef", mvj.LineRef)
	writeElem(b, "DirectionRef", mvj.DirectionRef)
	writeElem(b, "VehicleMode", mvj.VehicleMode)
	writeElem(b, "PublishedLineName", mvj.PublishedLineName)
	writeElem(b, "OriginName", mvj.OriginName)
	writeElem(b, "DestinationName", mvj.DestinationName)
	writeElem(b, "Monitored", strconv.FormatBool(mvj.Monitored))
	writeElem(b, "DataSource", mvj.DataSource)
	if mvj.VehicleLocation != nil {
		writeLocation(b, "VehicleLocation", mvj.VehicleLocation)
	}
	writeElem(b, "VehicleRef", mvj.VehicleRef)
	if mc := mvj.MonitoredCall; mc != nil {
		b.WriteString("<MonitoredCall>")
		writeElem(b, "StopPointRef", mc.StopPointRef)
		if mc.Order != nil {
			writeElem(b, "Order", strconv.Itoa(*mc.Order))
		}
		writeElem(b, "StopPointName", mc.StopPointName)
		if mc.VehicleLocationAtStop != nil {
			writeLocation(b, "VehicleLocationAtStop", mc.VehicleLocationAtStop)
		}
		b.WriteString("</MonitoredCall>")
	}
	writeElem(b, "IsCompleteStopSequence", strconv.FormatBool(mvj.IsCompleteStopSequence))
	b.WriteString("</MonitoredVehicleJourney>")
}

func writeLocation(b *strings.Builder, name string, loc *siri.VehicleLocation) {
	b.WriteString("<" + name + ">")
	writeElem(b, "Longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	writeElem(b, "Latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	b.WriteString("</" + name + ">")
}

// writeElem skips empty values
func writeElem(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("<" + name + ">")
	b.WriteString(xmlEscape(value))
	b.WriteString("</" + name + ">")
}

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
