package zhbus

const (
	// EndpointStationList returns the stations of a line.
	// Required params: id
	EndpointStationList = "/api/zhbus/StationList/GetStationList"

	// EndpointBusQuery is the generic handler endpoint; line lookup by name uses
	// handlerName=GetLineListByLineName.
	// Required params: handlerName, key
	EndpointBusQuery = "/api/zhbus/Handlers/BusQuery.ashx"

	// EndpointRealTime returns live vehicles of a line.
	// Required params: id (line name), fromStation
	EndpointRealTime = "/api/zhbus/RealTime/GetRealTime"

	// HandlerLineListByLineName is the BusQuery handler for line lookup.
	HandlerLineListByLineName = "GetLineListByLineName"
)
