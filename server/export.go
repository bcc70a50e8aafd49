package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/theoremus-urban-solutions/zhbus-go/formatter"
	"github.com/theoremus-urban-solutions/zhbus-go/gtfsrt"
	"github.com/theoremus-urban-solutions/zhbus-go/siri"
	"github.com/theoremus-urban-solutions/zhbus-go/zhbus"
)

// exportInput fetches the live status and, when lineId is given, the cached
// station list and line used to enrich it. Enrichment failures are only logged.
func (s *Server) exportInput(c *gin.Context) (*zhbus.RealTimeStatus, *zhbus.StationList, *zhbus.Line, bool) {
	line, from, ok := realTimeParams(c)
	if !ok {
		return nil, nil, nil, false
	}
	c.Header("Cache-Control", "no-store")
	ctx := c.Request.Context()
	status, err := s.svc.RealTime(ctx, line, from)
	if err != nil {
		s.writeError(c, err)
		return nil, nil, nil, false
	}

	stations, detail, err := s.svc.LineContext(ctx, line, c.Query("lineId"))
	if err != nil {
		log.Printf("[%s] enrichment: %v", requestIDOf(c), err)
	}
	return status, stations, detail, true
}

func (s *Server) vehicleMonitoring(c *gin.Context) (*siri.SiriResponse, bool) {
	status, stations, line, ok := s.exportInput(c)
	if !ok {
		return nil, false
	}
	vm := siri.BuildVehicleMonitoring(status, stations, siri.Options{
		ProducerRef: s.opts.ProducerRef,
		Validity:    s.opts.Validity,
		Line:        line,
	})
	return formatter.WrapVehicleMonitoringResponse(vm, s.opts.ProducerRef), true
}

func (s *Server) handleVehicleMonitoringJSON(c *gin.Context) {
	res, ok := s.vehicleMonitoring(c)
	if !ok {
		return
	}
	buf, err := formatter.NewResponseBuilder().BuildJSON(res)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf)
}

func (s *Server) handleVehicleMonitoringXML(c *gin.Context) {
	res, ok := s.vehicleMonitoring(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", formatter.NewResponseBuilder().BuildXML(res))
}

func (s *Server) handleVehiclePositions(c *gin.Context) {
	status, stations, line, ok := s.exportInput(c)
	if !ok {
		return
	}
	fm := gtfsrt.BuildVehiclePositions(status, stations, gtfsrt.FeedOptions{Line: line})

	if c.Query("debug") != "" {
		buf, err := protojson.Marshal(fm)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", buf)
		return
	}
	buf, err := gtfsrt.Marshal(fm)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/x-protobuf", buf)
}
