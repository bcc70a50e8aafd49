package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"

	"github.com/theoremus-urban-solutions/zhbus-go/formatter"
	"github.com/theoremus-urban-solutions/zhbus-go/gtfsrt"
	"github.com/theoremus-urban-solutions/zhbus-go/lookup"
	"github.com/theoremus-urban-solutions/zhbus-go/siri"
)

// query runs one-shot queries for the CLI
type query struct {
	svc      *lookup.Service
	producer string
	validity time.Duration
}

// callFormats lists the output formats each call can produce.
var callFormats = map[string][]string{
	"stations": {"json"},
	"lines":    {"json"},
	"realtime": {"json"},
	"vm":       {"json", "xml"},
	"gtfsrt":   {"json", "pb"},
}

func checkFormat(call, format string) error {
	formats, ok := callFormats[call]
	if !ok {
		return fmt.Errorf("unknown call %q", call)
	}
	if slices.Contains(formats, format) {
		return nil
	}
	return fmt.Errorf("-format %s is not supported by -call %s (want %s)", format, call, strings.Join(formats, "|"))
}

func (q query) run(ctx context.Context, call, line, lineID, from, format string) ([]byte, error) {
	if err := checkFormat(call, format); err != nil {
		return nil, err
	}
	switch call {
	case "stations":
		if lineID == "" {
			return nil, fmt.Errorf("-lineId is required")
		}
		list, err := q.svc.StationList(ctx, lineID)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(list, "", "  ")
	case "lines":
		if line == "" {
			return nil, fmt.Errorf("-line is required")
		}
		lines, err := q.svc.LinesByName(ctx, line)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(lines, "", "  ")
	case "realtime", "vm", "gtfsrt":
		if line == "" || from == "" {
			return nil, fmt.Errorf("-line and -from are required")
		}
	}

	status, err := q.svc.RealTime(ctx, line, from)
	if err != nil {
		return nil, err
	}
	if call == "realtime" {
		return json.MarshalIndent(status, "", "  ")
	}
	stations, detail, err := q.svc.LineContext(ctx, line, lineID)
	if err != nil {
		log.Printf("enrichment: %v", err)
	}

	if call == "vm" {
		vm := siri.BuildVehicleMonitoring(status, stations, siri.Options{
			ProducerRef: q.producer,
			Validity:    q.validity,
			Line:        detail,
		})
		res := formatter.WrapVehicleMonitoringResponse(vm, q.producer)
		if format == "xml" {
			return formatter.NewResponseBuilder().BuildXML(res), nil
		}
		return formatter.NewResponseBuilder().BuildJSON(res)
	}

	fm := gtfsrt.BuildVehiclePositions(status, stations, gtfsrt.FeedOptions{Line: detail})
	if format == "pb" {
		return gtfsrt.Marshal(fm)
	}
	return protojson.MarshalOptions{Multiline: true}.Marshal(fm)
}
