package zhbus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// record is one upstream JSON object with lower-cased keys.
type record map[string]json.RawMessage

// Field aliases, lower-case. The first present alias wins.
var (
	stationIDKeys   = []string{"id", "stationid"}
	stationNameKeys = []string{"name", "stationname"}

	lineIDKeys    = []string{"id", "lineid"}
	lineNameKeys  = []string{"name", "linenumber", "linename"}
	vehicleIDKeys = []string{"busnumber", "vehicleid", "platenumber", "id"}

	latKeys = []string{"lat", "latitude"}
	lonKeys = []string{"lon", "lng", "longitude"}
)

// decodeRecords accepts a bare array, an envelope object with the array under
// "data", or a single object.
func decodeRecords(body []byte) ([]record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	switch body[0] {
	case '[':
		return decodeArray(body)
	case '{':
		obj, err := decodeObject(body)
		if err != nil {
			return nil, err
		}
		data, ok := obj["data"]
		if !ok {
			return []record{obj}, nil
		}
		data = bytes.TrimSpace(data)
		switch {
		case len(data) == 0 || bytes.Equal(data, []byte("null")):
			return []record{}, nil
		case data[0] == '[':
			return decodeArray(data)
		case data[0] == '{':
			inner, err := decodeObject(data)
			if err != nil {
				return nil, err
			}
			return []record{inner}, nil
		}
		return nil, fmt.Errorf("data is neither an array nor an object")
	}
	return nil, fmt.Errorf("body is not a JSON array or object")
}

func decodeArray(b []byte) ([]record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([]record, 0, len(raw))
	for i, r := range raw {
		rec, err := decodeObject(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeObject folds keys to lower case. When several spellings collide, an
// all-lower-case key wins, otherwise the first in document order.
func decodeObject(b []byte) (record, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, fmt.Errorf("null object")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	rec := make(record)
	exact := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		lk := strings.ToLower(key)
		if exact[lk] {
			continue
		}
		if _, seen := rec[lk]; !seen || key == lk {
			rec[lk] = v
			exact[lk] = key == lk
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after object")
	}
	return rec, nil
}

// str returns the first alias holding a non-empty string or number.
func (r record) str(keys ...string) (string, bool) {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		var s string
		if raw[0] == '"' {
			if err := json.Unmarshal(raw, &s); err != nil {
				continue
			}
		} else {
			var n json.Number
			if err := json.Unmarshal(raw, &n); err != nil {
				continue
			}
			s = n.String()
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

// float accepts a JSON number or a numeric string. NaN and infinities count
// as absent.
func (r record) float(keys ...string) *float64 {
	s, ok := r.str(keys...)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (r record) integer(keys ...string) int {
	f := r.float(keys...)
	if f == nil {
		return 0
	}
	return int(*f)
}

func (r record) required(i int, field string, keys ...string) (string, error) {
	s, ok := r.str(keys...)
	if !ok {
		return "", fmt.Errorf("element %d: missing required field %q", i, field)
	}
	return s, nil
}

// coords returns both coordinates or neither. Out-of-range values count as
// absent.
func (r record) coords() (*float64, *float64) {
	lat, lon := r.float(latKeys...), r.float(lonKeys...)
	if lat == nil || lon == nil || math.Abs(*lat) > 90 || math.Abs(*lon) > 180 {
		return nil, nil
	}
	return lat, lon
}

func decodeStationList(lineID string, body []byte) (*StationList, error) {
	recs, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	list := &StationList{LineID: lineID, Stations: make([]Station, 0, len(recs))}
	for i, rec := range recs {
		id, err := rec.required(i, "id", stationIDKeys...)
		if err != nil {
			return nil, err
		}
		name, err := rec.required(i, "name", stationNameKeys...)
		if err != nil {
			return nil, err
		}
		lat, lon := rec.coords()
		list.Stations = append(list.Stations, Station{
			ID:    id,
			Name:  name,
			Order: i + 1,
			Lat:   lat,
			Lon:   lon,
		})
	}
	return list, nil
}

func decodeLines(body []byte) ([]Line, error) {
	recs, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(recs))
	for i, rec := range recs {
		id, err := rec.required(i, "id", lineIDKeys...)
		if err != nil {
			return nil, err
		}
		name, err := rec.required(i, "name", lineNameKeys...)
		if err != nil {
			return nil, err
		}
		l := Line{ID: id, Name: name, StationCount: rec.integer("stationcount")}
		l.Direction, _ = rec.str("direction")
		l.FromStation, _ = rec.str("fromstation", "startstation")
		l.ToStation, _ = rec.str("tostation", "endstation")
		l.FirstBus, _ = rec.str("begintime", "firstbus")
		l.LastBus, _ = rec.str("endtime", "lastbus")
		l.Price, _ = rec.str("price")
		l.Interval, _ = rec.str("interval")
		lines = append(lines, l)
	}
	return lines, nil
}

func decodeVehicles(body []byte) ([]VehicleStatus, error) {
	recs, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	vehicles := make([]VehicleStatus, 0, len(recs))
	for i, rec := range recs {
		id, err := rec.required(i, "id", vehicleIDKeys...)
		if err != nil {
			return nil, err
		}
		v := VehicleStatus{ID: id}
		v.CurrentStation, _ = rec.str("currentstation", "stationname")
		v.State, _ = rec.str("lastposition", "state")
		v.Lat, v.Lon = rec.coords()
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}
