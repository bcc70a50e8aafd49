package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/theoremus-urban-solutions/zhbus-go/zhbus"
)

// Querier is the subset of *zhbus.Client the service needs.
type Querier interface {
	GetStationList(ctx context.Context, lineID string) (*zhbus.StationList, error)
	GetLineDetailByName(ctx context.Context, lineName string) ([]zhbus.Line, error)
	GetRealTimeStatus(ctx context.Context, lineName, headStation string) (*zhbus.RealTimeStatus, error)
}

// Service answers transit queries, caching station lists and line lookups.
type Service struct {
	q          Querier
	store      Store
	stationTTL time.Duration
	lineTTL    time.Duration
}

// NewService creates a service over q. A nil store disables caching.
func NewService(q Querier, store Store, stationTTL, lineTTL time.Duration) *Service {
	return &Service{q: q, store: store, stationTTL: stationTTL, lineTTL: lineTTL}
}

func stationsKey(lineID string) string { return "stations:" + lineID }
func linesKey(lineName string) string  { return "lines:" + lineName }

// StationList returns the ordered stations of lineID.
func (s *Service) StationList(ctx context.Context, lineID string) (*zhbus.StationList, error) {
	key := stationsKey(lineID)
	var cached zhbus.StationList
	if s.load(ctx, key, &cached) {
		return &cached, nil
	}
	list, err := s.q.GetStationList(ctx, lineID)
	if err != nil {
		return nil, err
	}
	s.save(ctx, key, list, s.stationTTL)
	return list, nil
}

// LinesByName returns the lines matching lineName.
func (s *Service) LinesByName(ctx context.Context, lineName string) ([]zhbus.Line, error) {
	key := linesKey(lineName)
	var cached []zhbus.Line
	if s.load(ctx, key, &cached) {
		return cached, nil
	}
	lines, err := s.q.GetLineDetailByName(ctx, lineName)
	if err != nil {
		return nil, err
	}
	s.save(ctx, key, lines, s.lineTTL)
	return lines, nil
}

// RealTime always queries the upstream service.
func (s *Service) RealTime(ctx context.Context, lineName, headStation string) (*zhbus.RealTimeStatus, error) {
	return s.q.GetRealTimeStatus(ctx, lineName, headStation)
}

// load reports a usable hit. Store failures and corrupt entries count as
// misses.
func (s *Service) load(ctx context.Context, key string, dst any) bool {
	if s.store == nil {
		return false
	}
	b, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Printf("lookup: cache get %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Printf("lookup: discarding corrupt cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (s *Service) save(ctx context.Context, key string, v any, ttl time.Duration) {
	if s.store == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("lookup: encode %s: %v", key, err)
		return
	}
	if err := s.store.Set(ctx, key, b, ttl); err != nil {
		log.Printf("lookup: cache set %s: %v", key, err)
	}
}

// LineContext returns the station list of lineID and the match of lineName
// with that id, for enriching a real-time status. Either may be nil; a failed
// lookup is reported alongside whatever was found.
func (s *Service) LineContext(ctx context.Context, lineName, lineID string) (*zhbus.StationList, *zhbus.Line, error) {
	if lineID == "" {
		return nil, nil, nil
	}
	var errs []error
	stations, err := s.StationList(ctx, lineID)
	if err != nil {
		errs = append(errs, fmt.Errorf("stations of %s: %w", lineID, err))
		stations = nil
	}
	var line *zhbus.Line
	lines, err := s.LinesByName(ctx, lineName)
	if err != nil {
		errs = append(errs, fmt.Errorf("line %s: %w", lineName, err))
	}
	for i := range lines {
		if lines[i].ID == lineID {
			line = &lines[i]
			break
		}
	}
	return stations, line, errors.Join(errs...)
}
