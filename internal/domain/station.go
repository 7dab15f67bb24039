package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Station is a single fuel pump location from the OPIS price feed.
//
// Coord starts nil and is filled in lazily while coordinates are resolved
// during a planning session. A Station is otherwise immutable and owned by
// the station set of a single planning request.
type Station struct {
	OPISID      string
	Name        string
	Address     string
	City        string
	State       string
	RackID      string
	RetailPrice float64
	Coord       *Coordinates
}

// CacheKey returns the stable identity key for the physical pump location.
// Two records with the same key refer to the same pump.
func (s *Station) CacheKey() string {
	return fmt.Sprintf("%s-%s-%s-%s", s.OPISID, s.Address, s.City, s.State)
}

// GeocodeQuery returns the full-address lookup string for this station.
func (s *Station) GeocodeQuery() string {
	return fmt.Sprintf("%s, %s, %s, USA", s.Address, s.City, s.State)
}

// CentroidQuery returns the looser city/state lookup string used when the
// precise address cannot be geocoded.
func (s *Station) CentroidQuery() string {
	return fmt.Sprintf("%s, %s, USA", s.City, s.State)
}

// SortStationsByPrice returns a new slice ordered by ascending retail
// price. The input is left untouched; ties keep their original order.
func SortStationsByPrice(stations []*Station) []*Station {
	out := make([]*Station, len(stations))
	copy(out, stations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RetailPrice < out[j].RetailPrice
	})
	return out
}

// CityStateKey builds the case-insensitive, trimmed index key for a
// city/state pair.
func CityStateKey(city, state string) string {
	return strings.ToLower(strings.TrimSpace(city)) + "|" + strings.ToLower(strings.TrimSpace(state))
}

// StateKey builds the case-insensitive, trimmed index key for a state.
func StateKey(state string) string {
	return strings.ToLower(strings.TrimSpace(state))
}

// IndexByCityState groups stations under CityStateKey keys.
func IndexByCityState(stations []*Station) map[string][]*Station {
	index := make(map[string][]*Station)
	for _, s := range stations {
		key := CityStateKey(s.City, s.State)
		index[key] = append(index[key], s)
	}
	return index
}

// IndexByState groups stations under StateKey keys.
func IndexByState(stations []*Station) map[string][]*Station {
	index := make(map[string][]*Station)
	for _, s := range stations {
		key := StateKey(s.State)
		index[key] = append(index[key], s)
	}
	return index
}
