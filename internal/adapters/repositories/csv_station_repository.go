package repositories

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fuel-route-service/internal/domain"
)

// CSV column headers of the OPIS fuel price export.
const (
	colOPISID  = "OPIS Truckstop ID"
	colName    = "Truckstop Name"
	colAddress = "Address"
	colCity    = "City"
	colState   = "State"
	colRackID  = "Rack ID"
	colPrice   = "Retail Price"
)

// CSVStationRepository loads the station set from an OPIS price CSV.
//
// Rows with unparseable prices are skipped; rows sharing a cache key are
// deduplicated keeping the lower price. Every call re-reads the file and
// returns fresh Station values.
type CSVStationRepository struct {
	Path string
}

func NewCSVStationRepository(path string) *CSVStationRepository {
	return &CSVStationRepository{Path: path}
}

// Return all deduplicated stations from the CSV file.
func (r *CSVStationRepository) ListStations() ([]*domain.Station, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("list stations: open %q: %w", r.Path, err)
	}
	defer f.Close()

	stations, err := ReadStations(f)
	if err != nil {
		return nil, fmt.Errorf("list stations: %q: %w", r.Path, err)
	}
	return stations, nil
}

// ReadStations parses station records from CSV data.
func ReadStations(r io.Reader) ([]*domain.Station, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colOPISID, colName, colAddress, colCity, colState, colRackID, colPrice} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	byKey := make(map[string]*domain.Station)
	order := make([]string, 0, 64)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		field := func(name string) string {
			idx := cols[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		price, err := strconv.ParseFloat(field(colPrice), 64)
		if err != nil {
			continue
		}

		station := &domain.Station{
			OPISID:      field(colOPISID),
			Name:        field(colName),
			Address:     field(colAddress),
			City:        field(colCity),
			State:       field(colState),
			RackID:      field(colRackID),
			RetailPrice: price,
		}

		key := station.CacheKey()
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = station
			order = append(order, key)
			continue
		}
		if price < existing.RetailPrice {
			byKey[key] = station
		}
	}

	stations := make([]*domain.Station, 0, len(order))
	for _, key := range order {
		stations = append(stations, byKey[key])
	}
	return stations, nil
}
