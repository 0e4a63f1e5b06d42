package domain

import "strings"

// Station is a known delivery point. Aliases are alternative spellings a bot may send.
type Station struct {
	Name         string
	Aliases      []string
	City         string
	Canton       string
	DeliveryType string
	Address      string
}

// StationTable classifies free-form delivery requests against known stations.
type StationTable struct {
	byKey         map[string]Station
	defaultPickup Station
}

func NewStationTable(defaultPickup Station, stations ...Station) *StationTable {
	t := &StationTable{byKey: make(map[string]Station), defaultPickup: defaultPickup}
	for _, s := range stations {
		t.byKey[normalizeStation(s.Name)] = s
		for _, a := range s.Aliases {
			t.byKey[normalizeStation(a)] = s
		}
	}
	return t
}

// Classify returns the station matching requested. When nothing matches, it returns
// the default pickup and false.
func (t *StationTable) Classify(requested string) (Station, bool) {
	if s, ok := t.byKey[normalizeStation(requested)]; ok && requested != "" {
		return s, true
	}
	return t.defaultPickup, false
}

func (t *StationTable) DefaultPickup() Station { return t.defaultPickup }

func normalizeStation(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
