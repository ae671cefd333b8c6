package probability

import (
	"context"
	"fmt"
)

// Static serves fixed values; used in tests and as a stand-in when no model
// service is configured.
type Static struct {
	Probabilities map[string]float64 // keyed "marketID/selection"
	Projections   map[string]float64 // keyed "playerID/statType"
}

func (s *Static) Probability(_ context.Context, marketID, selection string) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("no probability source")
	}
	v, ok := s.Probabilities[marketID+"/"+selection]
	if !ok {
		return 0, fmt.Errorf("no probability for %s/%s", marketID, selection)
	}
	return v, nil
}

func (s *Static) Projection(_ context.Context, playerID, statType string) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("no probability source")
	}
	v, ok := s.Projections[playerID+"/"+statType]
	if !ok {
		return 0, fmt.Errorf("no projection for %s/%s", playerID, statType)
	}
	return v, nil
}
