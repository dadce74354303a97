package models

import (
	"encoding/json"
	"math"
)

// NullFloat encodes NaN and infinities as JSON null.
type NullFloat float64

func (f NullFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (s ColumnSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column string    `json:"column"`
		Count  int       `json:"count"`
		Mean   NullFloat `json:"mean"`
		Std    NullFloat `json:"std"`
		Min    NullFloat `json:"min"`
		Q25    NullFloat `json:"q25"`
		Median NullFloat `json:"median"`
		Q75    NullFloat `json:"q75"`
		Max    NullFloat `json:"max"`
		Empty  bool      `json:"empty"`
	}{
		Column: s.Column,
		Count:  s.Count,
		Mean:   NullFloat(s.Mean),
		Std:    NullFloat(s.Std),
		Min:    NullFloat(s.Min),
		Q25:    NullFloat(s.Q25),
		Median: NullFloat(s.Median),
		Q75:    NullFloat(s.Q75),
		Max:    NullFloat(s.Max),
		Empty:  s.Empty,
	})
}

func (m CorrMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]NullFloat, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]NullFloat, len(row))
		for j, v := range row {
			values[i][j] = NullFloat(v)
		}
	}
	return json.Marshal(struct {
		Columns []string      `json:"columns"`
		Values  [][]NullFloat `json:"values"`
	}{m.Columns, values})
}

func (o Overview) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Students            int       `json:"students"`
		AvgRaisedHands      NullFloat `json:"avg_raised_hands"`
		AvgVisitedResources NullFloat `json:"avg_visited_resources"`
		AvgAbsenceDays      NullFloat `json:"avg_absence_days"`
		Grades              int       `json:"grades"`
		Topics              int       `json:"topics"`
		Classes             int       `json:"classes"`
	}{
		Students:            o.Students,
		AvgRaisedHands:      NullFloat(o.AvgRaisedHands),
		AvgVisitedResources: NullFloat(o.AvgVisitedResources),
		AvgAbsenceDays:      NullFloat(o.AvgAbsenceDays),
		Grades:              o.Grades,
		Topics:              o.Topics,
		Classes:             o.Classes,
	})
}
