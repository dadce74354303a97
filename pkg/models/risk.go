package models

// RiskMeans are the reference means the at-risk rule compared against.
type RiskMeans struct {
	RaisedHands      float64 `json:"raised_hands" yaml:"raised_hands"`
	VisitedResources float64 `json:"visited_resources" yaml:"visited_resources"`
	AbsenceDays      float64 `json:"absence_days" yaml:"absence_days"`
}

type RiskAssessment struct {
	Record StudentRecord `json:"record" yaml:"record"`
	AtRisk bool          `json:"at_risk" yaml:"at_risk"`
}

// RiskReport is the at-risk table for one view.
type RiskReport struct {
	Means        RiskMeans        `json:"means" yaml:"means"`
	Assessments  []RiskAssessment `json:"assessments" yaml:"assessments"`
	FlaggedCount int              `json:"flagged_count" yaml:"flagged_count"`
}

func (r *RiskReport) Flagged() []RiskAssessment {
	out := make([]RiskAssessment, 0, r.FlaggedCount)
	for _, a := range r.Assessments {
		if a.AtRisk {
			out = append(out, a)
		}
	}
	return out
}
