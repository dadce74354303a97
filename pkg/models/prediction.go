package models

// Prediction is the classifier output for one set of engagement values.
type Prediction struct {
	Class         Class             `json:"class" yaml:"class"`
	Probabilities map[Class]float64 `json:"probabilities" yaml:"probabilities"`
	// Extrapolated is set when an input lies outside the range seen in training.
	Extrapolated bool `json:"extrapolated" yaml:"extrapolated"`
}

func (p *Prediction) Confidence() float64 {
	return p.Probabilities[p.Class]
}

func (p *Prediction) IsHighConfidence(threshold float64) bool {
	return p.Confidence() >= threshold
}

type FeatureRange struct {
	Feature string  `json:"feature" yaml:"feature"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
}

// ModelInfo describes a fitted model.
type ModelInfo struct {
	Features      []string       `json:"features" yaml:"features"`
	Classes       []Class        `json:"classes" yaml:"classes"`
	TrainSize     int            `json:"train_size" yaml:"train_size"`
	HoldoutSize   int            `json:"holdout_size" yaml:"holdout_size"`
	Seed          int64          `json:"seed" yaml:"seed"`
	Iterations    int            `json:"iterations" yaml:"iterations"`
	Accuracy      float64        `json:"accuracy" yaml:"accuracy"`
	FeatureRanges []FeatureRange `json:"feature_ranges" yaml:"feature_ranges"`
}
