package predictor

const (
	DefaultSeed          int64   = 42
	DefaultTestRatio     float64 = 0.2
	DefaultMaxIterations         = 1000
	DefaultLearningRate  float64 = 0.1
	DefaultL2            float64 = 1.0
	DefaultTolerance     float64 = 1e-6
	DefaultMinRows               = 10
)

// Config controls the train/holdout split and the optimizer.
type Config struct {
	// Seed drives the shuffle that assigns rows to partitions.
	Seed int64
	// TestRatio is the share of rows held out for evaluation.
	TestRatio     float64
	MaxIterations int
	LearningRate  float64
	// L2 is the ridge penalty strength applied to feature weights.
	L2        float64
	Tolerance float64
	MinRows   int
}

func DefaultConfig() Config {
	return Config{
		Seed:          DefaultSeed,
		TestRatio:     DefaultTestRatio,
		MaxIterations: DefaultMaxIterations,
		LearningRate:  DefaultLearningRate,
		L2:            DefaultL2,
		Tolerance:     DefaultTolerance,
		MinRows:       DefaultMinRows,
	}
}

// withDefaults fills zero fields. Seed is taken as given: zero is a valid seed.
func (c Config) withDefaults() Config {
	if c.TestRatio <= 0 || c.TestRatio >= 1 {
		c.TestRatio = DefaultTestRatio
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.LearningRate <= 0 {
		c.LearningRate = DefaultLearningRate
	}
	if c.L2 < 0 {
		c.L2 = DefaultL2
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.MinRows < 2 {
		c.MinRows = 2
	}
	return c
}
