// Package predictor fits a multinomial logistic regression that predicts the
// performance class from the three engagement features.
package predictor

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/pkg/models"
)

var Features = []string{
	models.ColumnRaisedHands,
	models.ColumnVisitedResources,
	models.ColumnDiscussion,
}

// Model is immutable once Fit returns and may be shared between goroutines.
type Model struct {
	encoder *LabelEncoder
	mean    []float64
	scale   []float64
	// weights[k] holds the bias followed by one coefficient per feature.
	weights [][]float64
	ranges  []models.FeatureRange

	accuracy    float64
	trainSize   int
	holdoutSize int
	holdoutIDs  []string
	iterations  int
	seed        int64
}

type sample struct {
	id string
	x  []float64
	y  int
}

// Fit splits the dataset with the configured seed, trains on the training
// partition and scores the holdout partition once.
func Fit(ds *dataset.Dataset, cfg Config) (*Model, error) {
	cfg = cfg.withDefaults()
	log := logger.WithModel("fit")
	start := time.Now()

	records := ds.All().Records()
	n := len(records)

	labels := make([]models.Class, n)
	for i := range records {
		labels[i] = records[i].Class
	}
	encoder := NewLabelEncoder(labels)

	if n < cfg.MinRows {
		return nil, &InsufficientDataError{Rows: n, Classes: encoder.Len(), Reason: "too few rows"}
	}
	if encoder.Len() < 2 {
		return nil, &InsufficientDataError{Rows: n, Classes: encoder.Len(), Reason: "need at least two classes"}
	}

	holdoutSize := int(math.Ceil(float64(n) * cfg.TestRatio))
	if holdoutSize < 1 || holdoutSize >= n {
		return nil, &InsufficientDataError{Rows: n, Classes: encoder.Len(), Reason: "split leaves an empty partition"}
	}

	samples := make([]sample, n)
	for i := range records {
		r := &records[i]
		y, _ := encoder.Encode(r.Class)
		samples[i] = sample{
			id: r.ID,
			x:  []float64{float64(r.RaisedHands), float64(r.VisitedResources), float64(r.Discussion)},
			y:  y,
		}
	}

	perm := rand.New(rand.NewSource(cfg.Seed)).Perm(n)
	holdout := make([]sample, 0, holdoutSize)
	train := make([]sample, 0, n-holdoutSize)
	for i, idx := range perm {
		if i < holdoutSize {
			holdout = append(holdout, samples[idx])
		} else {
			train = append(train, samples[idx])
		}
	}

	trainClasses := make(map[int]bool)
	for _, s := range train {
		trainClasses[s.y] = true
	}
	if len(trainClasses) < 2 {
		return nil, &InsufficientDataError{Rows: n, Classes: len(trainClasses), Reason: "training partition has a single class"}
	}

	m := &Model{
		encoder:     encoder,
		trainSize:   len(train),
		holdoutSize: len(holdout),
		seed:        cfg.Seed,
	}
	m.standardize(train)
	m.iterations = m.train(train, cfg)

	correct := 0
	m.holdoutIDs = make([]string, 0, len(holdout))
	for _, s := range holdout {
		m.holdoutIDs = append(m.holdoutIDs, s.id)
		if argmax(m.probabilities(s.x)) == s.y {
			correct++
		}
	}
	m.accuracy = float64(correct) / float64(len(holdout))
	sort.Strings(m.holdoutIDs)

	log.WithFields(map[string]interface{}{
		"train_size":   m.trainSize,
		"holdout_size": m.holdoutSize,
		"iterations":   m.iterations,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Infof("Model fitted: accuracy=%.3f", m.accuracy)

	return m, nil
}

func (m *Model) standardize(train []sample) {
	d := len(Features)
	m.mean = make([]float64, d)
	m.scale = make([]float64, d)
	m.ranges = make([]models.FeatureRange, d)

	col := make([]float64, len(train))
	for j := 0; j < d; j++ {
		for i, s := range train {
			col[i] = s.x[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.mean[j] = mean
		m.scale[j] = std
		m.ranges[j] = models.FeatureRange{
			Feature: Features[j],
			Min:     floats.Min(col),
			Max:     floats.Max(col),
		}
	}
}

// features returns the standardized vector prefixed with the bias term.
func (m *Model) features(x []float64) []float64 {
	z := make([]float64, len(x)+1)
	z[0] = 1
	for j, v := range x {
		z[j+1] = (v - m.mean[j]) / m.scale[j]
	}
	return z
}

// train runs batch gradient descent on the L2-penalized cross-entropy and
// returns the number of iterations performed.
func (m *Model) train(train []sample, cfg Config) int {
	k := m.encoder.Len()
	width := len(Features) + 1
	n := float64(len(train))

	inputs := make([][]float64, len(train))
	for i, s := range train {
		inputs[i] = m.features(s.x)
	}

	m.weights = make([][]float64, k)
	grad := make([][]float64, k)
	for c := 0; c < k; c++ {
		m.weights[c] = make([]float64, width)
		grad[c] = make([]float64, width)
	}

	prevLoss := math.Inf(1)
	iter := 0
	for iter < cfg.MaxIterations {
		iter++
		for c := range grad {
			for j := range grad[c] {
				grad[c][j] = 0
			}
		}

		loss := 0.0
		for i, z := range inputs {
			p := softmax(m.scores(z))
			loss -= math.Log(math.Max(p[train[i].y], 1e-300))
			for c := 0; c < k; c++ {
				diff := p[c]
				if c == train[i].y {
					diff -= 1
				}
				floats.AddScaled(grad[c], diff/n, z)
			}
		}
		loss /= n

		for c := 0; c < k; c++ {
			// The bias is not penalized.
			for j := 1; j < width; j++ {
				w := m.weights[c][j]
				loss += cfg.L2 * w * w / (2 * n)
				grad[c][j] += cfg.L2 * w / n
			}
			floats.AddScaled(m.weights[c], -cfg.LearningRate, grad[c])
		}

		if math.Abs(prevLoss-loss) < cfg.Tolerance {
			break
		}
		prevLoss = loss
	}
	return iter
}

func (m *Model) scores(z []float64) []float64 {
	s := make([]float64, len(m.weights))
	for c, w := range m.weights {
		s[c] = floats.Dot(w, z)
	}
	return s
}

func (m *Model) probabilities(x []float64) []float64 {
	return softmax(m.scores(m.features(x)))
}

func softmax(s []float64) []float64 {
	maxScore := floats.Max(s)
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = math.Exp(v - maxScore)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

func argmax(p []float64) int {
	return floats.MaxIdx(p)
}

// Predict scores one set of engagement values. Values outside the training
// range still produce a prediction with Extrapolated set.
func (m *Model) Predict(raisedHands, visitedResources, discussion float64) models.Prediction {
	x := []float64{raisedHands, visitedResources, discussion}
	p := m.probabilities(x)

	pred := models.Prediction{
		Class:         m.encoder.Decode(argmax(p)),
		Probabilities: make(map[models.Class]float64, len(p)),
	}
	for c, v := range p {
		pred.Probabilities[m.encoder.Decode(c)] = v
	}
	for j, v := range x {
		if v < 0 || v < m.ranges[j].Min || v > m.ranges[j].Max {
			pred.Extrapolated = true
		}
	}
	return pred
}

// Evaluate returns the holdout accuracy computed at fit time.
func (m *Model) Evaluate() float64 {
	return m.accuracy
}

func (m *Model) Classes() []models.Class {
	return m.encoder.Classes()
}

func (m *Model) Encode(c models.Class) (int, bool) {
	return m.encoder.Encode(c)
}

func (m *Model) Decode(i int) (models.Class, bool) {
	if i < 0 || i >= m.encoder.Len() {
		return "", false
	}
	return m.encoder.Decode(i), true
}

func (m *Model) FeatureRanges() []models.FeatureRange {
	out := make([]models.FeatureRange, len(m.ranges))
	copy(out, m.ranges)
	return out
}

// HoldoutIDs lists the IDs of the evaluation rows in sorted order.
func (m *Model) HoldoutIDs() []string {
	out := make([]string, len(m.holdoutIDs))
	copy(out, m.holdoutIDs)
	return out
}

func (m *Model) Info() models.ModelInfo {
	return models.ModelInfo{
		Features:      append([]string(nil), Features...),
		Classes:       m.Classes(),
		TrainSize:     m.trainSize,
		HoldoutSize:   m.holdoutSize,
		Seed:          m.seed,
		Iterations:    m.iterations,
		Accuracy:      m.accuracy,
		FeatureRanges: m.FeatureRanges(),
	}
}
