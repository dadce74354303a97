// Package insights answers dashboard questions over one loaded dataset and its
// fitted model. Every call derives a fresh view from the immutable dataset, so a
// Service is safe for concurrent use.
package insights

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/OldStager01/student-insights/internal/aggregation"
	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/filter"
	"github.com/OldStager01/student-insights/internal/metrics"
	"github.com/OldStager01/student-insights/internal/predictor"
	"github.com/OldStager01/student-insights/internal/risk"
	"github.com/OldStager01/student-insights/pkg/models"
	"github.com/OldStager01/student-insights/pkg/validation"
)

var ErrModelUnavailable = errors.New("model not fitted")

type Scope string

const (
	ScopeFiltered Scope = "filtered"
	ScopeAll      Scope = "all"
)

type Service struct {
	ds      *dataset.Dataset
	model   *predictor.Model
	metrics *metrics.Metrics
}

// New wires a service. model and m may be nil.
func New(ds *dataset.Dataset, model *predictor.Model, m *metrics.Metrics) *Service {
	return &Service{ds: ds, model: model, metrics: m}
}

func (s *Service) Dataset() *dataset.Dataset {
	return s.ds
}

func (s *Service) Model() *predictor.Model {
	return s.model
}

func (s *Service) record(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncOperation(op)
	if err != nil {
		s.metrics.IncOperationError(op)
	}
}

// View validates criteria and returns the matching subset.
func (s *Service) View(criteria models.FilterCriteria) (dataset.View, error) {
	criteria = sanitizeCriteria(criteria)
	fields := [...]struct{ name, value string }{
		{"grade", criteria.GradeID},
		{"topic", criteria.Topic},
		{"class", criteria.Class},
	}
	for _, f := range fields {
		if err := validation.ValidateFilterValue(f.name, f.value); err != nil {
			return dataset.View{}, err
		}
	}
	if !models.IsUnconstrained(criteria.Class) {
		if _, err := models.ParseClass(criteria.Class); err != nil {
			return dataset.View{}, fmt.Errorf("%w: %v", validation.ErrInvalidInput, err)
		}
	}
	return filter.Apply(s.ds, criteria), nil
}

func sanitizeCriteria(c models.FilterCriteria) models.FilterCriteria {
	return models.FilterCriteria{
		GradeID: validation.SanitizeString(c.GradeID),
		Topic:   validation.SanitizeString(c.Topic),
		Class:   validation.SanitizeString(c.Class),
	}
}

func (s *Service) Filters() models.FilterOptions {
	s.record("filters", nil)
	return filter.Options(s.ds, true)
}

type OverviewResult struct {
	Criteria models.FilterCriteria `json:"criteria" yaml:"criteria"`
	Empty    bool                  `json:"empty" yaml:"empty"`
	Overview models.Overview       `json:"overview" yaml:"overview"`
}

func (s *Service) Overview(criteria models.FilterCriteria) (*OverviewResult, error) {
	view, err := s.View(criteria)
	s.record("overview", err)
	if err != nil {
		return nil, err
	}
	return &OverviewResult{
		Criteria: criteria,
		Empty:    view.IsEmpty(),
		Overview: aggregation.Overview(view),
	}, nil
}

type DistributionResult struct {
	Criteria models.FilterCriteria `json:"criteria" yaml:"criteria"`
	Scope    Scope                 `json:"scope" yaml:"scope"`
	Total    int                   `json:"total" yaml:"total"`
	Empty    bool                  `json:"empty" yaml:"empty"`
	Counts   []models.ClassCount   `json:"counts" yaml:"counts"`
}

func (s *Service) Distribution(criteria models.FilterCriteria, scope Scope) (*DistributionResult, error) {
	var (
		view dataset.View
		err  error
	)
	switch scope {
	case ScopeAll:
		view = s.ds.All()
		criteria = models.FilterCriteria{}
	case ScopeFiltered, "":
		scope = ScopeFiltered
		view, err = s.View(criteria)
	default:
		err = fmt.Errorf("%w: scope must be %q or %q", validation.ErrInvalidInput, ScopeFiltered, ScopeAll)
	}
	s.record("distribution", err)
	if err != nil {
		return nil, err
	}

	return &DistributionResult{
		Criteria: criteria,
		Scope:    scope,
		Total:    view.Len(),
		Empty:    view.IsEmpty(),
		Counts:   aggregation.DistributionByClass(view),
	}, nil
}

// GroupQuery configures a group-percentage request.
type GroupQuery struct {
	Criteria   models.FilterCriteria
	By         []string
	ClassField string
	// Trend, when set, extracts this class value's share per group.
	Trend string
	// IncludeEmpty reports every group key of the full dataset, including
	// those the filtered view has no records for.
	IncludeEmpty bool
}

type GroupsResult struct {
	Empty  bool                     `json:"empty" yaml:"empty"`
	Result models.AggregationResult `json:"result" yaml:"result"`
	Trend  []models.TrendPoint      `json:"trend,omitempty" yaml:"trend,omitempty"`
}

func (s *Service) Groups(q GroupQuery) (*GroupsResult, error) {
	res, err := s.groups(q)
	s.record("groups", err)
	return res, err
}

func (s *Service) groups(q GroupQuery) (*GroupsResult, error) {
	if len(q.By) == 0 {
		q.By = []string{models.ColumnGradeID}
	}
	view, err := s.View(q.Criteria)
	if err != nil {
		return nil, err
	}

	var keys [][]string
	if q.IncludeEmpty {
		keys, err = distinctKeys(s.ds.All(), q.By)
		if err != nil {
			return nil, err
		}
	}

	result, err := aggregation.GroupPercentagesOver(view, q.By, q.ClassField, keys)
	if err != nil {
		return nil, err
	}

	out := &GroupsResult{Empty: view.IsEmpty(), Result: result}
	if q.Trend != "" {
		out.Trend = aggregation.ShareTrend(result, q.Trend)
	}
	return out, nil
}

func distinctKeys(view dataset.View, fields []string) ([][]string, error) {
	columns := make([][]string, len(fields))
	for i, f := range fields {
		values, err := view.Strings(f)
		if err != nil {
			return nil, err
		}
		columns[i] = values
	}

	seen := make(map[string]bool)
	var keys [][]string
	for row := 0; row < view.Len(); row++ {
		key := make([]string, len(fields))
		for i := range fields {
			key[i] = columns[i][row]
		}
		id := strings.Join(key, "\x1f")
		if !seen[id] {
			seen[id] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

type SummaryResult struct {
	Empty   bool                   `json:"empty" yaml:"empty"`
	Columns []models.ColumnSummary `json:"columns" yaml:"columns"`
}

func (s *Service) Summary(criteria models.FilterCriteria, columns []string) (*SummaryResult, error) {
	res, err := s.summary(criteria, columns)
	s.record("summary", err)
	return res, err
}

func (s *Service) summary(criteria models.FilterCriteria, columns []string) (*SummaryResult, error) {
	view, err := s.View(criteria)
	if err != nil {
		return nil, err
	}
	stats, err := aggregation.SummaryStatistics(view, columns)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{Empty: view.IsEmpty(), Columns: orderedSummaries(stats, columns, s.ds)}, nil
}

// orderedSummaries keeps the requested column order, or name order when none was requested.
func orderedSummaries(stats map[string]models.ColumnSummary, requested []string, ds *dataset.Dataset) []models.ColumnSummary {
	var names []string
	seen := make(map[string]bool)
	for _, c := range requested {
		if canonical, ok := ds.Resolve(c); ok && !seen[canonical] {
			seen[canonical] = true
			names = append(names, canonical)
		}
	}
	if len(names) == 0 {
		for name := range stats {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	out := make([]models.ColumnSummary, 0, len(names))
	for _, n := range names {
		out = append(out, stats[n])
	}
	return out
}

type CorrelationResult struct {
	Empty  bool              `json:"empty" yaml:"empty"`
	Matrix models.CorrMatrix `json:"matrix" yaml:"matrix"`
}

func (s *Service) Correlation(criteria models.FilterCriteria, columns []string) (*CorrelationResult, error) {
	res, err := s.correlation(criteria, columns)
	s.record("correlation", err)
	return res, err
}

func (s *Service) correlation(criteria models.FilterCriteria, columns []string) (*CorrelationResult, error) {
	view, err := s.View(criteria)
	if err != nil {
		return nil, err
	}
	m, err := aggregation.CorrelationMatrix(view, columns)
	if err != nil {
		return nil, err
	}
	return &CorrelationResult{Empty: view.IsEmpty(), Matrix: m}, nil
}

type AbsenceResult struct {
	Empty   bool                   `json:"empty" yaml:"empty"`
	ByClass []models.ColumnSummary `json:"by_class" yaml:"by_class"`
	Classes []models.Class         `json:"classes" yaml:"classes"`
}

func (s *Service) Absence(criteria models.FilterCriteria) (*AbsenceResult, error) {
	view, err := s.View(criteria)
	s.record("absence", err)
	if err != nil {
		return nil, err
	}

	byClass := aggregation.AbsenceByClass(view)
	out := &AbsenceResult{Empty: view.IsEmpty()}
	for _, c := range models.CanonicalClasses {
		out.Classes = append(out.Classes, c)
		out.ByClass = append(out.ByClass, byClass[c])
	}
	return out, nil
}

type RiskResult struct {
	Empty  bool              `json:"empty" yaml:"empty"`
	Total  int               `json:"total" yaml:"total"`
	Report models.RiskReport `json:"report" yaml:"report"`
}

func (s *Service) AtRisk(criteria models.FilterCriteria, onlyFlagged bool) (*RiskResult, error) {
	view, err := s.View(criteria)
	s.record("at_risk", err)
	if err != nil {
		return nil, err
	}

	report := risk.Assess(view)
	if onlyFlagged {
		report.Assessments = report.Flagged()
	}
	return &RiskResult{Empty: view.IsEmpty(), Total: view.Len(), Report: report}, nil
}

// PredictInput holds the three engagement features of one hypothetical student.
type PredictInput struct {
	RaisedHands      float64 `json:"raised_hands" yaml:"raised_hands"`
	VisitedResources float64 `json:"visited_resources" yaml:"visited_resources"`
	Discussion       float64 `json:"discussion" yaml:"discussion"`
}

func (in PredictInput) Validate() error {
	return errors.Join(
		validation.ValidateEngagement("raised_hands", in.RaisedHands),
		validation.ValidateEngagement("visited_resources", in.VisitedResources),
		validation.ValidateEngagement("discussion", in.Discussion),
	)
}

type PredictResult struct {
	Input      PredictInput      `json:"input" yaml:"input"`
	Prediction models.Prediction `json:"prediction" yaml:"prediction"`
	Confidence float64           `json:"confidence" yaml:"confidence"`
}

func (s *Service) Predict(in PredictInput) (*PredictResult, error) {
	err := in.Validate()
	if err == nil && s.model == nil {
		err = ErrModelUnavailable
	}
	s.record("predict", err)
	if err != nil {
		return nil, err
	}

	p := s.model.Predict(in.RaisedHands, in.VisitedResources, in.Discussion)
	if s.metrics != nil {
		s.metrics.IncPrediction(string(p.Class), p.Extrapolated)
	}
	return &PredictResult{Input: in, Prediction: p, Confidence: p.Confidence()}, nil
}

func (s *Service) ModelInfo() (*models.ModelInfo, error) {
	if s.model == nil {
		s.record("model_info", ErrModelUnavailable)
		return nil, ErrModelUnavailable
	}
	s.record("model_info", nil)
	info := s.model.Info()
	return &info, nil
}
