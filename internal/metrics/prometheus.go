package metrics

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/OldStager01/student-insights/internal/logger"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	requestsTotal    map[string]map[int]int64 // route -> status -> count
	operationsTotal  map[string]int64
	operationErrors  map[string]int64
	predictionsTotal map[string]int64 // predicted class -> count
	extrapolated     int64

	// Gauges
	datasetRows   map[string]int
	modelAccuracy float64
	modelFitted   bool

	// Histograms (simplified - just track last values)
	requestLatency map[string]time.Duration
	fitLatency     time.Duration
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New returns an empty registry, mostly useful in tests.
func New() *Metrics {
	return &Metrics{
		requestsTotal:    make(map[string]map[int]int64),
		operationsTotal:  make(map[string]int64),
		operationErrors:  make(map[string]int64),
		predictionsTotal: make(map[string]int64),
		datasetRows:      make(map[string]int),
		requestLatency:   make(map[string]time.Duration),
	}
}

func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.requestsTotal[route] == nil {
		m.requestsTotal[route] = make(map[int]int64)
	}
	m.requestsTotal[route][status]++
	m.requestLatency[route] = d
}

func (m *Metrics) IncOperation(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationsTotal[name]++
}

func (m *Metrics) IncOperationError(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationErrors[name]++
}

func (m *Metrics) IncPrediction(class string, extrapolated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionsTotal[class]++
	if extrapolated {
		m.extrapolated++
	}
}

func (m *Metrics) SetDatasetRows(dataset string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasetRows[dataset] = rows
}

func (m *Metrics) SetModel(accuracy float64, fit time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelAccuracy = accuracy
	m.fitLatency = fit
	m.modelFitted = true
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		m.Render(w)
	})
}

// Render writes every series in text exposition format with stable ordering.
func (m *Metrics) Render(w io.Writer) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, route := range sortedKeys(m.requestsTotal) {
		statuses := m.requestsTotal[route]
		codes := make([]int, 0, len(statuses))
		for code := range statuses {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			writeMetric(w, "insights_http_requests_total",
				[][2]string{{"route", route}, {"status", strconv.Itoa(code)}}, float64(statuses[code]))
		}
	}

	for _, route := range sortedKeys(m.requestLatency) {
		writeMetric(w, "insights_http_request_latency_ms", [][2]string{{"route", route}},
			float64(m.requestLatency[route].Milliseconds()))
	}

	for _, op := range sortedKeys(m.operationsTotal) {
		writeMetric(w, "insights_operations_total", [][2]string{{"operation", op}}, float64(m.operationsTotal[op]))
	}

	for _, op := range sortedKeys(m.operationErrors) {
		writeMetric(w, "insights_operation_errors_total", [][2]string{{"operation", op}}, float64(m.operationErrors[op]))
	}

	for _, class := range sortedKeys(m.predictionsTotal) {
		writeMetric(w, "insights_predictions_total", [][2]string{{"class", class}}, float64(m.predictionsTotal[class]))
	}
	writeMetric(w, "insights_predictions_extrapolated_total", nil, float64(m.extrapolated))

	for _, ds := range sortedKeys(m.datasetRows) {
		writeMetric(w, "insights_dataset_rows", [][2]string{{"dataset", ds}}, float64(m.datasetRows[ds]))
	}

	if m.modelFitted {
		writeMetric(w, "insights_model_holdout_accuracy", nil, m.modelAccuracy)
		writeMetric(w, "insights_model_fit_latency_ms", nil, float64(m.fitLatency.Milliseconds()))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeMetric(w io.Writer, name string, labels [][2]string, value float64) {
	var b strings.Builder
	b.WriteString(name)
	if len(labels) > 0 {
		b.WriteByte('{')
		for i, l := range labels {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(l[0] + `="` + l[1] + `"`)
		}
		b.WriteByte('}')
	}
	b.WriteString(" " + strconv.FormatFloat(value, 'f', -1, 64) + "\n")
	io.WriteString(w, b.String())
}

func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Metrics server error: %v", err)
		}
	}()
}
