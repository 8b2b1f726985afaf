package metrics

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/arenaguard/arenaguard/internal/suspicion"
)

// Registry accumulates vote and rule counters. All methods are safe
// for concurrent use.
type Registry struct {
	mu        sync.Mutex
	votes     float64
	rejected  float64
	ruleFired map[string]float64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ruleFired: make(map[string]float64)}
}

// RecordVote counts one accepted vote and any rules it fired.
func (r *Registry) RecordVote(res suspicion.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes++
	for _, rule := range res.TriggeredRules {
		r.ruleFired[rule.String()]++
	}
}

// RecordRejected counts one vote rejected at ingestion.
func (r *Registry) RecordRejected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
}

// Handler serves the exposition endpoint. The per-status judge gauge
// is read from the engine at scrape time; the counters come from the
// registry.
func (r *Registry) Handler(engine *suspicion.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.mu.Lock()
		votes, rejected := r.votes, r.rejected
		fired := make(map[string]float64, len(r.ruleFired))
		for k, v := range r.ruleFired {
			fired[k] = v
		}
		r.mu.Unlock()

		statuses := map[string]float64{
			string(suspicion.StatusNormal):     0,
			string(suspicion.StatusSuspicious): 0,
			string(suspicion.StatusFlagged):    0,
		}
		for st, c := range engine.StatusCounts() {
			statuses[string(st)] = float64(c)
		}

		families := []*dto.MetricFamily{
			counterFamily("arenaguard_votes_total",
				"Total vote events accepted by the engine.", votes),
			counterFamily("arenaguard_votes_rejected_total",
				"Total vote events rejected at ingestion.", rejected),
			labeledFamily("arenaguard_rule_fired_total",
				"Rule fire count per suspicion rule.",
				dto.MetricType_COUNTER, "rule", fired),
			labeledFamily("arenaguard_judges",
				"Current judge count per trust status.",
				dto.MetricType_GAUGE, "status", statuses),
		}

		format := expfmt.NewFormat(expfmt.TypeTextPlain)
		w.Header().Set("Content-Type", string(format))
		enc := expfmt.NewEncoder(w, format)
		for _, mf := range families {
			if err := enc.Encode(mf); err != nil {
				slog.Error("metrics: encode failed", "family", mf.GetName(), "err", err)
				return
			}
		}
	})
}

// counterFamily builds a single unlabeled counter family.
func counterFamily(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: proto.Float64(v)}},
		},
	}
}

// labeledFamily builds a family with one metric per label value,
// sorted for deterministic output.
func labeledFamily(name, help string, typ dto.MetricType, label string, vals map[string]float64) *dto.MetricFamily {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mf := &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: typ.Enum(),
	}
	for _, k := range keys {
		m := &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: proto.String(label), Value: proto.String(k)},
			},
		}
		if typ == dto.MetricType_GAUGE {
			m.Gauge = &dto.Gauge{Value: proto.Float64(vals[k])}
		} else {
			m.Counter = &dto.Counter{Value: proto.Float64(vals[k])}
		}
		mf.Metric = append(mf.Metric, m)
	}
	return mf
}
