// Package metrics provides Prometheus metrics for profile decoding, format
// translation and stream binding.
package metrics

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/smazurov/profilenode/pkg/dds"
)

// Label values for the direction of a format translation.
const (
	DirectionToRS2   = "to_rs2"
	DirectionFromRS2 = "from_rs2"
)

// ResultOK is the result label for successful operations.
const ResultOK = "ok"

var (
	profilesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "profilenode",
		Name:      "profiles_decoded_total",
		Help:      "Stream profiles decoded from wire messages",
	}, []string{"kind", "result"})

	formatTranslations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "profilenode",
		Name:      "format_translations_total",
		Help:      "Translations between wire format codes and driver formats",
	}, []string{"direction", "result"})

	streamBinds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "profilenode",
		Name:      "stream_binds_total",
		Help:      "Attempts to bind profiles to their stream",
	}, []string{"result"})

	catalogStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "profilenode",
		Subsystem: "catalog",
		Name:      "streams",
		Help:      "Streams in the currently loaded catalog",
	})

	// Local totals for the API, which should not scrape its own registry.
	totals   Totals
	totalsMu sync.RWMutex
)

// Totals summarizes the counters since process start.
type Totals struct {
	Decoded          uint64
	DecodeErrors     uint64
	Translations     uint64
	TranslationError uint64
	Binds            uint64
	BindErrors       uint64
	CatalogStreams   int
}

// Result maps an error to a result label: "ok" for nil, the lowercased dds error
// code for core errors, "error" otherwise.
func Result(err error) string {
	if err == nil {
		return ResultOK
	}
	var de *dds.Error
	if errors.As(err, &de) {
		return strings.ToLower(de.Code)
	}
	return "error"
}

// RecordDecode counts one profile decode for a stream kind.
func RecordDecode(kind dds.StreamKind, err error) {
	profilesDecoded.WithLabelValues(string(kind), Result(err)).Inc()
	updateTotals(func(t *Totals) {
		t.Decoded++
		if err != nil {
			t.DecodeErrors++
		}
	})
}

// RecordTranslation counts one format translation in the given direction.
func RecordTranslation(direction string, err error) {
	formatTranslations.WithLabelValues(direction, Result(err)).Inc()
	updateTotals(func(t *Totals) {
		t.Translations++
		if err != nil {
			t.TranslationError++
		}
	})
}

// RecordBind counts one bind attempt.
func RecordBind(err error) {
	streamBinds.WithLabelValues(Result(err)).Inc()
	updateTotals(func(t *Totals) {
		t.Binds++
		if err != nil {
			t.BindErrors++
		}
	})
}

// SetCatalogStreams records the size of the loaded catalog.
func SetCatalogStreams(n int) {
	catalogStreams.Set(float64(n))
	updateTotals(func(t *Totals) { t.CatalogStreams = n })
}

// Snapshot returns a copy of the running totals.
func Snapshot() Totals {
	totalsMu.RLock()
	defer totalsMu.RUnlock()
	return totals
}

func updateTotals(fn func(*Totals)) {
	totalsMu.Lock()
	fn(&totals)
	totalsMu.Unlock()
}
