package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// EncodeCounter tracks Mutex encodes by format and result.
	EncodeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lockbox_mutex_encode_total",
		Help: "Total number of Mutex encode operations",
	}, []string{"format", "result"})
	// DecodeCounter tracks Mutex decodes by format and result.
	DecodeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lockbox_mutex_decode_total",
		Help: "Total number of Mutex decode operations",
	}, []string{"format", "result"})
	// SnapshotCounter tracks snapshot store operations by operation and result.
	SnapshotCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lockbox_snapshot_ops_total",
		Help: "Total number of snapshot store operations",
	}, []string{"op", "result"})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterMutexMetrics registers the lockbox metrics on the provided registry.
func RegisterMutexMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EncodeCounter, DecodeCounter, SnapshotCounter)
}

// ObserveEncode records the outcome of an encode in format.
func ObserveEncode(format string, err error) {
	EncodeCounter.WithLabelValues(format, result(err)).Inc()
}

// ObserveDecode records the outcome of a decode in format.
func ObserveDecode(format string, err error) {
	DecodeCounter.WithLabelValues(format, result(err)).Inc()
}

// ObserveSnapshot records the outcome of a snapshot store operation.
func ObserveSnapshot(op string, err error) {
	SnapshotCounter.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
