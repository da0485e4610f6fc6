package metrics

import (
	"time"

	"github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/Layr-Labs/eigensdk-go/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/passkeys"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
)

const (
	pkNamespace = "pk"
	AppName     = "passkeys-aa"
)

// PasskeyMetrics instruments signing, bundler traffic and submission. The
// embedded eigensdk metrics serve the registry over HTTP via Start.
type PasskeyMetrics struct {
	metrics.Metrics

	stages          *prometheus.CounterVec
	signatures      prometheus.Counter
	signingFailures prometheus.Counter
	bundlerCalls    *prometheus.CounterVec
	userOpsSent     *prometheus.CounterVec
	receiptWait     *prometheus.HistogramVec
}

// New builds metrics served on ipPortAddress once Start is called.
func New(ipPortAddress string, reg *prometheus.Registry, logger logging.Logger) *PasskeyMetrics {
	eigenMetrics := metrics.NewEigenMetrics(AppName, ipPortAddress, reg, logger)
	return NewPasskeyMetrics(eigenMetrics, reg)
}

func NewPasskeyMetrics(eigenMetrics *metrics.EigenMetrics, reg prometheus.Registerer) *PasskeyMetrics {
	return &PasskeyMetrics{
		Metrics: eigenMetrics,

		stages: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: pkNamespace,
				Name:      "sign_stage_total",
				Help:      "Signing progress notifications by stage",
			}, []string{"stage"}),

		signatures: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: pkNamespace,
				Name:      "signatures_total",
				Help:      "The number of user operations signed with a passkey",
			}),

		signingFailures: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: pkNamespace,
				Name:      "signing_failures_total",
				Help:      "The number of passkey ceremonies that were cancelled or failed",
			}),

		bundlerCalls: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: pkNamespace,
				Name:      "bundler_rpc_total",
				Help:      "Bundler JSON-RPC calls by method and outcome",
			}, []string{"method", "status"}),

		userOpsSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: pkNamespace,
				Name:      "user_ops_sent_total",
				Help:      "User operations handed to the bundler by outcome",
			}, []string{"status"}),

		receiptWait: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: pkNamespace,
				Name:      "receipt_wait_seconds",
				Help:      "Time spent waiting for a user operation receipt",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			}, []string{"result"}),
	}
}

// Observer counts signing progress. Register it with Account.RegisterObserver.
func (m *PasskeyMetrics) Observer() passkeys.ProgressObserver {
	return func(_ *userop.UserOperation, stage passkeys.Stage) {
		m.stages.WithLabelValues(string(stage)).Inc()
		switch stage {
		case passkeys.StageSigned:
			m.signatures.Inc()
		case passkeys.StageFailed:
			m.signingFailures.Inc()
		}
	}
}

func (m *PasskeyMetrics) IncBundlerCall(method, status string) {
	m.bundlerCalls.WithLabelValues(method, status).Inc()
}

func (m *PasskeyMetrics) IncUserOpSent(status string) {
	m.userOpsSent.WithLabelValues(status).Inc()
}

func (m *PasskeyMetrics) ObserveReceiptWait(found bool, elapsed time.Duration) {
	result := "timeout"
	if found {
		result = "found"
	}
	m.receiptWait.WithLabelValues(result).Observe(elapsed.Seconds())
}
