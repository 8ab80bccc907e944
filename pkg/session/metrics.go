package session

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opIdentityQuery = "identity_query"
	opLogin         = "login"
	opRegister      = "register"
	opLogout        = "logout"

	outcomeSucceeded     = "succeeded"
	outcomeFailed        = "failed"
	outcomeRejected      = "rejected"
	outcomeAuthenticated = "authenticated"
	outcomeAnonymous     = "anonymous"
)

// metrics counts operation outcomes. A nil *metrics records nothing.
type metrics struct {
	operations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookieauth_session_operations_total",
			Help: "Total number of session operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	if err := reg.Register(operations); err != nil {
		// several managers may share one registry
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register session metrics: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("register session metrics: %w", err)
		}
		operations = existing
	}

	return &metrics{operations: operations}, nil
}

func (m *metrics) operation(op string, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *metrics) identityQuery(authenticated bool) {
	if authenticated {
		m.operation(opIdentityQuery, outcomeAuthenticated)
	} else {
		m.operation(opIdentityQuery, outcomeAnonymous)
	}
}
