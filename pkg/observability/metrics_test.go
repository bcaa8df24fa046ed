package observability_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/observability"
	"github.com/aretw0/chatflow/pkg/suggest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	ed := chatflow.New(
		chatflow.WithHooks(m.Hooks()),
		chatflow.WithSuggester(suggest.NewMock(0)),
	)

	a, _ := ed.AddNode(domain.NodeTypeText, domain.Position{})
	b, _ := ed.AddNode(domain.NodeTypeText, domain.Position{})
	ed.Connect(domain.Connection{Source: a.ID, Target: b.ID})
	ed.Connect(domain.Connection{Source: a.ID, Target: b.ID})
	ed.Undo()
	ed.Redo()
	_, _ = ed.Save()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectAttempts.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectAttempts.WithLabelValues("rejected")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HistoryOperations.WithLabelValues("record")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryOperations.WithLabelValues("undo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryOperations.WithLabelValues("redo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SaveVerdicts.WithLabelValues("ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveRequest(http.MethodGet, "/health", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `chatflow_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestAuditHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ed := chatflow.New(chatflow.WithHooks(observability.AuditHooks(logger)))
	a, _ := ed.AddNode(domain.NodeTypeText, domain.Position{})
	b, _ := ed.AddNode(domain.NodeTypeText, domain.Position{})
	ed.Connect(domain.Connection{Source: a.ID, Target: b.ID})
	ed.Connect(domain.Connection{Source: a.ID, Target: b.ID})
	ed.DeleteEdges(domain.EdgeID(a.ID, b.ID))
	_, _ = ed.Save()

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "Connect attempt"), "only the rejected attempt is above debug")
	assert.Contains(t, out, "accepted=false")
	assert.Contains(t, out, "verdict=multiple_dangling_starts")
	assert.NotContains(t, out, "History recorded")
}
