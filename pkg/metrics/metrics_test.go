package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.AddProposals("loaded", 10)
	m.AddProposals("kept", 7)
	m.AddLaws("keyless", 2)
	m.AddLinks("matched", 3)
	m.AddAuthors("unresolved", 4)
	m.AddPersisted(7)
	m.ObserveStage("link", 20*time.Millisecond)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.ProposalRows.WithLabelValues("loaded")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ProposalRows.WithLabelValues("kept")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LawRows.WithLabelValues("keyless")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Links.WithLabelValues("matched")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Authors.WithLabelValues("unresolved")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.PersistedRows))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.AddProposals("loaded", 1)
	m.AddLaws("loaded", 1)
	m.AddLinks("matched", 1)
	m.AddAuthors("resolved", 1)
	m.AddPersisted(1)
	m.ObserveStage("load", time.Second)
	assert.NoError(t, m.Push(context.Background(), "http://unused", "lei"))
}

func TestPush(t *testing.T) {
	var requestPath, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := New()
	m.AddPersisted(5)
	require.NoError(t, m.Push(context.Background(), server.URL, "lei_comp"))

	assert.Equal(t, "/metrics/job/"+JobName+"/document_type/lei_comp", requestPath)
	assert.NotEmpty(t, body)
}

func TestPushFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := New().Push(context.Background(), server.URL, "lei")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), server.URL))
}
