package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestHandleInjectsRequestContext(t *testing.T) {
	logger, hook := test.NewNullLogger()
	engine, err := New(Config{Logger: logger})
	require.NoError(t, err)

	var order []string
	var trace = func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	engine.Use(trace("global"))

	engine.Get("/things/:id", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		GetLogger(r).WithField("id", GetParam(r, "id")).Info("handled")
		w.WriteHeader(http.StatusNoContent)
	}, trace("route"))

	var recorder = httptest.NewRecorder()
	engine.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/things/42", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, []string{"global", "route", "handler"}, order)

	var entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "42", entry.Data["id"])
	assert.NotEmpty(t, entry.Data["reqid"])
	assert.Equal(t, "192.0.2.1:1234", entry.Data["remote-ip"])
}

func TestGetLoggerOutsideEngine(t *testing.T) {
	var request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, logrus.StandardLogger(), GetLogger(request))
	assert.Empty(t, GetParam(request, "id"))
}
