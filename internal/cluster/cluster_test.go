package cluster

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"truco/internal/logging"

	consul "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	registered   *consul.AgentServiceRegistration
	deregistered string
	err          error
}

func (f *fakeAgent) ServiceRegister(s *consul.AgentServiceRegistration) error {
	if f.err != nil {
		return f.err
	}
	f.registered = s
	return nil
}

func (f *fakeAgent) ServiceDeregister(id string) error {
	f.deregistered = id
	return nil
}

func TestRegisterWritesHealthCheck(t *testing.T) {
	a := &fakeAgent{}
	reg := Registration{ServiceName: "trucod", Host: "node-a", Port: 8080, Tags: []string{"ws"}}

	deregister, err := register(a, reg, logging.New(io.Discard, "error"))
	require.NoError(t, err)

	require.NotNil(t, a.registered)
	assert.Equal(t, "trucod-node-a", a.registered.ID)
	assert.Equal(t, "trucod", a.registered.Name)
	assert.Equal(t, 8080, a.registered.Port)
	assert.Equal(t, "http://node-a:8080/health", a.registered.Check.HTTP)

	deregister()
	assert.Equal(t, "trucod-node-a", a.deregistered)
}

func TestRegisterFailure(t *testing.T) {
	a := &fakeAgent{err: errors.New("agent down")}
	_, err := register(a, Registration{ServiceName: "trucod", Host: "h", Port: 1}, logging.New(io.Discard, "error"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent down")
}

func TestHealthHandler(t *testing.T) {
	h := NewHealth()
	h.AddCheck("rooms", func() error { return nil })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.AddCheck("nats", func() error { return errors.New("disconnected") })
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"nats": "disconnected"}, body)
}
