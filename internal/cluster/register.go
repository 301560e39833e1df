// Package cluster registers the standalone server with consul and serves its
// health endpoint.
package cluster

import (
	"fmt"
	"os"

	consul "github.com/hashicorp/consul/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// Registration describes the service entry written to the consul agent.
type Registration struct {
	ConsulAddr  string // agent address; empty uses CONSUL_HTTP_ADDR, then the consul default
	ServiceName string
	Host        string // empty uses HOSTNAME, then os.Hostname
	Port        int
	Tags        []string
}

// agent is the part of the consul agent API registration uses.
type agent interface {
	ServiceRegister(service *consul.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

// ServiceID returns the id the service is registered under.
func (r Registration) ServiceID() string {
	return fmt.Sprintf("%s-%s", r.ServiceName, r.host())
}

func (r Registration) host() string {
	if r.Host != "" {
		return r.Host
	}
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	h, _ := os.Hostname()
	return h
}

func (r Registration) service() *consul.AgentServiceRegistration {
	return &consul.AgentServiceRegistration{
		ID:   r.ServiceID(),
		Name: r.ServiceName,
		Port: r.Port,
		Tags: r.Tags,
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", r.host(), r.Port, HealthPath),
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

// Register writes the service to the consul agent. The returned function
// removes it again.
func Register(reg Registration, logger runtime.Logger) (func(), error) {
	cfg := consul.DefaultConfig()
	if reg.ConsulAddr != "" {
		cfg.Address = reg.ConsulAddr
	}
	client, err := consul.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return register(client.Agent(), reg, logger)
}

func register(a agent, reg Registration, logger runtime.Logger) (func(), error) {
	id := reg.ServiceID()
	if err := a.ServiceRegister(reg.service()); err != nil {
		return nil, fmt.Errorf("failed to register %s in consul: %w", id, err)
	}
	logger.Info("cluster: Registered service %s as %s", reg.ServiceName, id)

	return func() {
		if err := a.ServiceDeregister(id); err != nil {
			logger.Warn("cluster: Failed to deregister %s: %v", id, err)
			return
		}
		logger.Info("cluster: Deregistered %s", id)
	}, nil
}
