package component

import (
	"context"
	"fmt"
	"testing"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() Description {
	return Description{Type: "storage", Details: "provider=memory bucket=test"}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(&mockComponent{name: "storage"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "storage"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{name: "storage"})

	if got := r.Get("storage"); got == nil || got.Name() != "storage" {
		t.Fatalf("expected registered component, got %v", got)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
	if len(r.All()) != 1 {
		t.Errorf("expected 1 component, got %d", len(r.All()))
	}
}

func TestStartAllOrder(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&describedComponent{mockComponent{name: "storage", startOrder: &order}})
	r.Register(&mockComponent{name: "http-server", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "storage" || order[1] != "http-server" {
		t.Errorf("expected start order [storage, http-server], got %v", order)
	}

	// already started components are not restarted
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("second StartAll failed: %v", err)
	}
	if len(order) != 2 {
		t.Errorf("expected no restarts, got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&mockComponent{name: "storage", startErr: fmt.Errorf("no credentials")})
	r.Register(&mockComponent{name: "http-server", startOrder: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Error("expected error from StartAll")
	}
	if len(order) != 0 {
		t.Errorf("expected later components not to start, got %v", order)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&mockComponent{name: "storage", stopOrder: &order})
	r.Register(&mockComponent{name: "tracing", stopOrder: &order})
	r.Register(&mockComponent{name: "http-server", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 3 || order[0] != "http-server" || order[1] != "tracing" || order[2] != "storage" {
		t.Errorf("expected reverse stop order, got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&mockComponent{name: "storage", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{name: "storage", stopErr: fmt.Errorf("stop failed")})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{name: "storage", health: Health{Name: "storage", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "http-server", health: Health{Name: "http-server", Status: StatusUnhealthy, Message: "not started"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health results %+v", results)
	}
}
