package factory

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type sink struct {
	Job    string
	Labels []string
}

type sinkConf struct {
	Job    string   `json:"job"`
	Labels []string `json:"labels"`
}

func newRegistry(t *testing.T) *Registry[*sink] {
	t.Helper()
	reg := NewRegistry[*sink]()
	if err := reg.Register("Prometheus", func(conf map[string]any) (*sink, error) {
		var c sinkConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Job == "" {
			return nil, errors.New("job required")
		}
		return &sink{Job: c.Job, Labels: c.Labels}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestRegistry_Create(t *testing.T) {
	reg := newRegistry(t)
	inst, err := reg.Create(ModuleConfig{Type: "prometheus", Conf: map[string]any{"job": "shiftplan", "labels": "campus,weekly"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Job != "shiftplan" || len(inst.Labels) != 2 || inst.Labels[1] != "weekly" {
		t.Fatalf("unexpected instance %+v", inst)
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.Register("prometheus", func(map[string]any) (*sink, error) { return nil, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("x", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if err := reg.Register(" ", func(map[string]any) (*sink, error) { return nil, nil }); err == nil {
		t.Fatal("expected empty name error")
	}

	_, err := reg.Create(ModuleConfig{Type: "statsd"})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if !strings.Contains(err.Error(), "known: prometheus") {
		t.Fatalf("error should list known types: %v", err)
	}

	_, err = reg.Create(ModuleConfig{Type: "prometheus"})
	if err == nil || !strings.HasPrefix(err.Error(), "prometheus: ") {
		t.Fatalf("expected factory error prefixed with type, got %v", err)
	}
}

func TestTypesSorted(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"nop", "influx", "prometheus"} {
		if err := reg.Register(n, func(map[string]any) (int, error) { return 0, nil }); err != nil {
			t.Fatalf("register %s: %v", n, err)
		}
	}
	got := strings.Join(reg.Types(), ",")
	if got != "influx,nop,prometheus" {
		t.Fatalf("unexpected types %s", got)
	}
}

func TestDecodeWeakTypesAndDurations(t *testing.T) {
	var c struct {
		Port    int           `json:"port"`
		Timeout time.Duration `json:"timeout"`
		Enabled bool          `json:"enabled"`
	}
	err := Decode(map[string]any{"port": "9100", "timeout": "1500ms", "enabled": "true"}, &c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Port != 9100 || c.Timeout != 1500*time.Millisecond || !c.Enabled {
		t.Fatalf("unexpected decode result %+v", c)
	}
}
