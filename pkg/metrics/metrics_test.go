package metrics

import (
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	c := NewCounter("moves_total", "Moves seen")

	c.Inc(nil)
	c.Inc(nil)
	c.Add(Labels{"kind": "override"}, 3)

	if got := c.Get(nil); got != 2 {
		t.Errorf("unlabeled count = %d, want 2", got)
	}
	if got := c.Get(Labels{"kind": "override"}); got != 3 {
		t.Errorf("labeled count = %d, want 3", got)
	}
}

func TestGauge(t *testing.T) {
	g := NewGauge("extra_time_seconds", "Extra time")

	g.Set(nil, 1.5)
	g.Add(nil, 0.25)

	if got := g.Get(nil); got != 1.75 {
		t.Errorf("gauge = %v, want 1.75", got)
	}
}

func TestRegistryGather(t *testing.T) {
	r := NewRegistry()
	r.Counter("gcodepersec_overrides_total", "Feed rate overrides injected").Inc(nil)
	r.Gauge("gcodepersec_extra_time_seconds", "Extra print time added").Set(nil, 0.00375)

	out := r.Gather()
	for _, want := range []string{
		"# TYPE gcodepersec_overrides_total counter",
		"gcodepersec_overrides_total 1",
		"# TYPE gcodepersec_extra_time_seconds gauge",
		"gcodepersec_extra_time_seconds 0.00375",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Gather missing %q:\n%s", want, out)
		}
	}
}

func TestRegistryReusesMetric(t *testing.T) {
	r := NewRegistry()
	a := r.Counter("lines_total", "Lines scanned")
	b := r.Counter("lines_total", "Lines scanned")
	if a != b {
		t.Error("Counter should return the same instance for the same name")
	}

	a.Inc(nil)
	if b.Get(nil) != 1 {
		t.Error("increments should be visible through both handles")
	}
}

func TestLabelsFormat(t *testing.T) {
	c := NewCounter("rewrites_total", "Rewrites")
	c.Inc(Labels{"kind": "restore"})

	var sb strings.Builder
	c.Write(&sb)
	if !strings.Contains(sb.String(), `rewrites_total{kind="restore"} 1`) {
		t.Errorf("unexpected exposition:\n%s", sb.String())
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewCounter("x", "")); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(NewCounter("x", "")); err == nil {
		t.Error("expected duplicate registration error")
	}
}
