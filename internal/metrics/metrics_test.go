package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value returns the counter for name{result=result}, or -1 if absent.
func value(t *testing.T, r *Registry, name, result string) float64 {
	t.Helper()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

func TestRegistry_CountsByResult(t *testing.T) {
	r := New()

	r.CheckIn("ok")
	r.CheckIn("ok")
	r.CheckIn("OUT_OF_RANGE")
	r.SyncItem("synced")

	assert.Equal(t, 2.0, value(t, r, "attendance_checkins_total", "ok"))
	assert.Equal(t, 1.0, value(t, r, "attendance_checkins_total", "out_of_range"))
	assert.Equal(t, 1.0, value(t, r, "attendance_sync_items_total", "synced"))
	assert.Equal(t, -1.0, value(t, r, "attendance_checkouts_total", "ok"))
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.CheckIn("ok")
		r.CheckOut("ok")
		r.SyncItem("synced")
	})
}
