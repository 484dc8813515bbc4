package node

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/gridsim/simnode/src/common"
	"github.com/gridsim/simnode/src/config"
	"github.com/gridsim/simnode/src/peers"
)

func newTestCoordinator(t *testing.T, peerNames []string, conf *config.Config) *Coordinator {
	ps := []*peers.Peer{}
	for i, name := range peerNames {
		ps = append(ps, peers.NewPeer(name, fmt.Sprintf("addr%d", i)))
	}
	peerSet := peers.NewPeerSet(ps)

	fold, err := NewFold(conf.Fold)
	if err != nil {
		t.Fatal(err)
	}

	return NewCoordinator(conf.Moniker, peerSet, conf, fold, common.NewTestEntry(t))
}

func TestAggregatorEpoch(t *testing.T) {
	conf := config.NewTestConfig(t)
	conf.BaseValue = 2.0
	conf.Mode = config.ModeCorrect

	c := newTestCoordinator(t, []string{"P1", "P2"}, conf)

	c.StartEpoch(1, "sig-1")

	if c.Complete() {
		t.Fatal("Epoch should not be complete before any input")
	}

	if ok := c.HandleInput("P1", 1, 3.0, "m1"); !ok {
		t.Fatal("P1 input should be accepted")
	}

	if c.Complete() {
		t.Fatal("Epoch should not be complete with one of two inputs")
	}

	if ok := c.HandleInput("P2", 1, 4.0, "m2"); !ok {
		t.Fatal("P2 input should be accepted")
	}

	if !c.Complete() {
		t.Fatal("Epoch should be complete after both inputs")
	}

	// multiplicative fold seeded at 1: 1 * 3 * 4 = 12
	if agg := c.Aggregate(); agg != 12.0 {
		t.Fatalf("Aggregate should be 12.0, not %f", agg)
	}

	// output rescaled by base value 2.0
	if out := c.ComputeOutput(); out != 24.0 {
		t.Fatalf("Output should be 24.0, not %f", out)
	}

	expectedIDs := []string{"sig-1", "m1", "m2"}
	if ids := c.CausalIDs(); !reflect.DeepEqual(ids, expectedIDs) {
		t.Fatalf("CausalIDs should be %v, not %v", expectedIDs, ids)
	}
}

func TestStandaloneEpoch(t *testing.T) {
	conf := config.NewTestConfig(t)
	conf.BaseValue = 5.0

	c := newTestCoordinator(t, []string{}, conf)

	c.StartEpoch(7, "sig-7")

	if !c.Complete() {
		t.Fatal("Epoch should be complete immediately with no peers")
	}

	if out := c.ComputeOutput(); out != 0.035 {
		t.Fatalf("Output should be 0.035, not %f", out)
	}
}

func TestDuplicateInput(t *testing.T) {
	conf := config.NewTestConfig(t)

	c := newTestCoordinator(t, []string{"P1", "P2"}, conf)

	c.StartEpoch(1, "sig-1")

	if ok := c.HandleInput("P1", 1, 3.0, "m1"); !ok {
		t.Fatal("First P1 input should be accepted")
	}

	if ok := c.HandleInput("P1", 1, 99.0, "m2"); ok {
		t.Fatal("Second P1 input should be discarded")
	}

	if agg := c.Aggregate(); agg != 3.0 {
		t.Fatalf("Aggregate should reflect only the first input; got %f", agg)
	}

	if c.ReportedCount() != 1 {
		t.Fatalf("ReportedCount should be 1, not %d", c.ReportedCount())
	}

	expectedIDs := []string{"sig-1", "m1"}
	if ids := c.CausalIDs(); !reflect.DeepEqual(ids, expectedIDs) {
		t.Fatalf("CausalIDs should be %v, not %v", expectedIDs, ids)
	}
}

func TestStaleInput(t *testing.T) {
	conf := config.NewTestConfig(t)

	c := newTestCoordinator(t, []string{"P1"}, conf)

	c.StartEpoch(6, "sig-6")

	if ok := c.HandleInput("P1", 5, 3.0, "m1"); ok {
		t.Fatal("Input for a past epoch should be discarded")
	}

	if c.Complete() {
		t.Fatal("Stale input should not affect completion")
	}

	if agg := c.Aggregate(); agg != 1.0 {
		t.Fatalf("Aggregate should be untouched at the seed; got %f", agg)
	}
}

func TestUnknownPeerInput(t *testing.T) {
	conf := config.NewTestConfig(t)

	c := newTestCoordinator(t, []string{"P1"}, conf)

	c.StartEpoch(1, "sig-1")

	if ok := c.HandleInput("Stranger", 1, 3.0, "m1"); ok {
		t.Fatal("Input from an unregistered component should be discarded")
	}

	if c.ReportedCount() != 0 {
		t.Fatalf("ReportedCount should be 0, not %d", c.ReportedCount())
	}
}

func TestInputBeforeStart(t *testing.T) {
	conf := config.NewTestConfig(t)

	c := newTestCoordinator(t, []string{"P1"}, conf)

	if ok := c.HandleInput("P1", 0, 3.0, "m1"); ok {
		t.Fatal("Input before any epoch is open should be discarded")
	}
}

func TestOrderIndependence(t *testing.T) {
	conf := config.NewTestConfig(t)
	conf.Fold = config.FoldSum
	conf.FoldSeed = 0

	inputs := map[string]float64{
		"P1": 1.5,
		"P2": 2.25,
		"P3": 3.125,
	}

	c1 := newTestCoordinator(t, []string{"P1", "P2", "P3"}, conf)
	c1.StartEpoch(1, "sig")
	c1.HandleInput("P1", 1, inputs["P1"], "m1")
	c1.HandleInput("P2", 1, inputs["P2"], "m2")
	c1.HandleInput("P3", 1, inputs["P3"], "m3")

	c2 := newTestCoordinator(t, []string{"P1", "P2", "P3"}, conf)
	c2.StartEpoch(1, "sig")
	c2.HandleInput("P3", 1, inputs["P3"], "m3")
	c2.HandleInput("P1", 1, inputs["P1"], "m1")
	c2.HandleInput("P2", 1, inputs["P2"], "m2")

	if c1.Aggregate() != c2.Aggregate() {
		t.Fatalf("Aggregate should not depend on arrival order: %f != %f",
			c1.Aggregate(), c2.Aggregate())
	}
}

func TestAggregateRounding(t *testing.T) {
	conf := config.NewTestConfig(t)
	conf.Fold = config.FoldSum
	conf.FoldSeed = 0

	c := newTestCoordinator(t, []string{"P1", "P2"}, conf)

	c.StartEpoch(1, "sig")
	c.HandleInput("P1", 1, 0.0005, "m1")
	c.HandleInput("P2", 1, 1.0001, "m2")

	// every fold step is rounded to 3 decimals: 0.0005 -> 0.001, +1.0001 -> 1.001
	if agg := c.Aggregate(); agg != 1.001 {
		t.Fatalf("Aggregate should be 1.001, not %f", agg)
	}
}

func TestUncorrectedMode(t *testing.T) {
	conf := config.NewTestConfig(t)
	conf.BaseValue = 2.0
	conf.Mode = ""

	c := newTestCoordinator(t, []string{"P1"}, conf)

	c.StartEpoch(1, "sig")
	c.HandleInput("P1", 1, 3.0, "m1")

	// without the "Correct" mode flag the aggregate passes through unscaled
	if out := c.ComputeOutput(); out != 3.0 {
		t.Fatalf("Output should be 3.0, not %f", out)
	}
}

func TestResetAndRestart(t *testing.T) {
	conf := config.NewTestConfig(t)

	c := newTestCoordinator(t, []string{"P1"}, conf)

	c.StartEpoch(1, "sig-1")
	c.HandleInput("P1", 1, 3.0, "m1")

	if !c.Complete() {
		t.Fatal("Epoch 1 should be complete")
	}

	c.Reset()

	if c.Started() {
		t.Fatal("Coordinator should not be started after Reset")
	}

	if c.LastCompleted() != 1 {
		t.Fatalf("LastCompleted should be 1, not %d", c.LastCompleted())
	}

	// Reset is idempotent
	c.Reset()

	c.StartEpoch(2, "sig-2")

	if agg := c.Aggregate(); agg != 1.0 {
		t.Fatalf("Aggregate should restart at the seed; got %f", agg)
	}

	if len(c.CausalIDs()) != 1 {
		t.Fatalf("CausalIDs should only contain the new epoch signal; got %v", c.CausalIDs())
	}

	c.HandleInput("P1", 2, 5.0, "m2")

	if agg := c.Aggregate(); agg != 5.0 {
		t.Fatalf("Aggregate should be 5.0, not %f", agg)
	}
}

func TestIncompleteReset(t *testing.T) {
	conf := config.NewTestConfig(t)

	c := newTestCoordinator(t, []string{"P1", "P2"}, conf)

	c.StartEpoch(1, "sig-1")
	c.HandleInput("P1", 1, 3.0, "m1")

	// abandoning an incomplete epoch does not mark it completed
	c.Reset()

	if c.LastCompleted() != 0 {
		t.Fatalf("LastCompleted should still be 0, not %d", c.LastCompleted())
	}
}

func TestStartEpochPanics(t *testing.T) {
	conf := config.NewTestConfig(t)

	t.Run("non-increasing epoch", func(t *testing.T) {
		c := newTestCoordinator(t, []string{}, conf)

		c.StartEpoch(3, "sig-3")
		c.Reset()

		defer func() {
			if r := recover(); r == nil {
				t.Fatal("StartEpoch should panic on a non-increasing epoch")
			}
		}()

		c.StartEpoch(3, "sig-3-again")
	})

	t.Run("epoch still open", func(t *testing.T) {
		c := newTestCoordinator(t, []string{"P1"}, conf)

		c.StartEpoch(1, "sig-1")

		defer func() {
			if r := recover(); r == nil {
				t.Fatal("StartEpoch should panic while an epoch is open")
			}
		}()

		c.StartEpoch(2, "sig-2")
	})
}

func TestUnknownFold(t *testing.T) {
	if _, err := NewFold("median"); err == nil {
		t.Fatal("NewFold should reject an unknown operator")
	}
}
