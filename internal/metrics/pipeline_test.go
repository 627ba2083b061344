package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterPipelineMetrics_Idempotent(t *testing.T) {
	RegisterPipelineMetrics()
	RegisterPipelineMetrics()

	RoutedIntentsTotal.WithLabelValues("outlet").Inc()
	if got := testutil.ToFloat64(RoutedIntentsTotal.WithLabelValues("outlet")); got < 1 {
		t.Fatalf("expected routed intent counter >= 1, got %f", got)
	}
}

func TestPipelineMetrics_Namespace(t *testing.T) {
	BranchOutcomesTotal.WithLabelValues("product", "ok").Inc()

	if n := testutil.CollectAndCount(BranchOutcomesTotal, "brewdesk_branch_outcomes_total"); n == 0 {
		t.Fatal("expected brewdesk_branch_outcomes_total series")
	}
}
