package tier1

import "btcreport/pkg/model"

// ETFFlowsStub reports the ETF flow source as unavailable. The upstream
// table rejects non-browser clients with 403, so the snapshot carries a
// placeholder section instead of breaking the run.
func ETFFlowsStub() *model.ETFFlows {
	return &model.ETFFlows{
		Status: "unavailable",
		Reason: "HTTP 403",
	}
}
