package rounds

import "expvar"

var (
	metricRoundsStarted     = expvar.NewMap("casino_rounds_started_total")
	metricBetsAccepted      = expvar.NewMap("casino_round_bets_total")
	metricBetsRejected      = expvar.NewMap("casino_round_bets_rejected_total")
	metricCashouts          = expvar.NewInt("casino_crash_cashouts_total")
	metricSettleFailed      = expvar.NewInt("casino_round_settle_failed_total")
	metricAuditQueuedTotal  = expvar.NewInt("casino_audit_queued_total")
	metricAuditDroppedTotal = expvar.NewInt("casino_audit_dropped_total")
	metricAuditRetryTotal   = expvar.NewInt("casino_audit_retry_total")
	metricAuditWrittenTotal = expvar.NewInt("casino_audit_written_total")
	metricAuditFailedTotal  = expvar.NewInt("casino_audit_failed_total")
	metricAuditQueueLen     = expvar.NewInt("casino_audit_queue_len")
)
