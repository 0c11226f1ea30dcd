package quiz

import "expvar"

var (
	metricSessionsOpened    = expvar.NewInt("quiz_sessions_opened_total")
	metricSessionsAbandoned = expvar.NewInt("quiz_sessions_abandoned_total")

	metricWagersApproved = expvar.NewInt("quiz_wagers_approved_total")
	metricWagersRejected = expvar.NewInt("quiz_wagers_rejected_total")

	metricAnswersCommitted = expvar.NewInt("quiz_answers_committed_total")
	metricCommitErrors     = expvar.NewInt("quiz_commit_errors_total")
	metricCommitReplays    = expvar.NewInt("quiz_commit_replays_total")
)
