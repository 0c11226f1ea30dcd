package httptransport

import "expvar"

var (
	metricSessionOpenTotal  = expvar.NewInt("http_session_open_total")
	metricSessionOpenErrors = expvar.NewInt("http_session_open_errors_total")

	metricWagerSubmitTotal  = expvar.NewInt("http_wager_submit_total")
	metricWagerSubmitErrors = expvar.NewInt("http_wager_submit_errors_total")

	metricAnswerSubmitTotal  = expvar.NewInt("http_answer_submit_total")
	metricAnswerSubmitErrors = expvar.NewInt("http_answer_submit_errors_total")
)
