package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Счетчик входящих обновлений Telegram по типам
	WebhookUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgwallet_webhook_updates_total",
			Help: "Total number of received Telegram updates by type",
		},
		[]string{"type"}, // callback_query, successful_payment, other
	)

	// Счетчик успешно выполненных фоновых задач
	TasksSucceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgwallet_tasks_succeeded_total",
			Help: "Total number of background tasks that completed",
		},
		[]string{"task"},
	)

	// Счетчик задач, исчерпавших все попытки
	TasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgwallet_tasks_failed_total",
			Help: "Total number of background tasks that exhausted retries",
		},
		[]string{"task"},
	)

	// Счетчик повторных попыток
	TaskRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgwallet_task_retries_total",
			Help: "Total number of background task retries",
		},
		[]string{"task"},
	)

	// Счетчик созданных переводов
	TransfersCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tgwallet_transfers_completed_total",
			Help: "Total number of completed card-to-card transfers",
		},
	)

	// Счетчик зачислений Telegram Stars
	StarsPaymentsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tgwallet_stars_payments_applied_total",
			Help: "Total number of credited Telegram Stars payments",
		},
	)
)
