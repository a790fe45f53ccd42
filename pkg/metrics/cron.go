package metrics

import (
	"sync"
	"time"

	"github.com/go-arcade/oneupdate/pkg/cron"
	"github.com/prometheus/client_golang/prometheus"
)

type CronMetricsRecorder struct{}

var (
	CronJobRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cron_job_runs_total",
		Help:      "Total number of cron job runs",
	}, []string{"job_name"})

	CronJobErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cron_job_errors_total",
		Help:      "Total number of failed cron job runs",
	}, []string{"job_name"})

	CronJobRunDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cron_job_run_duration_seconds",
		Help:      "Duration of cron job runs in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15),
	}, []string{"job_name"})

	CronJobLastRunTime = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cron_job_last_run_time_seconds",
		Help:      "Last run time of cron job in seconds since epoch",
	}, []string{"job_name"})

	CronJobsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cron_jobs_total",
		Help:      "Number of registered cron jobs",
	})

	cronMetricsOnce sync.Once
)

func (CronMetricsRecorder) RecordJobRun(jobName string, duration time.Duration, err error) {
	if err != nil {
		CronJobErrorsTotal.WithLabelValues(jobName).Inc()
	}
	CronJobRunsTotal.WithLabelValues(jobName).Inc()
	CronJobRunDurationSeconds.WithLabelValues(jobName).Observe(duration.Seconds())
	CronJobLastRunTime.WithLabelValues(jobName).Set(float64(time.Now().Unix()))
}

func (CronMetricsRecorder) UpdateJobsCount(count int) {
	CronJobsTotal.Set(float64(count))
}

// RegisterCronMetrics registers the cron collectors and hooks the recorder
// into the scheduler package.
func RegisterCronMetrics(registry *prometheus.Registry) {
	cronMetricsOnce.Do(func() {
		registry.MustRegister(
			CronJobRunsTotal,
			CronJobErrorsTotal,
			CronJobRunDurationSeconds,
			CronJobLastRunTime,
			CronJobsTotal,
		)
		cron.SetMetricsRecorder(CronMetricsRecorder{})
	})
}
