package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	UploadsBundled  *prometheus.Desc
	UploadsDirect   *prometheus.Desc
	BytesUploaded   *prometheus.Desc
	Fetches         *prometheus.Desc
	FetchesFallback *prometheus.Desc
	Queries         *prometheus.Desc

	UploadErrors        *prometheus.Desc
	FetchErrors         *prometheus.Desc
	QueryErrors         *prometheus.Desc
	InsufficientBalance *prometheus.Desc

	BatchesCreated   *prometheus.Desc
	BatchesCommitted *prometheus.Desc
	MembersCommitted *prometheus.Desc
	CommitErrors     *prometheus.Desc

	LivenessProbes   *prometheus.Desc
	ResolvedDegraded *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "permadoc",
	}

	return &Collector{
		UploadsBundled:  prometheus.NewDesc("uploads_bundled", "", nil, labels),
		UploadsDirect:   prometheus.NewDesc("uploads_direct", "", nil, labels),
		BytesUploaded:   prometheus.NewDesc("bytes_uploaded", "", nil, labels),
		Fetches:         prometheus.NewDesc("fetches", "", nil, labels),
		FetchesFallback: prometheus.NewDesc("fetches_fallback", "", nil, labels),
		Queries:         prometheus.NewDesc("queries", "", nil, labels),

		UploadErrors:        prometheus.NewDesc("upload_errors", "", nil, labels),
		FetchErrors:         prometheus.NewDesc("fetch_errors", "", nil, labels),
		QueryErrors:         prometheus.NewDesc("query_errors", "", nil, labels),
		InsufficientBalance: prometheus.NewDesc("insufficient_balance", "", nil, labels),

		BatchesCreated:   prometheus.NewDesc("batches_created", "", nil, labels),
		BatchesCommitted: prometheus.NewDesc("batches_committed", "", nil, labels),
		MembersCommitted: prometheus.NewDesc("members_committed", "", nil, labels),
		CommitErrors:     prometheus.NewDesc("commit_errors", "", nil, labels),

		LivenessProbes:   prometheus.NewDesc("liveness_probes", "", nil, labels),
		ResolvedDegraded: prometheus.NewDesc("resolved_degraded", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.UploadsBundled
	ch <- self.UploadsDirect
	ch <- self.BytesUploaded
	ch <- self.Fetches
	ch <- self.FetchesFallback
	ch <- self.Queries

	// Errors
	ch <- self.UploadErrors
	ch <- self.FetchErrors
	ch <- self.QueryErrors
	ch <- self.InsufficientBalance

	ch <- self.BatchesCreated
	ch <- self.BatchesCommitted
	ch <- self.MembersCommitted
	ch <- self.CommitErrors

	ch <- self.LivenessProbes
	ch <- self.ResolvedDegraded
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.UploadsBundled, prometheus.CounterValue, float64(self.monitor.Report.Archive.State.UploadsBundled.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploadsDirect, prometheus.CounterValue, float64(self.monitor.Report.Archive.State.UploadsDirect.Load()))
	ch <- prometheus.MustNewConstMetric(self.BytesUploaded, prometheus.CounterValue, float64(self.monitor.Report.Archive.State.BytesUploaded.Load()))
	ch <- prometheus.MustNewConstMetric(self.Fetches, prometheus.CounterValue, float64(self.monitor.Report.Archive.State.Fetches.Load()))
	ch <- prometheus.MustNewConstMetric(self.FetchesFallback, prometheus.CounterValue, float64(self.monitor.Report.Archive.State.FetchesFallback.Load()))
	ch <- prometheus.MustNewConstMetric(self.Queries, prometheus.CounterValue, float64(self.monitor.Report.Archive.State.Queries.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploadErrors, prometheus.CounterValue, float64(self.monitor.Report.Archive.Errors.UploadErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.FetchErrors, prometheus.CounterValue, float64(self.monitor.Report.Archive.Errors.FetchErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.QueryErrors, prometheus.CounterValue, float64(self.monitor.Report.Archive.Errors.QueryErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.InsufficientBalance, prometheus.CounterValue, float64(self.monitor.Report.Archive.Errors.InsufficientBalance.Load()))
	ch <- prometheus.MustNewConstMetric(self.BatchesCreated, prometheus.CounterValue, float64(self.monitor.Report.Batch.State.BatchesCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.BatchesCommitted, prometheus.CounterValue, float64(self.monitor.Report.Batch.State.BatchesCommitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.MembersCommitted, prometheus.CounterValue, float64(self.monitor.Report.Batch.State.MembersCommitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.CommitErrors, prometheus.CounterValue, float64(self.monitor.Report.Batch.Errors.CommitErrors.Load()))
	ch <- prometheus.MustNewConstMetric(self.LivenessProbes, prometheus.CounterValue, float64(self.monitor.Report.Gateway.State.LivenessProbes.Load()))
	ch <- prometheus.MustNewConstMetric(self.ResolvedDegraded, prometheus.CounterValue, float64(self.monitor.Report.Gateway.State.ResolvedDegraded.Load()))
}
