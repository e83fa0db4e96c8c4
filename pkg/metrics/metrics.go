// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters and histograms for jnkn's
// hot paths: parsing, stitching, and blast-radius analysis. It is a
// process-wide singleton, initialised lazily on first use.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type jnknMetrics struct {
	once sync.Once

	filesScanned prometheus.Counter
	filesSkipped prometheus.Counter
	filesFailed  prometheus.Counter

	nodesUpserted prometheus.Counter
	edgesUpserted prometheus.Counter

	stitchRuns       prometheus.Counter
	stitchEdgesAdded prometheus.Counter
	ruleFired        *prometheus.CounterVec

	blastRadiusQueries prometheus.Counter

	scanDuration   prometheus.Histogram
	stitchDuration prometheus.Histogram
	impactDuration prometheus.Histogram
}

var m jnknMetrics

func (m *jnknMetrics) init() {
	m.once.Do(func() {
		m.filesScanned = prometheus.NewCounter(prometheus.CounterOpts{Name: "jnkn_parser_files_scanned_total", Help: "Files successfully parsed"})
		m.filesSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "jnkn_parser_files_skipped_total", Help: "Files skipped by a gate"})
		m.filesFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "jnkn_parser_files_failed_total", Help: "Files that failed extraction"})

		m.nodesUpserted = prometheus.NewCounter(prometheus.CounterOpts{Name: "jnkn_store_nodes_upserted_total", Help: "Nodes written to the store"})
		m.edgesUpserted = prometheus.NewCounter(prometheus.CounterOpts{Name: "jnkn_store_edges_upserted_total", Help: "Edges written to the store"})

		m.stitchRuns = prometheus.NewCounter(prometheus.CounterOpts{Name: "jnkn_stitch_runs_total", Help: "Stitcher passes executed"})
		m.stitchEdgesAdded = prometheus.NewCounter(prometheus.CounterOpts{Name: "jnkn_stitch_edges_added_total", Help: "Edges emitted by the stitcher"})
		m.ruleFired = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "jnkn_stitch_rule_fired_total", Help: "Stitch rule firings by rule name"}, []string{"rule"})

		m.blastRadiusQueries = prometheus.NewCounter(prometheus.CounterOpts{Name: "jnkn_impact_queries_total", Help: "Blast-radius queries served"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "jnkn_parser_scan_seconds", Help: "Full tree scan duration", Buckets: buckets})
		m.stitchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "jnkn_stitch_seconds", Help: "Stitcher pass duration", Buckets: buckets})
		m.impactDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "jnkn_impact_seconds", Help: "Blast-radius query duration", Buckets: buckets})

		prometheus.MustRegister(
			m.filesScanned, m.filesSkipped, m.filesFailed,
			m.nodesUpserted, m.edgesUpserted,
			m.stitchRuns, m.stitchEdgesAdded, m.ruleFired,
			m.blastRadiusQueries,
			m.scanDuration, m.stitchDuration, m.impactDuration,
		)
	})
}

// RecordScan records the outcome counts of one Engine.ScanTree call.
func RecordScan(scanned, skipped, failed int) {
	m.init()
	m.filesScanned.Add(float64(scanned))
	m.filesSkipped.Add(float64(skipped))
	m.filesFailed.Add(float64(failed))
}

// RecordStoreWrite records how many nodes/edges a store write touched.
func RecordStoreWrite(nodes, edges int) {
	m.init()
	m.nodesUpserted.Add(float64(nodes))
	m.edgesUpserted.Add(float64(edges))
}

// RecordStitchRun records one stitcher pass and the edges it emitted.
func RecordStitchRun(edgesAdded int) {
	m.init()
	m.stitchRuns.Inc()
	m.stitchEdgesAdded.Add(float64(edgesAdded))
}

// RecordRuleFired increments the per-rule firing counter.
func RecordRuleFired(rule string) {
	m.init()
	m.ruleFired.WithLabelValues(rule).Inc()
}

// RecordBlastRadiusQuery records one impact-analysis query.
func RecordBlastRadiusQuery() {
	m.init()
	m.blastRadiusQueries.Inc()
}

// ObserveScanDuration records the wall-clock duration of a full tree scan.
func ObserveScanDuration(seconds float64) {
	m.init()
	m.scanDuration.Observe(seconds)
}

// ObserveStitchDuration records the wall-clock duration of a stitcher pass.
func ObserveStitchDuration(seconds float64) {
	m.init()
	m.stitchDuration.Observe(seconds)
}

// ObserveImpactDuration records the wall-clock duration of a blast-radius
// query.
func ObserveImpactDuration(seconds float64) {
	m.init()
	m.impactDuration.Observe(seconds)
}
