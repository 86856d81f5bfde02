// Package metrics 定义同步流水线与调度器的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "git_light_sync"

var (
	// RunsTotal 同步运行次数，按结果和触发来源区分
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Pipeline runs by result and trigger.",
	}, []string{"result", "trigger"})

	// SkippedTotal 因已有运行而被丢弃的触发次数
	SkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_total",
		Help:      "Ticks and manual triggers dropped because a run was in progress.",
	}, []string{"trigger"})

	// StepDuration 每个步骤的耗时
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "step_duration_seconds",
		Help:      "Duration of pipeline steps.",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
	}, []string{"step", "result"})

	// LastSuccess 最近一次成功同步的时间戳
	LastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful run.",
	})

	// Running 当前运行中的同步数，每个调度器增减自己的那一份
	Running = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "running",
		Help:      "Pipeline runs currently active in this process.",
	})
)

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ObserveStep 记录一次步骤执行
func ObserveStep(step string, ok bool, d time.Duration) {
	StepDuration.WithLabelValues(step, resultLabel(ok)).Observe(d.Seconds())
}

// ObserveRun 记录一次完整运行
func ObserveRun(trigger string, ok bool, finishedAt time.Time) {
	RunsTotal.WithLabelValues(resultLabel(ok), trigger).Inc()
	if ok {
		LastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// ObserveSkip 记录一次被丢弃的触发
func ObserveSkip(trigger string) {
	SkippedTotal.WithLabelValues(trigger).Inc()
}
