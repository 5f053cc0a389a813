package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	rewardsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthup_rewards_granted_total",
			Help: "Total number of rewards granted to users",
		},
		[]string{"condition_type"},
	)
	challengesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthup_challenges_completed_total",
			Help: "Total number of challenge completions",
		},
		[]string{"challenge_type"},
	)
	insightsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthup_insights_generated_total",
			Help: "Insight generation attempts by result",
		},
		[]string{"result"},
	)
)

// RegisterMetrics 注册领域指标，由 main 在启动时调用一次。
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(rewardsGranted, challengesCompleted, insightsGenerated)
}
