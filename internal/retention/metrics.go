package retention

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	stageItemMark  = "item_mark"
	stageItemWarn  = "item_warn"
	stageItemPurge = "item_purge"
	stageUserMark  = "user_mark"
	stageUserWarn  = "user_warn"
	stageUserPurge = "user_purge"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var stageCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "campusfound",
	Subsystem: "retention",
	Name:      "entities_processed_total",
	Help:      "Entities processed by each retention stage, partitioned by outcome.",
}, []string{"stage", "outcome"})
