package observability

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/drone-courier-sim/model"
)

// MissionCollector exposes delivery and per-drone Prometheus metrics.
type MissionCollector struct {
	gatherer prometheus.Gatherer

	Deliveries         *prometheus.CounterVec
	CollisionPenalties *prometheus.CounterVec
	Battery            *prometheus.GaugeVec
	Score              *prometheus.GaugeVec
	Disabled           *prometheus.GaugeVec

	mu            sync.Mutex
	seenPenalties map[model.EntityID]int
}

// NewMissionCollector registers mission metrics against the provided registerer.
func NewMissionCollector(reg prometheus.Registerer) (*MissionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	deliveries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mission_deliveries_total",
		Help: "Completed package deliveries, labeled by drone.",
	}, []string{"drone"}), "mission_deliveries_total")
	if err != nil {
		return nil, err
	}

	penalties, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mission_collision_penalties_total",
		Help: "Battery penalties applied for new obstacle contacts, labeled by drone.",
	}, []string{"drone"}), "mission_collision_penalties_total")
	if err != nil {
		return nil, err
	}

	battery, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drone_battery_level",
		Help: "Current drone battery level.",
	}, []string{"drone"}), "drone_battery_level")
	if err != nil {
		return nil, err
	}

	score, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drone_score",
		Help: "Current drone score.",
	}, []string{"drone"}), "drone_score")
	if err != nil {
		return nil, err
	}

	disabled, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drone_disabled",
		Help: "1 when the drone has run out of battery, else 0.",
	}, []string{"drone"}), "drone_disabled")
	if err != nil {
		return nil, err
	}

	return &MissionCollector{
		gatherer:           gatherer,
		Deliveries:         deliveries,
		CollisionPenalties: penalties,
		Battery:            battery,
		Score:              score,
		Disabled:           disabled,
		seenPenalties:      make(map[model.EntityID]int),
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *MissionCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveDrone updates the per-drone gauges from a telemetry snapshot and
// adds any penalties applied since the previous observation.
func (c *MissionCollector) ObserveDrone(t model.DroneTelemetry) {
	if c == nil {
		return
	}
	label := droneLabel(t.ID)
	c.Battery.WithLabelValues(label).Set(t.Battery)
	c.Score.WithLabelValues(label).Set(t.Score)
	disabled := 0.0
	if t.Disabled {
		disabled = 1
	}
	c.Disabled.WithLabelValues(label).Set(disabled)

	c.mu.Lock()
	delta := t.Penalties - c.seenPenalties[t.ID]
	if delta > 0 {
		c.seenPenalties[t.ID] = t.Penalties
	}
	c.mu.Unlock()
	if delta > 0 {
		c.CollisionPenalties.WithLabelValues(label).Add(float64(delta))
	}
}

// RecordDelivery counts one completed delivery by the given drone.
func (c *MissionCollector) RecordDelivery(drone model.EntityID) {
	if c == nil {
		return
	}
	c.Deliveries.WithLabelValues(droneLabel(drone)).Inc()
}

func droneLabel(id model.EntityID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
