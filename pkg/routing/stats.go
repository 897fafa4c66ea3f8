package routing

import (
	"fmt"
	"time"

	"github.com/floatplan/floatplan/pkg/graph"
)

// FlowCondition scales baseline velocity for reaches without live data.
type FlowCondition string

const (
	FlowLow    FlowCondition = "low"
	FlowNormal FlowCondition = "normal"
	FlowHigh   FlowCondition = "high"
)

// ParseFlowCondition validates a request value before any graph work.
func ParseFlowCondition(s string) (FlowCondition, error) {
	switch FlowCondition(s) {
	case FlowLow, FlowNormal, FlowHigh:
		return FlowCondition(s), nil
	}
	return "", &InputError{Field: "flow_condition", Reason: fmt.Sprintf("unknown value %q, want low, normal or high", s)}
}

// Multiplier approximates how mean-annual baseline velocity scales for
// drier or wetter conditions.
func (f FlowCondition) Multiplier() float64 {
	switch f {
	case FlowLow:
		return 1.0
	case FlowHigh:
		return 2.0
	default:
		return 1.5
	}
}

// GradientClass buckets a segment by elevation drop per mile, the usual
// whitewater-difficulty proxy.
type GradientClass string

const (
	ClassPool       GradientClass = "pool"
	ClassRiffle     GradientClass = "riffle"
	ClassRapidMild  GradientClass = "rapid_mild"
	ClassRapidSteep GradientClass = "rapid_steep"
)

// ClassifyGradient maps ft/mi to a class. Boundary values land in the
// higher bucket.
func ClassifyGradient(ftPerMi float64) GradientClass {
	switch {
	case ftPerMi < 5:
		return ClassPool
	case ftPerMi < 15:
		return ClassRiffle
	case ftPerMi < 30:
		return ClassRapidMild
	default:
		return ClassRapidSteep
	}
}

// SteepSection is a contiguous non-pool span of the route, located by
// distance along the route so callers can highlight rapids.
type SteepSection struct {
	StartM        float64       `json:"start_m"`
	EndM          float64       `json:"end_m"`
	MaxGradientFt float64       `json:"max_gradient_ft_mi"`
	Class         GradientClass `json:"class"`
}

// DirectionStats summarizes travel direction over the route.
type DirectionStats struct {
	IsUpstream         bool `json:"is_upstream"`
	UpstreamSegments   int  `json:"upstream_segments"`
	ImpossibleSegments int  `json:"impossible_segments"`
}

// LiveStats reports how live hydrologic data shaped the estimate.
type LiveStats struct {
	CoveragePercent     float64   `json:"coverage_percent"`
	VelocityMPH         float64   `json:"velocity_mph"`
	BaselineVelocityMPH float64   `json:"baseline_velocity_mph"`
	FlowStatus          string    `json:"flow_status"`
	DataTimestamp       time.Time `json:"data_timestamp"`
}

// Stats is the aggregate trip summary for one computed route.
type Stats struct {
	DistanceM      float64        `json:"distance_m"`
	DistanceMi     float64        `json:"distance_mi"`
	TimeS          float64        `json:"time_s"`
	TimeH          float64        `json:"time_h"`
	ElevDropFt     float64        `json:"elev_drop_ft"`
	ElevGainFt     float64        `json:"elev_gain_ft"`
	GradientFtMi   float64        `json:"gradient_ft_mi"`
	SteepSections  []SteepSection `json:"steep_sections"`
	SegmentCount   int            `json:"segment_count"`
	Waterways      []string       `json:"waterways"`
	Direction      DirectionStats `json:"direction"`
	LiveConditions LiveStats      `json:"live_conditions"`
}

const (
	feetPerMeter  = 3.28084
	metersPerMile = 1609.344
	mphPerMPS     = 2.236936

	// liveVelocityFloorMPS filters out zero-filled model output; live
	// values at or below it fall back to the baseline estimate.
	liveVelocityFloorMPS = 0.01
)

// ComputeStats walks the traversed arcs in path order and derives the trip
// summary. paddleSpeedMPS of 0 means a pure float. Upstream segments whose
// current exceeds the paddle speed are counted and flagged impossible but
// excluded from the time sum, which then becomes a lower bound; the
// returned warnings say so.
func ComputeStats(arcs []graph.Arc, flow FlowCondition, paddleSpeedMPS float64, dataTimestamp time.Time) (Stats, []string) {
	stats := Stats{
		SteepSections: make([]SteepSection, 0),
		Waterways:     make([]string, 0),
	}
	multiplier := flow.Multiplier()

	var (
		baselineTimeS    float64
		liveCoveredM     float64
		velocityWeighted float64
		baselineWeighted float64
		upstreamCount    int
		impossibleCount  int
		section          *SteepSection
		seenNames        = map[string]bool{}
	)

	for _, arc := range arcs {
		e := arc.Edge
		entryM := stats.DistanceM
		stats.SegmentCount++
		stats.DistanceM += e.LengthM

		if name := e.Name; name != "" && !seenNames[name] {
			seenNames[name] = true
			stats.Waterways = append(stats.Waterways, name)
		}
		if arc.Upstream {
			upstreamCount++
		}

		// direction-aware elevation accounting: downstream enters at the
		// upper bound and exits at the lower, upstream is the reverse
		entryElev, exitElev := e.MaxElevM, e.MinElevM
		if arc.Upstream {
			entryElev, exitElev = exitElev, entryElev
		}
		if change := (entryElev - exitElev) * feetPerMeter; change >= 0 {
			stats.ElevDropFt += change
		} else {
			stats.ElevGainFt += -change
		}

		if e.LengthM <= 0 {
			// degenerate boundary split, contributes nothing further
			continue
		}

		// gradient classification and steep-section merging
		gradient := e.ElevDropM() * feetPerMeter / (e.LengthM / metersPerMile)
		class := ClassifyGradient(gradient)
		if class == ClassPool {
			section = closeSection(&stats, section)
		} else {
			if section == nil {
				section = &SteepSection{StartM: entryM, MaxGradientFt: gradient, Class: class}
			} else {
				if gradient > section.MaxGradientFt {
					section.MaxGradientFt = gradient
				}
				if classRank(class) > classRank(section.Class) {
					section.Class = class
				}
			}
			section.EndM = stats.DistanceM
		}

		// velocity: trust live data when present and plausible, otherwise
		// scale the baseline for the requested flow condition
		baselineVelocity := e.BaselineVelocityMPS * multiplier
		velocity := baselineVelocity
		if e.LiveVelocityMPS != nil && *e.LiveVelocityMPS > liveVelocityFloorMPS {
			velocity = *e.LiveVelocityMPS
			liveCoveredM += e.LengthM
		}
		velocityWeighted += velocity * e.LengthM
		baselineWeighted += baselineVelocity * e.LengthM

		if t, ok := transitTime(e.LengthM, velocity, paddleSpeedMPS, arc.Upstream); ok {
			stats.TimeS += t
		} else {
			impossibleCount++
		}
		if t, ok := transitTime(e.LengthM, baselineVelocity, paddleSpeedMPS, arc.Upstream); ok {
			baselineTimeS += t
		}
	}
	closeSection(&stats, section)

	stats.DistanceMi = stats.DistanceM / metersPerMile
	stats.TimeH = stats.TimeS / 3600
	if stats.DistanceMi > 0 {
		stats.GradientFtMi = stats.ElevDropFt / stats.DistanceMi
	}
	stats.Direction = DirectionStats{
		IsUpstream:         2*upstreamCount > stats.SegmentCount,
		UpstreamSegments:   upstreamCount,
		ImpossibleSegments: impossibleCount,
	}

	live := LiveStats{FlowStatus: "normal", DataTimestamp: dataTimestamp}
	if stats.DistanceM > 0 {
		live.CoveragePercent = 100 * liveCoveredM / stats.DistanceM
		live.VelocityMPH = velocityWeighted / stats.DistanceM * mphPerMPS
		live.BaselineVelocityMPH = baselineWeighted / stats.DistanceM * mphPerMPS
	}
	switch {
	case baselineTimeS > 0 && stats.TimeS < baselineTimeS*0.85:
		live.FlowStatus = "high"
	case baselineTimeS > 0 && stats.TimeS > baselineTimeS*1.15:
		live.FlowStatus = "low"
	}
	stats.LiveConditions = live

	var warnings []string
	if stats.Direction.IsUpstream {
		warnings = append(warnings, "route is predominantly upstream")
	}
	if impossibleCount > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d segments impossible at this paddle speed, reported time is a lower bound", impossibleCount))
	}
	return stats, warnings
}

// transitTime returns the traversal time of one segment, or false when the
// current exceeds the paddling ability.
func transitTime(lengthM, waterVelocity, paddleSpeed float64, upstream bool) (float64, bool) {
	effective := paddleSpeed + waterVelocity
	if upstream {
		effective = paddleSpeed - waterVelocity
	}
	if effective <= 0 {
		return 0, false
	}
	return lengthM / effective, true
}

func closeSection(stats *Stats, section *SteepSection) *SteepSection {
	if section != nil {
		stats.SteepSections = append(stats.SteepSections, *section)
	}
	return nil
}

func classRank(c GradientClass) int {
	switch c {
	case ClassRiffle:
		return 1
	case ClassRapidMild:
		return 2
	case ClassRapidSteep:
		return 3
	default:
		return 0
	}
}
