package engine

import (
	"fmt"
	"math"

	"github.com/kilianp07/shiftplan/core/model"
)

// Policy holds the hard rules and the structural knobs of the objective.
type Policy struct {
	GatekeeperRole     string  `json:"gatekeeper_role"`
	MinShiftSlots      int     `json:"min_shift_slots"`
	MaxShiftSlots      int     `json:"max_shift_slots"`
	MinGatekeeperSlots int     `json:"min_gatekeeper_slots"`
	MinRoleSlots       int     `json:"min_role_slots"`
	UniversalMaxHours  float64 `json:"universal_max_hours"`

	// LargeDeviationSlots is the employee deviation, in slots, at which the
	// cliff penalty applies.
	LargeDeviationSlots int `json:"large_deviation_slots"`
	// DepartmentThresholdHours is the department deviation at which the
	// department cliff penalty applies.
	DepartmentThresholdHours float64 `json:"department_threshold_hours"`
	// ShiftDailyCost is subtracted, in slots, for every day an employee works.
	ShiftDailyCost int     `json:"shift_daily_cost"`
	ScarcityBase   float64 `json:"scarcity_base"`
	// MorningSlots counts the leading slots of each day that earn the
	// morning tie-break.
	MorningSlots        int `json:"morning_slots"`
	DedicatedUnitWeight int `json:"dedicated_unit_weight"`
	DualUnitWeight      int `json:"dual_unit_weight"`

	SeniorityMultipliers       map[int]float64    `json:"seniority_multipliers"`
	DefaultSeniorityMultiplier float64            `json:"default_seniority_multiplier"`
	CollaborationMinimumHours  map[string]float64 `json:"collaboration_minimum_hours"`
}

// DefaultPolicy returns the policy the service ships with.
func DefaultPolicy() Policy {
	return Policy{
		GatekeeperRole:           "front_desk",
		MinShiftSlots:            4,
		MaxShiftSlots:            8,
		MinGatekeeperSlots:       4,
		MinRoleSlots:             2,
		UniversalMaxHours:        19,
		LargeDeviationSlots:      4,
		DepartmentThresholdHours: 4,
		ShiftDailyCost:           6,
		ScarcityBase:             10,
		MorningSlots:             8,
		DedicatedUnitWeight:      2,
		DualUnitWeight:           1,
		SeniorityMultipliers: map[int]float64{
			1: 1.0,
			2: 1.2,
			3: 1.5,
			4: 2.0,
		},
		DefaultSeniorityMultiplier: 1.0,
		CollaborationMinimumHours:  map[string]float64{},
	}
}

// Validate rejects inconsistent shift bounds and unit weights.
func (p Policy) Validate() error {
	if p.GatekeeperRole == "" {
		return fmt.Errorf("policy: gatekeeper_role is required")
	}
	if p.MinShiftSlots < 1 || p.MaxShiftSlots < p.MinShiftSlots {
		return fmt.Errorf("policy: need 1 <= min_shift_slots (%d) <= max_shift_slots (%d)", p.MinShiftSlots, p.MaxShiftSlots)
	}
	if p.MinGatekeeperSlots < 0 || p.MinRoleSlots < 0 {
		return fmt.Errorf("policy: minimum block lengths must not be negative")
	}
	if p.UniversalMaxHours < 0 {
		return fmt.Errorf("policy: universal_max_hours must not be negative")
	}
	if p.DedicatedUnitWeight <= 0 || p.DualUnitWeight < 0 {
		return fmt.Errorf("policy: dedicated_unit_weight must be positive and dual_unit_weight not negative")
	}
	if p.LargeDeviationSlots < 0 || p.DepartmentThresholdHours < 0 || p.ShiftDailyCost < 0 || p.MorningSlots < 0 {
		return fmt.Errorf("policy: thresholds and costs must not be negative")
	}
	return nil
}

// SeniorityMultiplier returns the target-adherence multiplier for a year.
func (p Policy) SeniorityMultiplier(year int) float64 {
	if m, ok := p.SeniorityMultipliers[year]; ok {
		return m
	}
	if p.DefaultSeniorityMultiplier > 0 {
		return p.DefaultSeniorityMultiplier
	}
	return 1
}

// UnitWeights returns the department unit weights.
func (p Policy) UnitWeights() model.UnitWeights {
	return model.UnitWeights{Dedicated: p.DedicatedUnitWeight, Dual: p.DualUnitWeight}
}

// UnitsPerHour converts department hours into units on cal.
func (p Policy) UnitsPerHour(cal model.Calendar) float64 {
	return float64(p.DedicatedUnitWeight) * cal.SlotsPerHour()
}

// Weights are the objective weights. Their magnitudes approximate a strict
// priority order: coverage, then large deviations, department targets,
// collaboration and office safety, spread and fairness, tie-breaks.
type Weights struct {
	Coverage              float64 `json:"coverage"`
	EmployeeCliff         float64 `json:"employee_cliff"`
	DepartmentCliff       float64 `json:"department_cliff"`
	DepartmentTarget      float64 `json:"department_target"`
	Collaboration         float64 `json:"collaboration"`
	OfficeCoverage        float64 `json:"office_coverage"`
	SingleCoverage        float64 `json:"single_coverage"`
	TargetAdherence       float64 `json:"target_adherence"`
	DepartmentSpread      float64 `json:"department_spread"`
	DepartmentDayCoverage float64 `json:"department_day_coverage"`
	ShiftLength           float64 `json:"shift_length"`
	DepartmentScarcity    float64 `json:"department_scarcity"`
	JuniorGatekeeper      float64 `json:"junior_gatekeeper"`
	MorningPreference     float64 `json:"morning_preference"`
	DepartmentTotal       float64 `json:"department_total"`

	// Scale turns fractional weights into the integer coefficients the
	// solver works with.
	Scale float64 `json:"scale"`
}

// DefaultWeights returns the shipped objective weights.
func DefaultWeights() Weights {
	return Weights{
		Coverage:              10000,
		EmployeeCliff:         5000,
		DepartmentCliff:       4000,
		DepartmentTarget:      1000,
		Collaboration:         200,
		OfficeCoverage:        150,
		SingleCoverage:        500,
		TargetAdherence:       100,
		DepartmentSpread:      60,
		DepartmentDayCoverage: 30,
		ShiftLength:           20,
		DepartmentScarcity:    8,
		JuniorGatekeeper:      3,
		MorningPreference:     0.5,
		DepartmentTotal:       1,
		Scale:                 100,
	}
}

// Validate rejects negative weights; a sign flip would silently invert a term.
func (w Weights) Validate() error {
	vals := map[string]float64{
		"coverage": w.Coverage, "employee_cliff": w.EmployeeCliff, "department_cliff": w.DepartmentCliff,
		"department_target": w.DepartmentTarget, "collaboration": w.Collaboration,
		"office_coverage": w.OfficeCoverage, "single_coverage": w.SingleCoverage,
		"target_adherence": w.TargetAdherence, "department_spread": w.DepartmentSpread,
		"department_day_coverage": w.DepartmentDayCoverage, "shift_length": w.ShiftLength,
		"department_scarcity": w.DepartmentScarcity, "junior_gatekeeper": w.JuniorGatekeeper,
		"morning_preference": w.MorningPreference, "department_total": w.DepartmentTotal,
	}
	for name, v := range vals {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weights: %s must be a finite non-negative number, got %g", name, v)
		}
	}
	if w.Scale <= 0 {
		return fmt.Errorf("weights: scale must be positive, got %g", w.Scale)
	}
	return nil
}

// coef converts weight*factor to an integer objective coefficient.
func (w Weights) coef(weight, factor float64) int64 {
	return int64(math.Round(weight * factor * w.Scale))
}
