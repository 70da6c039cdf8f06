// Package score derives the household health score from the current task
// and asset collections. The score is recomputed on every read and never
// stored as authoritative state.
package score

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikermcconnell/HomeHealth/internal/models"
)

const (
	maxScore = 100

	pointsPerOverdueTask    = 10
	missingSmokeAlarmPoints = 10
	missingHVACPoints       = 5

	categorySmokeAlarm = "Smoke Alarm"
	categoryHVAC       = "HVAC"
)

// Deduction is one scoring penalty with its display reason.
type Deduction struct {
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// Breakdown is the derived 0-100 score with its deductions in evaluation
// order: overdue burden first, then missing critical assets.
type Breakdown struct {
	Score      int         `json:"score"`
	Deductions []Deduction `json:"deductions"`
}

// Input is a read-only snapshot of household state.
type Input struct {
	Tasks     []models.Task
	Assets    []models.Asset
	HomeType  models.HomeType
	Onboarded bool
	Now       time.Time
}

// Compute derives the health score. Each overdue task costs 10 points,
// reported as a single aggregated deduction. An onboarded household with no
// tracked smoke alarm loses 10 more; a house with no tracked HVAC system
// loses 5. The result is floored at zero. Compute never mutates its inputs
// and returns identical results for identical inputs.
func Compute(in Input) Breakdown {
	total := maxScore
	deductions := make([]Deduction, 0, 3)

	overdue := 0
	for _, task := range in.Tasks {
		if task.IsOverdue(in.Now) {
			overdue++
		}
	}
	if overdue > 0 {
		points := overdue * pointsPerOverdueTask
		total -= points
		deductions = append(deductions, Deduction{Reason: overdueReason(overdue), Points: points})
	}

	if in.Onboarded && !hasAssetCategory(in.Assets, categorySmokeAlarm) {
		total -= missingSmokeAlarmPoints
		deductions = append(deductions, Deduction{Reason: "No Smoke Alarm Asset Tracked", Points: missingSmokeAlarmPoints})
	}

	if in.HomeType == models.HomeTypeHouse && !hasAssetCategory(in.Assets, categoryHVAC) {
		total -= missingHVACPoints
		deductions = append(deductions, Deduction{Reason: "No HVAC System Tracked", Points: missingHVACPoints})
	}

	if total < 0 {
		total = 0
	}
	return Breakdown{Score: total, Deductions: deductions}
}

func overdueReason(count int) string {
	if count == 1 {
		return "1 Overdue Task"
	}
	return fmt.Sprintf("%d Overdue Tasks", count)
}

func hasAssetCategory(assets []models.Asset, category string) bool {
	for _, asset := range assets {
		if strings.EqualFold(asset.Category, category) {
			return true
		}
	}
	return false
}
