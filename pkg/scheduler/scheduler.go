package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/models"
)

// ConflictReason explains why a task could not be fully staffed
type ConflictReason struct {
	TaskID    string   `json:"task_id"`
	Needed    int      `json:"needed"`
	Qualified int      `json:"qualified"`
	Reasons   []string `json:"reasons"`
}

// Plan is the outcome of matching workers to one task. Shifts is either
// complete (one per required worker) or empty with a Conflict.
type Plan struct {
	Shifts   []models.Shift
	Conflict *ConflictReason
}

// Complete reports whether every required worker was found
func (p Plan) Complete() bool {
	return p.Conflict == nil
}

// Planner handles the logic of assigning workers to a task
type Planner struct {
	Workers []models.Worker
	busy    map[string][]models.Shift
}

// NewPlanner creates a planner over workers in registry order. busy holds
// shifts already booked for those workers.
func NewPlanner(workers []models.Worker, busy []models.Shift) *Planner {
	p := &Planner{
		Workers: workers,
		busy:    make(map[string][]models.Shift),
	}
	for _, sh := range busy {
		p.busy[sh.WorkerID] = append(p.busy[sh.WorkerID], sh)
	}
	return p
}

// DurationHours calculates the duration between two times in hours
func (p *Planner) DurationHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// Overlap checks if two time ranges overlap
func (p *Planner) Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// WouldOverlap checks if a worker's booked shifts overlap with a new window
func (p *Planner) WouldOverlap(workerID string, start, end time.Time) bool {
	for _, sh := range p.busy[workerID] {
		if sh.Status == models.ShiftCancelled {
			continue
		}
		if p.Overlap(sh.StartTime, sh.EndTime, start, end) {
			return true
		}
	}
	return false
}

// Allows checks if a worker is eligible for a task regardless of bookings
func (p *Planner) Allows(task *models.LabourTask, worker *models.Worker) bool {
	if worker.Status != models.WorkerActive || worker.UserID != task.UserID {
		return false
	}
	return worker.HasAnySkill(task.RequiredSkills)
}

// Plan picks the first RequiredWorkers eligible, unbooked workers and splits
// the task window evenly between them. Partial staffing yields no shifts.
func (p *Planner) Plan(task *models.LabourTask) Plan {
	needed := task.RequiredWorkers
	if needed <= 0 {
		return Plan{Conflict: &ConflictReason{
			TaskID:  task.ID,
			Needed:  needed,
			Reasons: []string{"task requires at least one worker"},
		}}
	}

	var chosen []*models.Worker
	disallowedCount := 0
	overlapCount := 0

	for i := range p.Workers {
		w := &p.Workers[i]
		if !p.Allows(task, w) {
			disallowedCount++
			continue
		}
		if p.WouldOverlap(w.ID, task.StartDate, task.EndDate) {
			overlapCount++
			continue
		}
		chosen = append(chosen, w)
		if len(chosen) == needed {
			break
		}
	}

	if len(chosen) < needed {
		var reasons []string
		if disallowedCount > 0 {
			reasons = append(reasons, fmt.Sprintf("%d workers lacked the required skills or were inactive", disallowedCount))
		}
		if overlapCount > 0 {
			reasons = append(reasons, fmt.Sprintf("%d workers had overlapping shifts", overlapCount))
		}
		if len(reasons) == 0 {
			reasons = append(reasons, "no active workers registered")
		}
		return Plan{Conflict: &ConflictReason{
			TaskID:    task.ID,
			Needed:    needed,
			Qualified: len(chosen),
			Reasons:   reasons,
		}}
	}

	perWorker := task.EndDate.Sub(task.StartDate) / time.Duration(needed)
	shifts := make([]models.Shift, 0, needed)
	for _, w := range chosen {
		shifts = append(shifts, models.Shift{
			WorkerID:  w.ID,
			TaskID:    task.ID,
			Date:      task.StartDate,
			StartTime: task.StartDate,
			EndTime:   task.StartDate.Add(perWorker),
			Status:    models.ShiftScheduled,
		})
	}
	return Plan{Shifts: shifts}
}
