package labour

import (
	"context"
	"fmt"
	"sort"

	"github.com/arnavshah/labour-scheduler/pkg/models"
)

const overtimeWarningHours = 10.0

// ScanReport summarises one pass of a periodic scan. Failures counts units
// (tasks, users, workers) that errored and were skipped.
type ScanReport struct {
	Scan          string `json:"scan"`
	Processed     int    `json:"processed"`
	AlertsCreated int    `json:"alerts_created"`
	Failures      int    `json:"failures"`
}

func (r *ScanReport) fail(s *Service, err error, msg string, fields map[string]interface{}) {
	r.Failures++
	s.log.Error().Err(err).Str("scan", r.Scan).Fields(fields).Msg(msg)
}

// CheckUpcomingTasks raises one INFO reminder per PENDING or SCHEDULED task
// starting tomorrow.
func (s *Service) CheckUpcomingTasks(ctx context.Context) (*ScanReport, error) {
	report := &ScanReport{Scan: "upcoming_tasks"}
	tomorrow := s.today().AddDate(0, 0, 1)
	dayAfter := tomorrow.AddDate(0, 0, 1)

	tasks, err := s.store.Tasks().ListStartingBetween(ctx, tomorrow, dayAfter,
		[]models.TaskStatus{models.TaskPending, models.TaskScheduled})
	if err != nil {
		return report, s.storeErr(err, "list upcoming tasks", nil)
	}

	for i := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		task := &tasks[i]
		report.Processed++
		_, err := s.CreateAlert(ctx, task.UserID, AlertInput{
			TaskID:    &task.ID,
			AlertType: models.AlertUpcomingTask,
			Severity:  models.SeverityInfo,
			Title:     "Task Starting Tomorrow",
			Message: fmt.Sprintf("Task %q is scheduled to start tomorrow at %s",
				task.Title, task.StartDate.In(s.loc).Format("3:04 PM")),
		})
		if err != nil {
			report.fail(s, err, "upcoming task alert failed", map[string]interface{}{
				"user_id": task.UserID, "task_id": task.ID,
			})
			continue
		}
		report.AlertsCreated++
	}
	return report, nil
}

// PredictLaborShortages runs the trend analysis for every farmer and raises
// a WARNING on a predicted shortage or an INFO on a predicted surplus.
func (s *Service) PredictLaborShortages(ctx context.Context) (*ScanReport, error) {
	report := &ScanReport{Scan: "labor_prediction"}
	users, err := s.store.Users().ListByRole(ctx, models.RoleFarmer)
	if err != nil {
		return report, s.storeErr(err, "list farmers", nil)
	}

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++
		fields := map[string]interface{}{"user_id": user.ID}

		p, err := s.AnalyzeLaborTrends(ctx, user.ID)
		if err != nil {
			report.fail(s, err, "trend analysis failed", fields)
			continue
		}

		var in AlertInput
		switch {
		case p.Shortage:
			in = AlertInput{
				AlertType: models.AlertLaborShortage,
				Severity:  models.SeverityWarning,
				Title:     "Predicted Labor Shortage",
				Message: fmt.Sprintf("Based on historical data, you may need %d more workers in the coming week.",
					p.RequiredWorkers-p.PredictedWorkers),
				ActionRequired: true,
				Metadata:       p.Metadata(),
			}
		case p.Surplus:
			in = AlertInput{
				AlertType: models.AlertLaborSurplus,
				Severity:  models.SeverityInfo,
				Title:     "Labor Surplus Detected",
				Message:   fmt.Sprintf("You may have %d excess workers scheduled.", p.PredictedWorkers-p.RequiredWorkers),
				Metadata:  p.Metadata(),
			}
		default:
			continue
		}

		if _, err := s.CreateAlert(ctx, user.ID, in); err != nil {
			report.fail(s, err, "prediction alert failed", fields)
			continue
		}
		report.AlertsCreated++
	}
	return report, nil
}

type overtimeTotal struct {
	worker *models.Worker
	hours  float64
}

// CheckOvertimeWarnings sums the past week's overtime of completed shifts
// per worker and warns the owner of every worker above 10 hours.
func (s *Service) CheckOvertimeWarnings(ctx context.Context) (*ScanReport, error) {
	report := &ScanReport{Scan: "overtime_audit"}
	today := s.today()

	shifts, err := s.store.Shifts().ListCompletedWithOvertime(ctx, today.AddDate(0, 0, -7), today)
	if err != nil {
		return report, s.storeErr(err, "list overtime shifts", nil)
	}

	totals := make(map[string]*overtimeTotal)
	for i := range shifts {
		sh := &shifts[i]
		t, ok := totals[sh.WorkerID]
		if !ok {
			t = &overtimeTotal{worker: sh.Worker}
			totals[sh.WorkerID] = t
		}
		t.hours += sh.OvertimeHours
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		t := totals[id]
		report.Processed++
		if t.hours <= overtimeWarningHours {
			continue
		}
		fields := map[string]interface{}{"worker_id": id}
		if t.worker == nil {
			report.fail(s, ErrNotFound, "overtime shift without worker", fields)
			continue
		}

		_, err := s.CreateAlert(ctx, t.worker.UserID, AlertInput{
			AlertType: models.AlertOvertimeWarning,
			Severity:  models.SeverityWarning,
			Title:     "Excessive Overtime Detected",
			Message: fmt.Sprintf("Worker %s has worked %.1f overtime hours this week.",
				t.worker.FullName(), t.hours),
			Metadata: map[string]interface{}{
				"worker_id":      id,
				"total_overtime": t.hours,
			},
		})
		if err != nil {
			fields["user_id"] = t.worker.UserID
			report.fail(s, err, "overtime alert failed", fields)
			continue
		}
		report.AlertsCreated++
	}
	return report, nil
}
