package scheduler

import (
	"fmt"
	"math"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

const integralTolerance = 1e-6

// Decode 将求解器给出的 0/1 取值还原为每个员工的班表。
// 取值与 0 或 1 的差超过容差时返回 ErrNonIntegralSolution，不做四舍五入。
func Decode(values []float64, index VarIndex, prefs *PreferenceMatrix, remaining []float64, hours *domain.ShiftHours, names []string) (*domain.Schedule, error) {
	if len(values) != index.Len() {
		return nil, fmt.Errorf("%w: 得到 %d 个取值，应为 %d 个", ErrNonIntegralSolution, len(values), index.Len())
	}

	schedule := &domain.Schedule{
		Days:    index.Days,
		Shifts:  index.Shifts,
		Workers: make([]domain.WorkerSchedule, index.Workers),
	}

	for i := 0; i < index.Workers; i++ {
		ws := domain.WorkerSchedule{
			Assignments:    make([]domain.Assignment, 0),
			RemainingHours: remaining[i],
		}
		if i < len(names) {
			ws.Worker = names[i]
		}

		for d := 0; d < index.Days; d++ {
			for s := 0; s < index.Shifts; s++ {
				day, shift := domain.Day(d), domain.Shift(s)
				v := values[index.Of(i, day, shift)]

				switch {
				case math.Abs(v) <= integralTolerance:
					continue
				case math.Abs(v-1) <= integralTolerance:
				default:
					return nil, fmt.Errorf("%w: p_%d_%d_%d = %v", ErrNonIntegralSolution, i, d, s, v)
				}

				h := hours.Hours(day, shift)
				ws.Assignments = append(ws.Assignments, domain.Assignment{
					Day:       day,
					Shift:     shift,
					Hours:     h,
					Preferred: prefs.At(i, day, shift),
				})
				ws.HoursWorked += h
			}
		}

		ws.NewRemainingHours = ws.RemainingHours - ws.HoursWorked
		schedule.Workers[i] = ws
	}

	return schedule, nil
}
