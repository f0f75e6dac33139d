package scheduler

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/lp"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/utils"
)

// Scheduler 对一组员工做一次排班。每次 Schedule 都会重新建模，
// 但同一个 Scheduler 不应被多个 goroutine 同时使用
type Scheduler struct {
	parameters *Parameters
	hours      *domain.ShiftHours
	solver     lp.Solver

	names     []string
	labels    []string // 变量名后缀，取员工姓名缩写
	prefs     *PreferenceMatrix
	remaining []float64
}

func New(parameters *Parameters, workers []domain.Worker, hours *domain.ShiftHours, solver lp.Solver) (*Scheduler, error) {
	if err := validateParameters(parameters); err != nil {
		return nil, err
	}
	if hours == nil {
		return nil, fmt.Errorf("%w: 缺少班次工时表", ErrInvalidParameters)
	}

	prefs, remaining, err := ExtractPreferences(workers, hours.Days(), hours.Shifts())
	if err != nil {
		return nil, err
	}

	if solver == nil {
		solver = lp.NewBranchAndBound()
	}

	s := &Scheduler{
		parameters: parameters,
		hours:      hours,
		solver:     solver,
		names:      make([]string, len(workers)),
		labels:     make([]string, len(workers)),
		prefs:      prefs,
		remaining:  remaining,
	}

	for i, w := range workers {
		s.names[i] = w.Name
		s.labels[i] = utils.Acronym(w.Name)
	}

	return s, nil
}

func (s *Scheduler) Schedule() (*domain.Schedule, error) {
	f, err := BuildModel(s.parameters, s.hours, s.prefs, s.remaining, s.labels)
	if err != nil {
		return nil, err
	}

	sol, err := s.solver.Solve(f.Model)
	if err != nil {
		return nil, &EngineError{Message: err.Error()}
	}
	if sol == nil {
		return nil, &EngineError{Message: "求解器没有返回结果"}
	}

	var status domain.ScheduleStatus
	switch sol.Status {
	case lp.StatusInfeasible:
		s.logSolve(f, sol)
		return nil, ErrInfeasible
	case lp.StatusOptimal:
		status = domain.ScheduleOptimal
	case lp.StatusFeasible:
		status = domain.ScheduleFeasible
	default:
		return nil, &EngineError{Message: fmt.Sprintf("未知的求解状态 %d", sol.Status)}
	}

	// 变量按 VarIndex 顺序创建，变量 ID 与展平下标一致
	schedule, err := Decode(sol.Values, f.Index, s.prefs, s.remaining, s.hours, s.names)
	if err != nil {
		return nil, err
	}
	schedule.Objective = sol.Objective
	schedule.Status = status

	if err := s.verify(f, schedule); err != nil {
		return nil, err
	}

	s.logSolve(f, sol)

	return schedule, nil
}

func (s *Scheduler) logSolve(f *Formulation, sol *lp.Solution) {
	groups := make([]any, 0, len(f.Groups))
	for _, g := range f.Groups {
		groups = append(groups, slog.Int(string(g.Kind), len(g.Constraints)))
	}

	slog.Info("排班求解完成",
		"workers", f.Index.Workers,
		"variables", f.Model.NumVariables(),
		slog.Group("constraints", groups...),
		"status", sol.Status.String(),
		"objective", sol.Objective,
	)
}

// verify 再次检查解码后的班表是否满足启用的约束，求解器返回的解不可信时视为求解器错误
func (s *Scheduler) verify(f *Formulation, schedule *domain.Schedule) error {
	const tol = 1e-6

	if f.Group(ConstraintCoverage) != nil {
		for d := 0; d < schedule.Days; d++ {
			for sh := 0; sh < schedule.Shifts; sh++ {
				count := 0
				for i := range schedule.Workers {
					if schedule.Workers[i].Assigned(domain.Day(d), domain.Shift(sh)) {
						count++
					}
				}
				if count != 1 {
					return &EngineError{Message: fmt.Sprintf("班次 (%d, %d) 被安排了 %d 人", d, sh, count)}
				}
			}
		}
	}

	if f.Group(ConstraintHourBounds) != nil {
		for _, ws := range schedule.Workers {
			if ws.HoursWorked < s.parameters.MinHoursPerPeriod-tol || ws.HoursWorked > s.parameters.MaxHoursPerPeriod+tol {
				return &EngineError{Message: fmt.Sprintf("员工 %q 的工时 %v 不在 [%v, %v] 之间", ws.Worker, ws.HoursWorked, s.parameters.MinHoursPerPeriod, s.parameters.MaxHoursPerPeriod)}
			}
		}
	}

	if f.Group(ConstraintNoDoubleShift) != nil {
		for _, ws := range schedule.Workers {
			perDay := make(map[domain.Day]int)
			for _, a := range ws.Assignments {
				perDay[a.Day]++
				if perDay[a.Day] > 1 {
					return &EngineError{Message: fmt.Sprintf("员工 %q 在第 %d 天被安排了多个班次", ws.Worker, a.Day)}
				}
			}
		}
	}

	if math.IsNaN(schedule.Objective) {
		return &EngineError{Message: "目标函数值为 NaN"}
	}

	return nil
}

// Calc 构建、求解并解码一次排班
func Calc(parameters *Parameters, workers []domain.Worker, hours *domain.ShiftHours, solver lp.Solver) (*domain.Schedule, error) {
	s, err := New(parameters, workers, hours, solver)
	if err != nil {
		return nil, err
	}
	return s.Schedule()
}
