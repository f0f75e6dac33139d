package scheduler

import (
	"fmt"
	"math"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/lp"
)

type constraintBuilder func(f *Formulation, params *Parameters, hours *domain.ShiftHours) []lp.Constraint

var constraintBuilders = map[ConstraintKind]constraintBuilder{
	ConstraintCoverage:      buildCoverage,
	ConstraintHourBounds:    buildHourBounds,
	ConstraintNoDoubleShift: buildNoDoubleShift,
}

func validateParameters(params *Parameters) error {
	if params == nil {
		return fmt.Errorf("%w: 缺少排班参数", ErrInvalidParameters)
	}
	if math.IsNaN(params.MinHoursPerPeriod) || math.IsNaN(params.MaxHoursPerPeriod) {
		return fmt.Errorf("%w: 工时上下限不能为 NaN", ErrInvalidParameters)
	}
	if params.MinHoursPerPeriod > params.MaxHoursPerPeriod {
		return fmt.Errorf("%w: 最少工时 %v 大于最多工时 %v", ErrInvalidParameters, params.MinHoursPerPeriod, params.MaxHoursPerPeriod)
	}
	for _, kind := range params.Constraints {
		if _, ok := constraintBuilders[kind]; !ok {
			return fmt.Errorf("%w: 未知的约束类型 %q", ErrInvalidParameters, kind)
		}
	}
	return nil
}

// BuildModel 一次性构建完整的模型：变量、所有启用的约束族以及目标函数。
// 不修改任何入参，多次调用得到互相独立的模型。
func BuildModel(params *Parameters, hours *domain.ShiftHours, prefs *PreferenceMatrix, remaining []float64, labels []string) (*Formulation, error) {
	if err := validateParameters(params); err != nil {
		return nil, err
	}

	index := prefs.Index
	if index.Days != hours.Days() || index.Shifts != hours.Shifts() {
		return nil, fmt.Errorf("%w: 偏好矩阵 %dx%d 与工时表 %dx%d 不一致", ErrInvalidParameters, index.Days, index.Shifts, hours.Days(), hours.Shifts())
	}
	if len(remaining) != index.Workers {
		return nil, fmt.Errorf("%w: 剩余工时数量 %d 与员工数量 %d 不一致", ErrInvalidParameters, len(remaining), index.Workers)
	}
	if labels != nil && len(labels) != index.Workers {
		return nil, fmt.Errorf("%w: 变量标签数量 %d 与员工数量 %d 不一致", ErrInvalidParameters, len(labels), index.Workers)
	}

	f := &Formulation{
		Model: lp.NewModel(),
		Index: index,
		Vars:  make([]lp.Variable, index.Len()),
	}

	// 决策变量 p_i_d_s：员工 i 是否负责第 d 天的第 s 个班次
	for k := range f.Vars {
		i, d, s := index.Triple(k)
		name := fmt.Sprintf("p_%d_%d_%d", i, d, s)
		if labels != nil && labels[i] != "" {
			name += "_" + labels[i]
		}
		f.Vars[k] = f.Model.AddBinary(name)
	}

	seen := make(map[ConstraintKind]bool)
	for _, kind := range params.Constraints {
		if seen[kind] {
			continue
		}
		seen[kind] = true

		group := ConstraintGroup{
			Kind:        kind,
			Constraints: constraintBuilders[kind](f, params, hours),
		}
		f.Groups = append(f.Groups, group)
		f.Model.AddConstraints(group.Constraints...)
	}

	f.Model.Minimize(params.policy().Objective(f, prefs, remaining, hours))

	return f, nil
}

// 每个 (day, shift) 恰好由一人负责
func buildCoverage(f *Formulation, _ *Parameters, _ *domain.ShiftHours) []lp.Constraint {
	cs := make([]lp.Constraint, 0, f.Index.Days*f.Index.Shifts)
	for d := 0; d < f.Index.Days; d++ {
		for s := 0; s < f.Index.Shifts; s++ {
			var e lp.Expression
			for i := 0; i < f.Index.Workers; i++ {
				e.Add(f.Var(i, domain.Day(d), domain.Shift(s)), 1)
			}
			cs = append(cs, e.Eq(1).Named(fmt.Sprintf("coverage_%d_%d", d, s)))
		}
	}
	return cs
}

// min <= Σ hours(d, s) * p_i_d_s <= max
func buildHourBounds(f *Formulation, params *Parameters, hours *domain.ShiftHours) []lp.Constraint {
	cs := make([]lp.Constraint, 0, 2*f.Index.Workers)
	for i := 0; i < f.Index.Workers; i++ {
		var e lp.Expression
		for d := 0; d < f.Index.Days; d++ {
			for s := 0; s < f.Index.Shifts; s++ {
				day, shift := domain.Day(d), domain.Shift(s)
				e.Add(f.Var(i, day, shift), hours.Hours(day, shift))
			}
		}
		cs = append(cs,
			e.Geq(params.MinHoursPerPeriod).Named(fmt.Sprintf("min_hours_%d", i)),
			e.Leq(params.MaxHoursPerPeriod).Named(fmt.Sprintf("max_hours_%d", i)),
		)
	}
	return cs
}

// 每人每天最多一个班次
func buildNoDoubleShift(f *Formulation, _ *Parameters, _ *domain.ShiftHours) []lp.Constraint {
	cs := make([]lp.Constraint, 0, f.Index.Workers*f.Index.Days)
	for i := 0; i < f.Index.Workers; i++ {
		for d := 0; d < f.Index.Days; d++ {
			var e lp.Expression
			for s := 0; s < f.Index.Shifts; s++ {
				e.Add(f.Var(i, domain.Day(d), domain.Shift(s)), 1)
			}
			cs = append(cs, e.Leq(1).Named(fmt.Sprintf("no_double_shift_%d_%d", i, d)))
		}
	}
	return cs
}
