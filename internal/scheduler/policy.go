package scheduler

import (
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/lp"
)

// FairnessPolicy 决定目标函数（最小化）的具体形式。
// 不同的公平性度量都只是启发式，没有严格的公平性保证。
type FairnessPolicy interface {
	Name() string
	Objective(f *Formulation, prefs *PreferenceMatrix, remaining []float64, hours *domain.ShiftHours) lp.Expression
}

// preferredHours 返回员工 i 在其偏好班次上的工时表达式
func preferredHours(f *Formulation, prefs *PreferenceMatrix, hours *domain.ShiftHours, i int) lp.Expression {
	var e lp.Expression
	for d := 0; d < f.Index.Days; d++ {
		for s := 0; s < f.Index.Shifts; s++ {
			day, shift := domain.Day(d), domain.Shift(s)
			if prefs.At(i, day, shift) {
				e.Add(f.Var(i, day, shift), hours.Hours(day, shift))
			}
		}
	}
	return e
}

// QuadraticDeficit: min Σ_i rem_i * (rem_i - preferred_i)
// 外层的 rem_i 让剩余工时越多的人越优先被排进自己偏好的班次
type QuadraticDeficit struct{}

func (QuadraticDeficit) Name() string {
	return "quadratic-deficit"
}

func (QuadraticDeficit) Objective(f *Formulation, prefs *PreferenceMatrix, remaining []float64, hours *domain.ShiftHours) lp.Expression {
	var obj lp.Expression
	for i := 0; i < f.Index.Workers; i++ {
		var deficit lp.Expression
		deficit.AddConstant(remaining[i])
		deficit.AddExpression(preferredHours(f, prefs, hours, i), -1)

		obj.AddExpression(deficit, remaining[i])
	}
	return obj
}

// PreferredHours: min Σ_i (rem_i - preferred_i)，只奖励偏好匹配，不区分欠缺工时的多少
type PreferredHours struct{}

func (PreferredHours) Name() string {
	return "preferred-hours"
}

func (PreferredHours) Objective(f *Formulation, prefs *PreferenceMatrix, remaining []float64, hours *domain.ShiftHours) lp.Expression {
	var obj lp.Expression
	for i := 0; i < f.Index.Workers; i++ {
		obj.AddConstant(remaining[i])
		obj.AddExpression(preferredHours(f, prefs, hours, i), -1)
	}
	return obj
}

// PolicyByName 用于从配置或请求参数中选择目标函数
func PolicyByName(name string) (FairnessPolicy, bool) {
	switch name {
	case "", QuadraticDeficit{}.Name():
		return QuadraticDeficit{}, true
	case PreferredHours{}.Name():
		return PreferredHours{}, true
	default:
		return nil, false
	}
}
