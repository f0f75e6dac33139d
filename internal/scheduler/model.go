package scheduler

import (
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/lp"
)

// ConstraintKind 约束族，每一族都可以单独启用或关闭
type ConstraintKind string

const (
	ConstraintCoverage      ConstraintKind = "coverage"        // 每个班次恰好一人
	ConstraintHourBounds    ConstraintKind = "hour_bounds"     // 每人周期工时在 [min, max] 之间
	ConstraintNoDoubleShift ConstraintKind = "no_double_shift" // 每人每天最多一个班次
)

// 排班参数
type Parameters struct {
	MinHoursPerPeriod float64          // 每人最少工时
	MaxHoursPerPeriod float64          // 每人最多工时
	Constraints       []ConstraintKind // 启用的约束族
	Policy            FairnessPolicy   // 目标函数，为 nil 时使用 QuadraticDeficit
}

func DefaultParameters() *Parameters {
	return &Parameters{
		MinHoursPerPeriod: 1,
		MaxHoursPerPeriod: 12,
		Constraints:       []ConstraintKind{ConstraintCoverage, ConstraintHourBounds},
		Policy:            QuadraticDeficit{},
	}
}

func (p *Parameters) Enabled(kind ConstraintKind) bool {
	for _, k := range p.Constraints {
		if k == kind {
			return true
		}
	}
	return false
}

func (p *Parameters) policy() FairnessPolicy {
	if p.Policy == nil {
		return QuadraticDeficit{}
	}
	return p.Policy
}

// VarIndex 将 (worker, day, shift) 映射到一维下标，
// 偏好矩阵与决策变量使用同一个 VarIndex
type VarIndex struct {
	Workers int
	Days    int
	Shifts  int
}

func (x VarIndex) Len() int {
	return x.Workers * x.Days * x.Shifts
}

func (x VarIndex) Of(i int, d domain.Day, s domain.Shift) int {
	return (i*x.Days+int(d))*x.Shifts + int(s)
}

func (x VarIndex) Triple(k int) (int, domain.Day, domain.Shift) {
	s := k % x.Shifts
	k /= x.Shifts
	d := k % x.Days
	return k / x.Days, domain.Day(d), domain.Shift(s)
}

// PreferenceMatrix [worker][day][shift] 的布尔偏好，按 VarIndex 展平
type PreferenceMatrix struct {
	Index  VarIndex
	values []bool
}

func NewPreferenceMatrix(index VarIndex) *PreferenceMatrix {
	return &PreferenceMatrix{
		Index:  index,
		values: make([]bool, index.Len()),
	}
}

func (p *PreferenceMatrix) Set(i int, d domain.Day, s domain.Shift) {
	p.values[p.Index.Of(i, d, s)] = true
}

func (p *PreferenceMatrix) At(i int, d domain.Day, s domain.Shift) bool {
	return p.values[p.Index.Of(i, d, s)]
}

// ConstraintGroup 某一约束族生成的全部约束
type ConstraintGroup struct {
	Kind        ConstraintKind
	Constraints []lp.Constraint
}

// Formulation 是一次完整建模的结果：模型本身、变量下标以及各约束族
type Formulation struct {
	Model  *lp.Model
	Index  VarIndex
	Vars   []lp.Variable
	Groups []ConstraintGroup
}

func (f *Formulation) Var(i int, d domain.Day, s domain.Shift) lp.Variable {
	return f.Vars[f.Index.Of(i, d, s)]
}

func (f *Formulation) Group(kind ConstraintKind) *ConstraintGroup {
	for i := range f.Groups {
		if f.Groups[i].Kind == kind {
			return &f.Groups[i]
		}
	}
	return nil
}
