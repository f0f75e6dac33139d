package lp

type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Solution 中 Values 按变量下标排列；Status 为 StatusInfeasible 时 Values 为空
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
}

func (s *Solution) Value(v Variable) float64 {
	return s.Values[v.id]
}

// Solver 是整数规划求解器的边界。返回 error 表示求解器自身失败，
// 无可行解通过 StatusInfeasible 表达。
type Solver interface {
	Solve(m *Model) (*Solution, error)
}
