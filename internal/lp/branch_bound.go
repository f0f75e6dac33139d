package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	DefaultMaxNodes  = 100000
	DefaultTolerance = 1e-6
)

var errRelaxationInfeasible = errors.New("lp: 松弛问题无可行解")

// BranchAndBound 是默认的整数规划求解器：深度优先的分支定界，
// 每个节点的线性松弛用两阶段单纯形法求解
type BranchAndBound struct {
	MaxNodes  int     // <= 0 表示不限制
	Tolerance float64 // 整数性与约束满足的容差
}

func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{
		MaxNodes:  DefaultMaxNodes,
		Tolerance: DefaultTolerance,
	}
}

type node struct {
	lower []float64
	upper []float64
}

func (nd node) withLower(j int, v float64) node {
	child := node{lower: append([]float64(nil), nd.lower...), upper: nd.upper}
	child.lower[j] = v
	return child
}

func (nd node) withUpper(j int, v float64) node {
	child := node{lower: nd.lower, upper: append([]float64(nil), nd.upper...)}
	child.upper[j] = v
	return child
}

func (b *BranchAndBound) tolerance() float64 {
	if b.Tolerance <= 0 {
		return DefaultTolerance
	}
	return b.Tolerance
}

func (b *BranchAndBound) Solve(m *Model) (*Solution, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	tol := b.tolerance()
	n := m.NumVariables()
	objective := m.Objective()
	objCoefs := objective.Coefficients(n)

	root := node{lower: make([]float64, n), upper: make([]float64, n)}
	for j, def := range m.Variables() {
		root.lower[j], root.upper[j] = def.Lower, def.Upper
		if def.Integer {
			root.lower[j] = math.Ceil(def.Lower - tol)
			root.upper[j] = math.Floor(def.Upper + tol)
			if root.lower[j] > root.upper[j] {
				return &Solution{Status: StatusInfeasible}, nil
			}
		}
	}

	var best []float64
	bestObj := math.Inf(1)
	stack := []node{root}
	explored := 0
	limited := false

	for len(stack) > 0 {
		if b.MaxNodes > 0 && explored >= b.MaxNodes {
			limited = true
			break
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		explored++

		x, err := b.relax(m, objCoefs, nd.lower, nd.upper)
		if errors.Is(err, errRelaxationInfeasible) {
			continue
		}
		if err != nil {
			return nil, err
		}

		// 松弛问题的最优值是该子树的下界
		if best != nil && objective.Eval(x) >= bestObj-tol {
			continue
		}

		j := b.branchVariable(m, x)
		if j < 0 {
			for k, def := range m.Variables() {
				if def.Integer {
					x[k] = math.Round(x[k])
				}
			}
			best = x
			bestObj = objective.Eval(x)
			continue
		}

		floor := math.Floor(x[j])
		down := nd.withUpper(j, floor)
		up := nd.withLower(j, floor+1)

		// 后入栈的先被搜索，优先搜索离松弛解更近的一侧
		if x[j]-floor > 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	if best == nil {
		if limited {
			return nil, fmt.Errorf("lp: 搜索 %d 个节点后仍未找到可行解", explored)
		}
		return &Solution{Status: StatusInfeasible}, nil
	}

	status := StatusOptimal
	if limited {
		status = StatusFeasible
	}

	return &Solution{
		Status:    status,
		Values:    best,
		Objective: bestObj,
	}, nil
}

// branchVariable 返回小数部分最接近 0.5 的整数变量，全部为整数时返回 -1
func (b *BranchAndBound) branchVariable(m *Model, x []float64) int {
	tol := b.tolerance()
	chosen := -1
	bestDist := math.Inf(1)

	for j, def := range m.Variables() {
		if !def.Integer {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		if frac <= tol || frac >= 1-tol {
			continue
		}
		if dist := math.Abs(frac - 0.5); dist < bestDist {
			bestDist = dist
			chosen = j
		}
	}

	return chosen
}

type relaxedRow struct {
	coefs []float64 // 只包含自由变量的系数
	sense Sense
	rhs   float64
}

// relax 在给定边界下求解线性松弛。
// 令 x = lower + y，固定变量直接代入右端项，其余变量得到
//
//	A y (+/- s) = b,  y + t = upper - lower,  y, s, t >= 0
//
// 的标准型后交给 solveStandardForm。
func (b *BranchAndBound) relax(m *Model, objCoefs, lower, upper []float64) ([]float64, error) {
	tol := b.tolerance()
	n := m.NumVariables()

	x := append([]float64(nil), lower...)
	free := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if upper[j]-lower[j] > tol {
			free = append(free, j)
		}
	}

	rows := make([]relaxedRow, 0, len(m.Constraints()))
	slacks := 0
	for _, c := range m.Constraints() {
		coefs := c.Expr.Coefficients(n)
		rhs := c.RHS - c.Expr.Constant
		for j := 0; j < n; j++ {
			rhs -= coefs[j] * lower[j]
		}

		row := relaxedRow{coefs: make([]float64, len(free)), sense: c.Sense, rhs: rhs}
		nonzero := false
		for f, j := range free {
			row.coefs[f] = coefs[j]
			if coefs[j] != 0 {
				nonzero = true
			}
		}

		if !nonzero {
			// 约束中的变量都已固定
			if !c.Sense.Satisfied(0, rhs, tol) {
				return nil, errRelaxationInfeasible
			}
			continue
		}

		if c.Sense != Equal {
			slacks++
		}
		rows = append(rows, row)
	}

	nf := len(free)
	if nf == 0 {
		return x, nil
	}

	cols := 2*nf + slacks
	numRows := len(rows) + nf

	A := mat.NewDense(numRows, cols, nil)
	rhs := make([]float64, numRows)

	slack := 2 * nf
	for r, row := range rows {
		for f, coef := range row.coefs {
			A.Set(r, f, coef)
		}
		switch row.sense {
		case LessEq:
			A.Set(r, slack, 1)
			slack++
		case GreaterEq:
			A.Set(r, slack, -1)
			slack++
		}
		rhs[r] = row.rhs
	}

	for f, j := range free {
		r := len(rows) + f
		A.Set(r, f, 1)
		A.Set(r, nf+f, 1)
		rhs[r] = upper[j] - lower[j]
	}

	// 单纯形法要求右端项非负
	for r := 0; r < numRows; r++ {
		if rhs[r] < 0 {
			rhs[r] = -rhs[r]
			for k := 0; k < cols; k++ {
				A.Set(r, k, -A.At(r, k))
			}
		}
	}

	c := make([]float64, cols)
	for f, j := range free {
		c[f] = objCoefs[j]
	}

	y, err := solveStandardForm(c, A, rhs)
	if err != nil {
		switch {
		case errors.Is(err, errRelaxationInfeasible):
			return nil, err
		default:
			return nil, fmt.Errorf("lp: 单纯形法求解失败: %w", err)
		}
	}

	for f, j := range free {
		x[j] = lower[j] + y[f]
	}

	return x, nil
}
