package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pivotEpsilon    = 1e-9
	phaseOneEpsilon = 1e-7

	// 连续退化迭代达到这个次数后改用 Bland 规则，之后不再切换回来
	degenerateRunLimit = 50
)

var (
	errUnbounded  = errors.New("lp: 松弛问题无界")
	errPivotLimit = errors.New("lp: 单纯形法迭代次数超过上限")
)

// tableau 是标准型 min c·y, A y = b, y >= 0 (b >= 0) 的单纯形表。
// 前 rows 行是约束，最后一行是检验数；最后一列是右端项。
type tableau struct {
	t      *mat.Dense
	rows   int
	cols   int // 原变量列数 + 人工变量列数
	basis  []int
	barred []bool

	bland     bool
	degRun    int
	pivots    int
	maxPivots int
}

func (tb *tableau) row(r int) []float64 {
	return tb.t.RawRowView(r)
}

func (tb *tableau) objective() []float64 {
	return tb.t.RawRowView(tb.rows)
}

func (tb *tableau) pivot(r, j int) {
	pr := tb.row(r)
	floats.Scale(1/pr[j], pr)
	pr[j] = 1

	for i := 0; i <= tb.rows; i++ {
		if i == r {
			continue
		}
		ri := tb.t.RawRowView(i)
		if f := ri[j]; f != 0 {
			floats.AddScaled(ri, -f, pr)
			ri[j] = 0
		}
		// 舍入误差不能让右端项变成负数
		if i < tb.rows && ri[tb.cols] < 0 && ri[tb.cols] > -pivotEpsilon {
			ri[tb.cols] = 0
		}
	}

	tb.basis[r] = j
}

// entering 返回入基列，没有负检验数时返回 -1
func (tb *tableau) entering() int {
	obj := tb.objective()
	chosen := -1
	most := -pivotEpsilon

	for j := 0; j < tb.cols; j++ {
		if tb.barred[j] || obj[j] >= -pivotEpsilon {
			continue
		}
		if tb.bland {
			return j
		}
		if obj[j] < most {
			most = obj[j]
			chosen = j
		}
	}

	return chosen
}

// leaving 按最小比值选出基行，比值相同时取基变量下标最小的行
func (tb *tableau) leaving(j int) (int, float64) {
	chosen := -1
	best := math.Inf(1)

	for r := 0; r < tb.rows; r++ {
		row := tb.row(r)
		a := row[j]
		if a <= pivotEpsilon {
			continue
		}
		ratio := row[tb.cols] / a
		switch {
		case ratio < best-pivotEpsilon:
			chosen, best = r, ratio
		case ratio <= best+pivotEpsilon && tb.basis[r] < tb.basis[chosen]:
			chosen = r
		}
	}

	return chosen, best
}

func (tb *tableau) run() error {
	for {
		j := tb.entering()
		if j < 0 {
			return nil
		}

		r, ratio := tb.leaving(j)
		if r < 0 {
			return errUnbounded
		}

		if ratio <= pivotEpsilon {
			tb.degRun++
			if tb.degRun >= degenerateRunLimit {
				tb.bland = true
			}
		} else {
			tb.degRun = 0
		}

		tb.pivot(r, j)

		tb.pivots++
		if tb.pivots > tb.maxPivots {
			return errPivotLimit
		}
	}
}

// unitColumns 找出可以直接作为初始基的列：该列只有一个非零元且等于 1
func unitColumns(A *mat.Dense) []int {
	m, n := A.Dims()
	basis := make([]int, m)
	for r := range basis {
		basis[r] = -1
	}

	for j := 0; j < n; j++ {
		at, count := -1, 0
		for r := 0; r < m && count < 2; r++ {
			if v := A.At(r, j); v != 0 {
				at = r
				count++
			}
		}
		if count == 1 && A.At(at, j) == 1 && basis[at] < 0 {
			basis[at] = j
		}
	}

	return basis
}

// solveStandardForm 两阶段单纯形法。b 必须非负。
// 无可行解时返回 errRelaxationInfeasible。
func solveStandardForm(c []float64, A *mat.Dense, b []float64) ([]float64, error) {
	m, n := A.Dims()
	if len(c) != n || len(b) != m {
		return nil, fmt.Errorf("lp: 标准型维度不一致 (%d 行, %d 列, c=%d, b=%d)", m, n, len(c), len(b))
	}

	basis := unitColumns(A)
	artificials := 0
	for _, j := range basis {
		if j < 0 {
			artificials++
		}
	}

	cols := n + artificials
	tb := &tableau{
		t:         mat.NewDense(m+1, cols+1, nil),
		rows:      m,
		cols:      cols,
		basis:     basis,
		barred:    make([]bool, cols),
		maxPivots: 50 * (m + cols),
	}

	// 第一阶段：最小化人工变量之和
	obj := tb.objective()
	next := n
	for r := 0; r < m; r++ {
		row := tb.row(r)
		mat.Row(row[:n], r, A)
		row[cols] = b[r]
		if basis[r] >= 0 {
			continue
		}
		row[next] = 1
		basis[r] = next
		obj[next] = 1
		next++
	}
	for r := 0; r < m; r++ {
		if basis[r] >= n {
			floats.AddScaled(obj, -1, tb.row(r))
		}
	}

	if artificials > 0 {
		if err := tb.run(); err != nil {
			return nil, err
		}
		if -obj[cols] > phaseOneEpsilon {
			return nil, errRelaxationInfeasible
		}

		// 把仍在基中的人工变量换出；整行为零说明该约束冗余
		for r := 0; r < m; r++ {
			if basis[r] < n {
				continue
			}
			row := tb.row(r)
			for j := 0; j < n; j++ {
				if math.Abs(row[j]) > pivotEpsilon {
					tb.pivot(r, j)
					break
				}
			}
		}
		for j := n; j < cols; j++ {
			tb.barred[j] = true
		}
	}

	// 第二阶段：按原目标重新计算检验数
	for j := range obj {
		obj[j] = 0
	}
	copy(obj, c)
	for r := 0; r < m; r++ {
		if k := basis[r]; k < n && c[k] != 0 {
			floats.AddScaled(obj, -c[k], tb.row(r))
		}
	}

	if err := tb.run(); err != nil {
		return nil, err
	}

	y := make([]float64, n)
	for r := 0; r < m; r++ {
		if k := basis[r]; k < n {
			y[k] = math.Max(0, tb.row(r)[cols])
		}
	}

	return y, nil
}
