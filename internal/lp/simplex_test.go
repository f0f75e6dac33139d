package lp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolveStandardForm(t *testing.T) {
	t.Run("terminates on a cycling-prone degenerate problem", func(t *testing.T) {
		// Beale 的退化例子，列顺序为 x4 x5 x6 x7 s1 s2 s3
		A := mat.NewDense(3, 7, []float64{
			0.25, -8, -1, 9, 1, 0, 0,
			0.5, -12, -0.5, 3, 0, 1, 0,
			0, 0, 1, 0, 0, 0, 1,
		})
		b := []float64{0, 0, 1}
		c := []float64{-0.75, 20, -0.5, 6, 0, 0, 0}

		y, err := solveStandardForm(c, A, b)

		require.NoError(t, err)
		require.InDelta(t, -1.25, mat.Dot(mat.NewVecDense(7, c), mat.NewVecDense(7, y)), 1e-9)
		require.InDelta(t, 1, y[0], 1e-9)
		require.InDelta(t, 1, y[2], 1e-9)
	})

	t.Run("reports infeasible equalities", func(t *testing.T) {
		A := mat.NewDense(2, 2, []float64{
			1, 1,
			1, 1,
		})

		_, err := solveStandardForm([]float64{1, 1}, A, []float64{1, 2})

		require.ErrorIs(t, err, errRelaxationInfeasible)
	})

	t.Run("keeps redundant equalities", func(t *testing.T) {
		A := mat.NewDense(2, 2, []float64{
			1, 1,
			2, 2,
		})

		y, err := solveStandardForm([]float64{1, 2}, A, []float64{1, 2})

		require.NoError(t, err)
		require.InDelta(t, 1, y[0], 1e-9)
		require.InDelta(t, 0, y[1], 1e-9)
	})

	t.Run("reports an unbounded problem", func(t *testing.T) {
		A := mat.NewDense(1, 2, []float64{1, -1})

		_, err := solveStandardForm([]float64{0, -1}, A, []float64{0})

		require.ErrorIs(t, err, errUnbounded)
	})
}

func TestBranchAndBound_Limits(t *testing.T) {
	// min -x - y  s.t. x + y <= 1.5，松弛解在根节点是小数
	halfKnapsack := func() *Model {
		m := NewModel()
		x := m.AddBinary("x")
		y := m.AddBinary("y")

		var e Expression
		e.Add(x, 1)
		e.Add(y, 1)
		m.AddConstraints(e.Leq(1.5))

		var obj Expression
		obj.Add(x, -1)
		obj.Add(y, -1)
		m.Minimize(obj)

		return m
	}

	t.Run("reports feasible when the node limit is hit after an incumbent", func(t *testing.T) {
		m := halfKnapsack()

		sol, err := (&BranchAndBound{MaxNodes: 2}).Solve(m)

		require.NoError(t, err)
		require.Equal(t, StatusFeasible, sol.Status)
		require.InDelta(t, -1, sol.Objective, 1e-6)
		require.True(t, m.Feasible(sol.Values, 1e-6))
	})

	t.Run("proves optimality without a limit", func(t *testing.T) {
		sol, err := NewBranchAndBound().Solve(halfKnapsack())

		require.NoError(t, err)
		require.Equal(t, StatusOptimal, sol.Status)
		require.InDelta(t, -1, sol.Objective, 1e-6)
	})

	t.Run("finishes a degenerate coverage model before the deadline", func(t *testing.T) {
		// 7 人 10 个时段，每个时段恰好一人，所有代价相同
		const people, slots = 7, 10
		m := NewModel()
		x := make([][]Variable, people)
		for i := range x {
			x[i] = make([]Variable, slots)
			for k := range x[i] {
				x[i][k] = m.AddBinary("x")
			}
		}

		var obj Expression
		for k := 0; k < slots; k++ {
			var cover Expression
			for i := 0; i < people; i++ {
				cover.Add(x[i][k], 1)
				obj.Add(x[i][k], 1)
			}
			m.AddConstraints(cover.Eq(1))
		}
		for i := 0; i < people; i++ {
			var load Expression
			for k := 0; k < slots; k++ {
				load.Add(x[i][k], 4)
			}
			m.AddConstraints(load.Geq(1), load.Leq(12))
		}
		m.Minimize(obj)

		type result struct {
			sol *Solution
			err error
		}
		done := make(chan result, 1)
		go func() {
			sol, err := NewBranchAndBound().Solve(m)
			done <- result{sol, err}
		}()

		select {
		case res := <-done:
			require.NoError(t, res.err)
			require.Equal(t, StatusOptimal, res.sol.Status)
			require.InDelta(t, slots, res.sol.Objective, 1e-6)
			require.True(t, m.Feasible(res.sol.Values, 1e-6))
		case <-time.After(10 * time.Second):
			t.Fatal("分支定界没有在期限内结束")
		}
	})
}
