package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/lp"
)

func TestBuildModel(t *testing.T) {
	hours := domain.DefaultShiftHours()
	workers := []domain.Worker{
		domain.NewWorker("Andrea Bonvissuto", domain.Preference{Day: domain.Monday, Shift: domain.Morning}),
		domain.NewWorker("Luca De Candia"),
		domain.NewWorker("Domenico Elia"),
	}
	prefs, remaining, err := ExtractPreferences(workers, hours.Days(), hours.Shifts())
	require.NoError(t, err)

	t.Run("creates one variable per worker, day and shift", func(t *testing.T) {
		f, err := BuildModel(DefaultParameters(), hours, prefs, remaining, nil)
		require.NoError(t, err)
		assert.Equal(t, 3*5*2, f.Model.NumVariables())
		assert.Len(t, f.Vars, 3*5*2)

		for k, v := range f.Vars {
			assert.Equal(t, k, v.ID())
			def := f.Model.Variable(v)
			assert.True(t, def.Integer)
			assert.Equal(t, 0.0, def.Lower)
			assert.Equal(t, 1.0, def.Upper)
		}
	})

	t.Run("names variables after their triple and label", func(t *testing.T) {
		f, err := BuildModel(DefaultParameters(), hours, prefs, remaining, []string{"AB", "LDC", ""})
		require.NoError(t, err)
		assert.Equal(t, "p_0_0_0_AB", f.Model.Variable(f.Var(0, domain.Monday, domain.Morning)).Name)
		assert.Equal(t, "p_1_4_1_LDC", f.Model.Variable(f.Var(1, domain.Friday, domain.Afternoon)).Name)
		assert.Equal(t, "p_2_2_0", f.Model.Variable(f.Var(2, domain.Wednesday, domain.Morning)).Name)
	})

	t.Run("builds only the enabled constraint groups", func(t *testing.T) {
		f, err := BuildModel(DefaultParameters(), hours, prefs, remaining, nil)
		require.NoError(t, err)
		require.Len(t, f.Groups, 2)
		assert.Len(t, f.Group(ConstraintCoverage).Constraints, 5*2)
		assert.Len(t, f.Group(ConstraintHourBounds).Constraints, 2*3)
		assert.Nil(t, f.Group(ConstraintNoDoubleShift))
		assert.Len(t, f.Model.Constraints(), 5*2+2*3)

		p := DefaultParameters()
		p.Constraints = append(p.Constraints, ConstraintNoDoubleShift, ConstraintCoverage)
		f, err = BuildModel(p, hours, prefs, remaining, nil)
		require.NoError(t, err)
		require.Len(t, f.Groups, 3)
		assert.Len(t, f.Group(ConstraintNoDoubleShift).Constraints, 3*5)
		for _, c := range f.Group(ConstraintNoDoubleShift).Constraints {
			assert.Equal(t, lp.LessEq, c.Sense)
			assert.Equal(t, 1.0, c.RHS)
		}
	})

	t.Run("coverage rows sum every worker with unit coefficients", func(t *testing.T) {
		f, err := BuildModel(DefaultParameters(), hours, prefs, remaining, nil)
		require.NoError(t, err)

		c := f.Group(ConstraintCoverage).Constraints[3]
		assert.Equal(t, lp.Equal, c.Sense)
		assert.Equal(t, 1.0, c.RHS)
		coefs := c.Expr.Coefficients(f.Model.NumVariables())
		for i := 0; i < 3; i++ {
			assert.Equal(t, 1.0, coefs[f.Index.Of(i, domain.Tuesday, domain.Afternoon)])
		}
	})

	t.Run("hour bound rows weight variables by shift hours", func(t *testing.T) {
		f, err := BuildModel(DefaultParameters(), hours, prefs, remaining, nil)
		require.NoError(t, err)

		group := f.Group(ConstraintHourBounds).Constraints
		min, max := group[0], group[1]
		assert.Equal(t, lp.GreaterEq, min.Sense)
		assert.Equal(t, 1.0, min.RHS)
		assert.Equal(t, lp.LessEq, max.Sense)
		assert.Equal(t, 12.0, max.RHS)

		coefs := max.Expr.Coefficients(f.Model.NumVariables())
		assert.Equal(t, 5.0, coefs[f.Index.Of(0, domain.Friday, domain.Afternoon)])
		assert.Equal(t, 0.0, coefs[f.Index.Of(1, domain.Friday, domain.Afternoon)])
	})

	t.Run("builds independent models on every call", func(t *testing.T) {
		a, err := BuildModel(DefaultParameters(), hours, prefs, remaining, nil)
		require.NoError(t, err)
		b, err := BuildModel(DefaultParameters(), hours, prefs, remaining, nil)
		require.NoError(t, err)
		assert.NotSame(t, a.Model, b.Model)
		assert.Equal(t, a.Model.Constraints(), b.Model.Constraints())
	})

	t.Run("rejects mismatched dimensions", func(t *testing.T) {
		_, err := BuildModel(DefaultParameters(), hours, prefs, remaining[:2], nil)
		require.ErrorIs(t, err, ErrInvalidParameters)

		_, err = BuildModel(DefaultParameters(), hours, prefs, remaining, []string{"AB"})
		require.ErrorIs(t, err, ErrInvalidParameters)

		small := mustHours(t, [][]float64{{4}})
		_, err = BuildModel(DefaultParameters(), small, prefs, remaining, nil)
		require.ErrorIs(t, err, ErrInvalidParameters)
	})
}

func TestPolicies(t *testing.T) {
	hours := mustHours(t, [][]float64{{4, 6}})
	workers := []domain.Worker{
		worker("a", 10, 0, domain.Preference{Day: domain.Monday, Shift: domain.Afternoon}),
		worker("b", 20, 18),
	}
	prefs, remaining, err := ExtractPreferences(workers, 1, 2)
	require.NoError(t, err)

	t.Run("quadratic deficit weights preferred hours by remaining hours", func(t *testing.T) {
		p := DefaultParameters()
		f, err := BuildModel(p, hours, prefs, remaining, nil)
		require.NoError(t, err)

		obj := f.Model.Objective()
		assert.Equal(t, 10.0*10+2*2, obj.Constant)
		coefs := obj.Coefficients(f.Model.NumVariables())
		assert.Equal(t, -10.0*6, coefs[f.Index.Of(0, domain.Monday, domain.Afternoon)])
		assert.Equal(t, 0.0, coefs[f.Index.Of(0, domain.Monday, domain.Morning)])
		assert.Equal(t, 0.0, coefs[f.Index.Of(1, domain.Monday, domain.Afternoon)])
	})

	t.Run("preferred hours drops the outer weight", func(t *testing.T) {
		p := DefaultParameters()
		p.Policy = PreferredHours{}
		f, err := BuildModel(p, hours, prefs, remaining, nil)
		require.NoError(t, err)

		obj := f.Model.Objective()
		assert.Equal(t, 12.0, obj.Constant)
		coefs := obj.Coefficients(f.Model.NumVariables())
		assert.Equal(t, -6.0, coefs[f.Index.Of(0, domain.Monday, domain.Afternoon)])
	})

	t.Run("negative remaining hours are tolerated", func(t *testing.T) {
		over := []domain.Worker{worker("over", 10, 30, domain.Preference{Day: domain.Monday, Shift: domain.Morning})}
		prefs, remaining, err := ExtractPreferences(over, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []float64{-20}, remaining)

		f, err := BuildModel(DefaultParameters(), hours, prefs, remaining, nil)
		require.NoError(t, err)
		coefs := f.Model.Objective().Coefficients(f.Model.NumVariables())
		assert.Equal(t, 80.0, coefs[f.Index.Of(0, domain.Monday, domain.Morning)])
	})

	t.Run("looks up policies by name", func(t *testing.T) {
		p, ok := PolicyByName("")
		require.True(t, ok)
		assert.Equal(t, "quadratic-deficit", p.Name())

		p, ok = PolicyByName("preferred-hours")
		require.True(t, ok)
		assert.Equal(t, PreferredHours{}, p)

		_, ok = PolicyByName("max-min")
		assert.False(t, ok)
	})
}

func TestExtractPreferences(t *testing.T) {
	t.Run("round trips the preference set", func(t *testing.T) {
		set := []domain.Preference{
			{Day: domain.Monday, Shift: domain.Morning},
			{Day: domain.Wednesday, Shift: domain.Afternoon},
			{Day: domain.Friday, Shift: domain.Morning},
			{Day: domain.Friday, Shift: domain.Morning},
		}
		workers := []domain.Worker{domain.NewWorker("x"), domain.NewWorker("y", set...)}

		prefs, _, err := ExtractPreferences(workers, domain.DaysPerWeek, domain.ShiftsPerDay)
		require.NoError(t, err)

		for d := domain.Monday; d <= domain.Friday; d++ {
			for s := domain.Morning; s <= domain.Afternoon; s++ {
				assert.False(t, prefs.At(0, d, s))
				assert.Equal(t, workers[1].Prefers(d, s), prefs.At(1, d, s), "%s %s", d, s)
			}
		}
	})

	t.Run("computes remaining hours", func(t *testing.T) {
		workers := []domain.Worker{worker("x", 150, 30), worker("y", 100, 0)}
		_, remaining, err := ExtractPreferences(workers, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, []float64{120, 100}, remaining)
	})

	t.Run("rejects negative and out of range indices", func(t *testing.T) {
		for _, p := range []domain.Preference{
			{Day: 7, Shift: domain.Morning},
			{Day: -1, Shift: domain.Morning},
			{Day: domain.Monday, Shift: 2},
		} {
			_, _, err := ExtractPreferences([]domain.Worker{domain.NewWorker("x", p)}, 5, 2)
			require.ErrorIs(t, err, ErrInvalidPreference)
		}
	})
}

func TestDecode(t *testing.T) {
	hours := mustHours(t, [][]float64{{4, 6}, {4, 5}})
	workers := []domain.Worker{
		domain.NewWorker("a", domain.Preference{Day: domain.Monday, Shift: domain.Afternoon}),
		worker("b", 20, 5),
	}
	prefs, remaining, err := ExtractPreferences(workers, 2, 2)
	require.NoError(t, err)
	index := prefs.Index
	names := []string{"a", "b"}

	values := make([]float64, index.Len())
	values[index.Of(0, domain.Monday, domain.Afternoon)] = 1
	values[index.Of(0, domain.Tuesday, domain.Afternoon)] = 1
	values[index.Of(1, domain.Monday, domain.Morning)] = 1
	values[index.Of(1, domain.Tuesday, domain.Morning)] = 1

	t.Run("sums hours and new remaining hours", func(t *testing.T) {
		schedule, err := Decode(values, index, prefs, remaining, hours, names)
		require.NoError(t, err)

		a, b := schedule.Workers[0], schedule.Workers[1]
		assert.Equal(t, 11.0, a.HoursWorked)
		assert.Equal(t, 139.0, a.NewRemainingHours)
		assert.Equal(t, 8.0, b.HoursWorked)
		assert.Equal(t, 15.0, b.RemainingHours)
		assert.Equal(t, 7.0, b.NewRemainingHours)

		require.Len(t, a.Assignments, 2)
		assert.True(t, a.Assignments[0].Preferred)
		assert.False(t, a.Assignments[1].Preferred)
	})

	t.Run("is idempotent", func(t *testing.T) {
		first, err := Decode(values, index, prefs, remaining, hours, names)
		require.NoError(t, err)
		second, err := Decode(values, index, prefs, remaining, hours, names)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects values away from 0 and 1", func(t *testing.T) {
		bad := append([]float64(nil), values...)
		bad[index.Of(1, domain.Tuesday, domain.Afternoon)] = 0.999
		_, err := Decode(bad, index, prefs, remaining, hours, names)
		require.ErrorIs(t, err, ErrNonIntegralSolution)
		assert.Contains(t, err.Error(), "p_1_1_1")
	})
}
