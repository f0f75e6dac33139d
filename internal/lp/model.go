// Package lp 描述交给整数规划求解器的模型：变量、线性约束以及最小化目标函数。
package lp

import (
	"fmt"
	"math"
)

// Variable 只是模型中变量的下标，可以随意拷贝
type Variable struct {
	id int
}

func (v Variable) ID() int {
	return v.id
}

type VariableDefinition struct {
	Name    string
	Lower   float64
	Upper   float64
	Integer bool
}

type Term struct {
	Var  Variable
	Coef float64
}

// Expression 表示 Σ coef*x + constant
type Expression struct {
	Terms    []Term
	Constant float64
}

func (e *Expression) Add(v Variable, coef float64) {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
}

func (e *Expression) AddConstant(c float64) {
	e.Constant += c
}

// AddExpression 把 other*factor 累加到 e 上
func (e *Expression) AddExpression(other Expression, factor float64) {
	for _, t := range other.Terms {
		e.Terms = append(e.Terms, Term{Var: t.Var, Coef: t.Coef * factor})
	}
	e.Constant += other.Constant * factor
}

func (e Expression) Eval(values []float64) float64 {
	sum := e.Constant
	for _, t := range e.Terms {
		sum += t.Coef * values[t.Var.id]
	}
	return sum
}

// Coefficients 合并同一变量的系数，返回长度为 n 的稠密向量
func (e Expression) Coefficients(n int) []float64 {
	coefs := make([]float64, n)
	for _, t := range e.Terms {
		coefs[t.Var.id] += t.Coef
	}
	return coefs
}

type Sense int

const (
	LessEq Sense = iota
	Equal
	GreaterEq
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case Equal:
		return "="
	case GreaterEq:
		return ">="
	default:
		return "?"
	}
}

// Satisfied 判断 lhs (sense) rhs 是否在容差内成立
func (s Sense) Satisfied(lhs, rhs, tol float64) bool {
	switch s {
	case LessEq:
		return lhs <= rhs+tol
	case Equal:
		return math.Abs(lhs-rhs) <= tol
	case GreaterEq:
		return lhs >= rhs-tol
	default:
		return false
	}
}

type Constraint struct {
	Name  string
	Expr  Expression
	Sense Sense
	RHS   float64
}

func (e Expression) Leq(rhs float64) Constraint {
	return Constraint{Expr: e, Sense: LessEq, RHS: rhs}
}

func (e Expression) Eq(rhs float64) Constraint {
	return Constraint{Expr: e, Sense: Equal, RHS: rhs}
}

func (e Expression) Geq(rhs float64) Constraint {
	return Constraint{Expr: e, Sense: GreaterEq, RHS: rhs}
}

func (c Constraint) Named(name string) Constraint {
	c.Name = name
	return c
}

// Model 是一个最小化问题
type Model struct {
	vars        []VariableDefinition
	constraints []Constraint
	objective   Expression
}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) AddVariable(def VariableDefinition) Variable {
	m.vars = append(m.vars, def)
	return Variable{id: len(m.vars) - 1}
}

func (m *Model) AddBinary(name string) Variable {
	return m.AddVariable(VariableDefinition{Name: name, Lower: 0, Upper: 1, Integer: true})
}

func (m *Model) AddConstraints(cs ...Constraint) {
	m.constraints = append(m.constraints, cs...)
}

func (m *Model) Minimize(objective Expression) {
	m.objective = objective
}

func (m *Model) NumVariables() int {
	return len(m.vars)
}

func (m *Model) Variable(v Variable) VariableDefinition {
	return m.vars[v.id]
}

func (m *Model) Variables() []VariableDefinition {
	return m.vars
}

func (m *Model) Constraints() []Constraint {
	return m.constraints
}

func (m *Model) Objective() Expression {
	return m.objective
}

// Validate 检查变量引用与边界是否合法
func (m *Model) Validate() error {
	for i, v := range m.vars {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || math.IsInf(v.Lower, 0) || math.IsInf(v.Upper, 0) {
			return fmt.Errorf("lp: 变量 %s 的边界必须是有限值", v.Name)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("lp: 变量 %d (%s) 的下界 %v 大于上界 %v", i, v.Name, v.Lower, v.Upper)
		}
	}

	check := func(e Expression, where string) error {
		for _, t := range e.Terms {
			if t.Var.id < 0 || t.Var.id >= len(m.vars) {
				return fmt.Errorf("lp: %s 引用了不存在的变量 %d", where, t.Var.id)
			}
		}
		return nil
	}

	for i, c := range m.constraints {
		if err := check(c.Expr, fmt.Sprintf("约束 %d (%s)", i, c.Name)); err != nil {
			return err
		}
	}
	return check(m.objective, "目标函数")
}

// Feasible 检查给定取值是否满足所有约束与变量边界
func (m *Model) Feasible(values []float64, tol float64) bool {
	if len(values) != len(m.vars) {
		return false
	}
	for i, v := range m.vars {
		if values[i] < v.Lower-tol || values[i] > v.Upper+tol {
			return false
		}
		if v.Integer && math.Abs(values[i]-math.Round(values[i])) > tol {
			return false
		}
	}
	for _, c := range m.constraints {
		if !c.Sense.Satisfied(c.Expr.Eval(values), c.RHS, tol) {
			return false
		}
	}
	return true
}
