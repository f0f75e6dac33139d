package domain

import (
	"errors"
	"fmt"
	"math"
)

// Day 表示一周中的工作日，其序号直接作为数组下标使用
type Day int32

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

const DaysPerWeek = 5

var dayNames = [DaysPerWeek]string{"MON", "TUE", "WED", "THU", "FRI"}

func (d Day) Valid() bool {
	return d >= 0 && d < DaysPerWeek
}

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DAY(%d)", int32(d))
	}
	return dayNames[d]
}

// Shift 表示一天中的班次
type Shift int32

const (
	Morning Shift = iota
	Afternoon
)

const ShiftsPerDay = 2

var shiftNames = [ShiftsPerDay]string{"MORNING", "AFTERNOON"}

func (s Shift) Valid() bool {
	return s >= 0 && s < ShiftsPerDay
}

func (s Shift) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SHIFT(%d)", int32(s))
	}
	return shiftNames[s]
}

// ShiftHours 是 (day, shift) -> 工时 的矩形表
// 创建之后不可修改，越界访问视为程序错误
type ShiftHours struct {
	days   int
	shifts int
	hours  []float64
}

var ErrInvalidShiftHours = errors.New("班次工时表不合法")

func NewShiftHours(table [][]float64) (*ShiftHours, error) {
	if len(table) == 0 || len(table[0]) == 0 {
		return nil, fmt.Errorf("%w: 工时表不能为空", ErrInvalidShiftHours)
	}

	h := &ShiftHours{
		days:   len(table),
		shifts: len(table[0]),
		hours:  make([]float64, 0, len(table)*len(table[0])),
	}

	for d, row := range table {
		if len(row) != h.shifts {
			return nil, fmt.Errorf("%w: 第 %d 天的班次数量为 %d，应为 %d", ErrInvalidShiftHours, d, len(row), h.shifts)
		}
		for s, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("%w: 第 %d 天第 %d 个班次的工时 %v 非法", ErrInvalidShiftHours, d, s, v)
			}
			h.hours = append(h.hours, v)
		}
	}

	return h, nil
}

// DefaultShiftHours 上午 4 小时；下午周一至周四 6 小时，周五 5 小时
func DefaultShiftHours() *ShiftHours {
	h, _ := NewShiftHours([][]float64{
		{4, 6},
		{4, 6},
		{4, 6},
		{4, 6},
		{4, 5},
	})
	return h
}

func (h *ShiftHours) Days() int {
	return h.days
}

func (h *ShiftHours) Shifts() int {
	return h.shifts
}

func (h *ShiftHours) Hours(d Day, s Shift) float64 {
	if int(d) < 0 || int(d) >= h.days || int(s) < 0 || int(s) >= h.shifts {
		panic(fmt.Sprintf("domain: 班次 (%d, %d) 超出工时表范围 %dx%d", d, s, h.days, h.shifts))
	}
	return h.hours[int(d)*h.shifts+int(s)]
}

// Table 返回工时表的拷贝
func (h *ShiftHours) Table() [][]float64 {
	table := make([][]float64, h.days)
	for d := range table {
		table[d] = append([]float64(nil), h.hours[d*h.shifts:(d+1)*h.shifts]...)
	}
	return table
}
