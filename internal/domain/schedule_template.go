package domain

import (
	"time"
)

// ScheduleTemplateSlot 描述某一天某个班次的起止时间，工时由起止时间计算
type ScheduleTemplateSlot struct {
	ID        int64  `json:"id"`
	Day       Day    `json:"day"`
	Shift     Shift  `json:"shift"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (s ScheduleTemplateSlot) Hours() (float64, error) {
	startTime, err := time.Parse("15:04:05", s.StartTime)
	if err != nil {
		return 0, err
	}
	endTime, err := time.Parse("15:04:05", s.EndTime)
	if err != nil {
		return 0, err
	}
	return endTime.Sub(startTime).Hours(), nil
}

type ScheduleTemplate struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Slots       []ScheduleTemplateSlot `json:"slots"`
	CreatedAt   time.Time              `json:"createdAt"`
	Version     int32                  `json:"-"`
}

// ShiftHours 将模板转换为工时表，调用前模板应当已经通过校验
func (st *ScheduleTemplate) ShiftHours() (*ShiftHours, error) {
	table := make([][]float64, DaysPerWeek)
	for d := range table {
		table[d] = make([]float64, ShiftsPerDay)
	}

	for _, slot := range st.Slots {
		if !slot.Day.Valid() || !slot.Shift.Valid() {
			continue
		}
		hours, err := slot.Hours()
		if err != nil {
			return nil, err
		}
		table[slot.Day][slot.Shift] = hours
	}

	return NewShiftHours(table)
}
