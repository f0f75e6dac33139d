package domain

const DefaultTargetHours = 150.0

// Preference 表示员工希望被安排到 (Day, Shift) 这个班次
type Preference struct {
	Day   Day   `json:"day"`
	Shift Shift `json:"shift"`
}

type Worker struct {
	Name        string       `json:"name"`
	Preferences []Preference `json:"preferences"`
	TargetHours float64      `json:"targetHours"`
	WorkedHours float64      `json:"workedHours"` // 本周期之前已经累计的工时
}

func NewWorker(name string, preferences ...Preference) Worker {
	return Worker{
		Name:        name,
		Preferences: preferences,
		TargetHours: DefaultTargetHours,
	}
}

// RemainingHours 可以为负数（已超出目标工时）
func (w Worker) RemainingHours() float64 {
	return w.TargetHours - w.WorkedHours
}

func (w Worker) Prefers(d Day, s Shift) bool {
	for _, p := range w.Preferences {
		if p.Day == d && p.Shift == s {
			return true
		}
	}
	return false
}
