package domain

type ScheduleStatus string

const (
	ScheduleOptimal  ScheduleStatus = "optimal"
	ScheduleFeasible ScheduleStatus = "feasible" // 求解器在节点上限前找到了可行解，但没有证明最优
)

type Assignment struct {
	Day       Day     `json:"day"`
	Shift     Shift   `json:"shift"`
	Hours     float64 `json:"hours"`
	Preferred bool    `json:"preferred"`
}

type WorkerSchedule struct {
	Worker            string       `json:"worker"`
	Assignments       []Assignment `json:"assignments"`
	HoursWorked       float64      `json:"hoursWorked"`
	RemainingHours    float64      `json:"remainingHours"`    // 本周期开始前的剩余工时
	NewRemainingHours float64      `json:"newRemainingHours"` // RemainingHours - HoursWorked
}

func (ws *WorkerSchedule) Assigned(d Day, s Shift) bool {
	for _, a := range ws.Assignments {
		if a.Day == d && a.Shift == s {
			return true
		}
	}
	return false
}

// Schedule 是一次成功求解的完整结果，生成后不再修改
type Schedule struct {
	Days      int              `json:"days"`
	Shifts    int              `json:"shifts"`
	Workers   []WorkerSchedule `json:"workers"`
	Objective float64          `json:"objective"`
	Status    ScheduleStatus   `json:"status"`
}

// Assignee 返回负责 (d, s) 的员工下标，没有则返回 -1
func (sc *Schedule) Assignee(d Day, s Shift) int {
	for i := range sc.Workers {
		if sc.Workers[i].Assigned(d, s) {
			return i
		}
	}
	return -1
}
