package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

// formatHours 整数不带小数点，个位数补 0，例如 04、12、4.5
func formatHours(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}

func mark(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

// printCalendars 每名员工输出一段：每天两个班次是否分配，以及是否是其偏好
func printCalendars(w io.Writer, schedule *domain.Schedule, workers []domain.Worker) {
	for i, ws := range schedule.Workers {
		fmt.Fprintf(w, "person:%d %s\n", i, ws.Worker)
		for d := 0; d < schedule.Days; d++ {
			day := domain.Day(d)
			t1 := ws.Assigned(day, domain.Morning)
			t2 := ws.Assigned(day, domain.Afternoon)
			p1 := workers[i].Prefers(day, domain.Morning)
			p2 := workers[i].Prefers(day, domain.Afternoon)
			fmt.Fprintf(w, "d%d: [%s][%s] - [%s][%s]\n", d,
				mark(t1, "1", "0"), mark(t2, "1", "0"),
				mark(p1, "x", " "), mark(p2, "x", " "))
		}
		fmt.Fprintf(w, "TOT WEEK HOURS: %sh\n", formatHours(ws.HoursWorked))
		fmt.Fprintf(w, "REMAINING: %sh\n\n", formatHours(ws.NewRemainingHours))
	}
}
