package utils

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

// ValidateScheduleTemplateSlots 检查模板是否恰好覆盖 5x2 的每个班次，
// 且同一天的两个班次时间不冲突
func ValidateScheduleTemplateSlots(st *domain.ScheduleTemplate) error {
	var grid [domain.DaysPerWeek][domain.ShiftsPerDay]*domain.ScheduleTemplateSlot

	for i := range st.Slots {
		slot := &st.Slots[i]
		if !slot.Day.Valid() {
			return fmt.Errorf("第 %d 个班次的星期 %d 不合法", i+1, slot.Day)
		}
		if !slot.Shift.Valid() {
			return fmt.Errorf("第 %d 个班次的时段 %d 不合法", i+1, slot.Shift)
		}
		if grid[slot.Day][slot.Shift] != nil {
			return fmt.Errorf("%s %s 的班次重复", slot.Day, slot.Shift)
		}
		grid[slot.Day][slot.Shift] = slot

		// 检查结束时间是不是大于开始时间
		startTime, err := time.Parse("15:04:05", slot.StartTime)
		if err != nil {
			return fmt.Errorf("%s %s 的开始时间格式错误", slot.Day, slot.Shift)
		}
		endTime, err := time.Parse("15:04:05", slot.EndTime)
		if err != nil {
			return fmt.Errorf("%s %s 的结束时间格式错误", slot.Day, slot.Shift)
		}
		if !endTime.After(startTime) {
			return fmt.Errorf("%s %s 的结束时间必须晚于开始时间", slot.Day, slot.Shift)
		}
	}

	for d := range grid {
		for s := range grid[d] {
			if grid[d][s] == nil {
				return fmt.Errorf("缺少 %s %s 的班次", domain.Day(d), domain.Shift(s))
			}
		}

		// 检查同一天各个班次之间的时间是否冲突
		for i := 0; i < domain.ShiftsPerDay; i++ {
			iStartTime, _ := time.Parse("15:04:05", grid[d][i].StartTime)
			iEndTime, _ := time.Parse("15:04:05", grid[d][i].EndTime)

			for j := i + 1; j < domain.ShiftsPerDay; j++ {
				jStartTime, _ := time.Parse("15:04:05", grid[d][j].StartTime)
				jEndTime, _ := time.Parse("15:04:05", grid[d][j].EndTime)

				if jStartTime.Before(iEndTime) && iStartTime.Before(jEndTime) {
					return fmt.Errorf("%s 的 %s 和 %s 班次时间冲突", domain.Day(d), domain.Shift(i), domain.Shift(j))
				}
			}
		}
	}

	return nil
}

func ValidateSchedulePlanTime(plan *domain.SchedulePlan) error {
	if plan.SubmissionStartTime.After(plan.SubmissionEndTime) {
		return fmt.Errorf("提交开始时间不能晚于提交结束时间")
	}

	if plan.ActiveStartTime.After(plan.ActiveEndTime) {
		return fmt.Errorf("生效开始时间不能晚于生效结束时间")
	}

	if plan.ActiveStartTime.Before(plan.SubmissionEndTime) {
		return fmt.Errorf("生效开始时间不能早于提交结束时间")
	}

	return nil
}

func ValidateSchedulePlanHours(plan *domain.SchedulePlan) error {
	if plan.MinHours < 0 {
		return errors.New("最少工时不能为负数")
	}
	if plan.MinHours > plan.MaxHours {
		return errors.New("最少工时不能大于最多工时")
	}
	return nil
}

// NormalizePreferences 校验偏好是否在 5x2 的范围内，去重并按 (day, shift) 排序
func NormalizePreferences(prefs []domain.Preference) ([]domain.Preference, error) {
	seen := make(map[domain.Preference]bool)
	result := make([]domain.Preference, 0, len(prefs))

	for i, p := range prefs {
		if !p.Day.Valid() || !p.Shift.Valid() {
			return nil, fmt.Errorf("第 %d 项偏好 (day=%d, shift=%d) 不合法", i+1, p.Day, p.Shift)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		result = append(result, p)
	}

	slices.SortFunc(result, func(a, b domain.Preference) int {
		if a.Day != b.Day {
			return int(a.Day - b.Day)
		}
		return int(a.Shift - b.Shift)
	})

	return result, nil
}
