package scheduler

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

// Roster 排班名单，Users 与 Workers 一一对应
type Roster struct {
	Users   []*domain.User
	Workers []domain.Worker
	Hours   *domain.ShiftHours
}

func isActiveWorker(user *domain.User) bool {
	return user.IsActive && user.Role == domain.RoleWorker
}

// RosterFromSubmissions 根据提交了偏好的员工组成排班名单，
// 注意 users 不必只包含提交者，但每个提交者都必须出现在 users 中
func RosterFromSubmissions(users []*domain.User, template *domain.ScheduleTemplate, submissions []*domain.PreferenceSubmission) (*Roster, error) {
	hours, err := template.ShiftHours()
	if err != nil {
		return nil, err
	}

	userMap := make(map[int64]*domain.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	roster := &Roster{
		Users:   make([]*domain.User, 0, len(submissions)),
		Workers: make([]domain.Worker, 0, len(submissions)),
		Hours:   hours,
	}
	seen := make(map[int64]bool)

	for _, submission := range submissions {
		user, exists := userMap[submission.UserID]
		if !exists {
			return nil, fmt.Errorf("用户 %d 不在传入的 users 数组中", submission.UserID)
		}

		// 已离职或非员工角色的提交不参与排班
		if !isActiveWorker(user) || seen[user.ID] {
			continue
		}
		seen[user.ID] = true

		roster.Users = append(roster.Users, user)
		roster.Workers = append(roster.Workers, user.Worker(submission.Preferences))
	}

	return roster, nil
}

// ParametersForPlan 按排班计划保存的工时上下限构造求解参数，覆盖约束与工时约束总是启用
func ParametersForPlan(plan *domain.SchedulePlan, policy FairnessPolicy) *Parameters {
	params := &Parameters{
		MinHoursPerPeriod: plan.MinHours,
		MaxHoursPerPeriod: plan.MaxHours,
		Constraints:       []ConstraintKind{ConstraintCoverage, ConstraintHourBounds},
		Policy:            policy,
	}
	if plan.NoDoubleShift {
		params.Constraints = append(params.Constraints, ConstraintNoDoubleShift)
	}
	return params
}
