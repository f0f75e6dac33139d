package seed

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Store 是写入演示数据需要的持久化操作，由 *repository.Repository 实现
type Store interface {
	CreateUser(user *domain.User) error
	CreateScheduleTemplate(st *domain.ScheduleTemplate) error
	CreateSchedulePlan(plan *domain.SchedulePlan) error
	InsertPreferenceSubmission(submission *domain.PreferenceSubmission) error
}

func prefs(pairs ...[2]int) []domain.Preference {
	result := make([]domain.Preference, 0, len(pairs))
	for _, p := range pairs {
		result = append(result, domain.Preference{Day: domain.Day(p[0]), Shift: domain.Shift(p[1])})
	}
	return result
}

// DemoWorkers 演示用的七名员工，目标工时均为 150 小时且之前没有工时
func DemoWorkers() []domain.Worker {
	const m, a = int(domain.Morning), int(domain.Afternoon)

	return []domain.Worker{
		domain.NewWorker("Andrea Bonvissuto", prefs(
			[2]int{0, m}, [2]int{1, m}, [2]int{2, m}, [2]int{3, m}, [2]int{4, m},
			[2]int{0, a}, [2]int{3, a},
		)...),
		domain.NewWorker("Niccolò Querini Squillari", prefs(
			[2]int{0, a},
		)...),
		domain.NewWorker("Domenico Elia", prefs(
			[2]int{0, m}, [2]int{1, m}, [2]int{3, m},
			[2]int{1, a}, [2]int{2, a}, [2]int{3, a}, [2]int{4, a},
		)...),
		domain.NewWorker("Giovanni Giunta", prefs(
			[2]int{1, m}, [2]int{3, m},
			[2]int{1, a}, [2]int{4, a},
		)...),
		domain.NewWorker("Daniele De Rossi", prefs(
			[2]int{1, m}, [2]int{3, m},
			[2]int{1, a}, [2]int{4, a},
		)...),
		domain.NewWorker("Luca De Candia", prefs(
			[2]int{2, m}, [2]int{4, m},
			[2]int{1, a}, [2]int{3, a},
		)...),
		domain.NewWorker("Vincenzo Miccichè", prefs(
			[2]int{1, m},
			[2]int{2, a},
		)...),
	}
}

// DemoTemplate 与 domain.DefaultShiftHours 的工时一致
func DemoTemplate() *domain.ScheduleTemplate {
	st := &domain.ScheduleTemplate{
		Name:        "演示模板",
		Description: "上午 4 小时，下午周一至周四 6 小时、周五 5 小时",
		Slots:       make([]domain.ScheduleTemplateSlot, 0, domain.DaysPerWeek*domain.ShiftsPerDay),
	}

	for d := domain.Monday; d <= domain.Friday; d++ {
		afternoonEnd := "19:00:00"
		if d == domain.Friday {
			afternoonEnd = "18:00:00"
		}
		st.Slots = append(st.Slots,
			domain.ScheduleTemplateSlot{Day: d, Shift: domain.Morning, StartTime: "08:00:00", EndTime: "12:00:00"},
			domain.ScheduleTemplateSlot{Day: d, Shift: domain.Afternoon, StartTime: "13:00:00", EndTime: afternoonEnd},
		)
	}

	return st
}

var usernameReplacer = strings.NewReplacer("ò", "o", "è", "e", " ", ".")

func demoUsername(name string) string {
	return usernameReplacer.Replace(strings.ToLower(name))
}

// SeedDemoRoster 写入演示员工、模板、一个正在开放提交的排班计划以及每个员工的偏好
func SeedDemoRoster(r Store, password string, emailDomain string) (*domain.SchedulePlan, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	st := DemoTemplate()
	if err := r.CreateScheduleTemplate(st); err != nil {
		return nil, fmt.Errorf("无法插入演示模板: %w", err)
	}

	now := time.Now()
	plan := &domain.SchedulePlan{
		Name:                fmt.Sprintf("演示排班计划 %s", now.Format("2006-01-02 15:04")),
		Description:         "演示数据",
		SubmissionStartTime: now,
		SubmissionEndTime:   now.Add(7 * 24 * time.Hour),
		ActiveStartTime:     now.Add(8 * 24 * time.Hour),
		ActiveEndTime:       now.Add(15 * 24 * time.Hour),
		ScheduleTemplateID:  st.ID,
		MinHours:            1,
		MaxHours:            12,
	}
	if err := r.CreateSchedulePlan(plan); err != nil {
		return nil, fmt.Errorf("无法插入演示排班计划: %w", err)
	}

	for _, worker := range DemoWorkers() {
		username := demoUsername(worker.Name)
		user := &domain.User{
			Username:     username,
			PasswordHash: string(hash),
			FullName:     worker.Name,
			Email:        fmt.Sprintf("%s@%s", username, emailDomain),
			Role:         domain.RoleWorker,
			TargetHours:  worker.TargetHours,
			WorkedHours:  worker.WorkedHours,
		}
		if err := r.CreateUser(user); err != nil {
			return nil, fmt.Errorf("无法插入用户 %s: %w", username, err)
		}

		submission := &domain.PreferenceSubmission{
			SchedulePlanID: plan.ID,
			UserID:         user.ID,
			Preferences:    worker.Preferences,
		}
		if err := r.InsertPreferenceSubmission(submission); err != nil {
			return nil, fmt.Errorf("无法插入 %s 的偏好: %w", username, err)
		}

		slog.Info("已插入演示员工", "username", username, "preferences", len(worker.Preferences))
	}

	return plan, nil
}
