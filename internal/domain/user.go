package domain

import (
	"time"
)

type Role string

const (
	RoleWorker  Role = "员工"
	RoleManager Role = "管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	TargetHours  float64   `json:"targetHours"`
	WorkedHours  float64   `json:"workedHours"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// Worker 把用户转换为排班使用的员工，偏好由提交记录提供
func (u *User) Worker(preferences []Preference) Worker {
	return Worker{
		Name:        u.FullName,
		Preferences: preferences,
		TargetHours: u.TargetHours,
		WorkedHours: u.WorkedHours,
	}
}
