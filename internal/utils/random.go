package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var (
	surnames  = []rune("王李张刘陈杨赵黄周吴徐孙胡朱高林何郭马罗")
	givenName = []rune("伟强芳敏静丽刚杰娟勇艳涛明军磊洋霞飞玲超华平辉梅鑫龙鹏玉斌庆建丹彬凤旭宁乐成欣")
)

const (
	digits        = "0123456789"
	passwordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
)

func pick[T any](s []T) T {
	return s[rand.Intn(len(s))]
}

func randomString(charset string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// GenerateRandomChineseName 一个姓加一到两个字的名
func GenerateRandomChineseName() string {
	name := []rune{pick(surnames)}
	for i := rand.Intn(2) + 1; i > 0; i-- {
		name = append(name, pick(givenName))
	}
	return string(name)
}

// GenerateUsernameFromChineseName 每个字取拼音的随机长度前缀，最后拼上一到三位数字
func GenerateUsernameFromChineseName(chineseName string) string {
	var b strings.Builder
	for _, py := range pinyin.LazyConvert(chineseName, nil) {
		b.WriteString(py[:rand.Intn(len(py))+1])
	}
	b.WriteString(randomString(digits, rand.Intn(3)+1))
	return b.String()
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)

	// 大约十分之一是管理员
	role := domain.RoleWorker
	if rand.Intn(10) == 0 {
		role = domain.RoleManager
	}

	return &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         role,
		IsActive:     true,
		TargetHours:  domain.DefaultTargetHours,
		WorkedHours:  float64(rand.Intn(13) * 5),
	}, nil
}

func GenerateRandomPassword(length int) string {
	return randomString(passwordChars, length)
}

func randomSuffix() string {
	return randomString("ABCDEFGHJKLMNPQRSTUVWXYZ", 3) + randomString(digits, 3)
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// GenerateRandomScheduleTemplate 上午 08:00~09:00 开始，持续 3~4 小时；下午 13:00~14:30 开始，持续 4~6 小时
func GenerateRandomScheduleTemplate() *domain.ScheduleTemplate {
	st := &domain.ScheduleTemplate{
		Name:        "班表模板" + randomSuffix(),
		Description: "随机生成的班表模板",
		Slots:       make([]domain.ScheduleTemplateSlot, 0, domain.DaysPerWeek*domain.ShiftsPerDay),
	}

	for d := domain.Monday; d <= domain.Friday; d++ {
		am := 8*60 + rand.Intn(3)*30
		pm := 13*60 + rand.Intn(4)*30
		st.Slots = append(st.Slots,
			domain.ScheduleTemplateSlot{Day: d, Shift: domain.Morning, StartTime: clock(am), EndTime: clock(am + (rand.Intn(2)+3)*60)},
			domain.ScheduleTemplateSlot{Day: d, Shift: domain.Afternoon, StartTime: clock(pm), EndTime: clock(pm + (rand.Intn(3)+4)*60)},
		)
	}

	return st
}

const day = 24 * time.Hour

// planPhases 是提交开始时间相对现在的偏移，分别对应：
// 未开放、开放提交中、等待排班、启用中、已结束
var planPhases = []time.Duration{day, -day, -8 * day, -30 * day, -210 * day}

// GenerateRandomSchedulePlan 提交期一周，截止三天后启用，启用约五个月
func GenerateRandomSchedulePlan(templateID int64) *domain.SchedulePlan {
	start := time.Now().Add(pick(planPhases))
	end := start.Add(7 * day)
	active := end.Add(3 * day)

	return &domain.SchedulePlan{
		Name:                "排班计划" + randomSuffix(),
		Description:         "随机生成的排班计划",
		SubmissionStartTime: start,
		SubmissionEndTime:   end,
		ActiveStartTime:     active,
		ActiveEndTime:       active.Add(150 * day),
		ScheduleTemplateID:  templateID,
		MinHours:            float64(rand.Intn(3)),
		MaxHours:            float64(rand.Intn(3)*4 + 12),
		NoDoubleShift:       rand.Intn(2) == 0,
	}
}

// GenerateRandomPreferences 返回非空且无重复的偏好
func GenerateRandomPreferences() []domain.Preference {
	all := make([]domain.Preference, 0, domain.DaysPerWeek*domain.ShiftsPerDay)
	for d := domain.Monday; d <= domain.Friday; d++ {
		all = append(all, domain.Preference{Day: d, Shift: domain.Morning}, domain.Preference{Day: d, Shift: domain.Afternoon})
	}

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:rand.Intn(len(all))+1]
}

func GenerateRandomSubmission(plan *domain.SchedulePlan, user *domain.User) *domain.PreferenceSubmission {
	prefs, _ := NormalizePreferences(GenerateRandomPreferences())

	return &domain.PreferenceSubmission{
		SchedulePlanID: plan.ID,
		UserID:         user.ID,
		Preferences:    prefs,
	}
}
