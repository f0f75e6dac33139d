package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/lp"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/scheduler"
)

func schedulePlanLockKey(planID int64) string {
	return fmt.Sprintf("schedule-plan:%d:lock", planID)
}

// releaseLockScript 只删除仍由自己持有的锁，锁过期后被别人拿到时不会误删
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func newLockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// acquireScheduleLock 返回空 token 表示该计划已经有一个求解在进行
func (h *Handler) acquireScheduleLock(planID int64) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	token, err := newLockToken()
	if err != nil {
		return "", err
	}

	expiration := time.Duration(h.config.Scheduler.LockExpiration) * time.Second
	ok, err := h.redisClient.SetNX(ctx, schedulePlanLockKey(planID), token, expiration).Result()
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// releaseScheduleLock 返回 false 表示锁已经不属于 token 的持有者
func (h *Handler) releaseScheduleLock(planID int64, token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	n, err := releaseLockScript.Run(ctx, h.redisClient, []string{schedulePlanLockKey(planID)}, token).Int64()
	if err != nil {
		slog.Error("释放排班锁失败", "plan", planID, "error", err)
		return false
	}
	if n == 0 {
		slog.Warn("排班锁已过期并被其他请求持有", "plan", planID)
		return false
	}
	return true
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	// 请求体可以为空，此时使用配置中的目标函数且不发送通知
	var req struct {
		Policy string `json:"policy" validate:"omitempty,oneof=quadratic-deficit preferred-hours"`
		Notify bool   `json:"notify"`
	}

	if err := h.readJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	policyName := req.Policy
	if policyName == "" {
		policyName = h.config.Scheduler.Policy
	}
	policy, ok := scheduler.PolicyByName(policyName)
	if !ok {
		h.internalServerError(w, r, fmt.Errorf("未知的目标函数 %q", policyName))
		return
	}

	token, err := h.acquireScheduleLock(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if token == "" {
		h.errorResponse(w, r, "该排班计划正在排班中，请稍后再试")
		return
	}
	defer h.releaseScheduleLock(plan.ID, token)

	// 获取排班计划所用的模板
	template, err := h.repository.GetScheduleTemplate(plan.ScheduleTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 获取排班计划的提交记录
	submissions, err := h.repository.GetAllSubmissionsBySchedulePlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 获取排班计划所用的用户
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	roster, err := scheduler.RosterFromSubmissions(users, template, submissions)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(roster.Workers) == 0 {
		h.errorResponse(w, r, "还没有员工提交排班偏好")
		return
	}

	solver := &lp.BranchAndBound{
		MaxNodes:  h.config.Scheduler.MaxNodes,
		Tolerance: h.config.Scheduler.Tolerance,
	}

	// 自动排班
	schedule, err := scheduler.Calc(scheduler.ParametersForPlan(plan, policy), roster.Workers, roster.Hours, solver)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrInvalidPreference), errors.Is(err, scheduler.ErrInvalidParameters):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, scheduler.ErrInfeasible):
			h.errorResponse(w, r, "在当前工时上下限下不存在可行的排班方案，请放宽工时限制或关闭每天一班的限制")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !req.Notify {
		h.successResponse(w, r, "自动排班成功", schedule)
		return
	}

	failed := 0
	for i, user := range roster.Users {
		if err := h.publishMail(scheduleMail(plan, user, &schedule.Workers[i])); err != nil {
			slog.Error("发送排班通知失败", "plan", plan.ID, "user", user.ID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		h.successResponse(w, r, fmt.Sprintf("自动排班成功，但有 %d 封通知邮件发送失败", failed), schedule)
		return
	}

	h.successResponse(w, r, "自动排班成功，已通知所有员工", schedule)
}
