package handler

import (
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/utils"
)

var planFailure = storeFailure{
	constraints: map[string]string{
		"schedule_plans_name_key":                  "排班计划名称已存在",
		"schedule_plans_schedule_template_id_fkey": "排班计划模板不存在",
	},
	conflict: "排班计划已被修改，请刷新后重试",
}

// schedulePlanPatch 中为 nil 的字段保持原值
type schedulePlanPatch struct {
	Name                *string    `json:"name" validate:"omitempty,min=1"`
	Description         *string    `json:"description"`
	SubmissionStartTime *time.Time `json:"submissionStartTime"`
	SubmissionEndTime   *time.Time `json:"submissionEndTime"`
	ActiveStartTime     *time.Time `json:"activeStartTime"`
	ActiveEndTime       *time.Time `json:"activeEndTime"`
	MinHours            *float64   `json:"minHours" validate:"omitempty,gte=0"`
	MaxHours            *float64   `json:"maxHours" validate:"omitempty,gt=0"`
	NoDoubleShift       *bool      `json:"noDoubleShift"`
}

func (p *schedulePlanPatch) apply(plan *domain.SchedulePlan) {
	if p.Name != nil {
		plan.Name = *p.Name
	}
	if p.Description != nil {
		plan.Description = *p.Description
	}
	if p.SubmissionStartTime != nil {
		plan.SubmissionStartTime = *p.SubmissionStartTime
	}
	if p.SubmissionEndTime != nil {
		plan.SubmissionEndTime = *p.SubmissionEndTime
	}
	if p.ActiveStartTime != nil {
		plan.ActiveStartTime = *p.ActiveStartTime
	}
	if p.ActiveEndTime != nil {
		plan.ActiveEndTime = *p.ActiveEndTime
	}
	if p.MinHours != nil {
		plan.MinHours = *p.MinHours
	}
	if p.MaxHours != nil {
		plan.MaxHours = *p.MaxHours
	}
	if p.NoDoubleShift != nil {
		plan.NoDoubleShift = *p.NoDoubleShift
	}
}

type createSchedulePlanRequest struct {
	Name                string    `json:"name" validate:"required"`
	Description         string    `json:"description"`
	SubmissionStartTime time.Time `json:"submissionStartTime" validate:"required"`
	SubmissionEndTime   time.Time `json:"submissionEndTime" validate:"required"`
	ActiveStartTime     time.Time `json:"activeStartTime" validate:"required"`
	ActiveEndTime       time.Time `json:"activeEndTime" validate:"required"`
	TemplateID          int64     `json:"templateID" validate:"required"`
	MinHours            *float64  `json:"minHours" validate:"omitempty,gte=0"`
	MaxHours            *float64  `json:"maxHours" validate:"omitempty,gt=0"`
	NoDoubleShift       *bool     `json:"noDoubleShift"`
}

func (req *createSchedulePlanRequest) patch() *schedulePlanPatch {
	return &schedulePlanPatch{
		Name:                &req.Name,
		Description:         &req.Description,
		SubmissionStartTime: &req.SubmissionStartTime,
		SubmissionEndTime:   &req.SubmissionEndTime,
		ActiveStartTime:     &req.ActiveStartTime,
		ActiveEndTime:       &req.ActiveEndTime,
		MinHours:            req.MinHours,
		MaxHours:            req.MaxHours,
		NoDoubleShift:       req.NoDoubleShift,
	}
}

func validateSchedulePlan(plan *domain.SchedulePlan) error {
	if err := utils.ValidateSchedulePlanTime(plan); err != nil {
		return err
	}
	return utils.ValidateSchedulePlanHours(plan)
}

// CreateSchedulePlan 未给出的工时上下限取配置中的默认值
func (h *Handler) CreateSchedulePlan(w http.ResponseWriter, r *http.Request) {
	var req createSchedulePlanRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	plan := &domain.SchedulePlan{
		ScheduleTemplateID: req.TemplateID,
		MinHours:           h.config.Scheduler.MinHours,
		MaxHours:           h.config.Scheduler.MaxHours,
		NoDoubleShift:      h.config.Scheduler.NoDoubleShift,
	}
	req.patch().apply(plan)

	if err := validateSchedulePlan(plan); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateSchedulePlan(plan); err != nil {
		h.storeError(w, r, err, planFailure)
		return
	}

	h.successResponse(w, r, "创建排班计划成功", plan)
}

func (h *Handler) GetSchedulePlanByID(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	h.successResponse(w, r, "获取排班计划成功", plan)
}

func (h *Handler) DeleteSchedulePlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	if err := h.repository.DeleteSchedulePlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排班计划成功", nil)
}

func (h *Handler) UpdateSchedulePlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	var patch schedulePlanPatch
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}
	patch.apply(plan)

	if err := validateSchedulePlan(plan); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateSchedulePlan(plan); err != nil {
		h.storeError(w, r, err, planFailure)
		return
	}

	h.successResponse(w, r, "更新排班计划成功", plan)
}

func (h *Handler) GetAllSchedulePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repository.GetAllSchedulePlans()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有排班计划成功", plans)
}
