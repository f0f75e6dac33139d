package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/utils"
)

var templateFailure = storeFailure{
	constraints: map[string]string{
		"schedule_templates_name_key":              "模板名称已存在",
		"schedule_plans_schedule_template_id_fkey": "该模板已被应用于排班计划，无法删除",
	},
	conflict: "模板已被修改，请刷新后重试",
}

// templateView 在模板之外附带由起止时间算出的工时表
type templateView struct {
	*domain.ScheduleTemplate
	Hours      [][]float64 `json:"hours"`
	TotalHours float64     `json:"totalHours"`
}

func newTemplateView(st *domain.ScheduleTemplate) (*templateView, error) {
	hours, err := st.ShiftHours()
	if err != nil {
		return nil, err
	}

	view := &templateView{ScheduleTemplate: st, Hours: hours.Table()}
	for _, row := range view.Hours {
		for _, v := range row {
			view.TotalHours += v
		}
	}
	return view, nil
}

func (h *Handler) GetAllScheduleTemplates(w http.ResponseWriter, r *http.Request) {
	sts, err := h.repository.GetAllScheduleTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有排班模板成功", sts)
}

func (h *Handler) CreateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Slots       []struct {
			Day       domain.Day   `json:"day" validate:"gte=0,lte=4"`
			Shift     domain.Shift `json:"shift" validate:"gte=0,lte=1"`
			StartTime string       `json:"startTime" validate:"required"`
			EndTime   string       `json:"endTime" validate:"required"`
		} `json:"slots" validate:"required,dive"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	st := &domain.ScheduleTemplate{
		Name:        req.Name,
		Description: req.Description,
		Slots:       make([]domain.ScheduleTemplateSlot, 0, len(req.Slots)),
	}
	for _, slot := range req.Slots {
		st.Slots = append(st.Slots, domain.ScheduleTemplateSlot{
			Day:       slot.Day,
			Shift:     slot.Shift,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}

	// 每个工作日的每个班次都必须给出起止时间，否则无法计算工时
	if err := utils.ValidateScheduleTemplateSlots(st); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateScheduleTemplate(st); err != nil {
		h.storeError(w, r, err, templateFailure)
		return
	}

	h.successResponse(w, r, "创建模板成功", st)
}

func (h *Handler) GetScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	view, err := newTemplateView(st)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取模板成功", view)
}

// UpdateScheduleTemplate 班次时间创建后不可修改，已有计划依赖它计算工时
func (h *Handler) UpdateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	var req struct {
		Name        *string `json:"name" validate:"omitempty,min=1"`
		Description *string `json:"description"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Description != nil {
		st.Description = *req.Description
	}

	if err := h.repository.UpdateScheduleTemplate(st); err != nil {
		h.storeError(w, r, err, templateFailure)
		return
	}

	h.successResponse(w, r, "更新模板成功", st)
}

func (h *Handler) DeleteScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	if err := h.repository.DeleteScheduleTemplate(st.ID); err != nil {
		h.storeError(w, r, err, templateFailure)
		return
	}

	h.successResponse(w, r, "删除模板成功", nil)
}
