package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/utils"
)

func (h *Handler) SubmitYourPreferences(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	// 空数组表示没有任何偏好，仍然会参与排班
	var req []struct {
		Day   domain.Day   `json:"day" validate:"gte=0,lte=4"`
		Shift domain.Shift `json:"shift" validate:"gte=0,lte=1"`
	}

	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Var(req, "dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	prefs := make([]domain.Preference, 0, len(req))
	for _, item := range req {
		prefs = append(prefs, domain.Preference{Day: item.Day, Shift: item.Shift})
	}

	prefs, err := utils.NormalizePreferences(prefs)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	submission := &domain.PreferenceSubmission{
		SchedulePlanID: plan.ID,
		UserID:         myInfo.ID,
		Preferences:    prefs,
	}

	if err := h.repository.InsertPreferenceSubmission(submission); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "成功提交排班偏好", submission)
}

func (h *Handler) GetYourPreferenceSubmission(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	submission, err := h.repository.GetPreferenceSubmissionByUserIDAndSchedulePlanID(myInfo.ID, plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "你还没有提交过排班偏好", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取排班偏好成功", submission)
}

func (h *Handler) GetSchedulePlanSubmissions(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

	submissions, err := h.repository.GetAllSubmissionsBySchedulePlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取该排班计划所有的提交记录成功", submissions)
}

