package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var userFailure = storeFailure{
	constraints: map[string]string{
		"users_username_key": "用户名已存在",
		"users_email_key":    "邮箱已存在",
	},
	conflict: "更新用户信息失败，请重试",
}

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string   `json:"username" validate:"required"`
		FullName    string   `json:"fullName" validate:"required"`
		Email       string   `json:"email" validate:"required,email"`
		Role        string   `json:"role" validate:"required,oneof=员工 管理员"`
		TargetHours *float64 `json:"targetHours" validate:"omitempty,gte=0"`
		WorkedHours float64  `json:"workedHours" validate:"gte=0"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	// 生成随机密码，明文只出现在邮件中
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
		TargetHours:  domain.DefaultTargetHours,
		WorkedHours:  req.WorkedHours,
	}
	if req.TargetHours != nil {
		user.TargetHours = *req.TargetHours
	}

	if err := h.repository.CreateUser(user); err != nil {
		h.storeError(w, r, err, userFailure)
		return
	}

	mailMessage := domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		To:   user.Email,
		Data: domain.CreateUserMailData{
			FullName: req.FullName,
			Username: req.Username,
			Password: password,
		},
	}
	if err := h.publishMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "用户创建成功", user)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取用户信息成功", user)
}

// UpdateUser 只修改请求中出现的字段
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName    *string  `json:"fullName"`
		Email       *string  `json:"email" validate:"omitempty,email"`
		Role        *string  `json:"role" validate:"omitempty,oneof=员工 管理员"`
		IsActive    *bool    `json:"isActive"`
		TargetHours *float64 `json:"targetHours" validate:"omitempty,gte=0"`
		WorkedHours *float64 `json:"workedHours" validate:"omitempty,gte=0"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.TargetHours != nil {
		user.TargetHours = *req.TargetHours
	}
	if req.WorkedHours != nil {
		user.WorkedHours = *req.WorkedHours
	}

	if err := h.repository.UpdateUser(user); err != nil {
		h.storeError(w, r, err, userFailure)
		return
	}

	h.successResponse(w, r, "更新用户信息成功", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(user.ID); err != nil {
		h.storeError(w, r, err, storeFailure{
			constraints: map[string]string{
				"preference_submissions_user_id_fkey": "该用户已经提交过排班偏好，请改为停用",
			},
		})
		return
	}

	h.successResponse(w, r, "删除用户成功", nil)
}

func (h *Handler) UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateUser(user); err != nil {
		h.storeError(w, r, err, userFailure)
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}
