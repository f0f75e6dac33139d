package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

// Store 是 handler 用到的持久化操作，由 *repository.Repository 实现
type Store interface {
	GetUserByID(id int64) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	GetAllUsers() ([]*domain.User, error)
	CreateUser(user *domain.User) error
	UpdateUser(user *domain.User) error
	DeleteUser(id int64) error

	GetAllScheduleTemplates() ([]*domain.ScheduleTemplate, error)
	GetScheduleTemplate(id int64) (*domain.ScheduleTemplate, error)
	CreateScheduleTemplate(st *domain.ScheduleTemplate) error
	UpdateScheduleTemplate(st *domain.ScheduleTemplate) error
	DeleteScheduleTemplate(id int64) error

	GetAllSchedulePlans() ([]*domain.SchedulePlan, error)
	GetSchedulePlanByID(id int64) (*domain.SchedulePlan, error)
	GetLatestAvailableSchedulePlanID() (int64, error)
	CreateSchedulePlan(plan *domain.SchedulePlan) error
	UpdateSchedulePlan(plan *domain.SchedulePlan) error
	DeleteSchedulePlan(id int64) error

	InsertPreferenceSubmission(submission *domain.PreferenceSubmission) error
	GetPreferenceSubmissionByUserIDAndSchedulePlanID(userID int64, schedulePlanID int64) (*domain.PreferenceSubmission, error)
	GetAllSubmissionsBySchedulePlanID(schedulePlanID int64) ([]*domain.PreferenceSubmission, error)
}

// MailPublisher 由 *amqp.Channel 实现
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Locker 由 *redis.Client 实现，用于保证同一个排班计划同时只有一个求解在进行。
// 释放锁通过 Lua 脚本比较 token 后删除
type Locker interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Store
	translator  ut.Translator
	mailChannel MailPublisher
	redisClient Locker

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Store, mailCh MailPublisher, rdb Locker) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	managerOnly := h.RequiredRole([]domain.Role{domain.RoleManager})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(managerOnly).Post("/", h.CreateUser)
			r.With(managerOnly).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(managerOnly)
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
				r.Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/schedule-templates", func(r chi.Router) {
			r.With(managerOnly).Post("/", h.CreateScheduleTemplate)
			r.Get("/", h.GetAllScheduleTemplates)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.scheduleTemplate)
				r.Get("/", h.GetScheduleTemplate)
				r.With(managerOnly).Patch("/", h.UpdateScheduleTemplate)
				r.With(managerOnly).Delete("/", h.DeleteScheduleTemplate)
			})
		})

		r.Route("/schedule-plans", func(r chi.Router) {
			r.With(managerOnly).Post("/", h.CreateSchedulePlan)
			r.Get("/", h.GetAllSchedulePlans)
			r.Route("/{option}", func(r chi.Router) {
				r.Use(h.schedulePlan)
				r.Get("/", h.GetSchedulePlanByID)
				r.With(managerOnly).Patch("/", h.UpdateSchedulePlan)
				r.With(managerOnly).Delete("/", h.DeleteSchedulePlan)
				r.Route("/your-submission", func(r chi.Router) {
					r.Use(h.myInfo)
					r.Use(h.preventInactiveWorker)
					r.With(h.preventSubmit2unavailableSchedulePlan).Post("/", h.SubmitYourPreferences)
					r.Get("/", h.GetYourPreferenceSubmission)
				})
				r.With(managerOnly).Get("/submissions", h.GetSchedulePlanSubmissions) // 防止泄露他人的偏好
				r.With(managerOnly).Post("/schedule", h.GenerateSchedule)
			})
		})
	})
}
