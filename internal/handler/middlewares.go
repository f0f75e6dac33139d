package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("已处理请求",
			"status", rw.StatusCode,
			"ip", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				fmt.Print(string(debug.Stack())) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "用户未登录")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		ctx := context.WithValue(r.Context(), RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := domain.Role(r.Context().Value(RoleCtxKey).(string))
			if !slices.Contains(roles, role) {
				h.errorResponse(w, r, "权限不足")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resource 描述一个按 ID 加载并放入 context 的对象
type resource[T any] struct {
	ctxKey     ContextKey
	invalidMsg string
	missingMsg string
	id         func(h *Handler, r *http.Request) (int64, error)
	load       func(h *Handler, id int64) (T, error)
}

func urlID(param string) func(h *Handler, r *http.Request) (int64, error) {
	return func(h *Handler, r *http.Request) (int64, error) {
		return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	}
}

// errNoOpenPlan 表示 latest-available 没有对应的排班计划，这不是一个错误
var errNoOpenPlan = errors.New("没有可提交的排班计划")

// loadResource 找不到对象时返回 missingMsg，ID 无法解析时返回 invalidMsg
func loadResource[T any](h *Handler, res resource[T]) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := res.id(h, r)
			if err != nil {
				switch {
				case errors.Is(err, errNoOpenPlan):
					h.successResponse(w, r, err.Error(), nil)
				case errors.Is(err, strconv.ErrSyntax), errors.Is(err, strconv.ErrRange):
					h.errorResponse(w, r, res.invalidMsg)
				default:
					h.internalServerError(w, r, err)
				}
				return
			}

			v, err := res.load(h, id)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					h.errorResponse(w, r, res.missingMsg)
				default:
					h.internalServerError(w, r, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), res.ctxKey, v)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return loadResource(h, resource[*domain.User]{
		ctxKey:     MyInfoCtx,
		invalidMsg: "无效的令牌",
		missingMsg: "个人信息不存在",
		id: func(h *Handler, r *http.Request) (int64, error) {
			return strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
		},
		load: func(h *Handler, id int64) (*domain.User, error) { return h.repository.GetUserByID(id) },
	})(next)
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return loadResource(h, resource[*domain.User]{
		ctxKey:     UserInfoCtx,
		invalidMsg: "用户ID无效",
		missingMsg: "用户不存在",
		id:         urlID("id"),
		load:       func(h *Handler, id int64) (*domain.User, error) { return h.repository.GetUserByID(id) },
	})(next)
}

func (h *Handler) scheduleTemplate(next http.Handler) http.Handler {
	return loadResource(h, resource[*domain.ScheduleTemplate]{
		ctxKey:     ScheduleTemplateCtx,
		invalidMsg: "模板ID无效",
		missingMsg: "模板不存在",
		id:         urlID("id"),
		load: func(h *Handler, id int64) (*domain.ScheduleTemplate, error) {
			return h.repository.GetScheduleTemplate(id)
		},
	})(next)
}

// schedulePlan 的 option 可以是计划 ID，也可以是 latest-available
func (h *Handler) schedulePlan(next http.Handler) http.Handler {
	return loadResource(h, resource[*domain.SchedulePlan]{
		ctxKey:     SchedulePlanCtx,
		invalidMsg: "无效的选项",
		missingMsg: "排班计划不存在",
		id: func(h *Handler, r *http.Request) (int64, error) {
			option := chi.URLParam(r, "option")
			if option != "latest-available" {
				return strconv.ParseInt(option, 10, 64)
			}
			id, err := h.repository.GetLatestAvailableSchedulePlanID()
			if errors.Is(err, sql.ErrNoRows) {
				return 0, errNoOpenPlan
			}
			return id, err
		},
		load: func(h *Handler, id int64) (*domain.SchedulePlan, error) {
			return h.repository.GetSchedulePlanByID(id)
		},
	})(next)
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Username == h.config.InitialAdmin.Username {
			h.errorResponse(w, r, "禁止操作初始管理员")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// preventInactiveWorker 只有在职员工可以提交偏好
func (h *Handler) preventInactiveWorker(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
		if !myInfo.IsActive {
			h.errorResponse(w, r, "您已离职")
			return
		}
		if myInfo.Role != domain.RoleWorker {
			h.errorResponse(w, r, "只有员工需要提交排班偏好")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) preventSubmit2unavailableSchedulePlan(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		plan := r.Context().Value(SchedulePlanCtx).(*domain.SchedulePlan)

		now := time.Now()
		switch {
		case plan.SubmissionStartTime.After(now):
			h.errorResponse(w, r, "暂未开放提交")
		case plan.SubmissionEndTime.Before(now):
			h.errorResponse(w, r, "已截止提交")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
