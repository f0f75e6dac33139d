package handler

type ContextKey string

var (
	RoleCtxKey          ContextKey = "role"
	SubCtxKey           ContextKey = "sub"
	MyInfoCtx           ContextKey = "myInfo"
	UserInfoCtx         ContextKey = "userInfo"
	ScheduleTemplateCtx ContextKey = "scheduleTemplate"
	SchedulePlanCtx     ContextKey = "schedulePlan"
)
