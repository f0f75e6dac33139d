package scheduler

import "errors"

var (
	ErrInvalidPreference   = errors.New("偏好超出排班范围")
	ErrInvalidParameters   = errors.New("排班参数不合法")
	ErrInfeasible          = errors.New("不存在满足所有约束的排班方案")
	ErrNonIntegralSolution = errors.New("求解结果不是 0/1 解")
)

// EngineError 求解器自身的失败，Message 原样保留求解器给出的信息
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return "求解器错误: " + e.Message
}
