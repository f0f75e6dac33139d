package scheduler

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

// ExtractPreferences 根据员工名单生成偏好矩阵与剩余工时向量，
// 任何越界的偏好都会返回 ErrInvalidPreference
func ExtractPreferences(workers []domain.Worker, days, shifts int) (*PreferenceMatrix, []float64, error) {
	prefs := NewPreferenceMatrix(VarIndex{Workers: len(workers), Days: days, Shifts: shifts})
	remaining := make([]float64, len(workers))

	for i, w := range workers {
		for _, p := range w.Preferences {
			if int(p.Day) < 0 || int(p.Day) >= days || int(p.Shift) < 0 || int(p.Shift) >= shifts {
				return nil, nil, fmt.Errorf("%w: 员工 %q 的偏好 (day=%d, shift=%d) 不在 %dx%d 的范围内", ErrInvalidPreference, w.Name, p.Day, p.Shift, days, shifts)
			}
			prefs.Set(i, p.Day, p.Shift)
		}
		remaining[i] = w.RemainingHours()
	}

	return prefs, remaining, nil
}
