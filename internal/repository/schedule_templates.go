package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

// 模板和班次左连接，没有班次的模板会得到一行班次列全为 NULL 的记录
const selectScheduleTemplate = `
	SELECT st.id, st.name, st.description, st.created_at, st.version,
		sts.id, sts.day, sts.shift, sts.start_time, sts.end_time
	FROM schedule_templates st
	LEFT JOIN schedule_template_slots sts ON st.id = sts.template_id
`

// collectTemplates 把按模板 ID 排序的连接结果聚合成模板列表
func collectTemplates(rows *sql.Rows) ([]*domain.ScheduleTemplate, error) {
	defer rows.Close()

	templates := make([]*domain.ScheduleTemplate, 0)
	var current *domain.ScheduleTemplate

	for rows.Next() {
		var st domain.ScheduleTemplate
		var slotID sql.NullInt64
		var day, shift sql.NullInt32
		var start, end sql.NullString

		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.CreatedAt, &st.Version, &slotID, &day, &shift, &start, &end); err != nil {
			return nil, err
		}

		if current == nil || current.ID != st.ID {
			st.Slots = make([]domain.ScheduleTemplateSlot, 0, domain.DaysPerWeek*domain.ShiftsPerDay)
			current = &st
			templates = append(templates, current)
		}

		if slotID.Valid {
			current.Slots = append(current.Slots, domain.ScheduleTemplateSlot{
				ID:        slotID.Int64,
				Day:       domain.Day(day.Int32),
				Shift:     domain.Shift(shift.Int32),
				StartTime: start.String,
				EndTime:   end.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repository) GetAllScheduleTemplates() ([]*domain.ScheduleTemplate, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectScheduleTemplate+"ORDER BY st.id, sts.day, sts.shift")
	if err != nil {
		return nil, err
	}

	return collectTemplates(rows)
}

// GetScheduleTemplate 模板不存在时返回 sql.ErrNoRows
func (r *Repository) GetScheduleTemplate(id int64) (*domain.ScheduleTemplate, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectScheduleTemplate+"WHERE st.id = $1 ORDER BY sts.day, sts.shift", id)
	if err != nil {
		return nil, err
	}

	templates, err := collectTemplates(rows)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, sql.ErrNoRows
	}

	return templates[0], nil
}

// CreateScheduleTemplate 模板和全部班次在同一个事务中写入
func (r *Repository) CreateScheduleTemplate(st *domain.ScheduleTemplate) error {
	return r.inTx(func(ctx context.Context, tx *sql.Tx) error {
		query := `
			INSERT INTO schedule_templates (name, description)
			VALUES ($1, $2)
			RETURNING id, created_at, version
		`
		if err := tx.QueryRowContext(ctx, query, st.Name, st.Description).Scan(&st.ID, &st.CreatedAt, &st.Version); err != nil {
			return err
		}

		query = `
			INSERT INTO schedule_template_slots (template_id, day, shift, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		for i := range st.Slots {
			slot := &st.Slots[i]
			if err := tx.QueryRowContext(ctx, query, st.ID, slot.Day, slot.Shift, slot.StartTime, slot.EndTime).Scan(&slot.ID); err != nil {
				return err
			}
		}

		return nil
	})
}

// UpdateScheduleTemplate 只更新名称和描述，班次时间创建后不可修改
func (r *Repository) UpdateScheduleTemplate(st *domain.ScheduleTemplate) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE schedule_templates
		SET name = $1, description = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	return r.dbpool.QueryRowContext(ctx, query, st.Name, st.Description, st.ID, st.Version).Scan(&st.Version)
}

func (r *Repository) DeleteScheduleTemplate(id int64) error {
	return r.deleteByID("schedule_templates", id)
}
