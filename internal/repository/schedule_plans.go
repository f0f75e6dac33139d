package repository

import (
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

const selectSchedulePlan = `
	SELECT id, name, description,
		submission_start_time, submission_end_time, active_start_time, active_end_time,
		schedule_template_id, min_hours, max_hours, no_double_shift,
		created_at, version
	FROM schedule_plans
`

func scanSchedulePlan(s scanner) (*domain.SchedulePlan, error) {
	p := &domain.SchedulePlan{}
	err := s.Scan(
		&p.ID, &p.Name, &p.Description,
		&p.SubmissionStartTime, &p.SubmissionEndTime, &p.ActiveStartTime, &p.ActiveEndTime,
		&p.ScheduleTemplateID, &p.MinHours, &p.MaxHours, &p.NoDoubleShift,
		&p.CreatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetAllSchedulePlans() ([]*domain.SchedulePlan, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectSchedulePlan+"ORDER BY id")
	if err != nil {
		return nil, err
	}

	return collect(rows, scanSchedulePlan)
}

func (r *Repository) GetSchedulePlanByID(id int64) (*domain.SchedulePlan, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanSchedulePlan(r.dbpool.QueryRowContext(ctx, selectSchedulePlan+"WHERE id = $1", id))
}

// GetLatestAvailableSchedulePlanID 返回最近创建且仍未截止提交的计划
func (r *Repository) GetLatestAvailableSchedulePlanID() (int64, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id FROM schedule_plans
		WHERE submission_end_time > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var id int64
	err := r.dbpool.QueryRowContext(ctx, query).Scan(&id)
	return id, err
}

func (r *Repository) CreateSchedulePlan(plan *domain.SchedulePlan) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO schedule_plans (
			name, description,
			submission_start_time, submission_end_time, active_start_time, active_end_time,
			schedule_template_id, min_hours, max_hours, no_double_shift
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`

	return r.dbpool.QueryRowContext(ctx, query,
		plan.Name, plan.Description,
		plan.SubmissionStartTime, plan.SubmissionEndTime, plan.ActiveStartTime, plan.ActiveEndTime,
		plan.ScheduleTemplateID, plan.MinHours, plan.MaxHours, plan.NoDoubleShift,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.Version)
}

// UpdateSchedulePlan 模板不可更换，工时都是按创建时的模板算的
func (r *Repository) UpdateSchedulePlan(plan *domain.SchedulePlan) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE schedule_plans
		SET name = $1, description = $2,
			submission_start_time = $3, submission_end_time = $4,
			active_start_time = $5, active_end_time = $6,
			min_hours = $7, max_hours = $8, no_double_shift = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version
	`

	return r.dbpool.QueryRowContext(ctx, query,
		plan.Name, plan.Description,
		plan.SubmissionStartTime, plan.SubmissionEndTime,
		plan.ActiveStartTime, plan.ActiveEndTime,
		plan.MinHours, plan.MaxHours, plan.NoDoubleShift,
		plan.ID, plan.Version,
	).Scan(&plan.Version)
}

func (r *Repository) DeleteSchedulePlan(id int64) error {
	return r.deleteByID("schedule_plans", id)
}
