package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

// InsertPreferenceSubmission 覆盖该员工在这个计划下的上一次提交
func (r *Repository) InsertPreferenceSubmission(submission *domain.PreferenceSubmission) error {
	return r.inTx(func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM preference_submissions WHERE user_id = $1 AND schedule_plan_id = $2`,
			submission.UserID, submission.SchedulePlanID,
		); err != nil {
			return err
		}

		query := `
			INSERT INTO preference_submissions (user_id, schedule_plan_id)
			VALUES ($1, $2)
			RETURNING id, created_at, version
		`
		if err := tx.QueryRowContext(ctx, query, submission.UserID, submission.SchedulePlanID).
			Scan(&submission.ID, &submission.CreatedAt, &submission.Version); err != nil {
			return err
		}

		query = `
			INSERT INTO preference_submission_items (preference_submission_id, day, shift)
			VALUES ($1, $2, $3)
		`
		for _, p := range submission.Preferences {
			if _, err := tx.ExecContext(ctx, query, submission.ID, p.Day, p.Shift); err != nil {
				return err
			}
		}

		return nil
	})
}

func scanPreference(s scanner) (domain.Preference, error) {
	var p domain.Preference
	err := s.Scan(&p.Day, &p.Shift)
	return p, err
}

func (r *Repository) GetPreferenceSubmissionByUserIDAndSchedulePlanID(userID int64, schedulePlanID int64) (*domain.PreferenceSubmission, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	submission := &domain.PreferenceSubmission{UserID: userID, SchedulePlanID: schedulePlanID}

	query := `
		SELECT id, created_at, version
		FROM preference_submissions
		WHERE user_id = $1 AND schedule_plan_id = $2
	`
	if err := r.dbpool.QueryRowContext(ctx, query, userID, schedulePlanID).
		Scan(&submission.ID, &submission.CreatedAt, &submission.Version); err != nil {
		return nil, err
	}

	rows, err := r.dbpool.QueryContext(ctx, `
		SELECT day, shift
		FROM preference_submission_items
		WHERE preference_submission_id = $1
		ORDER BY day, shift
	`, submission.ID)
	if err != nil {
		return nil, err
	}

	submission.Preferences, err = collect(rows, scanPreference)
	if err != nil {
		return nil, err
	}

	return submission, nil
}

// GetAllSubmissionsBySchedulePlanID 按提交 ID 排序，空偏好的提交也会返回
func (r *Repository) GetAllSubmissionsBySchedulePlanID(schedulePlanID int64) ([]*domain.PreferenceSubmission, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT ps.id, ps.user_id, psi.day, psi.shift, ps.created_at, ps.version
		FROM preference_submissions ps
		LEFT JOIN preference_submission_items psi ON ps.id = psi.preference_submission_id
		WHERE ps.schedule_plan_id = $1
		ORDER BY ps.id, psi.day, psi.shift
	`

	rows, err := r.dbpool.QueryContext(ctx, query, schedulePlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]*domain.PreferenceSubmission, 0)
	var current *domain.PreferenceSubmission

	for rows.Next() {
		s := domain.PreferenceSubmission{SchedulePlanID: schedulePlanID}
		var day, shift sql.NullInt32

		if err := rows.Scan(&s.ID, &s.UserID, &day, &shift, &s.CreatedAt, &s.Version); err != nil {
			return nil, err
		}

		if current == nil || current.ID != s.ID {
			s.Preferences = make([]domain.Preference, 0)
			current = &s
			submissions = append(submissions, current)
		}

		if day.Valid && shift.Valid {
			current.Preferences = append(current.Preferences, domain.Preference{
				Day:   domain.Day(day.Int32),
				Shift: domain.Shift(shift.Int32),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return submissions, nil
}
