package repository

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

func newRepositoryMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5

	return NewRepository(cfg, db), mock
}

var userColumns = []string{"id", "username", "password_hash", "full_name", "email", "role", "is_active", "target_hours", "worked_hours", "created_at", "version"}

func TestUsers(t *testing.T) {
	now := time.Now()

	t.Run("reads hours with the user", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		rows := sqlmock.NewRows(userColumns).
			AddRow(7, "wxm", "hash", "王小明", "wxm@example.com", "员工", true, 150.0, 32.5, now, 1)
		mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		user, err := repo.GetUserByID(7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, domain.RoleWorker, user.Role)
		assert.Equal(t, 150.0, user.TargetHours)
		assert.Equal(t, 32.5, user.WorkedHours)
		assert.Equal(t, 117.5, user.Worker(nil).RemainingHours())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates a user with its hours", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("wxm", "hash", "王小明", "wxm@example.com", "员工", 150.0, 0.0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "version"}).AddRow(3, true, now, 1))

		user := &domain.User{Username: "wxm", PasswordHash: "hash", FullName: "王小明", Email: "wxm@example.com", Role: domain.RoleWorker, TargetHours: 150}
		require.NoError(t, repo.CreateUser(user))
		assert.Equal(t, int64(3), user.ID)
		assert.True(t, user.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates with optimistic locking", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
			WithArgs("hash", "王小明", "wxm@example.com", "员工", false, 150.0, 40.0, int64(3), int32(1)).
			WillReturnError(sql.ErrNoRows)

		user := &domain.User{ID: 3, PasswordHash: "hash", FullName: "王小明", Email: "wxm@example.com", Role: domain.RoleWorker, TargetHours: 150, WorkedHours: 40, Version: 1}
		require.ErrorIs(t, repo.UpdateUser(user), sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lists users in id order", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		rows := sqlmock.NewRows(userColumns).
			AddRow(1, "admin", "hash", "管理员", "admin@example.com", "管理员", true, 150.0, 0.0, now, 1).
			AddRow(2, "wxm", "hash", "王小明", "wxm@example.com", "员工", false, 120.0, 8.0, now, 3)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users") + `\s+ORDER BY id`).
			WillReturnRows(rows)

		users, err := repo.GetAllUsers()
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, domain.RoleManager, users[0].Role)
		assert.False(t, users[1].IsActive)
		assert.Equal(t, int32(3), users[1].Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes by id", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
			WithArgs(int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DeleteUser(4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestScheduleTemplates(t *testing.T) {
	now := time.Now()
	columns := []string{"id", "name", "description", "created_at", "version", "id", "day", "shift", "start_time", "end_time"}

	t.Run("aggregates slots into the template", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		rows := sqlmock.NewRows(columns).
			AddRow(2, "默认", "", now, 1, 11, 0, 0, "08:00:00", "12:00:00").
			AddRow(2, "默认", "", now, 1, 12, 0, 1, "13:00:00", "19:00:00")
		mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_templates st")).
			WithArgs(int64(2)).
			WillReturnRows(rows)

		st, err := repo.GetScheduleTemplate(2)
		require.NoError(t, err)
		assert.Equal(t, "默认", st.Name)
		require.Len(t, st.Slots, 2)
		assert.Equal(t, domain.Afternoon, st.Slots[1].Shift)

		hours, err := st.Slots[1].Hours()
		require.NoError(t, err)
		assert.Equal(t, 6.0, hours)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps a template without slots", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		rows := sqlmock.NewRows(columns).AddRow(2, "空模板", "", now, 1, nil, nil, nil, nil, nil)
		mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_templates st")).
			WithArgs(int64(2)).
			WillReturnRows(rows)

		st, err := repo.GetScheduleTemplate(2)
		require.NoError(t, err)
		assert.Empty(t, st.Slots)
	})

	t.Run("splits joined rows into templates", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		rows := sqlmock.NewRows(columns).
			AddRow(1, "甲", "", now, 1, 10, 0, 0, "08:00:00", "12:00:00").
			AddRow(2, "乙", "", now, 1, nil, nil, nil, nil, nil).
			AddRow(3, "丙", "", now, 2, 30, 4, 1, "13:00:00", "18:00:00").
			AddRow(3, "丙", "", now, 2, 31, 4, 0, "08:00:00", "12:00:00")
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY st.id")).
			WillReturnRows(rows)

		sts, err := repo.GetAllScheduleTemplates()
		require.NoError(t, err)
		require.Len(t, sts, 3)
		assert.Len(t, sts[0].Slots, 1)
		assert.Empty(t, sts[1].Slots)
		assert.Len(t, sts[2].Slots, 2)
		assert.Equal(t, int32(2), sts[2].Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a missing template", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_templates st")).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.GetScheduleTemplate(9)
		require.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("creates the template and its slots in one transaction", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedule_templates")).
			WithArgs("默认", "描述").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(4, now, 1))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedule_template_slots")).
			WithArgs(int64(4), 0, 0, "08:00:00", "12:00:00").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(40))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedule_template_slots")).
			WithArgs(int64(4), 0, 1, "13:00:00", "18:00:00").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
		mock.ExpectCommit()

		st := &domain.ScheduleTemplate{
			Name:        "默认",
			Description: "描述",
			Slots: []domain.ScheduleTemplateSlot{
				{Day: domain.Monday, Shift: domain.Morning, StartTime: "08:00:00", EndTime: "12:00:00"},
				{Day: domain.Monday, Shift: domain.Afternoon, StartTime: "13:00:00", EndTime: "18:00:00"},
			},
		}
		require.NoError(t, repo.CreateScheduleTemplate(st))
		assert.Equal(t, int64(4), st.ID)
		assert.Equal(t, int64(41), st.Slots[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when a slot fails", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedule_templates")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(4, now, 1))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedule_template_slots")).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		st := &domain.ScheduleTemplate{Slots: []domain.ScheduleTemplateSlot{{StartTime: "08:00:00", EndTime: "12:00:00"}}}
		require.ErrorIs(t, repo.CreateScheduleTemplate(st), sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSchedulePlans(t *testing.T) {
	now := time.Now()

	repo, mock := newRepositoryMock(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "submission_start_time", "submission_end_time", "active_start_time", "active_end_time", "schedule_template_id", "min_hours", "max_hours", "no_double_shift", "created_at", "version"}).
		AddRow(5, "第一周", "", now, now, now, now, 2, 1.0, 12.0, true, now, 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_plans")).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	plan, err := repo.GetSchedulePlanByID(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), plan.ID)
	assert.Equal(t, int64(2), plan.ScheduleTemplateID)
	assert.Equal(t, 1.0, plan.MinHours)
	assert.Equal(t, 12.0, plan.MaxHours)
	assert.True(t, plan.NoDoubleShift)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceSubmissions(t *testing.T) {
	now := time.Now()

	t.Run("replaces the previous submission", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM preference_submissions")).
			WithArgs(int64(7), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO preference_submissions")).
			WithArgs(int64(7), int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(8, now, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO preference_submission_items")).
			WithArgs(int64(8), 1, 0).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO preference_submission_items")).
			WithArgs(int64(8), 4, 1).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		submission := &domain.PreferenceSubmission{
			SchedulePlanID: 5,
			UserID:         7,
			Preferences: []domain.Preference{
				{Day: domain.Tuesday, Shift: domain.Morning},
				{Day: domain.Friday, Shift: domain.Afternoon},
			},
		}
		require.NoError(t, repo.InsertPreferenceSubmission(submission))
		assert.Equal(t, int64(8), submission.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("groups preferences by submission in order", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		rows := sqlmock.NewRows([]string{"id", "user_id", "day", "shift", "created_at", "version"}).
			AddRow(1, 7, 0, 0, now, 1).
			AddRow(1, 7, 3, 1, now, 1).
			AddRow(2, 9, nil, nil, now, 1).
			AddRow(3, 4, 2, 0, now, 1)
		mock.ExpectQuery(regexp.QuoteMeta("FROM preference_submissions ps")).
			WithArgs(int64(5)).
			WillReturnRows(rows)

		submissions, err := repo.GetAllSubmissionsBySchedulePlanID(5)
		require.NoError(t, err)
		require.Len(t, submissions, 3)
		assert.Equal(t, int64(7), submissions[0].UserID)
		assert.Equal(t, []domain.Preference{
			{Day: domain.Monday, Shift: domain.Morning},
			{Day: domain.Thursday, Shift: domain.Afternoon},
		}, submissions[0].Preferences)
		assert.Empty(t, submissions[1].Preferences)
		assert.Equal(t, domain.Wednesday, submissions[2].Preferences[0].Day)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reads a single submission", func(t *testing.T) {
		repo, mock := newRepositoryMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM preference_submissions")).
			WithArgs(int64(7), int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(8, now, 1))
		mock.ExpectQuery(regexp.QuoteMeta("FROM preference_submission_items")).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"day", "shift"}).AddRow(4, 1))

		submission, err := repo.GetPreferenceSubmissionByUserIDAndSchedulePlanID(7, 5)
		require.NoError(t, err)
		assert.Equal(t, []domain.Preference{{Day: domain.Friday, Shift: domain.Afternoon}}, submission.Preferences)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
