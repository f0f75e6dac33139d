package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/seed"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/utils"
)

type options struct {
	n              int
	schedulePlanID int64
}

type operation struct {
	desc string
	run  func(cfg *config.Config, repo *repository.Repository, opts options) error
}

var operations = map[int]operation{
	1: {"插入随机用户", seedUsers},
	2: {"插入随机班表模板", seedTemplates},
	3: {"插入随机排班计划", seedPlans},
	4: {"为在职员工插入随机偏好", seedSubmissions},
	5: {"插入演示员工及其偏好", seedDemo},
}

func usage() string {
	s := "要执行的操作 ("
	for i := 1; i <= len(operations); i++ {
		if i > 1 {
			s += ", "
		}
		s += fmt.Sprintf("%d: %s", i, operations[i].desc)
	}
	return s + ")"
}

func main() {
	var op int
	var opts options

	flag.IntVar(&op, "op", 0, usage())
	flag.IntVar(&opts.n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&opts.schedulePlanID, "schedule-plan-id", 0, "随机插入提交记录的排班计划 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	selected, ok := operations[op]
	if !ok {
		logger.Error("指定的操作非法", "op", op)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		os.Exit(1)
	}

	db, err := repository.Open(cfg)
	if err != nil {
		logger.Error("无法连接数据库", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := selected.run(cfg, repository.NewRepository(cfg, db), opts); err != nil {
		logger.Error("操作失败", "op", selected.desc, "error", err)
		db.Close()
		os.Exit(1)
	}
}

// insertN 逐条插入，单条失败只记录日志
func insertN(what string, n int, insert func() error) error {
	if n <= 0 {
		return fmt.Errorf("请输入合法的%s数量", what)
	}

	ok := 0
	for i := 0; i < n; i++ {
		if err := insert(); err != nil {
			slog.Error("插入失败", "what", what, "error", err)
			continue
		}
		ok++
	}

	slog.Info("插入完成", "what", what, "count", ok)
	return nil
}

func seedUsers(cfg *config.Config, repo *repository.Repository, opts options) error {
	return insertN("用户", opts.n, func() error {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			return err
		}
		return repo.CreateUser(user)
	})
}

func seedTemplates(_ *config.Config, repo *repository.Repository, opts options) error {
	return insertN("班表模板", opts.n, func() error {
		return repo.CreateScheduleTemplate(utils.GenerateRandomScheduleTemplate())
	})
}

func seedPlans(_ *config.Config, repo *repository.Repository, opts options) error {
	sts, err := repo.GetAllScheduleTemplates()
	if err != nil {
		return err
	}
	if len(sts) == 0 {
		return errors.New("请先插入班表模板")
	}

	return insertN("排班计划", opts.n, func() error {
		st := sts[rand.Intn(len(sts))]
		return repo.CreateSchedulePlan(utils.GenerateRandomSchedulePlan(st.ID))
	})
}

func seedSubmissions(_ *config.Config, repo *repository.Repository, opts options) error {
	if opts.schedulePlanID <= 0 {
		return errors.New("请输入合法的排班计划 ID")
	}

	plan, err := repo.GetSchedulePlanByID(opts.schedulePlanID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("排班计划 %d 不存在", opts.schedulePlanID)
	}
	if err != nil {
		return err
	}

	users, err := repo.GetAllUsers()
	if err != nil {
		return err
	}

	cnt := 0
	for _, user := range users {
		if !user.IsActive || user.Role != domain.RoleWorker {
			continue
		}
		if err := repo.InsertPreferenceSubmission(utils.GenerateRandomSubmission(plan, user)); err != nil {
			slog.Error("无法插入偏好提交记录", "username", user.Username, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入偏好提交记录成功", "schedule_plan_id", plan.ID, "count", cnt)
	return nil
}

func seedDemo(cfg *config.Config, repo *repository.Repository, _ options) error {
	plan, err := seed.SeedDemoRoster(repo, cfg.Seed.User.Password, cfg.Email.UserDomain)
	if err != nil {
		return err
	}

	slog.Info("插入演示数据成功", "schedule_plan_id", plan.ID)
	return nil
}
