package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/lp"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/seed"
)

func main() {
	// 日志写到 stderr，stdout 只输出排班结果
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadSchedulerConfig()
	if err != nil {
		logger.Error("无法读取配置", "error", err)
		os.Exit(1)
	}

	var rosterPath string
	var minHours, maxHours float64
	var noDoubleShift bool
	var policyName string
	var maxNodes int

	flag.StringVar(&rosterPath, "roster", "", "名单文件路径 (JSON)，为空时使用内置的演示名单")
	flag.Float64Var(&minHours, "min", cfg.MinHours, "每人最少工时")
	flag.Float64Var(&maxHours, "max", cfg.MaxHours, "每人最多工时")
	flag.BoolVar(&noDoubleShift, "no-double-shift", cfg.NoDoubleShift, "每人每天最多一个班次")
	flag.StringVar(&policyName, "policy", cfg.Policy, "目标函数 (quadratic-deficit, preferred-hours)")
	flag.IntVar(&maxNodes, "max-nodes", cfg.MaxNodes, "分支定界的节点上限")
	flag.Parse()

	workers := seed.DemoWorkers()
	hours := domain.DefaultShiftHours()
	if rosterPath != "" {
		f, err := os.Open(rosterPath)
		if err != nil {
			logger.Error("无法打开名单文件", "error", err)
			os.Exit(1)
		}
		workers, hours, err = readRoster(f)
		f.Close()
		if err != nil {
			logger.Error("无法读取名单", "error", err)
			os.Exit(1)
		}
	}

	policy, ok := scheduler.PolicyByName(policyName)
	if !ok {
		logger.Error("未知的目标函数", "policy", policyName)
		os.Exit(1)
	}

	params := &scheduler.Parameters{
		MinHoursPerPeriod: minHours,
		MaxHoursPerPeriod: maxHours,
		Constraints:       []scheduler.ConstraintKind{scheduler.ConstraintCoverage, scheduler.ConstraintHourBounds},
		Policy:            policy,
	}
	if noDoubleShift {
		params.Constraints = append(params.Constraints, scheduler.ConstraintNoDoubleShift)
	}

	solver := &lp.BranchAndBound{MaxNodes: maxNodes, Tolerance: cfg.Tolerance}

	schedule, err := scheduler.Calc(params, workers, hours, solver)
	if err != nil {
		logger.Error("排班失败", "error", err)
		os.Exit(1)
	}

	printCalendars(os.Stdout, schedule, workers)
}
