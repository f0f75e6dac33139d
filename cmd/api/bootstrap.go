package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/scheduler"
	"golang.org/x/crypto/bcrypt"
)

// checkSchedulerConfig 在启动时拒绝未知的默认目标函数，而不是让每次排班请求都失败
func checkSchedulerConfig(cfg *config.Config) error {
	if _, ok := scheduler.PolicyByName(cfg.Scheduler.Policy); !ok {
		return fmt.Errorf("未知的目标函数 SCHEDULER_POLICY=%q", cfg.Scheduler.Policy)
	}
	return nil
}

type userCreator interface {
	CreateUser(user *domain.User) error
}

// ensureInitialAdmin 用户名冲突说明初始管理员已经存在，返回 false
func ensureInitialAdmin(repo userCreator, cfg *config.Config) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	admin := &domain.User{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(hash),
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Role:         domain.RoleManager,
		TargetHours:  domain.DefaultTargetHours,
	}

	err = repo.CreateUser(admin)
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key":
		return false, nil
	default:
		return false, err
	}
}

// openMailChannel 返回的 channel 已经声明好邮件队列
func openMailChannel(cfg *config.Config) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("无法连接到 rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("无法建立通道: %w", err)
	}

	if _, err := ch.QueueDeclare("email_queue", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("无法声明队列: %w", err)
	}

	return conn, ch, nil
}

// openRedis 排班锁依赖 redis，启动时确认可以连接
func openRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("无法连接到 redis: %w", err)
	}

	return rdb, nil
}
