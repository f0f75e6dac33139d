package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/config"
	"github.com/wneessen/go-mail"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("mail worker 异常退出", "error", err)
		os.Exit(1)
	}
}

func newMailClient(cfg *config.Config) (*mail.Client, error) {
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("无法创建邮件客户端: %w", err)
	}

	// 启动时先确认邮件服务器可达
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(ctx); err != nil {
		return nil, fmt.Errorf("无法连接到邮件服务器: %w", err)
	}

	return client, nil
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	client, err := newMailClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return fmt.Errorf("无法连接到 RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("无法创建通道: %w", err)
	}
	defer ch.Close()

	// 持久化、不自动删除、非独占
	q, err := ch.QueueDeclare("email_queue", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("无法声明队列: %w", err)
	}

	// 手动确认，发送失败时可以重新入队
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("无法消费消息: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wk := &worker{from: cfg.Email.SMTP.Username, sender: client, logger: logger}

	done := make(chan struct{})
	go func() {
		defer close(done)
		wk.consume(ctx, deliveries)
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	select {
	case <-ctx.Done():
	case <-done:
	}

	logger.Info("正在关闭 mail worker...")
	stop()
	<-done
	logger.Info("mail worker 已成功关闭")
	return nil
}
