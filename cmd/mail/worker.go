package main

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

type worker struct {
	from   string
	sender sender
	logger *slog.Logger
}

// handle 处理一条投递：格式错误的消息直接丢弃，发送失败的消息重新入队
func (wk *worker) handle(d amqp.Delivery) {
	// 消息中可能包含初始密码，不记录正文
	wk.logger.Info("收到消息", "size", len(d.Body))

	var msg domain.MailMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		wk.logger.Error("邮件信息反序列化失败", "error", err)
		wk.settle(d.Nack(false, false))
		return
	}

	m, err := composeMail(wk.from, &msg)
	if err != nil {
		wk.logger.Error("无法构建邮件", "type", msg.Type, "error", err)
		wk.settle(d.Nack(false, false))
		return
	}

	if err := wk.sender.DialAndSend(m); err != nil {
		wk.logger.Error("邮件发送失败", "type", msg.Type, "error", err)
		wk.settle(d.Nack(false, true))
		return
	}

	wk.logger.Info("邮件已发送", "type", msg.Type)
	wk.settle(d.Ack(false))
}

func (wk *worker) settle(err error) {
	if err != nil {
		wk.logger.Error("无法确认消息", "error", err)
	}
}

// consume 直到 ctx 结束或者 deliveries 被关闭
func (wk *worker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				wk.logger.Warn("消息通道已关闭")
				return
			}
			wk.handle(d)
		}
	}
}
