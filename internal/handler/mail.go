package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

const mailQueue = "email_queue"

// publishMail 将邮件序列化后发送到消息队列，由 cmd/mail 消费
func (h *Handler) publishMail(msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		mailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

var (
	dayLabels   = [domain.DaysPerWeek]string{"周一", "周二", "周三", "周四", "周五"}
	shiftLabels = [domain.ShiftsPerDay]string{"上午", "下午"}
)

func scheduleMail(plan *domain.SchedulePlan, user *domain.User, ws *domain.WorkerSchedule) domain.MailMessage {
	slots := make([]domain.ScheduleMailSlot, 0, len(ws.Assignments))
	for _, a := range ws.Assignments {
		slots = append(slots, domain.ScheduleMailSlot{
			Day:       dayLabels[a.Day],
			Shift:     shiftLabels[a.Shift],
			Hours:     a.Hours,
			Preferred: a.Preferred,
		})
	}

	return domain.MailMessage{
		Type: domain.MailTypeSchedulePublished,
		To:   user.Email,
		Data: domain.SchedulePublishedMailData{
			FullName:          user.FullName,
			PlanName:          plan.Name,
			Slots:             slots,
			HoursWorked:       ws.HoursWorked,
			NewRemainingHours: ws.NewRemainingHours,
		},
	}
}
