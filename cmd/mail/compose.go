package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

type mailKind struct {
	file    string
	subject string
	data    func() any // 返回模板数据的指针，消息中的 data 会被解码到这里
}

var mailKinds = map[string]mailKind{
	domain.MailTypeCreateUser: {
		file:    "templates/new_account_email.html",
		subject: "排班系统 - 账户信息",
		data:    func() any { return &domain.CreateUserMailData{} },
	},
	domain.MailTypeSchedulePublished: {
		file:    "templates/schedule_published_email.html",
		subject: "排班系统 - 排班结果",
		data:    func() any { return &domain.SchedulePublishedMailData{} },
	},
}

// decodeData 经过消息队列后 data 是 map[string]any，需要转换回对应的结构体模板才能取到字段
func (k mailKind) decodeData(raw any) (any, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	data := k.data()
	if err := json.Unmarshal(b, data); err != nil {
		return nil, err
	}
	return data, nil
}

// composeMail 根据邮件类型渲染模板，返回的错误都不值得重试
func composeMail(from string, m *domain.MailMessage) (*mail.Msg, error) {
	kind, ok := mailKinds[m.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型 %q", m.Type)
	}

	data, err := kind.decodeData(m.Data)
	if err != nil {
		return nil, fmt.Errorf("邮件数据格式错误: %w", err)
	}

	tmpl, err := template.ParseFS(templateFS, kind.file)
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(kind.subject)

	return msg, nil
}
