package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

type rosterWorker struct {
	Name        string              `json:"name"`
	Preferences []domain.Preference `json:"preferences"`
	TargetHours *float64            `json:"targetHours"` // 缺省为 150
	WorkedHours float64             `json:"workedHours"`
}

// rosterFile 是 -roster 指定的 JSON 文件格式，hours 缺省时使用默认工时表
type rosterFile struct {
	Hours   [][]float64    `json:"hours"`
	Workers []rosterWorker `json:"workers"`
}

func readRoster(r io.Reader) ([]domain.Worker, *domain.ShiftHours, error) {
	var f rosterFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("无法解析名单文件: %w", err)
	}

	if len(f.Workers) == 0 {
		return nil, nil, fmt.Errorf("名单中没有任何员工")
	}

	hours := domain.DefaultShiftHours()
	if f.Hours != nil {
		var err error
		if hours, err = domain.NewShiftHours(f.Hours); err != nil {
			return nil, nil, err
		}
	}

	workers := make([]domain.Worker, 0, len(f.Workers))
	for _, w := range f.Workers {
		worker := domain.NewWorker(w.Name, w.Preferences...)
		if w.TargetHours != nil {
			worker.TargetHours = *w.TargetHours
		}
		worker.WorkedHours = w.WorkedHours
		workers = append(workers, worker)
	}

	return workers, hours, nil
}
