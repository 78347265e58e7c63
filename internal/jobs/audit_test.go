package jobs

import (
	"context"
	"errors"
	"testing"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/service"
	"alcyxob/studio-calendar/internal/view"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubAudit struct {
	report *service.AuditReport
	err    error
}

func (s stubAudit) FindDuplicates(context.Context) (*service.AuditReport, error) {
	return s.report, s.err
}

func (s stubAudit) RemoveDuplicates(context.Context) (*service.AuditReport, int64, error) {
	return nil, 0, errors.New("not used")
}

func TestAuditJobRun(t *testing.T) {
	tests := []struct {
		name      string
		audit     stubAudit
		wantLevel zapcore.Level
		wantMsg   string
		wantLogs  int
	}{
		{
			name:      "clean",
			audit:     stubAudit{report: &service.AuditReport{Scanned: 10}},
			wantLevel: zapcore.InfoLevel,
			wantMsg:   "duplicate slot audit clean",
			wantLogs:  1,
		},
		{
			name: "duplicates",
			audit: stubAudit{report: &service.AuditReport{
				Scanned:   10,
				Removable: 1,
				Groups: []view.DuplicateGroup{{
					TrainerName: "Alex", Date: "2026-01-06", Time: "09:00 AM",
					Extra: []domain.Session{{ClientName: "Dana"}},
				}},
			}},
			wantLevel: zapcore.WarnLevel,
			wantMsg:   "duplicate slot audit found double bookings",
			wantLogs:  2,
		},
		{
			name:      "store failure",
			audit:     stubAudit{err: service.ErrStore},
			wantLevel: zapcore.ErrorLevel,
			wantMsg:   "duplicate slot audit failed",
			wantLogs:  1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			NewAuditJob(tc.audit, zap.New(core)).Run()

			entries := logs.AllUntimed()
			if len(entries) != tc.wantLogs {
				t.Fatalf("logged %d entries, want %d", len(entries), tc.wantLogs)
			}
			last := entries[len(entries)-1]
			if last.Level != tc.wantLevel || last.Message != tc.wantMsg {
				t.Errorf("last entry = %s %q", last.Level, last.Message)
			}
		})
	}
}

func TestNewScheduler(t *testing.T) {
	job := NewAuditJob(stubAudit{report: &service.AuditReport{}}, nil)

	c, err := NewScheduler("", job, nil)
	if err != nil || c != nil {
		t.Errorf("empty expression = %v, %v; want disabled", c, err)
	}
	if _, err := NewScheduler("not a schedule", job, nil); err == nil {
		t.Error("invalid expression accepted")
	}
	c, err = NewScheduler("@daily", job, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(c.Entries()))
	}
}
