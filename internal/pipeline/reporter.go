package pipeline

import (
	"fmt"
	"log"
)

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec) {}
func (nopReporter) OnPlayerStart(string, int, int) {}
func (nopReporter) OnPlayerProcessed(PlayerResult) {}
func (nopReporter) OnProgress(string, int, int) {}
func (nopReporter) OnJobComplete(*Summary) {}
func (nopReporter) OnJobError(error) {}

// MultiReporter fans callbacks out to several reporters
type MultiReporter []Reporter

func (m MultiReporter) OnJobStart(spec JobSpec) {
	for _, r := range m {
		r.OnJobStart(spec)
	}
}

func (m MultiReporter) OnPlayerStart(label string, index, total int) {
	for _, r := range m {
		r.OnPlayerStart(label, index, total)
	}
}

func (m MultiReporter) OnPlayerProcessed(result PlayerResult) {
	for _, r := range m {
		r.OnPlayerProcessed(result)
	}
}

func (m MultiReporter) OnProgress(message string, current, total int) {
	for _, r := range m {
		r.OnProgress(message, current, total)
	}
}

func (m MultiReporter) OnJobComplete(summary *Summary) {
	for _, r := range m {
		r.OnJobComplete(summary)
	}
}

func (m MultiReporter) OnJobError(err error) {
	for _, r := range m {
		r.OnJobError(err)
	}
}

// LogReporter writes progress to a logger
type LogReporter struct {
	Logger *log.Logger
}

func (l LogReporter) printf(format string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (l LogReporter) OnJobStart(spec JobSpec) {
	l.printf("Starting %s job (store=%v upload=%v dry_run=%v)", spec.Type, spec.Store, spec.Upload, spec.DryRun)
}

func (l LogReporter) OnPlayerStart(label string, index, total int) {
	l.printf("[%d/%d] %s", index+1, total, label)
}

func (l LogReporter) OnPlayerProcessed(result PlayerResult) {
	if result.Error != "" {
		l.printf("  ✗ %s: %s", playerLabel(result), result.Error)
	}
}

func (l LogReporter) OnProgress(message string, current, total int) {
	if total > 0 {
		l.printf("[%d/%d] %s", current, total, message)
		return
	}
	l.printf("%s", message)
}

func (l LogReporter) OnJobComplete(summary *Summary) {
	l.printf("Players parsed: %d", summary.Players)
	l.printf("Season records: %d", summary.SeasonRecords)
	l.printf("Goalie records: %d", summary.GoalieRecords)
	if summary.Stored > 0 || summary.Uploaded > 0 {
		l.printf("Stored: %d  Uploaded: %d", summary.Stored, summary.Uploaded)
	}
	if summary.Failed > 0 {
		l.printf("⚠️  Failed: %d", summary.Failed)
	}
}

func (l LogReporter) OnJobError(err error) {
	l.printf("❌ %v", err)
}

func playerLabel(result PlayerResult) string {
	if result.Name != "" {
		return result.Name
	}
	return fmt.Sprintf("hockeydb %d", result.HockeyDBID)
}
