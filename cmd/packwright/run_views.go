package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"packwright/internal/api"
	"packwright/internal/ipc"
)

func buildDaemonStatusLines(resp *ipc.StatusResponse, colorize bool) []string {
	if resp == nil {
		return []string{renderStatusLine("Daemon", statusError, "Status unavailable", colorize)}
	}
	lines := make([]string, 0, 5)
	if resp.Running {
		detail := "Running"
		if resp.PID > 0 {
			detail = fmt.Sprintf("Running (pid %d)", resp.PID)
		}
		lines = append(lines, renderStatusLine("Daemon", statusOK, detail, colorize))
	} else {
		lines = append(lines, renderStatusLine("Daemon", statusWarn, "Not running", colorize))
	}
	if err := strings.TrimSpace(resp.LastError); err != "" {
		lines = append(lines, renderStatusLine("Last Error", statusError, err, colorize))
	}
	if resp.DatabasePath != "" {
		lines = append(lines, renderStatusLine("Database", statusInfo, resp.DatabasePath, colorize))
	}
	if resp.StoreRoot != "" {
		lines = append(lines, renderStatusLine("Store Root", statusInfo, resp.StoreRoot, colorize))
	}
	if resp.LastRun != nil {
		detail := fmt.Sprintf("%s (%s)", resp.LastRun.FolderName, formatStatusLabel(resp.LastRun.Status))
		lines = append(lines, renderStatusLine("Last Run", statusInfo, detail, colorize))
	}
	return lines
}

func buildPhaseHealthLines(health []ipc.PhaseHealth, colorize bool) []string {
	lines := make([]string, 0, len(health))
	for _, phase := range health {
		kind := statusOK
		if !phase.Ready {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(formatStatusLabel(phase.Name), kind, phase.Detail, colorize))
	}
	return lines
}

func buildRunStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildRunListRows(runs []api.Run) [][]string {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]api.Run, len(runs))
	copy(sorted, runs)

	sort.Slice(sorted, func(i, j int) bool {
		ti := parseRunTime(sorted[i].CreatedAt)
		tj := parseRunTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})

	rows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		folder := strings.TrimSpace(r.FolderName)
		if folder == "" {
			folder = "Unknown"
		}
		rows = append(rows, []string{
			shortRunID(r.ID),
			folder,
			formatStatusLabel(r.Status),
			formatStatusLabel(r.Phase),
			formatDisplayTime(r.CreatedAt),
		})
	}
	return rows
}

func buildApprovalOptionRows(options []api.ChoiceOption) [][]string {
	rows := make([][]string, 0, len(options))
	for _, opt := range options {
		rank := ""
		if opt.Rank > 0 {
			rank = fmt.Sprintf("%d", opt.Rank)
		}
		rows = append(rows, []string{opt.ID, opt.Text, formatStatusLabel(opt.Strategy), rank})
	}
	return rows
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t := parseRunTime(value); !t.IsZero() {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func parseRunTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000Z07:00", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func shortRunID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
