package run

import (
	"database/sql"
	"errors"
	"time"
)

const runColumns = "id, folder_ref, folder_name, status, revision, state_json, error_message, created_at, updated_at, last_heartbeat"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id               string
		folderRef        string
		folderName       string
		statusStr        string
		revision         int64
		stateJSON        sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&folderRef,
		&folderName,
		&statusStr,
		&revision,
		&stateJSON,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	r := &Run{
		ID:           id,
		FolderRef:    folderRef,
		FolderName:   folderName,
		Status:       Status(statusStr),
		Revision:     revision,
		StateJSON:    stateJSON.String,
		ErrorMessage: errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		r.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		r.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			r.LastHeartbeat = &heartbeat
		}
	}
	return r, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
