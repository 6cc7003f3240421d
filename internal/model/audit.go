package model

import "time"

// AuditAction is the kind of change recorded in the audit log.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditLog records a change to a faculty-owned resource.
type AuditLog struct {
	EntityType  string                 `json:"entity_type"`
	EntityID    int                    `json:"entity_id"`
	Action      AuditAction            `json:"action"`
	Changes     map[string]interface{} `json:"changes"`
	PerformedBy int                    `json:"performed_by"`
	At          time.Time              `json:"at"`
}
