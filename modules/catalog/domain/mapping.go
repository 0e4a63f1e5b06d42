package domain

import (
	"strings"
	"time"
)

// SyncStatus records whether a mapping was confirmed against the CRM catalog.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusFailed  SyncStatus = "failed"
)

func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusSynced, SyncStatusPending, SyncStatusFailed:
		return true
	default:
		return false
	}
}

// ProductMapping links a catalog product to its CRM counterpart. Unique on CatalogProductID.
type ProductMapping struct {
	CatalogProductID int64
	CRMProductID     string
	Name             string
	SyncStatus       SyncStatus
	LastSyncedAt     time.Time
}

// NewProductMapping validates and builds a mapping as written by the admin endpoint.
func NewProductMapping(catalogID int64, crmID, name string, status SyncStatus, now time.Time) (*ProductMapping, error) {
	crmID = strings.TrimSpace(crmID)
	if catalogID <= 0 || crmID == "" {
		return nil, ErrInvalidMapping
	}
	if status == "" {
		status = SyncStatusSynced
	}
	if !status.IsValid() {
		return nil, ErrInvalidMapping
	}
	return &ProductMapping{
		CatalogProductID: catalogID,
		CRMProductID:     crmID,
		Name:             strings.TrimSpace(name),
		SyncStatus:       status,
		LastSyncedAt:     now.UTC(),
	}, nil
}
