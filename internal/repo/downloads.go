// Package repo holds the download-history store.
package repo

import (
	"database/sql"
	"fmt"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"

	"github.com/Masterminds/squirrel"
)

// DownloadStore records completed downloads and reads them back for the
// history surfaces.
type DownloadStore struct {
	db *sql.DB
}

// NewDownloadStore wraps db in a DownloadStore.
func NewDownloadStore(db *sql.DB) *DownloadStore {
	return &DownloadStore{db: db}
}

// RecordDownload inserts one bookkeeping row for a completed download.
func (s *DownloadStore) RecordDownload(rec *models.DownloadRecord) error {
	query := squirrel.
		Insert(consts.DBDownloads).
		Columns(
			consts.QDLURL,
			consts.QDLPlatform,
			consts.QDLType,
			consts.QDLTitle,
			consts.QDLPath,
			consts.QDLSize,
			consts.QDLDuration,
			consts.QDLCreated,
		).
		Values(
			rec.URL,
			rec.Platform,
			rec.DownloadType,
			rec.Title,
			rec.FilePath,
			rec.FileSizeBytes,
			rec.DurationSeconds,
			rec.CreatedAt,
		)

	sqlStr, args, err := query.PlaceholderFormat(squirrel.Question).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := s.db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to insert download record: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read inserted row ID: %w", err)
	}
	return nil
}

// LatestDownloads returns the most recent download records, newest first.
func (s *DownloadStore) LatestDownloads(limit int) ([]models.DownloadRecord, error) {
	if limit <= 0 {
		limit = 25
	}

	query := squirrel.
		Select(
			consts.QDLID,
			consts.QDLURL,
			consts.QDLPlatform,
			consts.QDLType,
			consts.QDLTitle,
			consts.QDLPath,
			consts.QDLSize,
			consts.QDLDuration,
			consts.QDLCreated,
		).
		From(consts.DBDownloads).
		OrderBy(fmt.Sprintf("%s DESC", consts.QDLCreated)).
		Limit(uint64(limit))

	sqlStr, args, err := query.PlaceholderFormat(squirrel.Question).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var recs []models.DownloadRecord
	for rows.Next() {
		var rec models.DownloadRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.URL,
			&rec.Platform,
			&rec.DownloadType,
			&rec.Title,
			&rec.FilePath,
			&rec.FileSizeBytes,
			&rec.DurationSeconds,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan download row: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return recs, nil
}
