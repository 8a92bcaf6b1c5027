package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/orbit/internal/db"
	"github.com/alexanderramin/orbit/internal/domain"
)

// SQLiteStudentProfileRepo implements StudentProfileRepo using a SQLite database.
type SQLiteStudentProfileRepo struct {
	db db.DBTX
}

// NewSQLiteStudentProfileRepo creates a new SQLiteStudentProfileRepo.
func NewSQLiteStudentProfileRepo(conn db.DBTX) *SQLiteStudentProfileRepo {
	return &SQLiteStudentProfileRepo{db: conn}
}

func (r *SQLiteStudentProfileRepo) Get(ctx context.Context, studentID string) (*domain.StudentProfile, error) {
	query := `SELECT student_id, weekly_intensity, intent, lesson_only
		FROM student_profiles WHERE student_id = ?`
	row := r.db.QueryRowContext(ctx, query, studentID)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("student profile %s: %w", studentID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning student profile: %w", err)
	}
	return p, nil
}

func (r *SQLiteStudentProfileRepo) Upsert(ctx context.Context, p *domain.StudentProfile) error {
	n := p.Normalize()
	query := `INSERT INTO student_profiles (student_id, weekly_intensity, intent, lesson_only, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			weekly_intensity = excluded.weekly_intensity,
			intent = excluded.intent,
			lesson_only = excluded.lesson_only,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		n.StudentID,
		string(n.WeeklyIntensity),
		string(n.Intent),
		boolToInt(n.LessonOnly),
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting student profile: %w", err)
	}
	return nil
}

func (r *SQLiteStudentProfileRepo) List(ctx context.Context) ([]*domain.StudentProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT student_id, weekly_intensity, intent, lesson_only
		FROM student_profiles ORDER BY student_id`)
	if err != nil {
		return nil, fmt.Errorf("listing student profiles: %w", err)
	}
	defer rows.Close()

	var out []*domain.StudentProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning student profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*domain.StudentProfile, error) {
	var (
		p          domain.StudentProfile
		intensity  string
		intent     string
		lessonOnly int
	)
	if err := s.Scan(&p.StudentID, &intensity, &intent, &lessonOnly); err != nil {
		return nil, err
	}
	p.WeeklyIntensity = domain.Intensity(intensity)
	p.Intent = domain.Intent(intent)
	p.LessonOnly = intToBool(lessonOnly)
	return &p, nil
}
