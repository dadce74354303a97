package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/OldStager01/student-insights/pkg/models"
)

type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListStudents returns every stored record ordered by ID.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]models.StudentRecord, error) {
	query := `
		SELECT id, grade_id, topic, raised_hands, visited_resources, discussion,
		       student_absence_days, class, attributes
		FROM students
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.StudentRecord
	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n)
	return n, err
}

// Upsert writes the records in one transaction, replacing rows with the same ID.
func (r *StudentRepository) Upsert(ctx context.Context, students []models.StudentRecord) error {
	if len(students) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO students (id, grade_id, topic, raised_hands, visited_resources, discussion,
		                      student_absence_days, class, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			grade_id = EXCLUDED.grade_id,
			topic = EXCLUDED.topic,
			raised_hands = EXCLUDED.raised_hands,
			visited_resources = EXCLUDED.visited_resources,
			discussion = EXCLUDED.discussion,
			student_absence_days = EXCLUDED.student_absence_days,
			class = EXCLUDED.class,
			attributes = EXCLUDED.attributes,
			updated_at = NOW()`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range students {
		s := &students[i]
		attrs, err := marshalAttributes(s.Attributes)
		if err != nil {
			return fmt.Errorf("student %s: %w", s.ID, err)
		}
		_, err = stmt.ExecContext(ctx, s.ID, s.GradeID, s.Topic, s.RaisedHands, s.VisitedResources,
			s.Discussion, s.AbsenceDays, string(s.Class), attrs)
		if err != nil {
			return fmt.Errorf("student %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

func (r *StudentRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM students`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *StudentRepository) scanStudent(rows *sql.Rows) (models.StudentRecord, error) {
	var s models.StudentRecord
	var class string
	var attrs []byte

	err := rows.Scan(
		&s.ID,
		&s.GradeID,
		&s.Topic,
		&s.RaisedHands,
		&s.VisitedResources,
		&s.Discussion,
		&s.AbsenceDays,
		&class,
		&attrs,
	)
	if err != nil {
		return s, err
	}

	s.Class, err = models.ParseClass(class)
	if err != nil {
		return s, err
	}

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &s.Attributes); err != nil {
			return s, fmt.Errorf("student %s attributes: %w", s.ID, err)
		}
		if len(s.Attributes) == 0 {
			s.Attributes = nil
		}
	}

	return s, nil
}

func marshalAttributes(attrs map[string]string) ([]byte, error) {
	if len(attrs) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(attrs)
}
