package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const personColumns = `id, name, email, phone_number, created_at, updated_at`

// pgUniqueViolation is the SQLSTATE postgres reports for unique index conflicts
const pgUniqueViolation = "23505"

// PersonRepository reads and writes the people table. The SQL sticks to the
// subset shared by SQLite and PostgreSQL so one implementation serves both.
type PersonRepository struct {
	db *sql.DB
}

func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*models.Person, error) {
	person := &models.Person{}
	err := row.Scan(
		&person.ID, &person.Name, &person.Email, &person.PhoneNumber, &person.CreatedAt, &person.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return person, nil
}

// Create inserts a new person
func (r *PersonRepository) Create(ctx context.Context, person *models.Person) error {
	query := `
		INSERT INTO people (
			id, name, email, phone_number, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		person.ID, person.Name, person.Email, person.PhoneNumber, person.CreatedAt, person.UpdatedAt,
	)
	if err != nil {
		return translateWriteError("create person", err)
	}
	return nil
}

// GetByID retrieves a person by ID
func (r *PersonRepository) GetByID(ctx context.Context, id string) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE id = $1`

	person, err := scanPerson(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return person, nil
}

// SearchByName returns people whose name contains query, ignoring case,
// ordered by name
func (r *PersonRepository) SearchByName(ctx context.Context, query string) ([]*models.Person, error) {
	sqlQuery := `
		SELECT ` + personColumns + `
		FROM people
		WHERE LOWER(name) LIKE $1 ESCAPE '\'
		ORDER BY name ASC
	`

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return r.list(ctx, sqlQuery, pattern)
}

// GetAll returns every person ordered by name
func (r *PersonRepository) GetAll(ctx context.Context) ([]*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people ORDER BY name ASC`
	return r.list(ctx, query)
}

func (r *PersonRepository) list(ctx context.Context, query string, args ...any) ([]*models.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	people := []*models.Person{}
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}

	return people, nil
}

// Update applies the supplied fields of patch in a single UPDATE statement and
// reads the stored record back inside the same transaction
func (r *PersonRepository) Update(ctx context.Context, id string, patch models.PersonPatch, updatedAt time.Time) (*models.Person, error) {
	query := `
		UPDATE people SET
			name = COALESCE($1, name),
			email = COALESCE($2, email),
			phone_number = COALESCE($3, phone_number),
			updated_at = $4
		WHERE id = $5
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query,
		nullString(patch.Name), nullString(patch.Email), nullString(patch.PhoneNumber), updatedAt, id,
	)
	if err != nil {
		return nil, translateWriteError("update person", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	if rowsAffected == 0 {
		return nil, models.ErrNotFound
	}

	person, err := scanPerson(tx.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reload person: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	return person, nil
}

// Delete deletes a person by ID
func (r *PersonRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteAll empties the table and reports how many rows were removed
func (r *PersonRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM people`)
	if err != nil {
		return 0, fmt.Errorf("delete people: %w", err)
	}
	return result.RowsAffected()
}

// Ping checks that the database is reachable
func (r *PersonRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// translateWriteError maps driver unique-constraint failures onto
// models.ErrEmailTaken; email is the only unique column besides the key.
func translateWriteError(op string, err error) error {
	if isUniqueViolation(err) {
		return models.ErrEmailTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}

	return false
}
