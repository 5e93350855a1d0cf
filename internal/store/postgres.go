package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BaselineOwnedError is returned by CommitHandoff when the target project
// already carries a different baseline at write time.
type BaselineOwnedError struct {
	ProjectID           string
	ExistingBaselineID  string
	AttemptedBaselineID string
}

func (e *BaselineOwnedError) Error() string {
	return fmt.Sprintf("project %s already owns baseline %s (attempted %s)", e.ProjectID, e.ExistingBaselineID, e.AttemptedBaselineID)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const projectColumns = `id, COALESCE(baseline_id, ''), name, code, client_name, currency, description,
	mod_total, pct_ingenieros, pct_sdm, responsible, accepted_by, accepted_at,
	created_by, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	err := row.Scan(
		&p.ID, &p.BaselineID, &p.Name, &p.Code, &p.ClientName, &p.Currency, &p.Description,
		&p.ModTotal, &p.PctIngenieros, &p.PctSDM, &p.Responsible, &p.AcceptedBy, &p.AcceptedAt,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=$1`, projectID)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, err
	}
	if err != nil {
		return Project{}, fmt.Errorf("get project %s: %w", projectID, err)
	}
	return project, nil
}

func (s *PostgresStore) FindProjectByBaseline(ctx context.Context, baselineID string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE baseline_id=$1`, baselineID)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, err
	}
	if err != nil {
		return Project{}, fmt.Errorf("find project by baseline %s: %w", baselineID, err)
	}
	return project, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (s *PostgresStore) CreateProject(ctx context.Context, project Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, baseline_id, name, code, client_name, currency, description,
			mod_total, pct_ingenieros, pct_sdm, responsible, created_by, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`, project.ID, project.BaselineID, project.Name, project.Code, project.ClientName,
		project.Currency, project.Description, project.ModTotal, project.PctIngenieros,
		project.PctSDM, project.Responsible, project.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert project %s: %w", project.ID, err)
	}
	return nil
}

// CommitHandoff performs the guarded write: it re-reads the project's current
// baseline under a row lock, refuses the write if a different baseline is
// already attached, and writes the project update and the handoff record in
// one transaction. The caller commits the idempotency record only after this
// returns nil.
func (s *PostgresStore) CommitHandoff(ctx context.Context, project Project, handoff Handoff) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin handoff tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT baseline_id FROM projects WHERE id=$1 FOR UPDATE`, project.ID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, baseline_id, name, code, client_name, currency, description,
				mod_total, pct_ingenieros, pct_sdm, responsible, accepted_by, accepted_at,
				created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		`, project.ID, project.BaselineID, project.Name, project.Code, project.ClientName,
			project.Currency, project.Description, project.ModTotal, project.PctIngenieros,
			project.PctSDM, project.Responsible, project.AcceptedBy, project.AcceptedAt,
			project.CreatedBy, project.CreatedAt); err != nil {
			return fmt.Errorf("insert project %s: %w", project.ID, err)
		}
	case err != nil:
		return fmt.Errorf("read project %s baseline: %w", project.ID, err)
	default:
		if current.Valid && current.String != "" && current.String != project.BaselineID {
			return &BaselineOwnedError{
				ProjectID:           project.ID,
				ExistingBaselineID:  current.String,
				AttemptedBaselineID: project.BaselineID,
			}
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE projects SET baseline_id=$2, name=$3, code=$4, client_name=$5, currency=$6,
				description=$7, mod_total=$8, pct_ingenieros=$9, pct_sdm=$10, responsible=$11,
				accepted_by=$12, accepted_at=$13, created_by=$14, created_at=$15, updated_at=NOW()
			WHERE id=$1 AND (baseline_id IS NULL OR baseline_id=$2)
		`, project.ID, project.BaselineID, project.Name, project.Code, project.ClientName,
			project.Currency, project.Description, project.ModTotal, project.PctIngenieros,
			project.PctSDM, project.Responsible, project.AcceptedBy, project.AcceptedAt,
			project.CreatedBy, project.CreatedAt)
		if err != nil {
			return fmt.Errorf("update project %s: %w", project.ID, err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return &BaselineOwnedError{
				ProjectID:           project.ID,
				ExistingBaselineID:  current.String,
				AttemptedBaselineID: project.BaselineID,
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO handoffs (project_id, id, baseline_id, payload, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, handoff.ProjectID, handoff.ID, handoff.BaselineID, handoff.Payload, handoff.Actor, handoff.CreatedAt); err != nil {
		return fmt.Errorf("insert handoff %s/%s: %w", handoff.ProjectID, handoff.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit handoff tx: %w", err)
	}
	return nil
}

// AcceptBaseline records acceptance metadata. The update is conditional on
// the project still owning the given baseline; sql.ErrNoRows signals a
// missing project or a baseline mismatch.
func (s *PostgresStore) AcceptBaseline(ctx context.Context, projectID, baselineID, acceptedBy string, acceptedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET accepted_by=$3, accepted_at=$4, updated_at=NOW()
		WHERE id=$1 AND baseline_id=$2
	`, projectID, baselineID, acceptedBy, acceptedAt)
	if err != nil {
		return fmt.Errorf("accept baseline %s on %s: %w", baselineID, projectID, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) ListHandoffs(ctx context.Context, projectID string) ([]Handoff, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, id, baseline_id, payload, actor, created_at
		FROM handoffs WHERE project_id=$1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list handoffs for %s: %w", projectID, err)
	}
	defer rows.Close()

	var handoffs []Handoff
	for rows.Next() {
		var h Handoff
		if err := rows.Scan(&h.ProjectID, &h.ID, &h.BaselineID, &h.Payload, &h.Actor, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan handoff: %w", err)
		}
		handoffs = append(handoffs, h)
	}
	return handoffs, rows.Err()
}

func (s *PostgresStore) GetHandoff(ctx context.Context, projectID, handoffID string) (Handoff, error) {
	var h Handoff
	err := s.db.QueryRowContext(ctx, `
		SELECT project_id, id, baseline_id, payload, actor, created_at
		FROM handoffs WHERE project_id=$1 AND id=$2
	`, projectID, handoffID).Scan(&h.ProjectID, &h.ID, &h.BaselineID, &h.Payload, &h.Actor, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Handoff{}, err
	}
	if err != nil {
		return Handoff{}, fmt.Errorf("get handoff %s/%s: %w", projectID, handoffID, err)
	}
	return h, nil
}

func (s *PostgresStore) InsertAuditEntry(ctx context.Context, entry AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (action, project_id, before, after, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, entry.Action, entry.ProjectID, nullableJSON(entry.Before), nullableJSON(entry.After), entry.Actor)
	if err != nil {
		return fmt.Errorf("insert audit entry %s: %w", entry.Action, err)
	}
	return nil
}

func (s *PostgresStore) ListAuditEntries(ctx context.Context, projectID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, project_id, before, after, actor, created_at
		FROM audit_log WHERE project_id=$1 ORDER BY id DESC LIMIT $2
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries for %s: %w", projectID, err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var before, after []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.ProjectID, &before, &after, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Before = before
		e.After = after
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) ListRubros(ctx context.Context) ([]Rubro, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, updated_by, created_at, updated_at FROM rubros ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list rubros: %w", err)
	}
	defer rows.Close()

	var rubros []Rubro
	for rows.Next() {
		var r Rubro
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.UpdatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rubro: %w", err)
		}
		rubros = append(rubros, r)
	}
	return rubros, rows.Err()
}

func (s *PostgresStore) InsertRubro(ctx context.Context, rubro Rubro) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rubros (id, name, category, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, rubro.ID, rubro.Name, rubro.Category, rubro.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert rubro %s: %w", rubro.ID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateRubro(ctx context.Context, rubroID, name, category, updatedBy string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE rubros SET name=$2, category=$3, updated_by=$4, updated_at=NOW() WHERE id=$1
	`, rubroID, name, category, updatedBy)
	if err != nil {
		return fmt.Errorf("update rubro %s: %w", rubroID, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) DeleteRubro(ctx context.Context, rubroID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rubros WHERE id=$1`, rubroID)
	if err != nil {
		return fmt.Errorf("delete rubro %s: %w", rubroID, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, role, created_at, updated_at
		FROM users WHERE email=$1
	`, email).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, err
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, role, created_at, updated_at
		FROM users WHERE id=$1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, err
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`, user.ID, user.DisplayName, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", user.Email, err)
	}
	return nil
}

func (s *PostgresStore) SummaryCounts(ctx context.Context) (projects, handoffs, accepted int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM handoffs),
			(SELECT COUNT(*) FROM projects WHERE accepted_at IS NOT NULL)
	`).Scan(&projects, &handoffs, &accepted)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("summary counts: %w", err)
	}
	return projects, handoffs, accepted, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
