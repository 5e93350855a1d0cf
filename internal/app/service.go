package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"finz/api/internal/auth"
	"finz/api/internal/authpw"
	"finz/api/internal/config"
	"finz/api/internal/idempotency"
	"finz/api/internal/rbac"
	"finz/api/internal/store"
	"finz/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Email        string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

// HandoffResult is the response tuple stored per idempotency key and
// replayed verbatim to duplicate submissions.
type HandoffResult struct {
	ProjectID  string
	HandoffID  string
	BaselineID string
	Replayed   bool
}

// SystemActor is recorded when a handoff arrives without an acting
// identity, e.g. from an internal batch job.
const SystemActor = "system"

const (
	auditHandoffCommitted           = "handoff.committed"
	auditHandoffRejectedValidation  = "handoff.rejected.validation"
	auditHandoffRejectedIdempotency = "handoff.rejected.idempotency"
	auditHandoffRejectedCollision   = "handoff.rejected.collision"
	auditBaselineAccepted           = "baseline.accepted"
	auditProjectCreated             = "project.created"
)

type dataStore interface {
	GetProject(context.Context, string) (store.Project, error)
	FindProjectByBaseline(context.Context, string) (store.Project, error)
	ListProjects(context.Context) ([]store.Project, error)
	CreateProject(context.Context, store.Project) error
	CommitHandoff(context.Context, store.Project, store.Handoff) error
	AcceptBaseline(context.Context, string, string, string, time.Time) error
	ListHandoffs(context.Context, string) ([]store.Handoff, error)
	GetHandoff(context.Context, string, string) (store.Handoff, error)
	InsertAuditEntry(context.Context, store.AuditEntry) error
	ListAuditEntries(context.Context, string, int) ([]store.AuditEntry, error)
	ListRubros(context.Context) ([]store.Rubro, error)
	InsertRubro(context.Context, store.Rubro) error
	UpdateRubro(context.Context, string, string, string, string) error
	DeleteRubro(context.Context, string) error
	GetUserByEmail(context.Context, string) (store.User, error)
	GetUserByID(context.Context, string) (store.User, error)
	CreateUser(context.Context, store.User) error
	SummaryCounts(context.Context) (int, int, int, error)
	Ping(ctx context.Context) error
}

type idempotencyStore interface {
	Lookup(context.Context, string) (*idempotency.Record, error)
	Reserve(context.Context, string, string) (bool, error)
	Commit(context.Context, string, string, idempotency.Result) error
	Release(context.Context, string) error
	Ping(ctx context.Context) error
}

type sessionStore interface {
	SaveRefreshSession(context.Context, string, store.User, time.Time) error
	LookupRefreshSession(context.Context, string) (store.User, error)
	RevokeRefreshSession(context.Context, string) error
}

type searchService interface {
	SearchProjects(ctx context.Context, query string, limit, offset int) (map[string]any, error)
	IndexProject(ctx context.Context, project store.Project) error
}

type Service struct {
	cfg          config.Config
	store        dataStore
	idem         idempotencyStore
	sessions     sessionStore
	search       searchService
	authSvc      *authpw.Service
	pollAttempts int
	pollInterval time.Duration
}

func New(cfg config.Config, dataStore *store.PostgresStore, idemStore idempotencyStore, sessions sessionStore, search searchService) *Service {
	return &Service{
		cfg:          cfg,
		store:        dataStore,
		idem:         idemStore,
		sessions:     sessions,
		search:       search,
		authSvc:      authpw.NewService(dataStore),
		pollAttempts: 10,
		pollInterval: 150 * time.Millisecond,
	}
}

// SubmitHandoff runs the full resolution pipeline for one submission.
// The actor is passed explicitly so ownership preservation stays
// independent of any ambient request state.
func (s *Service) SubmitHandoff(ctx context.Context, actor, pathProjectID, idempotencyKey string, rawBody []byte) (HandoffResult, error) {
	if strings.TrimSpace(actor) == "" {
		actor = SystemActor
	}

	normalized, err := NormalizeHandoff(rawBody)
	if err != nil {
		s.audit(ctx, auditHandoffRejectedValidation, pathProjectID, nil, map[string]any{"error": err.Error()}, actor)
		return HandoffResult{}, err
	}

	if strings.TrimSpace(idempotencyKey) == "" {
		err := &ValidationError{Message: "invalid handoff payload", Fields: []string{"Idempotency-Key header is required"}}
		s.audit(ctx, auditHandoffRejectedValidation, pathProjectID, nil, map[string]any{"error": err.Error()}, actor)
		return HandoffResult{}, err
	}

	record, err := s.idem.Lookup(ctx, idempotencyKey)
	if err != nil {
		return HandoffResult{}, &StorageError{Op: "idempotency lookup", Retryable: true, Err: err}
	}
	if record != nil {
		return s.resolveExistingRecord(ctx, actor, pathProjectID, idempotencyKey, normalized.BaselineID, record)
	}

	claimed, err := s.idem.Reserve(ctx, idempotencyKey, normalized.BaselineID)
	if err != nil {
		return HandoffResult{}, &StorageError{Op: "idempotency reserve", Retryable: true, Err: err}
	}
	if !claimed {
		// Another request claimed the key between Lookup and Reserve.
		record, err := s.idem.Lookup(ctx, idempotencyKey)
		if err != nil {
			return HandoffResult{}, &StorageError{Op: "idempotency lookup", Retryable: true, Err: err}
		}
		if record == nil {
			return HandoffResult{}, &StorageError{Op: "idempotency reserve", Retryable: true, Err: errors.New("reservation lost and record missing")}
		}
		return s.resolveExistingRecord(ctx, actor, pathProjectID, idempotencyKey, normalized.BaselineID, record)
	}

	result, err := s.resolveAndCommit(ctx, actor, pathProjectID, idempotencyKey, normalized)
	if err != nil {
		// Free the key so a corrected retry is not locked out for the
		// full retention window.
		if releaseErr := s.idem.Release(ctx, idempotencyKey); releaseErr != nil {
			log.Printf(`{"event":"idempotency_release_failed","key":"%s","error":"%v"}`, idempotencyKey, releaseErr)
		}
		return HandoffResult{}, err
	}
	return result, nil
}

// resolveExistingRecord handles a submission whose idempotency key is
// already known: replay a committed result, reject a baseline mismatch,
// or wait out another request's in-flight reservation.
func (s *Service) resolveExistingRecord(ctx context.Context, actor, pathProjectID, idempotencyKey, baselineID string, record *idempotency.Record) (HandoffResult, error) {
	if record.BaselineID != baselineID {
		err := &IdempotencyConflictError{
			Key:                idempotencyKey,
			ExistingBaselineID: record.BaselineID,
			NewBaselineID:      baselineID,
		}
		s.audit(ctx, auditHandoffRejectedIdempotency, pathProjectID, nil, map[string]any{
			"idempotencyKey":     idempotencyKey,
			"existingBaselineId": record.BaselineID,
			"newBaselineId":      baselineID,
		}, actor)
		return HandoffResult{}, err
	}

	if record.Status == idempotency.StatusCommitted && record.Result != nil {
		return HandoffResult{
			ProjectID:  record.Result.ProjectID,
			HandoffID:  record.Result.HandoffID,
			BaselineID: record.Result.BaselineID,
			Replayed:   true,
		}, nil
	}

	// The winner is still writing; poll for its commit with a bounded
	// budget rather than hanging.
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return HandoffResult{}, &StorageError{Op: "idempotency poll", Retryable: true, Err: ctx.Err()}
		case <-time.After(s.pollInterval):
		}

		current, err := s.idem.Lookup(ctx, idempotencyKey)
		if err != nil {
			return HandoffResult{}, &StorageError{Op: "idempotency poll", Retryable: true, Err: err}
		}
		if current == nil {
			// The winner failed and released the key; the caller may retry.
			return HandoffResult{}, &StorageError{Op: "idempotency poll", Retryable: true, Err: errors.New("reservation released before commit")}
		}
		if current.Status == idempotency.StatusCommitted && current.Result != nil {
			return HandoffResult{
				ProjectID:  current.Result.ProjectID,
				HandoffID:  current.Result.HandoffID,
				BaselineID: current.Result.BaselineID,
				Replayed:   true,
			}, nil
		}
	}

	return HandoffResult{}, &StorageError{Op: "idempotency poll", Retryable: true, Err: errors.New("in-flight reservation did not commit in time")}
}

// resolveAndCommit runs resolution, hydration, and the guarded write for
// a submission that holds the idempotency reservation.
func (s *Service) resolveAndCommit(ctx context.Context, actor, pathProjectID, idempotencyKey string, normalized NormalizedHandoff) (HandoffResult, error) {
	existing, targetID, err := s.resolveProject(ctx, pathProjectID, normalized.BaselineID)
	if err != nil {
		return HandoffResult{}, err
	}

	var before json.RawMessage
	if existing != nil {
		snapshot, err := json.Marshal(projectPayload(*existing))
		if err == nil {
			before = snapshot
		}
	}

	now := time.Now().UTC()
	project := hydrateProject(existing, normalized, actor, now)
	project.ID = targetID

	handoff := store.Handoff{
		ID:         util.NewID("handoff"),
		ProjectID:  project.ID,
		BaselineID: normalized.BaselineID,
		Payload:    normalized.Raw,
		Actor:      actor,
		CreatedAt:  now,
	}

	if err := s.store.CommitHandoff(ctx, project, handoff); err != nil {
		var owned *store.BaselineOwnedError
		if errors.As(err, &owned) {
			collision := &BaselineCollisionError{
				ProjectID:          owned.ProjectID,
				ExistingBaselineID: owned.ExistingBaselineID,
				NewBaselineID:      owned.AttemptedBaselineID,
			}
			s.audit(ctx, auditHandoffRejectedCollision, owned.ProjectID, before, map[string]any{
				"existingBaselineId": owned.ExistingBaselineID,
				"newBaselineId":      owned.AttemptedBaselineID,
			}, actor)
			return HandoffResult{}, collision
		}
		return HandoffResult{}, &StorageError{Op: "handoff write", Retryable: true, Err: err}
	}

	after, _ := json.Marshal(projectPayload(project))
	s.audit(ctx, auditHandoffCommitted, project.ID, before, after, actor)

	if s.search != nil {
		if err := s.search.IndexProject(ctx, project); err != nil {
			log.Printf(`{"event":"search_index_failed","project_id":"%s","error":"%v"}`, project.ID, err)
		}
	}

	// The idempotency commit is sequenced last so a crash mid-pipeline
	// never leaves a committed record pointing at an absent handoff.
	result := idempotency.Result{
		ProjectID:  project.ID,
		HandoffID:  handoff.ID,
		BaselineID: normalized.BaselineID,
	}
	if err := s.idem.Commit(ctx, idempotencyKey, normalized.BaselineID, result); err != nil {
		// The handoff is durable; replays of this key will poll and get a
		// retryable error until the reservation expires.
		log.Printf(`{"event":"idempotency_commit_failed","key":"%s","error":"%v"}`, idempotencyKey, err)
	}

	return HandoffResult{
		ProjectID:  project.ID,
		HandoffID:  handoff.ID,
		BaselineID: normalized.BaselineID,
	}, nil
}

// resolveProject decides which project record a baseline lands on and
// returns the target id together with the existing metadata, if any. It
// never returns a project currently bound to a foreign baseline; the
// write path re-checks under a row lock to close the remaining race.
func (s *Service) resolveProject(ctx context.Context, pathProjectID, baselineID string) (*store.Project, string, error) {
	pathProjectID = strings.TrimSpace(pathProjectID)
	pathKnownForeign := false

	if pathProjectID != "" {
		project, err := s.store.GetProject(ctx, pathProjectID)
		switch {
		case err == nil:
			if project.BaselineID == "" || project.BaselineID == baselineID {
				return &project, project.ID, nil
			}
			// Path project is bound to a different baseline; it must not
			// be reused even if no owner is found below.
			pathKnownForeign = true
		case errors.Is(err, sql.ErrNoRows):
			// Unknown path id; an owner lookup decides whether the
			// baseline already lives elsewhere.
		default:
			return nil, "", &StorageError{Op: "project read", Retryable: true, Err: err}
		}
	}

	owner, err := s.store.FindProjectByBaseline(ctx, baselineID)
	switch {
	case err == nil:
		return &owner, owner.ID, nil
	case errors.Is(err, sql.ErrNoRows):
		if pathProjectID != "" && !pathKnownForeign {
			return nil, pathProjectID, nil
		}
		return nil, util.NewProjectID(), nil
	default:
		return nil, "", &StorageError{Op: "baseline owner lookup", Retryable: true, Err: err}
	}
}

// hydrateProject merges the normalized payload over the resolved
// project's existing metadata. Ownership fields always win from the
// existing record so a replay under a system actor cannot clobber the
// original author's attribution. On first contact ownership defaults
// from the payload's acceptance metadata, then from the actor.
func hydrateProject(existing *store.Project, normalized NormalizedHandoff, actor string, now time.Time) store.Project {
	createdBy := normalized.AcceptedBy
	if createdBy == "" {
		createdBy = actor
	}
	project := store.Project{
		BaselineID:    normalized.BaselineID,
		Name:          normalized.ProjectName,
		Code:          normalized.ProjectCode,
		ClientName:    normalized.ClientName,
		Currency:      normalized.Currency,
		Description:   normalized.Description,
		ModTotal:      normalized.ModTotal,
		PctIngenieros: normalized.PctIngenieros,
		PctSDM:        normalized.PctSDM,
		Responsible:   normalized.Responsible,
		AcceptedBy:    normalized.AcceptedBy,
		AcceptedAt:    normalized.AcceptedAt,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}
	if project.Currency == "" {
		project.Currency = "USD"
	}

	if existing == nil {
		return project
	}

	project.ID = existing.ID
	project.CreatedBy = existing.CreatedBy
	project.CreatedAt = existing.CreatedAt
	if project.Responsible == "" {
		project.Responsible = existing.Responsible
	}
	if project.AcceptedBy == "" {
		project.AcceptedBy = existing.AcceptedBy
	}
	if project.AcceptedAt == nil {
		project.AcceptedAt = existing.AcceptedAt
	}
	if project.Name == "" {
		project.Name = existing.Name
	}
	if project.Code == "" {
		project.Code = existing.Code
	}
	if project.ClientName == "" {
		project.ClientName = existing.ClientName
	}
	if project.Description == "" {
		project.Description = existing.Description
	}
	return project
}

// audit records one entry per terminal request state. Failures are
// logged; they never mask the primary result.
func (s *Service) audit(ctx context.Context, action, projectID string, before, after any, actor string) {
	entry := store.AuditEntry{
		Action:    action,
		ProjectID: projectID,
		Actor:     actor,
	}
	if before != nil {
		if raw, err := toRawJSON(before); err == nil {
			entry.Before = raw
		}
	}
	if after != nil {
		if raw, err := toRawJSON(after); err == nil {
			entry.After = raw
		}
	}
	if err := s.store.InsertAuditEntry(ctx, entry); err != nil {
		log.Printf(`{"event":"audit_write_failed","action":"%s","project_id":"%s","error":"%v"}`, action, projectID, err)
	}
}

func toRawJSON(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	}
	return json.Marshal(value)
}

// Project and catalog operations

func (s *Service) GetProject(ctx context.Context, projectID string) (map[string]any, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return projectPayload(project), nil
}

func (s *Service) ListProjects(ctx context.Context) ([]map[string]any, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(projects))
	for _, project := range projects {
		items = append(items, projectPayload(project))
	}
	return items, nil
}

func (s *Service) CreateProject(ctx context.Context, actor, name, code, clientName, currency, description string) (map[string]any, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Message: "invalid project", Fields: []string{"name is required"}}
	}
	if currency == "" {
		currency = "USD"
	}
	project := store.Project{
		ID:          util.NewProjectID(),
		Name:        strings.TrimSpace(name),
		Code:        strings.TrimSpace(code),
		ClientName:  strings.TrimSpace(clientName),
		Currency:    currency,
		Description: description,
		Responsible: actor,
		CreatedBy:   actor,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	after, _ := json.Marshal(projectPayload(project))
	s.audit(ctx, auditProjectCreated, project.ID, nil, after, actor)
	if s.search != nil {
		if err := s.search.IndexProject(ctx, project); err != nil {
			log.Printf(`{"event":"search_index_failed","project_id":"%s","error":"%v"}`, project.ID, err)
		}
	}
	return projectPayload(project), nil
}

// AcceptBaseline records who signed off on a project's current baseline.
// The update is conditional on the baseline still matching.
func (s *Service) AcceptBaseline(ctx context.Context, actor, projectID, baselineID, acceptedBy string) (map[string]any, error) {
	if strings.TrimSpace(baselineID) == "" {
		return nil, &ValidationError{Message: "invalid acceptance", Fields: []string{"baseline_id is required"}}
	}
	if strings.TrimSpace(acceptedBy) == "" {
		acceptedBy = actor
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	before, _ := json.Marshal(projectPayload(project))

	acceptedAt := time.Now().UTC()
	if err := s.store.AcceptBaseline(ctx, projectID, baselineID, acceptedBy, acceptedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &BaselineCollisionError{
				ProjectID:          projectID,
				ExistingBaselineID: project.BaselineID,
				NewBaselineID:      baselineID,
			}
		}
		return nil, err
	}

	project.AcceptedBy = acceptedBy
	project.AcceptedAt = &acceptedAt
	after, _ := json.Marshal(projectPayload(project))
	s.audit(ctx, auditBaselineAccepted, projectID, before, after, actor)

	return projectPayload(project), nil
}

func (s *Service) ListHandoffs(ctx context.Context, projectID string) ([]map[string]any, error) {
	handoffs, err := s.store.ListHandoffs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(handoffs))
	for _, handoff := range handoffs {
		items = append(items, handoffPayload(handoff))
	}
	return items, nil
}

func (s *Service) GetHandoff(ctx context.Context, projectID, handoffID string) (map[string]any, error) {
	handoff, err := s.store.GetHandoff(ctx, projectID, handoffID)
	if err != nil {
		return nil, err
	}
	return handoffPayload(handoff), nil
}

func (s *Service) ListAuditEvents(ctx context.Context, projectID string, limit int) ([]map[string]any, error) {
	entries, err := s.store.ListAuditEntries(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		item := map[string]any{
			"id":        entry.ID,
			"action":    entry.Action,
			"projectId": entry.ProjectID,
			"actor":     entry.Actor,
			"createdAt": entry.CreatedAt.Format(time.RFC3339),
		}
		if len(entry.Before) > 0 {
			item["before"] = json.RawMessage(entry.Before)
		}
		if len(entry.After) > 0 {
			item["after"] = json.RawMessage(entry.After)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) ListRubros(ctx context.Context) ([]map[string]any, error) {
	rubros, err := s.store.ListRubros(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(rubros))
	for _, rubro := range rubros {
		items = append(items, rubroPayload(rubro))
	}
	return items, nil
}

func (s *Service) CreateRubro(ctx context.Context, actor, name, category string) (map[string]any, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Message: "invalid rubro", Fields: []string{"name is required"}}
	}
	rubro := store.Rubro{
		ID:        util.NewID("rubro"),
		Name:      strings.TrimSpace(name),
		Category:  strings.TrimSpace(category),
		UpdatedBy: actor,
	}
	if err := s.store.InsertRubro(ctx, rubro); err != nil {
		return nil, err
	}
	return rubroPayload(rubro), nil
}

func (s *Service) UpdateRubro(ctx context.Context, actor, rubroID, name, category string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Message: "invalid rubro", Fields: []string{"name is required"}}
	}
	return s.store.UpdateRubro(ctx, rubroID, strings.TrimSpace(name), strings.TrimSpace(category), actor)
}

func (s *Service) DeleteRubro(ctx context.Context, rubroID string) error {
	return s.store.DeleteRubro(ctx, rubroID)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) (map[string]any, error) {
	if s.search == nil {
		return map[string]any{"query": query, "results": []any{}, "total": 0}, nil
	}
	return s.search.SearchProjects(ctx, query, limit, offset)
}

func (s *Service) Summary(ctx context.Context) (map[string]any, error) {
	projects, handoffs, accepted, err := s.store.SummaryCounts(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"projects":          projects,
		"handoffs":          handoffs,
		"acceptedBaselines": accepted,
	}, nil
}

// Sessions

func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authSvc
}

func (s *Service) CreateSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:   user.ID,
		Name:  user.DisplayName,
		Email: user.Email,
		Role:  user.Role,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Email:        user.Email,
		Role:         user.Role,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.CreateSession(ctx, user)
}

func (s *Service) SessionFromToken(_ context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		UserID:    claims.Sub,
		UserName:  claims.Name,
		Email:     claims.Email,
		Role:      claims.Role,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) Can(role string, action rbac.Action) bool {
	return rbac.Can(rbac.Normalize(role), action)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) PingIdempotency(ctx context.Context) error {
	if s.idem == nil {
		return nil
	}
	return s.idem.Ping(ctx)
}

// Response payload helpers

func projectPayload(project store.Project) map[string]any {
	payload := map[string]any{
		"id":            project.ID,
		"name":          project.Name,
		"code":          project.Code,
		"clientName":    project.ClientName,
		"currency":      project.Currency,
		"description":   project.Description,
		"modTotal":      project.ModTotal,
		"pctIngenieros": project.PctIngenieros,
		"pctSdm":        project.PctSDM,
		"responsible":   project.Responsible,
		"createdBy":     project.CreatedBy,
		"createdAt":     project.CreatedAt.Format(time.RFC3339),
		"updatedAt":     project.UpdatedAt.Format(time.RFC3339),
	}
	if project.BaselineID != "" {
		payload["baselineId"] = project.BaselineID
	} else {
		payload["baselineId"] = nil
	}
	if project.AcceptedBy != "" {
		payload["acceptedBy"] = project.AcceptedBy
	}
	if project.AcceptedAt != nil {
		payload["acceptedAt"] = project.AcceptedAt.Format(time.RFC3339)
	}
	return payload
}

func handoffPayload(handoff store.Handoff) map[string]any {
	return map[string]any{
		"id":         handoff.ID,
		"projectId":  handoff.ProjectID,
		"baselineId": handoff.BaselineID,
		"payload":    json.RawMessage(handoff.Payload),
		"actor":      handoff.Actor,
		"createdAt":  handoff.CreatedAt.Format(time.RFC3339),
	}
}

func rubroPayload(rubro store.Rubro) map[string]any {
	return map[string]any{
		"id":        rubro.ID,
		"name":      rubro.Name,
		"category":  rubro.Category,
		"updatedBy": rubro.UpdatedBy,
	}
}
