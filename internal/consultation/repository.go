package consultation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
)

// Repository persists consultations per owner (the login email). The session
// store keeps consultations in memory; the repository is the durable backend
// behind the Saver hook.
type Repository interface {
	Save(ctx context.Context, owner string, c *Consultation) error
	ListByOwner(ctx context.Context, owner string) ([]*Consultation, error)
}

// SaverFor binds a repository and an owner into the Store's Saver hook.
func SaverFor(repo Repository, owner string) Saver {
	return SaverFunc(func(ctx context.Context, c *Consultation) error {
		return repo.Save(ctx, owner, c)
	})
}

// ---------------------------------------------------------------------------
// In-memory repository (default backend)
// ---------------------------------------------------------------------------

type memoryRepo struct {
	mu     sync.RWMutex
	byUser map[string]map[int]*Consultation
}

func NewMemoryRepository() Repository {
	return &memoryRepo{byUser: make(map[string]map[int]*Consultation)}
}

func (r *memoryRepo) Save(ctx context.Context, owner string, c *Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byUser[owner] == nil {
		r.byUser[owner] = make(map[int]*Consultation)
	}
	r.byUser[owner][c.ID] = c
	return nil
}

func (r *memoryRepo) ListByOwner(ctx context.Context, owner string) ([]*Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Consultation
	for id := 1; ; id++ {
		c, ok := r.byUser[owner][id]
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Postgres repository
// ---------------------------------------------------------------------------

type postgresRepo struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Save(ctx context.Context, owner string, c *Consultation) error {
	messagesJSON, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	query := `
		INSERT INTO consultations
			(owner, id, title, patient_name, patient_age, skin_type, problem_type,
			 onboarding_step, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (owner, id) DO UPDATE SET
			title = $3,
			patient_name = $4,
			patient_age = $5,
			skin_type = $6,
			problem_type = $7,
			onboarding_step = $8,
			messages = $9,
			updated_at = $11
	`
	_, err = r.db.ExecContext(ctx, query,
		owner, c.ID, c.Title, c.PatientName, c.PatientAge, c.SkinType, c.ProblemType,
		c.OnboardingStep, messagesJSON, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *postgresRepo) ListByOwner(ctx context.Context, owner string) ([]*Consultation, error) {
	query := `
		SELECT id, title, patient_name, patient_age, skin_type, problem_type,
		       onboarding_step, messages, created_at, updated_at
		FROM consultations
		WHERE owner = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Consultation
	for rows.Next() {
		var c Consultation
		var messagesJSON []byte
		if err := rows.Scan(
			&c.ID, &c.Title, &c.PatientName, &c.PatientAge, &c.SkinType, &c.ProblemType,
			&c.OnboardingStep, &messagesJSON, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(messagesJSON) > 0 {
			if err := json.Unmarshal(messagesJSON, &c.Messages); err != nil {
				return nil, fmt.Errorf("unmarshal messages: %w", err)
			}
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
