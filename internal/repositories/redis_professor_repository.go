package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"profadvisor/internal/models"
)

const (
	professorKeyPrefix   = "professor:"
	professorIDSetKey    = "professors:all"
	professorSubjectsKey = "professors:subjects"
)

// RedisProfessorRepository implements ProfessorRepository using Redis.
// Records are stored as JSON values under professor:<id>, with the id set in
// professors:all and the distinct subject set in professors:subjects.
type RedisProfessorRepository struct {
	client *redis.Client
}

// NewRedisProfessorRepository creates a new Redis-backed professor catalog
func NewRedisProfessorRepository(client *redis.Client) ProfessorRepository {
	return &RedisProfessorRepository{
		client: client,
	}
}

// Upsert stores or replaces a catalog record
func (r *RedisProfessorRepository) Upsert(ctx context.Context, professor *models.Professor) error {
	if err := professor.Validate(); err != nil {
		return NewCatalogError("upsert_professor", err, "")
	}

	data, err := json.Marshal(professor)
	if err != nil {
		return NewCatalogError("upsert_professor", err, "failed to marshal professor: "+professor.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, professorKeyPrefix+professor.ID, data, 0)
	pipe.SAdd(ctx, professorIDSetKey, professor.ID)
	pipe.SAdd(ctx, professorSubjectsKey, professor.Subject)
	if _, err := pipe.Exec(ctx); err != nil {
		return NewCatalogError("upsert_professor", err, "failed to store professor: "+professor.ID)
	}

	return nil
}

// Get retrieves a single catalog record by id
func (r *RedisProfessorRepository) Get(ctx context.Context, id string) (*models.Professor, error) {
	data, err := r.client.Get(ctx, professorKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ProfessorNotFoundError(id)
	}
	if err != nil {
		return nil, NewCatalogError("get_professor", err, "")
	}

	var professor models.Professor
	if err := json.Unmarshal([]byte(data), &professor); err != nil {
		return nil, NewCatalogError("get_professor", err, "corrupt professor record: "+id)
	}

	return &professor, nil
}

// List returns a stable page of catalog records plus the total count.
// Ids are sorted so pagination is deterministic across calls.
func (r *RedisProfessorRepository) List(ctx context.Context, limit, offset int) ([]*models.Professor, int, error) {
	ids, err := r.client.SMembers(ctx, professorIDSetKey).Result()
	if err != nil {
		return nil, 0, NewCatalogError("list_professors", err, "")
	}
	sort.Strings(ids)

	total := len(ids)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []*models.Professor{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := ids[offset:end]
	professors := make([]*models.Professor, 0, len(page))
	for _, id := range page {
		professor, err := r.Get(ctx, id)
		if err != nil {
			// A record deleted between SMembers and Get is not fatal.
			if IsNotFound(err) {
				continue
			}
			return nil, 0, err
		}
		professors = append(professors, professor)
	}

	return professors, total, nil
}

// Subjects returns the distinct subjects present in the catalog
func (r *RedisProfessorRepository) Subjects(ctx context.Context) ([]string, error) {
	subjects, err := r.client.SMembers(ctx, professorSubjectsKey).Result()
	if err != nil {
		return nil, NewCatalogError("list_subjects", err, "")
	}
	sort.Strings(subjects)
	return subjects, nil
}

// Ping checks catalog connectivity
func (r *RedisProfessorRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return NewCatalogError("ping", err, fmt.Sprintf("redis unreachable: %v", err))
	}
	return nil
}
