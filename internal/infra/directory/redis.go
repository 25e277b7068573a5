// Package directory is the redis-hash-backed stand-in for the system of
// record. The task store proper lives elsewhere and mirrors employees,
// project membership and webhook registrations into these keys.
package directory

import (
	"context"
	"fmt"
	"strconv"

	"boardrelay/internal/domain"
	"boardrelay/internal/infra/redisq"
	"boardrelay/internal/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.Directory = (*Store)(nil)

type Store struct {
	rdb *redis.Client
}

func New(c *redisq.Client) *Store {
	return &Store{rdb: c.Rdb}
}

func employeeKey(id int64) string { return fmt.Sprintf("employee:%d", id) }

func membersKey(projectID int64) string { return fmt.Sprintf("project:%d:members", projectID) }

// ProjectMembers reads the employeeID->role hash for a project.
func (s *Store) ProjectMembers(ctx context.Context, projectID int64) ([]domain.ProjectMember, error) {
	h, err := s.rdb.HGetAll(ctx, membersKey(projectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load project %d members: %w", projectID, err)
	}
	out := make([]domain.ProjectMember, 0, len(h))
	for field, role := range h {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, domain.ProjectMember{EmployeeID: id, Role: role})
	}
	return out, nil
}

// Employees loads the given employee records, skipping unknown ids.
func (s *Store) Employees(ctx context.Context, ids []int64) ([]domain.Employee, error) {
	out := make([]domain.Employee, 0, len(ids))
	for _, id := range ids {
		h, err := s.rdb.HGetAll(ctx, employeeKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("load employee %d: %w", id, err)
		}
		if len(h) == 0 {
			continue
		}
		out = append(out, domain.Employee{
			ID:            id,
			Name:          h["name"],
			Type:          h["type"],
			NotifyEnabled: h["notify_enabled"] != "false" && h["notify_enabled"] != "0",
			SessionKey:    h["session_key"],
		})
	}
	return out, nil
}
