package inmemory

import (
	"context"
	"sort"

	"gorm.io/datatypes"

	"async-standup/internal/domain/standups"
)

type StandupsRepository struct {
	conn
}

func (r *StandupsRepository) Transaction(ctx context.Context, fn func(standups.Repository) error) error {
	return r.transaction(func(c conn) error {
		return fn(&StandupsRepository{conn: c})
	})
}

func (r *StandupsRepository) CountStandupsByCreator(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.view(func(t *tables) error {
		for _, standup := range t.standups {
			if standup.UserID == userID {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *StandupsRepository) CreateStandup(ctx context.Context, standup *standups.Standup) error {
	return r.update(func(t *tables) error {
		for _, existing := range t.standups {
			if existing.Identifier == standup.Identifier {
				return ErrUniqueViolation
			}
		}
		standup.ID = t.nextID()
		if standup.Status == "" {
			standup.Status = standups.StatusDraft
		}
		if standup.CreatedAt.IsZero() {
			standup.CreatedAt = r.now()
		}
		t.standups[standup.ID] = *standup
		return nil
	})
}

func (r *StandupsRepository) GetStandup(ctx context.Context, id int64) (*standups.Standup, error) {
	var found *standups.Standup
	err := r.view(func(t *tables) error {
		standup, ok := t.standups[id]
		if !ok {
			return standups.ErrStandupNotFound
		}
		found = &standup
		return nil
	})
	return found, err
}

func (r *StandupsRepository) ListStandupsByCreator(ctx context.Context, userID int64, limit, offset int) ([]standups.Standup, int64, error) {
	return r.list(func(t *tables, standup standups.Standup) bool {
		return standup.UserID == userID
	}, limit, offset)
}

func (r *StandupsRepository) ListStandupsByAssignee(ctx context.Context, userID int64, limit, offset int) ([]standups.Standup, int64, error) {
	return r.list(func(t *tables, standup standups.Standup) bool {
		for _, assignment := range t.assignments {
			if assignment.StandupID != standup.ID {
				continue
			}
			if member, ok := t.members[assignment.TeamMemberID]; ok && member.UserID == userID {
				return true
			}
		}
		return false
	}, limit, offset)
}

func (r *StandupsRepository) list(match func(*tables, standups.Standup) bool, limit, offset int) ([]standups.Standup, int64, error) {
	var all []standups.Standup
	err := r.view(func(t *tables) error {
		for _, standup := range t.standups {
			if match(t, standup) {
				all = append(all, standup)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (r *StandupsRepository) ExistingTeamMemberIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var found []int64
	err := r.view(func(t *tables) error {
		for _, id := range ids {
			if _, ok := t.members[id]; ok {
				found = append(found, id)
			}
		}
		return nil
	})
	return found, err
}

func (r *StandupsRepository) CreateAssignments(ctx context.Context, assignments []standups.Assignment) error {
	return r.update(func(t *tables) error {
		tokens := make(map[string]bool, len(t.assignments)+len(assignments))
		for _, existing := range t.assignments {
			tokens[existing.ResponseURL] = true
		}
		for _, assignment := range assignments {
			if tokens[assignment.ResponseURL] {
				return ErrUniqueViolation
			}
			tokens[assignment.ResponseURL] = true
		}

		now := r.now()
		for i := range assignments {
			assignments[i].ID = t.nextID()
			if assignments[i].Status == "" {
				assignments[i].Status = standups.AssignmentPending
			}
			assignments[i].CreatedAt = now
			assignments[i].UpdatedAt = now
			t.assignments[assignments[i].ID] = assignments[i]
		}
		return nil
	})
}

func (r *StandupsRepository) GetAssignmentByToken(ctx context.Context, token string) (*standups.Assignment, error) {
	var found *standups.Assignment
	err := r.view(func(t *tables) error {
		for _, assignment := range t.assignments {
			if assignment.ResponseURL == token {
				found = &assignment
				return nil
			}
		}
		return standups.ErrAssignmentNotFound
	})
	return found, err
}

func (r *StandupsRepository) UpdateAssignmentResponse(ctx context.Context, id int64, response datatypes.JSON, status string) error {
	return r.update(func(t *tables) error {
		assignment, ok := t.assignments[id]
		if !ok {
			return standups.ErrAssignmentNotFound
		}
		assignment.Response = append(datatypes.JSON(nil), response...)
		assignment.Status = status
		assignment.UpdatedAt = r.now()
		t.assignments[id] = assignment
		return nil
	})
}

func (r *StandupsRepository) ListAssignments(ctx context.Context, standupID int64) ([]standups.AssignmentWithMember, error) {
	var out []standups.AssignmentWithMember
	err := r.view(func(t *tables) error {
		for _, assignment := range t.assignments {
			if assignment.StandupID != standupID {
				continue
			}
			member, ok := t.members[assignment.TeamMemberID]
			if !ok {
				continue
			}
			out = append(out, standups.AssignmentWithMember{
				Assignment: assignment,
				TeamMember: standups.MemberSummary{ID: member.ID, Name: member.Name, Email: member.Email},
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}
